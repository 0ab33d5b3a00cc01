package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tempestls/pkg/debug"
	"github.com/walteh/tempestls/pkg/finder"
	"github.com/walteh/tempestls/pkg/position"
	"github.com/walteh/tempestls/pkg/semtok"
	"github.com/walteh/tempestls/pkg/settings"
)

type Handler struct {
	fs        afero.Fs
	out       io.Writer
	configDir string
	json      bool
	force     bool
	debug     bool
}

func NewClassifyCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "classify [file-or-dir]",
		Short: "print the highlighting tokens of a Tempest view, or of every view under a directory",
	}

	cmd.Flags().BoolVar(&me.json, "json", false, "print tokens as JSON")
	cmd.Flags().BoolVar(&me.force, "force", false, "classify even when the file does not match the template patterns")
	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&me.configDir, "config-dir", "", "directory holding "+settings.FileName+" (default: user config dir)")
	cmd.Args = cobra.ExactArgs(1)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.out = cmd.OutOrStdout()
		level := zerolog.WarnLevel
		if me.debug {
			level = zerolog.DebugLevel
		}
		logger := debug.NewLogger(os.Stderr, level, true)
		return me.Run(logger.WithContext(cmd.Context()), args[0])
	}

	return cmd
}

// NewHandler is used by tests to run the command against an in-memory filesystem.
func NewHandler(fs afero.Fs, out io.Writer, configDir string, asJSON, force bool) *Handler {
	return &Handler{fs: fs, out: out, configDir: configDir, json: asJSON, force: force}
}

// Token is the printed form of one classified span.
type Token struct {
	File     string          `json:"file"`
	Category semtok.Category `json:"category"`
	Start    int             `json:"start"`
	End      int             `json:"end"`
	Line     int             `json:"line"`
	Column   int             `json:"column"`
	Text     string          `json:"text"`
}

func (me *Handler) Run(ctx context.Context, path string) error {
	dir := me.configDir
	if dir == "" {
		var err error
		if dir, err = settings.DefaultDir(); err != nil {
			return err
		}
	}

	store := settings.NewStore(me.fs, dir)
	if err := store.Load(ctx); err != nil {
		return errors.Errorf("loading settings: %w", err)
	}
	cfg := store.Current()

	info, err := me.fs.Stat(path)
	if err != nil {
		return errors.Errorf("reading %s: %w", path, err)
	}

	var out []Token
	if info.IsDir() {
		files, err := finder.NewDefaultFinder(me.fs).FindTemplates(ctx, path, cfg)
		if err != nil {
			return err
		}
		for _, file := range files {
			tokens, err := me.classifyFile(cfg, file)
			if err != nil {
				return err
			}
			out = append(out, tokens...)
		}
	} else {
		if !cfg.IsTemplate(path) {
			if !me.force {
				zerolog.Ctx(ctx).Warn().Str("path", path).Strs("templates", cfg.Templates).Msg("not a template, use --force to classify anyway")
				return nil
			}
			zerolog.Ctx(ctx).Debug().Str("path", path).Msg("forcing classification")
		}
		if out, err = me.classifyFile(cfg, path); err != nil {
			return err
		}
	}

	if out == nil {
		out = []Token{}
	}

	if me.json {
		enc := json.NewEncoder(me.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return errors.Errorf("encoding tokens: %w", err)
		}
		return nil
	}

	for _, tok := range out {
		if _, err := fmt.Fprintf(me.out, "%s:%d:%d\t%s\t%q\n", tok.File, tok.Line, tok.Column, tok.Category, tok.Text); err != nil {
			return errors.Errorf("writing tokens: %w", err)
		}
	}

	return nil
}

func (me *Handler) classifyFile(cfg settings.Settings, path string) ([]Token, error) {
	data, err := afero.ReadFile(me.fs, path)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}

	content := string(data)
	loc := position.NewLocator(content)

	tokens := semtok.Classify(cfg, content)
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		place := loc.Place(tok.Span.Start)
		out = append(out, Token{
			File:     path,
			Category: tok.Category,
			Start:    tok.Span.Start,
			End:      tok.Span.End,
			Line:     place.Line + 1,
			Column:   place.Character + 1,
			Text:     tok.Span.Text(content),
		})
	}
	return out, nil
}
