package toggle

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tempestls/pkg/debug"
	"github.com/walteh/tempestls/pkg/settings"
)

type Handler struct {
	fs        afero.Fs
	out       io.Writer
	configDir string
	on        bool
	off       bool
}

func NewToggleCommand() *cobra.Command {
	me := &Handler{fs: afero.NewOsFs()}

	cmd := &cobra.Command{
		Use:   "toggle",
		Short: "flip Tempest support on or off in the persisted settings",
	}

	cmd.Flags().BoolVar(&me.on, "on", false, "enable instead of flipping")
	cmd.Flags().BoolVar(&me.off, "off", false, "disable instead of flipping")
	cmd.Flags().StringVar(&me.configDir, "config-dir", "", "directory holding "+settings.FileName+" (default: user config dir)")
	cmd.MarkFlagsMutuallyExclusive("on", "off")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		me.out = cmd.OutOrStdout()
		logger := debug.NewLogger(os.Stderr, zerolog.WarnLevel, true)
		return me.Run(logger.WithContext(cmd.Context()))
	}

	return cmd
}

// NewHandler is used by tests to run the command against an in-memory filesystem.
func NewHandler(fs afero.Fs, out io.Writer, configDir string, on, off bool) *Handler {
	return &Handler{fs: fs, out: out, configDir: configDir, on: on, off: off}
}

func (me *Handler) Run(ctx context.Context) error {
	if me.on && me.off {
		return errors.New("--on and --off are mutually exclusive")
	}

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

	var (
		next settings.Settings
		err  error
	)
	switch {
	case me.on:
		next, err = store.SetEnabled(ctx, true)
	case me.off:
		next, err = store.SetEnabled(ctx, false)
	default:
		next, err = store.Toggle(ctx)
	}
	if err != nil {
		return errors.Errorf("updating settings: %w", err)
	}

	state := "disabled"
	if next.Enabled {
		state = "enabled"
	}

	if _, err := fmt.Fprintf(me.out, "tempest support %s (%s)\n", state, store.Path()); err != nil {
		return errors.Errorf("writing result: %w", err)
	}

	return nil
}
