package serve_lsp

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/tliron/glsp/server"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tempestls/pkg/debug"
	"github.com/walteh/tempestls/pkg/lsp"
	"github.com/walteh/tempestls/pkg/settings"
)

type Handler struct {
	debug     bool
	configDir string
	version   string
}

func NewServeLSPCommand(version string) *cobra.Command {
	me := &Handler{version: version}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdio",
	}

	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().StringVar(&me.configDir, "config-dir", "", "directory holding "+settings.FileName+" (default: user config dir)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	level := zerolog.InfoLevel
	if me.debug {
		level = zerolog.DebugLevel
	}

	// stdout carries the protocol, logs only ever go to stderr
	logger := debug.NewLogger(os.Stderr, level, false)
	ctx = logger.WithContext(ctx)

	dir := me.configDir
	if dir == "" {
		var err error
		if dir, err = settings.DefaultDir(); err != nil {
			return err
		}
	}

	fs := afero.NewOsFs()

	store := settings.NewStore(fs, dir)
	if err := store.Load(ctx); err != nil {
		return errors.Errorf("loading settings from %s: %w", dir, err)
	}

	srv := lsp.NewServer(ctx, store, fs, me.version, lsp.WithLogForwarding(os.Stderr, level))
	defer srv.Close()

	zerolog.Ctx(ctx).Info().Str("config_dir", dir).Str("server_id", srv.ID()).Msg("starting language server")

	if err := server.NewServer(srv.Handler(), lsp.ServerName, me.debug).RunStdio(); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
