package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/tempestls/cmd/tempestls/classify"
	serve_lsp "github.com/walteh/tempestls/cmd/tempestls/serve-lsp"
	"github.com/walteh/tempestls/cmd/tempestls/toggle"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:           "tempestls",
		Short:         "Tempest view highlighting and editing support",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(serve_lsp.NewServeLSPCommand(rootCmd.Version))
	rootCmd.AddCommand(classify.NewClassifyCommand())
	rootCmd.AddCommand(toggle.NewToggleCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
