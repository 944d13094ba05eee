package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/violets/internal/config"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// skipConfig marks commands that run without loading configuration.
const skipConfig = "skip-config"

// app holds state shared by subcommands. PersistentPreRunE fills cfg.
type app struct {
	configFile string
	cfg        *config.Config
}

func (a *app) logger(w io.Writer) *slog.Logger {
	return a.cfg.Log.NewLogger(w)
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "violets",
		Short: "Violet Journal tracks plant cultivars and their care",
		Long: `Violet Journal keeps a record of plant cultivars (name, flower color,
leaves, light and soil preferences) and the care each one has received.

Run "violets serve" to start the web interface.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[skipConfig]; ok {
				return nil
			}
			cfg, err := config.Load(a.configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default: ./violets.yaml if present)")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newHashPasswordCmd())

	return root
}
