package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/violets/internal/repository/sqlite"
	"github.com/sakif/violets/internal/service"
)

func newImportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the journal with a snapshot",
		Long: `Replace every cultivar and care log with the contents of a snapshot
written by "violets export". The snapshot is checked in full first; if any
record is invalid, nothing changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if format == "" {
				format = service.FormatFromPath(path)
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open snapshot: %w", err)
			}
			defer f.Close()

			snap, err := service.DecodeSnapshot(f, format)
			if err != nil {
				return err
			}

			db, err := sqlite.New(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			backups := service.NewBackupService(db, a.logger(cmd.ErrOrStderr()))
			if err := backups.Import(cmd.Context(), snap); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d cultivars and %d care logs\n",
				len(snap.Cultivars), len(snap.CareLogs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "snapshot format: json or yaml (default: from file extension)")
	return cmd
}
