package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/violets/internal/repository/sqlite"
	"github.com/sakif/violets/internal/service"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
		csv    bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the journal to a snapshot file",
		Long: `Write every cultivar and care log as a JSON or YAML snapshot that
"violets import" can restore. With --csv, write the care history as CSV
instead.

The format defaults to the output file's extension, or JSON on stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := sqlite.New(a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			backups := service.NewBackupService(db, a.logger(cmd.ErrOrStderr()))

			var w io.Writer = cmd.OutOrStdout()
			var f *os.File
			if output != "" && output != "-" {
				f, err = os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			if csv {
				err = backups.WriteCareCSV(cmd.Context(), w)
			} else {
				err = writeSnapshot(cmd, backups, w, format, output)
			}
			if err != nil {
				return err
			}

			if f != nil {
				return f.Close()
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "snapshot format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&csv, "csv", false, "write care history as CSV")
	return cmd
}

func writeSnapshot(cmd *cobra.Command, backups *service.BackupService, w io.Writer, format, output string) error {
	if format == "" {
		format = service.FormatFromPath(output)
	}

	snap, err := backups.Export(cmd.Context())
	if err != nil {
		return err
	}
	if err := service.EncodeSnapshot(w, snap, format); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if output != "" && output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d cultivars and %d care logs to %s\n",
			len(snap.Cultivars), len(snap.CareLogs), output)
	}
	return nil
}
