package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sakif/violets/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}

			logger := a.logger(cmd.OutOrStdout())
			srv, err := server.New(a.cfg, logger)
			if err != nil {
				return fmt.Errorf("create server: %w", err)
			}
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}
