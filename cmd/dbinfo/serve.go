package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbinfo/internal/server"
)

func newServeCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog as a read-only JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ctx, s, err := opts.open(ctx)
			if err != nil {
				return err
			}
			defer s.Close()

			if addr != "" {
				s.cfg.Server.Addr = addr
			}
			return server.New(s.inspector, s.log).ListenAndServe(ctx, s.cfg.Server)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (env DBINFO_SERVER_ADDR, default :8080)")
	return cmd
}
