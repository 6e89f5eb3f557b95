package cli

import (
	"net"

	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/bcdannyboy/bsmrisk/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.New(analysis.New(a.cfg, a.log), a.log.Named("http"))
			if err != nil {
				return err
			}
			return srv.ListenAndServe(cmd.Context(), net.JoinHostPort(host, a.cfg.Server.Port))
		},
	}
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "listen address")
	return cmd
}
