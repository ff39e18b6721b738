package main

import (
	"net"

	"rxprev/ui"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve prevalence reports over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd, nil)
			if err != nil {
				return err
			}
			defer c.Shutdown(cmd.Context())

			if port == "" {
				port = c.Config.Server.Port
			}
			return ui.NewServer(c).Run(cmd.Context(), net.JoinHostPort("", port))
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port, overrides PORT")
	return cmd
}
