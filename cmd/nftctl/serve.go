package main

import (
	"nft-backend/internal/app"

	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket API",
		Example: `  # Listen on server.host:server.port from config
  nftctl serve

  # Override the listen address
  nftctl serve --addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunServer(cmd.Context(), opts.cfg, opts.logger, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.host/server.port")
	return cmd
}
