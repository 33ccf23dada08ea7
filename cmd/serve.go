// SPDX-License-Identifier: MIT
package cmd

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"haptic/internal/server"
	"haptic/internal/transport"
)

func newServeCommand(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the playback event hub",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			gin.SetMode(gin.ReleaseMode)

			svc, closeStore, err := a.openService(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			hub := transport.NewWebSocketTransport()
			out, err := a.playbackTransports("", hub)
			if err != nil {
				hub.Close()
				return err
			}
			defer out.Close()

			srv := server.New(server.Config{
				Addr:           a.cfg.Server.Addr,
				MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
				RequestTimeout: a.cfg.Server.RequestTimeout,
			}, svc, hub, out)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return srv.Run(ctx)
			})
			g.Go(func() error {
				<-ctx.Done()
				return srv.Close()
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides server.addr)")
	return cmd
}
