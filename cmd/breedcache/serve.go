package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ericselin/breedcache/server"
	"github.com/spf13/cobra"
)

func newServeCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve sub-breed lookups over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			provider, closeStore, err := o.provider(true)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := &http.Server{
				Addr:    fmt.Sprintf(":%d", o.config.Port),
				Handler: server.New(provider, &o.logger),
			}
			go func() {
				<-cmd.Context().Done()
				srv.Close()
			}()

			o.logger.Info().Msgf("Serving breed lookups on port %v", o.config.Port)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&o.config.Port, "port", o.config.Port, "Port to listen on")
	return cmd
}
