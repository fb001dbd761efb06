package main

import (
	"github.com/spf13/cobra"

	"github.com/precapp/precapp/internal/cache"
	"github.com/precapp/precapp/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			c := cache.NewCache(a.cfg.CacheSize, a.cfg.CacheTTL)

			a.log.Info("Starting server",
				"host", a.cfg.Host,
				"port", a.cfg.Port,
				"database", a.cfg.DatabasePath,
			)

			return server.New(a.cfg, a.db, c, a.log).Run()
		},
	}
}
