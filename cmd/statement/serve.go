package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/statement-press/internal/certs"
	"github.com/Veraticus/statement-press/internal/config"
	"github.com/Veraticus/statement-press/internal/server"
	"github.com/Veraticus/statement-press/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve statement rendering over HTTP",
		Long: `Start an HTTP server that renders statement payloads.

  POST /v1/statements        payload in, PDF out
  POST /v1/statements/plan   payload in, pagination plan out
  GET  /v1/profiles          configured layout profiles
  GET  /healthz              liveness

With --tls the server uses a self-signed localhost certificate kept in
server.cert_dir.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			noHistory, _ := cmd.Flags().GetBool("no-history")

			branding, err := config.LoadBranding()
			if err != nil {
				return err
			}

			var store service.Storage
			if !noHistory {
				store, err = initStorage(ctx)
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				defer func() { _ = store.Close() }()
			}

			cfg := server.Config{
				Logger:       slog.Default(),
				Storage:      store,
				Resolve:      config.ResolveProfile,
				Branding:     branding,
				Timeout:      viper.GetDuration("server.timeout"),
				MaxBodyBytes: viper.GetInt64("server.max_body_bytes"),
			}
			if viper.GetBool("server.tls") {
				cfg.TLS, err = certs.TLSConfig(certs.NewFileManager(config.ExpandPath(viper.GetString("server.cert_dir"))))
				if err != nil {
					return err
				}
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			return srv.ListenAndServe(ctx, viper.GetString("server.addr"))
		},
	}

	cmd.Flags().String("addr", "", "listen address (default: server.addr)")
	cmd.Flags().Bool("no-history", false, "do not record runs in the database")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))
	return cmd
}
