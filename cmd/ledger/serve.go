package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/certs"
	"github.com/Veraticus/ledger/internal/web"
)

func (a *app) serveCmd() *cobra.Command {
	var (
		addr   string
		useTLS bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web page",
		Long: `Serve the transaction list, balance and expense form over HTTP.
The server stops gracefully on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			svc, closeDB, err := a.initLedger(ctx)
			if err != nil {
				return err
			}
			defer closeDB()

			if addr == "" {
				addr = a.cfg.Web.Addr
			}
			opts := web.Options{
				Display:      a.display(),
				Addr:         addr,
				ReadTimeout:  a.cfg.Web.ReadTimeout,
				WriteTimeout: a.cfg.Web.WriteTimeout,
			}
			if useTLS || a.cfg.Web.TLS {
				cert, err := certs.NewStore(a.cfg.Web.CertDir).Certificate()
				if err != nil {
					return fmt.Errorf("failed to prepare TLS certificate: %w", err)
				}
				opts.TLSCert = &cert
			}

			srv, err := web.NewServer(svc, opts)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&useTLS, "tls", false, "serve HTTPS with a self-signed localhost certificate (web.cert_dir)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: web.addr, \":5000\")")
	return cmd
}
