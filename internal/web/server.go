// Package web serves a small HTML front-end for the ledger: the transaction
// list with its balance and a form to add expenses.
package web

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/model"
	"github.com/Veraticus/ledger/internal/period"
)

// ShutdownTimeout bounds the graceful shutdown in Run.
const ShutdownTimeout = 10 * time.Second

// Ledger is the part of the ledger service the web front-end uses.
type Ledger interface {
	AddExpense(ctx context.Context, description, category string, amount float64, at time.Time) (int64, error)
	List(ctx context.Context, filter period.Filter) ([]model.Transaction, error)
}

// Options configures a Server. A non-nil TLSCert serves HTTPS.
type Options struct {
	TLSCert      *tls.Certificate
	Display      cli.Display
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server renders the ledger over HTTP.
type Server struct {
	ledger    Ledger
	templates *template.Template
	opts      Options
}

// NewServer parses the embedded templates and builds a server.
func NewServer(ledger Ledger, opts Options) (*Server, error) {
	if ledger == nil {
		return nil, errors.New("web server requires a ledger")
	}
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	if opts.Display.Currency == "" {
		opts.Display = cli.DefaultDisplay()
	}
	return &Server{ledger: ledger, templates: tmpl, opts: opts}, nil
}

// Handler returns the instrumented router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", s.handleIndex)
	r.Post("/despesas", s.handleCreateExpense)

	return otelhttp.NewHandler(r, "ledger.web")
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	serve := srv.ListenAndServe
	if s.opts.TLSCert != nil {
		srv.TLSConfig = &tls.Config{
			Certificates: []tls.Certificate{*s.opts.TLSCert},
			MinVersion:   tls.VersionTLS12,
		}
		serve = func() error { return srv.ListenAndServeTLS("", "") }
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Starting web server", "addr", s.opts.Addr, "tls", s.opts.TLSCert != nil)
		if err := serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("web server shutdown: %w", err)
		}
		slog.Info("Web server stopped")
		return nil
	})
	return g.Wait()
}
