// trafficlog runs a small demo API behind the traffic logger.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Station-Manager/trafficlog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

var (
	serveAddr   string
	serveConfig string
	serveLevel  string
)

var rootCmd = &cobra.Command{
	Use:           "trafficlog",
	Short:         "HTTP traffic logging demo",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a demo API that logs its traffic",
	Example: `  # Summaries only
  trafficlog serve --level debug

  # Full request/response rendering
  trafficlog serve --level trace --addr :8080`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringVarP(&serveConfig, "config", "c", "", "YAML logging config file")
	serveCmd.Flags().StringVarP(&serveLevel, "level", "l", "", "log level (trace, debug, info, warn, error, silent)")
	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cfg, err := trafficlog.LoadConfig(serveConfig)
	if err != nil {
		return err
	}
	if serveLevel != "" {
		cfg.Level = serveLevel
	}

	svc := trafficlog.NewLogger(&cfg)
	if err = svc.Initialize(); err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()

	srv := &http.Server{
		Addr:              serveAddr,
		Handler:           newRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		svc.InfoWith().Str("addr", serveAddr).Str("level", svc.GetLevel().String()).Msg("demo API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			svc.ErrorWith().Err(err).Msg("server failed")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err = srv.Shutdown(shutdownCtx); err != nil {
		svc.ErrorWith().Err(err).Msg("shutdown failed")
		return err
	}
	svc.InfoWith().Msg("demo API stopped")
	return nil
}

func newRouter(svc *trafficlog.Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(trafficlog.TrafficLogger(svc))

	r.Get("/api/users", func(w http.ResponseWriter, r *http.Request) {
		body := []byte(`[{"id":1,"name":"Ada","active":true},{"id":2,"name":"Grace","active":false}]`)
		writeBody(w, "application/json", http.StatusOK, body)
	})
	r.Post("/api/echo", func(w http.ResponseWriter, r *http.Request) {
		buf, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeBody(w, r.Header.Get("Content-Type"), http.StatusOK, buf)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, "text/plain; charset=utf-8", http.StatusOK, []byte("ok"))
	})
	return r
}

func writeBody(w http.ResponseWriter, contentType string, code int, body []byte) {
	if contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(code)
	_, _ = w.Write(body)
}
