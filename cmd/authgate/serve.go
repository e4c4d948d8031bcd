package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/net/netutil"

	"github.com/vitalvas/authgate/config"
	"github.com/vitalvas/authgate/httpauth"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the protected document root or upstream",
	Long: `Serve starts the HTTP server described by the configuration file:
every request is authenticated by the gate, then answered from the
static document root or forwarded to the upstream server.

Examples:
  authgate serve -c authgate.yaml`,
	RunE: serveCommand,
}

var serveConfigPath string

func init() {
	serveCmd.Flags().StringVarP(&serveConfigPath, "config", "c", "authgate.yaml", "path to the configuration file")
	rootCmd.AddCommand(serveCmd)
}

func serveCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}

	logger, err := cfg.Logging.BuildLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	auth, err := cfg.Authority.Build(logger)
	if err != nil {
		return err
	}

	if closer, ok := auth.(io.Closer); ok {
		defer closer.Close()
	}

	metrics := &httpauth.Metrics{}

	gate, err := httpauth.New(cfg.Auth.GateConfig(auth, logger, metrics))
	if err != nil {
		return err
	}

	handler, err := documentHandler(cfg)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           recoverPanics(logger, gate.Wrap(handler)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		return err
	}

	if cfg.MaxConns > 0 {
		listener = netutil.LimitListener(listener, cfg.MaxConns)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()

	logger.Info("authgate listening",
		zap.String("addr", listener.Addr().String()),
		zap.String("authority", cfg.Authority.Type))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		return err

	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	snapshot := metrics.Snapshot()
	logger.Info("authgate stopped",
		zap.Int64("requests", snapshot.Requests),
		zap.Int64("basic_ok", snapshot.BasicOK),
		zap.Int64("digest_ok", snapshot.DigestOK),
		zap.Int64("challenges", snapshot.Challenges),
		zap.Int64("failures", snapshot.Failures),
		zap.Int64("rejects", snapshot.Rejects))

	return nil
}

// documentHandler builds the handler the gate protects: a file server
// over the document root, or a reverse proxy to the upstream.
func documentHandler(cfg *config.Config) (http.Handler, error) {
	if cfg.Root != "" {
		return http.FileServer(http.Dir(cfg.Root)), nil
	}

	upstream, err := url.Parse(cfg.Upstream)
	if err != nil {
		return nil, err
	}

	return httputil.NewSingleHostReverseProxy(upstream), nil
}

// recoverPanics keeps a panicking handler from killing the server. The
// client gets a plain 500 and the panic value goes to the log.
func recoverPanics(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("handler panic",
					zap.Any("panic", err),
					zap.String("path", r.URL.Path))

				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
