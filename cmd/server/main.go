package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/path-greeter/internal/config"
	"github.com/janisto/path-greeter/internal/http/health"
	"github.com/janisto/path-greeter/internal/http/v1/routes"
	applog "github.com/janisto/path-greeter/internal/platform/logging"
	appmiddleware "github.com/janisto/path-greeter/internal/platform/middleware"
	"github.com/janisto/path-greeter/internal/platform/respond"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

// Port is fixed; it is not read from the environment or flags.
const Port = "5001"

// errListen marks run failures that happened while binding Port.
var errListen = errors.New("listen")

func main() {
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		applog.LogError(ctx, "config load failed", err)
		exit(1)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.LogWarn(ctx, "invalid log level, keeping info", zap.Error(err))
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(sigCtx, cfg); err != nil {
		applog.LogError(ctx, failureMessage(err), err, zap.String("addr", ":"+Port))
		exit(1)
	}
	applog.LogInfo(ctx, "server exited")
	exit(0)
}

func exit(code int) {
	if err := applog.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "logger sync error: %v\n", err)
	}
	os.Exit(code)
}

func failureMessage(err error) string {
	if errors.Is(err, errListen) {
		return "listen failed"
	}
	return "server failed"
}

// run binds Port and serves until ctx is cancelled.
func run(ctx context.Context, cfg config.Config) error {
	srv := newServer(newRouter(cfg))
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("%w %s: %w", errListen, srv.Addr, err)
	}
	return serve(ctx, srv, ln, cfg.ShutdownTimeout)
}

func newServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + Port,
		Handler:           handler,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}
}

// serve runs srv on ln and shuts it down gracefully once ctx is done.
func serve(ctx context.Context, srv *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	serveErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
		applog.LogInfo(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	return nil
}

func newRouter(cfg config.Config) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(routes.DocsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP / X-Forwarded-For; only deploy behind a trusted proxy.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(cfg.ProjectID),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	router.Get(routes.HealthPath, health.Handler(Version))

	api := humachi.New(router, routes.NewConfig(Version))
	routes.Register(api)
	return router
}
