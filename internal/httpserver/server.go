// Package httpserver assembles the chi mux every REST and websocket
// endpoint registers itself onto, and drives its lifecycle from fx by
// starting a goroutine in OnStart and tearing it down in OnStop.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"

	"github.com/webitel/floorqueue/config"
)

// Router is the mux every handler module registers its routes onto,
// mounted under /api by NewMux.
type Router = chi.Router

func NewRouter() Router {
	return chi.NewRouter()
}

func NewMux(router Router, logger *slog.Logger) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.RequestID)
	root.Use(middleware.Recoverer)
	root.Use(chiSlogLogger(logger))
	root.Mount("/api", router)
	return root
}

func NewServer(cfg *config.Config, mux http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

var Module = fx.Module("httpserver",
	fx.Provide(
		NewRouter,
		NewMux,
		NewServer,
	),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, srv *http.Server, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("HTTP_SERVER_FAILED", slog.Any("err", err))
				}
			}()
			logger.Info("HTTP_SERVER_LISTENING", slog.String("addr", srv.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func chiSlogLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("HTTP_REQUEST",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}
