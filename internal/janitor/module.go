package janitor

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/webitel/floorqueue/config"
	"github.com/webitel/floorqueue/internal/eventbus"
	"github.com/webitel/floorqueue/internal/store"
)

var Module = fx.Module("janitor",
	fx.Provide(newFromConfig),
	fx.Invoke(registerLifecycle),
)

func newFromConfig(cfg *config.Config, st *store.Store, bus *eventbus.Bus, logger *slog.Logger) *Janitor {
	return New(st, bus, logger, cfg.JanitorInterval(), cfg.JanitorDisconnectGrace(), cfg.JanitorCollabTTL())
}

func registerLifecycle(lc fx.Lifecycle, j *Janitor) {
	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			go j.Run(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}
