package broadcaster

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
)

var Module = fx.Module("broadcaster",
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, b *Broadcaster, logger *slog.Logger) {
	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			go func() {
				if err := b.Run(runCtx); err != nil {
					logger.Error("BROADCASTER_STOPPED", slog.Any("err", err))
				}
			}()
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
