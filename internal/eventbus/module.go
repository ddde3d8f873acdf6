package eventbus

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("eventbus",
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, bus *Bus) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return bus.Close()
		},
	})
}
