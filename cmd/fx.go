package cmd

import (
	"go.uber.org/fx"

	"github.com/webitel/floorqueue/config"
	"github.com/webitel/floorqueue/internal/adminapi"
	"github.com/webitel/floorqueue/internal/broadcaster"
	"github.com/webitel/floorqueue/internal/chat"
	"github.com/webitel/floorqueue/internal/eventbus"
	"github.com/webitel/floorqueue/internal/httpserver"
	"github.com/webitel/floorqueue/internal/inventory"
	"github.com/webitel/floorqueue/internal/janitor"
	"github.com/webitel/floorqueue/internal/logging"
	"github.com/webitel/floorqueue/internal/queue"
	"github.com/webitel/floorqueue/internal/store"
	"github.com/webitel/floorqueue/internal/wsapi"
)

func NewApp(cfg *config.Config) *fx.App {
	return fx.New(
		fx.Provide(
			func() *config.Config { return cfg },
			logging.New,
		),
		store.Module,
		eventbus.Module,
		queue.Module,
		broadcaster.Module,
		janitor.Module,
		httpserver.Module,
		wsapi.Module,
		chat.Module,
		inventory.Module,
		adminapi.Module,
	)
}
