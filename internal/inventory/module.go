package inventory

import (
	"go.uber.org/fx"

	"github.com/webitel/floorqueue/internal/httpserver"
)

var Module = fx.Module("inventory",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)

func RegisterRoutes(router httpserver.Router, h *Handler) {
	router.Get("/cars", h.ServeHTTP)
}
