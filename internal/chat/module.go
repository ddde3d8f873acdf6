package chat

import (
	"go.uber.org/fx"

	"github.com/webitel/floorqueue/internal/httpserver"
)

var Module = fx.Module("chat",
	fx.Provide(
		New,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)

func RegisterRoutes(router httpserver.Router, h *Handler) {
	router.Post("/chat", h.ServeHTTP)
}
