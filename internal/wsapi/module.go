package wsapi

import (
	"go.uber.org/fx"

	"github.com/webitel/floorqueue/internal/collabroom"
	"github.com/webitel/floorqueue/internal/httpserver"
)

var Module = fx.Module("wsapi",
	fx.Provide(
		NewShopperHandler,
		NewRepresentativeHandler,
		collabroom.NewRegistry,
		NewCollaborationHandler,
	),
	fx.Invoke(RegisterRoutes),
)

func RegisterRoutes(router httpserver.Router, shopper *ShopperHandler, rep *RepresentativeHandler, collab *CollaborationHandler) {
	router.Get("/ws/call", shopper.ServeHTTP)
	router.Get("/ws/calls/monitor", rep.ServeHTTP)
	router.Get("/ws/collaboration/{shopperId}", collab.ServeHTTP)
}
