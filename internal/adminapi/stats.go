// Package adminapi exposes operational visibility into the running store
// for the status CLI dashboard (cmd/status.go) — never part of the
// shopper/representative wire protocol.
package adminapi

import (
	"encoding/json"
	"net/http"

	"go.uber.org/fx"

	"github.com/webitel/floorqueue/internal/httpserver"
	"github.com/webitel/floorqueue/internal/store"
)

type Handler struct {
	store *store.Store
}

func NewHandler(st *store.Store) *Handler {
	return &Handler{store: st}
}

// ServeHTTP implements GET /api/admin/stats.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.store.Stats())
}

var Module = fx.Module("adminapi",
	fx.Provide(NewHandler),
	fx.Invoke(RegisterRoutes),
)

func RegisterRoutes(router httpserver.Router, h *Handler) {
	router.Get("/admin/stats", h.ServeHTTP)
}
