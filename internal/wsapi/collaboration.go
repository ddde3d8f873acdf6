package wsapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/webitel/floorqueue/internal/collabroom"
	"github.com/webitel/floorqueue/internal/transport"
)

// CollaborationHandler serves path /api/ws/collaboration/{shopperId}: the
// raw duplex document channel backing collabroom.Registry.
type CollaborationHandler struct {
	rooms  *collabroom.Registry
	logger *slog.Logger
}

func NewCollaborationHandler(rooms *collabroom.Registry, logger *slog.Logger) *CollaborationHandler {
	return &CollaborationHandler{rooms: rooms, logger: logger}
}

func (h *CollaborationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	shopperID := chi.URLParam(r, "shopperId")
	if shopperID == "" {
		http.Error(w, "shopperId is required", http.StatusBadRequest)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WS_UPGRADE_FAILED", slog.Any("err", err))
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := transport.NewConnector[[]byte](ctx, outboundBuffer)
	defer conn.Close()

	go pumpWrites(ws, conn.Recv(), h.logger)

	leave := h.rooms.Join(ctx, shopperID, conn)
	defer leave()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}
		h.rooms.Publish(ctx, shopperID, conn.ID(), raw)
	}
}
