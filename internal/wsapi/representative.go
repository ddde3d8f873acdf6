package wsapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/webitel/floorqueue/internal/model"
	"github.com/webitel/floorqueue/internal/queue"
	"github.com/webitel/floorqueue/internal/store"
	"github.com/webitel/floorqueue/internal/transport"
)

// RepresentativeHandler serves path /api/ws/calls/monitor.
type RepresentativeHandler struct {
	store  *store.Store
	queue  *queue.Service
	logger *slog.Logger
}

func NewRepresentativeHandler(st *store.Store, q *queue.Service, logger *slog.Logger) *RepresentativeHandler {
	return &RepresentativeHandler{store: st, queue: q, logger: logger}
}

func (h *RepresentativeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WS_UPGRADE_FAILED", slog.Any("err", err))
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := transport.NewConnector[model.RepOutbound](ctx, outboundBuffer)
	defer conn.Close()

	go pumpWrites(ws, conn.Recv(), h.logger)

	var boundRepID string
	defer func() {
		if boundRepID != "" {
			h.store.UnregisterRep(boundRepID)
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var header model.RawFrame
		if err := json.Unmarshal(raw, &header); err != nil {
			conn.Send(ctx, errFrameRep("Invalid message format"), writeTimeout)
			continue
		}

		switch header.Type {
		case model.TypeConnect:
			var f model.ConnectFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.SalesRepID == "" {
				conn.Send(ctx, errFrameRep("Invalid message format"), writeTimeout)
				continue
			}
			boundRepID = f.SalesRepID
			h.store.RegisterRep(f.SalesRepID, conn)
			conn.Send(ctx, model.RepOutbound{Type: model.TypeConnected, SalesRepID: f.SalesRepID}, writeTimeout)
			conn.Send(ctx, model.RepOutbound{Type: model.TypeQueueUpdate, Queue: h.store.SnapshotQueue()}, writeTimeout)

		case model.TypeClaimCall:
			var f model.ClaimCallFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.ShopperID == "" || f.SalesRepID == "" {
				conn.Send(ctx, errFrameRep("Invalid message format"), writeTimeout)
				continue
			}
			if _, err := h.queue.Claim(ctx, f.ShopperID, f.SalesRepID, f.SDPOffer); err != nil {
				conn.Send(ctx, toRepError(err), writeTimeout)
				continue
			}
			conn.Send(ctx, model.RepOutbound{Type: model.TypeCallClaimed, ShopperID: f.ShopperID}, writeTimeout)

		case model.TypeReleaseCall:
			var f model.ReleaseCallFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.ShopperID == "" {
				conn.Send(ctx, errFrameRep("Invalid message format"), writeTimeout)
				continue
			}
			_, _, err := h.queue.Release(ctx, f.ShopperID)
			if err != nil {
				conn.Send(ctx, toRepError(err), writeTimeout)
				continue
			}
			conn.Send(ctx, model.RepOutbound{
				Type:      model.TypeCallReleased,
				ShopperID: f.ShopperID,
				Position:  h.store.PositionOf(f.ShopperID),
			}, writeTimeout)

		case model.TypeICECandidate:
			var f model.ICECandidateInFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.ShopperID == "" {
				conn.Send(ctx, errFrameRep("Invalid message format"), writeTimeout)
				continue
			}
			h.forwardToShopper(ctx, conn, boundRepID, f.ShopperID, model.ShopperOutbound{
				Type: model.TypeICECandidate, ICECandidate: f.ICECandidate,
			})

		case model.TypeRequestCollaboration:
			var f model.RequestCollaborationFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.ShopperID == "" || f.SalesRepID == "" {
				conn.Send(ctx, errFrameRep("Invalid message format"), writeTimeout)
				continue
			}
			h.handleRequestCollaboration(ctx, conn, f)

		default:
			h.logger.Warn("UNKNOWN_FRAME_TYPE", slog.String("type", header.Type))
		}
	}
}

func (h *RepresentativeHandler) forwardToShopper(ctx context.Context, repConn transport.Connector[model.RepOutbound], boundRepID, shopperID string, frame model.ShopperOutbound) {
	entry, ok := h.store.GetShopper(shopperID)
	if !ok || entry.AssignedRepID != boundRepID {
		repConn.Send(ctx, errFrameRep("shopper is not assigned to this representative"), writeTimeout)
		return
	}
	if entry.Conn == nil || !entry.Conn.Send(ctx, frame, writeTimeout) {
		h.logger.Warn("DOWNSTREAM_WRITE_FAILED", slog.String("shopper_id", shopperID))
		repConn.Send(ctx, errFrameRep("shopper connection is unavailable"), writeTimeout)
	}
}

func (h *RepresentativeHandler) handleRequestCollaboration(ctx context.Context, conn transport.Connector[model.RepOutbound], f model.RequestCollaborationFrame) {
	session, err := h.store.RequestCollab(f.ShopperID, f.SalesRepID)
	if err != nil {
		conn.Send(ctx, toRepError(err), writeTimeout)
		return
	}

	conn.Send(ctx, model.RepOutbound{Type: model.TypeCollaborationStatus, ShopperID: f.ShopperID, Status: string(session.Status)}, writeTimeout)

	entry, ok := h.store.GetShopper(f.ShopperID)
	if ok && entry.Conn != nil {
		entry.Conn.Send(ctx, model.ShopperOutbound{
			Type:       model.TypeCollaborationRequest,
			SalesRepID: f.SalesRepID,
			SalesRepName: repDisplayName(f.SalesRepID),
		}, writeTimeout)
	}
}

// repDisplayName stands in for the directory lookup a real identity
// service would provide; this system never authenticates or enriches
// representative identity beyond the self-declared id.
func repDisplayName(repID string) string {
	return "Sales Rep " + repID
}

func errFrameRep(msg string) model.RepOutbound {
	return model.RepOutbound{Type: model.TypeError, Message: msg}
}
