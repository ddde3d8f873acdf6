// Package wsapi hosts the three duplex endpoints over gorilla/websocket,
// mounted on a chi router under /api. Each handler follows the same
// shape: upgrade, register a Connector, spawn a write pump draining it,
// then run a single-threaded read loop dispatching on the frame's "type"
// discriminator.
package wsapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/webitel/floorqueue/internal/domainerr"
	"github.com/webitel/floorqueue/internal/model"
	"github.com/webitel/floorqueue/internal/queue"
	"github.com/webitel/floorqueue/internal/store"
	"github.com/webitel/floorqueue/internal/transport"
)

const (
	outboundBuffer = 64
	writeTimeout   = 250 * time.Millisecond
)

var upgrader = websocket.Upgrader{
	// Identity is self-declared and unauthenticated throughout this system;
	// the origin check is correspondingly permissive.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ShopperHandler serves path /api/ws/call.
type ShopperHandler struct {
	store  *store.Store
	queue  *queue.Service
	logger *slog.Logger
}

func NewShopperHandler(st *store.Store, q *queue.Service, logger *slog.Logger) *ShopperHandler {
	return &ShopperHandler{store: st, queue: q, logger: logger}
}

func (h *ShopperHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("WS_UPGRADE_FAILED", slog.Any("err", err))
		return
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn := transport.NewConnector[model.ShopperOutbound](ctx, outboundBuffer)
	defer conn.Close()

	go pumpWrites(ws, conn.Recv(), h.logger)

	conn.Send(ctx, model.ShopperOutbound{Type: model.TypeConnected, Message: "shopper channel ready"}, writeTimeout)

	var boundShopperID string
	defer func() {
		if boundShopperID != "" {
			h.queue.ShopperDisconnected(boundShopperID)
		}
	}()

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return
		}

		var header model.RawFrame
		if err := json.Unmarshal(raw, &header); err != nil {
			conn.Send(ctx, errFrameShopper("Invalid message format"), writeTimeout)
			continue
		}

		switch header.Type {
		case model.TypeJoinQueue:
			var f model.JoinQueueFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.ShopperID == "" {
				conn.Send(ctx, errFrameShopper("Invalid message format"), writeTimeout)
				continue
			}
			boundShopperID = f.ShopperID
			hasMic, _ := f.MediaCapabilities["hasAudioInput"].(bool)
			h.queue.ShopperJoined(ctx, f.ShopperID, conn, hasMic, f.MediaCapabilities)

		case model.TypeLeaveQueue:
			var f model.LeaveQueueFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.ShopperID == "" {
				conn.Send(ctx, errFrameShopper("Invalid message format"), writeTimeout)
				continue
			}
			h.queue.ShopperLeft(ctx, f.ShopperID)

		case model.TypeSDPAnswer:
			var f model.SDPAnswerFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.ShopperID == "" {
				conn.Send(ctx, errFrameShopper("Invalid message format"), writeTimeout)
				continue
			}
			h.forwardToRep(ctx, conn, f.ShopperID, model.RepOutbound{
				Type: model.TypeSDPAnswer, ShopperID: f.ShopperID, SDPAnswer: f.SDPAnswer,
			})

		case model.TypeICECandidate:
			var f model.ICECandidateInFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.ShopperID == "" {
				conn.Send(ctx, errFrameShopper("Invalid message format"), writeTimeout)
				continue
			}
			h.forwardToRep(ctx, conn, f.ShopperID, model.RepOutbound{
				Type: model.TypeICECandidate, ShopperID: f.ShopperID, ICECandidate: f.ICECandidate,
			})

		case model.TypeEndCall:
			var f model.EndCallFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.ShopperID == "" {
				conn.Send(ctx, errFrameShopper("Invalid message format"), writeTimeout)
				continue
			}
			h.handleEndCall(ctx, conn, f.ShopperID)

		case model.TypeCollaborationResp:
			var f model.CollaborationResponseFrame
			if err := json.Unmarshal(raw, &f); err != nil || f.ShopperID == "" || f.SalesRepID == "" {
				conn.Send(ctx, errFrameShopper("Invalid message format"), writeTimeout)
				continue
			}
			h.handleCollaborationResponse(ctx, conn, f)

		default:
			h.logger.Warn("UNKNOWN_FRAME_TYPE", slog.String("type", header.Type))
		}
	}
}

func (h *ShopperHandler) forwardToRep(ctx context.Context, shopperConn transport.Connector[model.ShopperOutbound], shopperID string, frame model.RepOutbound) {
	entry, ok := h.store.GetShopper(shopperID)
	if !ok || entry.AssignedRepID == "" {
		shopperConn.Send(ctx, errFrameShopper("shopper is not currently assigned to a representative"), writeTimeout)
		return
	}
	repConn, ok := h.store.RepConn(entry.AssignedRepID)
	if !ok || repConn == nil {
		shopperConn.Send(ctx, errFrameShopper("representative is unavailable"), writeTimeout)
		return
	}
	if !repConn.Send(ctx, frame, writeTimeout) {
		h.logger.Warn("DOWNSTREAM_WRITE_FAILED", slog.String("rep_id", entry.AssignedRepID))
		shopperConn.Send(ctx, errFrameShopper("representative connection is unavailable"), writeTimeout)
	}
}

func (h *ShopperHandler) handleEndCall(ctx context.Context, conn transport.Connector[model.ShopperOutbound], shopperID string) {
	_, previousRepID, err := h.queue.Release(ctx, shopperID)
	if err != nil {
		conn.Send(ctx, toShopperError(err), writeTimeout)
		return
	}
	if previousRepID != "" {
		if repConn, ok := h.store.RepConn(previousRepID); ok && repConn != nil {
			repConn.Send(ctx, model.RepOutbound{Type: model.TypeCallEndedByShopper, ShopperID: shopperID}, writeTimeout)
		}
	}
	conn.Send(ctx, model.ShopperOutbound{Type: model.TypeCallEnded, ShopperID: shopperID}, writeTimeout)
}

func (h *ShopperHandler) handleCollaborationResponse(ctx context.Context, conn transport.Connector[model.ShopperOutbound], f model.CollaborationResponseFrame) {
	session, err := h.store.RespondCollab(f.ShopperID, f.SalesRepID, f.Accepted)
	if err != nil {
		conn.Send(ctx, toShopperError(err), writeTimeout)
		return
	}
	conn.Send(ctx, model.ShopperOutbound{Type: model.TypeCollaborationStatus, Status: string(session.Status)}, writeTimeout)
	if repConn, ok := h.store.RepConn(f.SalesRepID); ok && repConn != nil {
		repConn.Send(ctx, model.RepOutbound{Type: model.TypeCollaborationStatus, Status: string(session.Status)}, writeTimeout)
	}
}

func errFrameShopper(msg string) model.ShopperOutbound {
	return model.ShopperOutbound{Type: model.TypeError, Message: msg}
}

func toShopperError(err error) model.ShopperOutbound {
	if de, ok := err.(*domainerr.Error); ok {
		return model.ShopperOutbound{Type: model.TypeError, Message: de.Message}
	}
	return model.ShopperOutbound{Type: model.TypeError, Message: err.Error()}
}

func toRepError(err error) model.RepOutbound {
	if de, ok := err.(*domainerr.Error); ok {
		return model.RepOutbound{Type: model.TypeError, Message: de.Message}
	}
	return model.RepOutbound{Type: model.TypeError, Message: err.Error()}
}

// pumpWrites drains an outbound channel onto a websocket connection. Raw
// []byte frames (the collaboration document channel) are forwarded as
// binary messages, unmodified; everything else is JSON-encoded. A write
// failure ends the pump; the endpoint's read loop notices the dead socket
// on its next ReadMessage and tears down.
func pumpWrites[T any](ws *websocket.Conn, out <-chan T, logger *slog.Logger) {
	for frame := range out {
		var err error
		if raw, ok := any(frame).([]byte); ok {
			err = ws.WriteMessage(websocket.BinaryMessage, raw)
		} else {
			err = ws.WriteJSON(frame)
		}
		if err != nil {
			logger.Warn("WS_WRITE_FAILED", slog.Any("err", err))
			return
		}
	}
}
