// Package queue implements the queue service: a thin façade over the
// store that adds the side effects — sending the shopper a reply frame
// and triggering a broadcast — that every endpoint would otherwise have
// to duplicate.
package queue

import (
	"context"
	"time"

	"github.com/webitel/floorqueue/internal/domainerr"
	"github.com/webitel/floorqueue/internal/eventbus"
	"github.com/webitel/floorqueue/internal/model"
	"github.com/webitel/floorqueue/internal/store"
	"github.com/webitel/floorqueue/internal/transport"
)

const sendTimeout = 250 * time.Millisecond

type Service struct {
	store *store.Store
	bus   *eventbus.Bus
}

func New(st *store.Store, bus *eventbus.Bus) *Service {
	return &Service{store: st, bus: bus}
}

// ShopperJoined records a new or reconnecting shopper and broadcasts the
// updated queue.
func (s *Service) ShopperJoined(ctx context.Context, shopperID string, conn transport.Connector[model.ShopperOutbound], hasMic bool, caps model.MediaCapabilities) {
	s.store.UpsertShopper(shopperID, conn, hasMic, caps)
	position := s.store.PositionOf(shopperID)

	conn.Send(ctx, model.ShopperOutbound{
		Type:          model.TypeQueueJoined,
		ShopperID:     shopperID,
		Position:      position,
		HasMicrophone: hasMic,
	}, sendTimeout)

	s.bus.PublishQueueChanged()
}

// ShopperLeft removes a shopper from the queue entirely. Idempotent: a
// second call against an already-removed shopper returns false and does
// not broadcast.
func (s *Service) ShopperLeft(ctx context.Context, shopperID string) bool {
	entry, existed := s.store.GetShopper(shopperID)
	if !existed {
		return false
	}
	if !s.store.RemoveShopper(shopperID) {
		return false
	}
	if entry.AssignedRepID != "" {
		s.store.EndCollab(shopperID, entry.AssignedRepID)
	}
	if entry.Conn != nil {
		entry.Conn.Send(ctx, model.ShopperOutbound{Type: model.TypeQueueLeft, ShopperID: shopperID}, sendTimeout)
	}
	s.bus.PublishQueueChanged()
	return true
}

// ShopperDisconnected marks a shopper offline without removing it. The
// entry stays so representatives see it as offline.
func (s *Service) ShopperDisconnected(shopperID string) {
	if _, ok := s.store.MarkShopperDisconnected(shopperID); ok {
		s.bus.PublishQueueChanged()
	}
}

// Claim assigns a shopper to a representative and notifies the shopper.
func (s *Service) Claim(ctx context.Context, shopperID, repID string, sdpOffer any) (model.ShopperEntry, error) {
	entry, err := s.store.Assign(shopperID, repID)
	if err != nil {
		return model.ShopperEntry{}, err
	}

	if entry.Conn != nil {
		entry.Conn.Send(ctx, model.ShopperOutbound{
			Type:       model.TypeCallAnswered,
			SalesRepID: repID,
			SDPOffer:   sdpOffer,
		}, sendTimeout)
	}

	s.bus.PublishQueueChanged()
	return entry, nil
}

// Release releases the assignment, tells the shopper its new queue
// position, and transitions any collaboration session for this pair to
// ended.
func (s *Service) Release(ctx context.Context, shopperID string) (model.ShopperEntry, string, error) {
	entry, previousRepID, ok := s.store.Release(shopperID)
	if !ok {
		return model.ShopperEntry{}, "", domainerr.NotFoundf("shopper %q not found", shopperID)
	}

	if previousRepID != "" {
		s.store.EndCollab(shopperID, previousRepID)
	}

	if entry.Conn != nil {
		position := s.store.PositionOf(shopperID)
		entry.Conn.Send(ctx, model.ShopperOutbound{
			Type:               model.TypeCallReleased,
			PreviousSalesRepID: previousRepID,
			Position:           position,
		}, sendTimeout)
	}

	s.bus.PublishQueueChanged()
	return entry, previousRepID, nil
}
