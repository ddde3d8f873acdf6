// Package store implements the single in-memory registry of shopper
// entries, representative connections, and collaboration sessions. It
// uses one mutex-guarded struct covering all three tables rather than a
// per-entity actor shard, since every operation here must be atomic with
// respect to every other one (claim/release races across shoppers and
// reps, not just within one shopper).
package store

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/webitel/floorqueue/internal/domainerr"
	"github.com/webitel/floorqueue/internal/model"
	"github.com/webitel/floorqueue/internal/transport"
)

// Store is the authoritative registry. All mutations go through its
// methods; no caller is allowed to hold a pointer to an entry across a
// suspension point.
type Store struct {
	mu       sync.Mutex
	shoppers map[string]*model.ShopperEntry
	reps     map[string]*model.RepConnection
	collab   map[model.CollabKey]*model.CollabSession

	now func() time.Time
}

func New() *Store {
	return &Store{
		shoppers: make(map[string]*model.ShopperEntry),
		reps:     make(map[string]*model.RepConnection),
		collab:   make(map[model.CollabKey]*model.CollabSession),
		now:      time.Now,
	}
}

// UpsertShopper inserts a new shopper entry or, if one already exists,
// refreshes its connection and capabilities without rewriting connectedAt.
func (s *Store) UpsertShopper(shopperID string, conn transport.Connector[model.ShopperOutbound], hasMic bool, caps model.MediaCapabilities) model.ShopperEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.shoppers[shopperID]
	if !ok {
		entry = &model.ShopperEntry{
			ShopperID:   shopperID,
			ConnectedAt: s.now(),
		}
		s.shoppers[shopperID] = entry
	}
	entry.Conn = conn
	entry.DisconnectedAt = nil
	entry.HasMicrophone = hasMic
	if caps != nil {
		entry.MediaCaps = caps
	}
	return entry.Clone()
}

// MarkShopperDisconnected flags a shopper's connection as gone without
// removing the entry. assignedRepId is deliberately left untouched —
// releasing an assignment is always an explicit, separate operation.
func (s *Store) MarkShopperDisconnected(shopperID string) (model.ShopperEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.shoppers[shopperID]
	if !ok {
		return model.ShopperEntry{}, false
	}
	entry.Conn = nil
	now := s.now()
	entry.DisconnectedAt = &now
	return entry.Clone(), true
}

// RemoveShopper deletes the entry outright. The caller is responsible for
// transitioning any related collaboration session to ended; the store
// does not infer that here.
func (s *Store) RemoveShopper(shopperID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shoppers[shopperID]; !ok {
		return false
	}
	delete(s.shoppers, shopperID)
	return true
}

// GetShopper returns a snapshot copy of the entry, or false if absent.
func (s *Store) GetShopper(shopperID string) (model.ShopperEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.shoppers[shopperID]
	if !ok {
		return model.ShopperEntry{}, false
	}
	return entry.Clone(), true
}

// RegisterRep adds or replaces a representative's live connection.
func (s *Store) RegisterRep(repID string, conn transport.Connector[model.RepOutbound]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reps[repID] = &model.RepConnection{
		RepID:       repID,
		Conn:        conn,
		ConnectedAt: s.now(),
	}
}

// UnregisterRep drops a representative's live connection. Any shopper
// entry that still points at repID keeps assignedRepId set — a
// representative disconnecting mid-call is an acknowledged gap the core
// does not self-heal.
func (s *Store) UnregisterRep(repID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.reps, repID)
}

// GetRepBusy reports the shopper currently assigned to repID, if any. A
// linear scan, acceptable because typical rep counts are small.
func (s *Store) GetRepBusy(repID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.shoppers {
		if entry.AssignedRepID == repID {
			return entry.ShopperID, true
		}
	}
	return "", false
}

// Assign claims shopperID for repID, enforcing that a shopper already
// claimed by someone else is rejected and that a representative cannot
// hold two shoppers at once.
func (s *Store) Assign(shopperID, repID string) (model.ShopperEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.shoppers[shopperID]
	if !ok {
		return model.ShopperEntry{}, domainerr.NotFoundf("shopper %q not found", shopperID)
	}
	if entry.AssignedRepID != "" && entry.AssignedRepID != repID {
		return model.ShopperEntry{}, domainerr.AlreadyClaimedf("shopper %q already claimed by %q", shopperID, entry.AssignedRepID)
	}
	for _, other := range s.shoppers {
		if other.ShopperID != shopperID && other.AssignedRepID == repID {
			return model.ShopperEntry{}, domainerr.RepBusyf("representative %q already handling %q", repID, other.ShopperID)
		}
	}
	entry.AssignedRepID = repID
	return entry.Clone(), nil
}

// Release clears a shopper's assignment, returning the prior rep id so
// the caller can fabricate the downstream notification.
func (s *Store) Release(shopperID string) (model.ShopperEntry, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.shoppers[shopperID]
	if !ok {
		return model.ShopperEntry{}, "", false
	}
	previous := entry.AssignedRepID
	entry.AssignedRepID = ""
	return entry.Clone(), previous, true
}

// SnapshotQueue returns every shopper entry projected for representatives,
// ordered by connectedAt ascending.
func (s *Store) SnapshotQueue() []model.QueueSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []model.QueueSummary {
	now := s.now()
	out := make([]model.QueueSummary, 0, len(s.shoppers))
	for _, entry := range s.shoppers {
		summary := model.QueueSummary{
			ShopperID:     entry.ShopperID,
			ConnectedAt:   entry.ConnectedAt.UnixMilli(),
			IsConnected:   entry.IsConnected(),
			AssignedRepID: entry.AssignedRepID,
			HasMicrophone: entry.HasMicrophone,
		}
		if entry.DisconnectedAt != nil {
			ms := entry.DisconnectedAt.UnixMilli()
			summary.DisconnectedAt = &ms
			secs := int64(now.Sub(*entry.DisconnectedAt).Seconds())
			summary.TimeSinceDisconnectedSeconds = &secs
		}
		out = append(out, summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConnectedAt < out[j].ConnectedAt })
	return out
}

// PositionOf returns the 1-based rank among currently-connected,
// unassigned entries ordered by connectedAt ascending, or 0 if shopperID
// is not in that set.
func (s *Store) PositionOf(shopperID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.positionOfLocked(shopperID)
}

func (s *Store) positionOfLocked(shopperID string) int {
	type waiter struct {
		id          string
		connectedAt time.Time
	}
	var waiting []waiter
	for _, entry := range s.shoppers {
		if entry.IsConnected() && entry.AssignedRepID == "" {
			waiting = append(waiting, waiter{entry.ShopperID, entry.ConnectedAt})
		}
	}
	sort.Slice(waiting, func(i, j int) bool { return waiting[i].connectedAt.Before(waiting[j].connectedAt) })
	for i, w := range waiting {
		if w.id == shopperID {
			return i + 1
		}
	}
	return 0
}

// RequestCollab opens a pending collaboration session for an
// already-assigned (shopper, rep) pair.
func (s *Store) RequestCollab(shopperID, repID string) (model.CollabSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.shoppers[shopperID]
	if !ok || entry.AssignedRepID != repID {
		return model.CollabSession{}, domainerr.Unauthorizedf("shopper %q is not assigned to %q", shopperID, repID)
	}
	key := model.CollabKey{RepID: repID, ShopperID: shopperID}
	if existing, ok := s.collab[key]; ok && existing.Status == model.CollabPending {
		return model.CollabSession{}, errors.Errorf("collaboration already pending for %+v", key)
	}
	session := &model.CollabSession{
		Key:         key,
		Status:      model.CollabPending,
		RequestedAt: s.now(),
	}
	s.collab[key] = session
	return *session, nil
}

// RespondCollab resolves a pending collaboration session to accepted or
// rejected.
func (s *Store) RespondCollab(shopperID, repID string, accepted bool) (model.CollabSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.CollabKey{RepID: repID, ShopperID: shopperID}
	session, ok := s.collab[key]
	if !ok || session.Status != model.CollabPending {
		return model.CollabSession{}, domainerr.NotFoundf("no pending collaboration for %+v", key)
	}
	if accepted {
		session.Status = model.CollabAccepted
	} else {
		session.Status = model.CollabRejected
	}
	now := s.now()
	session.RespondedAt = &now
	return *session, nil
}

// EndCollab transitions a collaboration session to ended.
func (s *Store) EndCollab(shopperID, repID string) (model.CollabSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := model.CollabKey{RepID: repID, ShopperID: shopperID}
	session, ok := s.collab[key]
	if !ok {
		return model.CollabSession{}, false
	}
	session.Status = model.CollabEnded
	return *session, true
}

// GetCollab returns the current collaboration session for a (shopper,
// rep) pair, if one exists.
func (s *Store) GetCollab(shopperID, repID string) (model.CollabSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.collab[model.CollabKey{RepID: repID, ShopperID: shopperID}]
	if !ok {
		return model.CollabSession{}, false
	}
	return *session, true
}

// EvictStaleShoppers removes every disconnected entry whose grace window
// has elapsed. Returns the removed ids so the caller can decide whether
// to broadcast.
func (s *Store) EvictStaleShoppers(grace time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed []string
	for id, entry := range s.shoppers {
		if entry.IsConnected() || entry.DisconnectedAt == nil {
			continue
		}
		if now.Sub(*entry.DisconnectedAt) > grace {
			delete(s.shoppers, id)
			removed = append(removed, id)
		}
	}
	return removed
}

// EvictExpiredCollab deletes every pending collaboration session older
// than ttl.
func (s *Store) EvictExpiredCollab(ttl time.Duration) []model.CollabKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var removed []model.CollabKey
	for key, session := range s.collab {
		if session.Status == model.CollabPending && now.Sub(session.RequestedAt) > ttl {
			delete(s.collab, key)
			removed = append(removed, key)
		}
	}
	return removed
}

// RepConn returns the live connector for repID, if registered.
func (s *Store) RepConn(repID string) (transport.Connector[model.RepOutbound], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep, ok := s.reps[repID]
	if !ok {
		return nil, false
	}
	return rep.Conn, true
}

// AllRepConns returns a snapshot slice of every registered rep connector,
// used by the broadcaster's fan-out.
func (s *Store) AllRepConns() []transport.Connector[model.RepOutbound] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]transport.Connector[model.RepOutbound], 0, len(s.reps))
	for _, rep := range s.reps {
		out = append(out, rep.Conn)
	}
	return out
}

// Stats returns an additive admin/ops projection, not part of the client
// wire protocol.
func (s *Store) Stats() model.HubStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := model.HubStats{Representatives: len(s.reps), TotalShoppers: len(s.shoppers)}
	for _, entry := range s.shoppers {
		if entry.IsConnected() {
			stats.ConnectedShoppers++
		}
		if entry.AssignedRepID != "" {
			stats.AssignedShoppers++
		} else if entry.IsConnected() {
			stats.WaitingShoppers++
		}
	}
	return stats
}
