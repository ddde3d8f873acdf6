// Package collabroom implements the collaboration document endpoint: one
// room per shopper id, forwarding opaque collaborative-document update
// payloads between the participants connected to that room, and
// fast-forwarding late joiners with the accumulated document.
//
// This is a hub-of-rooms shape keyed by shopper id instead of by a single
// user's identity, because a document room multiplexes two *different*
// identities (a shopper and whichever rep it accepted) rather than one
// identity's multiple devices.
package collabroom

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/webitel/floorqueue/internal/transport"
)

const sendTimeout = 250 * time.Millisecond

// Registry owns every live room, keyed by shopper id.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*room)}
}

type participant struct {
	id   uuid.UUID
	conn transport.Connector[[]byte]
}

type room struct {
	mu           sync.Mutex
	participants map[uuid.UUID]participant
	// document accumulates every update seen so far so a later joiner can
	// be fast-forwarded. The CRDT engine inside each client is the
	// authority on merge semantics; this is just the catch-up transcript.
	document [][]byte
}

// Join registers conn as a participant of the room named shopperID,
// fast-forwards it with the room's accumulated document, and returns a
// leave function the caller must invoke on disconnect.
func (r *Registry) Join(ctx context.Context, shopperID string, conn transport.Connector[[]byte]) (leave func()) {
	r.mu.Lock()
	rm, ok := r.rooms[shopperID]
	if !ok {
		rm = &room{participants: make(map[uuid.UUID]participant)}
		r.rooms[shopperID] = rm
	}
	r.mu.Unlock()

	p := participant{id: conn.ID(), conn: conn}

	rm.mu.Lock()
	for _, update := range rm.document {
		conn.Send(ctx, update, sendTimeout)
	}
	rm.participants[p.id] = p
	rm.mu.Unlock()

	return func() {
		r.leave(shopperID, p.id)
	}
}

// Publish forwards an update from sender to every other participant of the
// room and appends it to the catch-up transcript.
func (r *Registry) Publish(ctx context.Context, shopperID string, senderID uuid.UUID, update []byte) {
	r.mu.Lock()
	rm, ok := r.rooms[shopperID]
	r.mu.Unlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	rm.document = append(rm.document, update)
	recipients := make([]participant, 0, len(rm.participants))
	for id, p := range rm.participants {
		if id == senderID {
			continue
		}
		recipients = append(recipients, p)
	}
	rm.mu.Unlock()

	for _, p := range recipients {
		p.conn.Send(ctx, update, sendTimeout)
	}
}

// leave removes a participant and tears the room down once it is empty.
func (r *Registry) leave(shopperID string, participantID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rm, ok := r.rooms[shopperID]
	if !ok {
		return
	}

	rm.mu.Lock()
	delete(rm.participants, participantID)
	empty := len(rm.participants) == 0
	rm.mu.Unlock()

	if empty {
		delete(r.rooms, shopperID)
	}
}
