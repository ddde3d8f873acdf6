// Package model holds the data shapes shared by the store, the queue
// service, and every endpoint: shopper entries, representative
// connections, collaboration sessions, and the derived queue snapshot.
package model

import (
	"time"

	"github.com/webitel/floorqueue/internal/transport"
)

// MediaCapabilities is the opaque capability record a shopper reports on
// join. The core never interprets it beyond forwarding it verbatim.
type MediaCapabilities map[string]any

// ShopperEntry is one per shopper identifier ever seen this process
// lifetime. AssignedRepID is cleared only by an explicit release, never by
// disconnect or rep teardown alone. HasMicrophone is overwritten on every
// join; MediaCaps is kept across a reconnect that reports none.
type ShopperEntry struct {
	ShopperID        string
	Conn             transport.Connector[ShopperOutbound]
	ConnectedAt      time.Time
	DisconnectedAt   *time.Time
	AssignedRepID    string
	HasMicrophone    bool
	MediaCaps        MediaCapabilities
}

// IsConnected mirrors whether Conn is live. Kept as a method rather than a
// stored bool so (I3) can never drift out of sync with Conn/DisconnectedAt.
func (s *ShopperEntry) IsConnected() bool {
	return s.Conn != nil
}

// Clone returns a value copy safe to hand outside the store's lock.
func (s *ShopperEntry) Clone() ShopperEntry {
	cp := *s
	if s.DisconnectedAt != nil {
		d := *s.DisconnectedAt
		cp.DisconnectedAt = &d
	}
	return cp
}
