package model

import "time"

// CollabStatus is the collaboration session state machine.
type CollabStatus string

const (
	CollabPending  CollabStatus = "pending"
	CollabAccepted CollabStatus = "accepted"
	CollabRejected CollabStatus = "rejected"
	CollabEnded    CollabStatus = "ended"
)

// CollabKey identifies a collaboration session by its (rep, shopper) pair.
type CollabKey struct {
	RepID     string
	ShopperID string
}

// CollabSession is one per (repId, shopperId) pair that has ever requested
// collaboration. A session moves pending -> accepted/rejected -> ended and
// is never resurrected once ended; a fresh request starts a new session.
type CollabSession struct {
	Key         CollabKey
	Status      CollabStatus
	RequestedAt time.Time
	RespondedAt *time.Time
}
