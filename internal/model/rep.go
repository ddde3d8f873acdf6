package model

import (
	"time"

	"github.com/webitel/floorqueue/internal/transport"
)

// RepConnection is one per currently-connected representative.
type RepConnection struct {
	RepID       string
	Conn        transport.Connector[RepOutbound]
	ConnectedAt time.Time
}
