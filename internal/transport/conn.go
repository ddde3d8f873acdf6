// Package transport provides the duplex connection handle shared by every
// endpoint in the system: a context-scoped wrapper around a buffered
// outbound channel that turns a "send to a possibly-dead remote" into a
// bounded, best-effort operation instead of a blocking one.
package transport

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Connector is the handle the store holds for a live duplex connection.
// T is the outbound frame type; each endpoint family (shopper, rep,
// collaboration room) instantiates its own concrete frame type.
type Connector[T any] interface {
	ID() uuid.UUID
	// Send enqueues a frame for delivery, waiting up to timeout for room in
	// the outbound buffer before giving up. Returns false if the connector
	// is closed or the buffer stayed full for the whole window.
	Send(ctx context.Context, frame T, timeout time.Duration) bool
	// Recv is read by the endpoint's write pump to drain queued frames.
	Recv() <-chan T
	Close()
}

type conn[T any] struct {
	id       uuid.UUID
	sendCh   chan T
	ctx      context.Context
	cancel   context.CancelFunc
	closeOne sync.Once
}

// NewConnector creates a connector bound to ctx (typically the request or
// websocket-handler context); closing ctx implicitly fails future Sends.
func NewConnector[T any](ctx context.Context, bufferSize int) Connector[T] {
	childCtx, cancel := context.WithCancel(ctx)
	return &conn[T]{
		id:     uuid.New(),
		sendCh: make(chan T, bufferSize),
		ctx:    childCtx,
		cancel: cancel,
	}
}

func (c *conn[T]) ID() uuid.UUID { return c.id }

func (c *conn[T]) Send(ctx context.Context, frame T, timeout time.Duration) (sent bool) {
	// A Send racing Close can select the send on the just-closed channel,
	// which panics; report that as a failed send.
	defer func() {
		if recover() != nil {
			sent = false
		}
	}()
	if c.ctx.Err() != nil {
		return false
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-c.ctx.Done():
		return false
	case c.sendCh <- frame:
		return true
	case <-waitCtx.Done():
		return false
	}
}

func (c *conn[T]) Recv() <-chan T { return c.sendCh }

// Close is idempotent: calling it more than once is safe.
func (c *conn[T]) Close() {
	c.closeOne.Do(func() {
		c.cancel()
		close(c.sendCh)
	})
}
