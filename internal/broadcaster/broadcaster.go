// Package broadcaster implements the fan-out broadcaster: on every
// queue-changing trigger it computes one snapshot and pushes it to every
// registered representative connection.
//
// The drain loop wakes on the first signal, then keeps absorbing signals
// that arrive within drainWindow of the previous one, so that N triggers
// fired within one busy window collapse into a single snapshot+fan-out.
// Broadcast frames
// may be coalesced this way, but every state change is still followed by
// at least one broadcast reflecting the post-change state.
package broadcaster

import (
	"context"
	"log/slog"
	"time"

	"github.com/webitel/floorqueue/internal/eventbus"
	"github.com/webitel/floorqueue/internal/model"
	"github.com/webitel/floorqueue/internal/store"
)

// maxDrainBurst bounds how many further signals one wake cycle absorbs
// before it broadcasts.
const maxDrainBurst = 64

// drainWindow is how long the drain loop waits for the next signal. The
// gochannel subscription hands over a message only after the previous one
// is acked, so a burst arrives one message at a time, not all at once.
const drainWindow = 10 * time.Millisecond

type Broadcaster struct {
	store    *store.Store
	bus      *eventbus.Bus
	logger   *slog.Logger
	sendWait time.Duration
}

func New(st *store.Store, bus *eventbus.Bus, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		store:    st,
		bus:      bus,
		logger:   logger,
		sendWait: 250 * time.Millisecond,
	}
}

// Run blocks draining queue-changed signals until ctx is canceled. Call it
// from its own goroutine.
func (b *Broadcaster) Run(ctx context.Context) error {
	sub, err := b.bus.SubscribeQueueChanged(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub:
			if !ok {
				return nil
			}
			msg.Ack()

		drain:
			for range maxDrainBurst {
				select {
				case next, ok := <-sub:
					if !ok {
						break drain
					}
					next.Ack()
				case <-time.After(drainWindow):
					break drain
				}
			}

			b.broadcastOnce(ctx)
		}
	}
}

// broadcastOnce computes the queue snapshot once and best-effort-sends it
// to every registered representative.
func (b *Broadcaster) broadcastOnce(ctx context.Context) {
	snapshot := b.store.SnapshotQueue()
	frame := model.RepOutbound{Type: model.TypeQueueUpdate, Queue: snapshot}

	for _, conn := range b.store.AllRepConns() {
		if conn == nil {
			continue
		}
		if !conn.Send(ctx, frame, b.sendWait) {
			b.logger.Warn("BROADCAST_SEND_FAILED", slog.Int("queue_size", len(snapshot)))
		}
	}
}
