// Package eventbus decouples the components that change queue-observable
// state (the queue service, the janitor) from the fan-out broadcaster
// that reacts to those changes. Instead of every mutator reaching into
// the broadcaster directly, mutators publish a topic and the broadcaster
// subscribes — using watermill's gochannel transport rather than its AMQP
// transport, since this system runs single-process with no horizontal
// scale-out.
package eventbus

import (
	"context"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// TopicQueueChanged carries a signal (empty payload) every time a store
// mutation changes what a representative's queue_update should show.
const TopicQueueChanged = "queue.changed"

// Bus wraps a gochannel pub/sub pair scoped to the process lifetime.
type Bus struct {
	pubsub *gochannel.GoChannel
}

func New(logger *slog.Logger) *Bus {
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            256,
				Persistent:                     false,
				BlockPublishUntilSubscriberAck: false,
			},
			watermill.NewSlogLogger(logger),
		),
	}
}

// PublishQueueChanged signals that a representative-visible state change
// occurred. Publish failures are swallowed, never propagated: a broadcast
// trigger is best-effort infrastructure, not part of the operation that
// triggered it.
func (b *Bus) PublishQueueChanged() {
	msg := message.NewMessage(watermill.NewUUID(), nil)
	_ = b.pubsub.Publish(TopicQueueChanged, msg)
}

// SubscribeQueueChanged returns the channel the broadcaster drains.
func (b *Bus) SubscribeQueueChanged(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicQueueChanged)
}

func (b *Bus) Close() error {
	return b.pubsub.Close()
}
