package broadcaster

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/floorqueue/internal/eventbus"
	"github.com/webitel/floorqueue/internal/model"
	"github.com/webitel/floorqueue/internal/store"
	"github.com/webitel/floorqueue/internal/transport"
)

func TestBroadcaster_SendsSnapshotOnTrigger(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger)
	st := store.New()
	b := New(st, bus, logger)

	conn := transport.NewConnector[model.RepOutbound](context.Background(), 4)
	st.RegisterRep("rep-1", conn)
	st.UpsertShopper("shopper-1", nil, false, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	time.Sleep(50 * time.Millisecond) // let Run subscribe before we publish

	bus.PublishQueueChanged()

	select {
	case frame := <-conn.Recv():
		assert.Equal(t, model.TypeQueueUpdate, frame.Type)
		assert.Len(t, frame.Queue, 1)
	case <-time.After(time.Second):
		t.Fatal("expected a queue_update broadcast")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestBroadcaster_CoalescesBurstIntoOneSnapshot(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger)
	st := store.New()
	b := New(st, bus, logger)

	conn := transport.NewConnector[model.RepOutbound](context.Background(), 8)
	st.RegisterRep("rep-1", conn)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)
	time.Sleep(50 * time.Millisecond) // let Run subscribe before we publish

	for range 5 {
		bus.PublishQueueChanged()
	}

	select {
	case <-conn.Recv():
	case <-time.After(time.Second):
		t.Fatal("expected at least one broadcast")
	}

	select {
	case extra := <-conn.Recv():
		t.Fatalf("expected the burst to coalesce into one broadcast, got a second: %+v", extra)
	case <-time.After(200 * time.Millisecond):
	}
}
