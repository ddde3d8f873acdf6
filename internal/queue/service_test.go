package queue

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

func newTestService(t *testing.T) (*Service, *store.Store) {
	t.Helper()
	bus := eventbus.New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	st := store.New()
	return New(st, bus), st
}

func TestShopperJoined_SendsPositionAndBroadcasts(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	sub, err := svc.bus.SubscribeQueueChanged(ctx)
	require.NoError(t, err)

	conn := transport.NewConnector[model.ShopperOutbound](ctx, 4)
	svc.ShopperJoined(ctx, "shopper-1", conn, true, nil)

	select {
	case frame := <-conn.Recv():
		assert.Equal(t, model.TypeQueueJoined, frame.Type)
		assert.Equal(t, 1, frame.Position)
	case <-time.After(time.Second):
		t.Fatal("expected a queue_joined frame")
	}

	select {
	case <-sub:
	case <-time.After(time.Second):
		t.Fatal("expected a queue-changed signal")
	}

	entry, ok := st.GetShopper("shopper-1")
	require.True(t, ok)
	assert.True(t, entry.IsConnected())
}

func TestShopperLeft_IsIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	assert.False(t, svc.ShopperLeft(ctx, "ghost"))

	conn := transport.NewConnector[model.ShopperOutbound](ctx, 4)
	svc.ShopperJoined(ctx, "shopper-1", conn, false, nil)

	assert.True(t, svc.ShopperLeft(ctx, "shopper-1"))
	assert.False(t, svc.ShopperLeft(ctx, "shopper-1"))
}

func TestClaim_NotifiesShopperWithOffer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	conn := transport.NewConnector[model.ShopperOutbound](ctx, 4)
	svc.ShopperJoined(ctx, "shopper-1", conn, false, nil)

	_, err := svc.Claim(ctx, "shopper-1", "rep-1", map[string]any{"sdp": "offer"})
	require.NoError(t, err)

	select {
	case frame := <-conn.Recv():
		if frame.Type == model.TypeQueueJoined {
			frame = <-conn.Recv()
		}
		assert.Equal(t, model.TypeCallAnswered, frame.Type)
		assert.Equal(t, "rep-1", frame.SalesRepID)
	case <-time.After(time.Second):
		t.Fatal("expected a call_answered frame")
	}
}

func TestRelease_EndsCollabSession(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	conn := transport.NewConnector[model.ShopperOutbound](ctx, 4)
	svc.ShopperJoined(ctx, "shopper-1", conn, false, nil)
	_, err := svc.Claim(ctx, "shopper-1", "rep-1", nil)
	require.NoError(t, err)

	_, err = st.RequestCollab("shopper-1", "rep-1")
	require.NoError(t, err)

	_, previousRep, err := svc.Release(ctx, "shopper-1")
	require.NoError(t, err)
	assert.Equal(t, "rep-1", previousRep)

	session, ok := st.GetCollab("shopper-1", "rep-1")
	require.True(t, ok)
	assert.Equal(t, model.CollabEnded, session.Status)
}
