package collabroom

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/floorqueue/internal/transport"
)

func TestJoin_ReplaysAccumulatedDocumentToLateJoiner(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	first := transport.NewConnector[[]byte](ctx, 4)
	leaveFirst := r.Join(ctx, "shopper-1", first)
	defer leaveFirst()

	r.Publish(ctx, "shopper-1", first.ID(), []byte("update-1"))

	second := transport.NewConnector[[]byte](ctx, 4)
	leaveSecond := r.Join(ctx, "shopper-1", second)
	defer leaveSecond()

	select {
	case update := <-second.Recv():
		assert.Equal(t, "update-1", string(update))
	case <-time.After(time.Second):
		t.Fatal("expected the late joiner to be replayed the document")
	}
}

func TestPublish_DoesNotEchoToSender(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	sender := transport.NewConnector[[]byte](ctx, 4)
	leave := r.Join(ctx, "shopper-1", sender)
	defer leave()

	r.Publish(ctx, "shopper-1", sender.ID(), []byte("update-1"))

	select {
	case update := <-sender.Recv():
		t.Fatalf("sender should not receive its own update, got %q", update)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublish_FansOutToOtherParticipants(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	a := transport.NewConnector[[]byte](ctx, 4)
	b := transport.NewConnector[[]byte](ctx, 4)
	leaveA := r.Join(ctx, "shopper-1", a)
	leaveB := r.Join(ctx, "shopper-1", b)
	defer leaveA()
	defer leaveB()

	r.Publish(ctx, "shopper-1", a.ID(), []byte("hello"))

	select {
	case update := <-b.Recv():
		require.Equal(t, "hello", string(update))
	case <-time.After(time.Second):
		t.Fatal("expected the other participant to receive the update")
	}
}

func TestLeave_TearsDownEmptyRoom(t *testing.T) {
	r := NewRegistry()
	ctx := context.Background()

	conn := transport.NewConnector[[]byte](ctx, 4)
	leave := r.Join(ctx, "shopper-1", conn)

	r.mu.Lock()
	_, exists := r.rooms["shopper-1"]
	r.mu.Unlock()
	require.True(t, exists)

	leave()

	r.mu.Lock()
	_, exists = r.rooms["shopper-1"]
	r.mu.Unlock()
	assert.False(t, exists)
}
