package janitor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/floorqueue/internal/eventbus"
	"github.com/webitel/floorqueue/internal/store"
)

func TestSweep_EvictsStaleDisconnectedShoppers(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger)
	st := store.New()

	st.UpsertShopper("shopper-1", nil, false, nil)
	st.MarkShopperDisconnected("shopper-1")

	// grace window not yet elapsed: nothing evicted
	j := New(st, bus, logger, time.Hour, time.Hour, time.Minute)
	j.sweep()
	_, ok := st.GetShopper("shopper-1")
	require.True(t, ok)

	// a grace window that has already elapsed: evicted on the next sweep
	j = New(st, bus, logger, time.Hour, -time.Second, time.Minute)
	j.sweep()
	_, ok = st.GetShopper("shopper-1")
	assert.False(t, ok)
}

func TestSweep_ExpiresStaleCollabRequests(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger)
	st := store.New()

	st.UpsertShopper("shopper-1", nil, false, nil)
	_, err := st.Assign("shopper-1", "rep-1")
	require.NoError(t, err)
	_, err = st.RequestCollab("shopper-1", "rep-1")
	require.NoError(t, err)

	j := New(st, bus, logger, time.Hour, 30*time.Second, -time.Second)
	j.sweep()

	_, ok := st.GetCollab("shopper-1", "rep-1")
	assert.False(t, ok)
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := eventbus.New(logger)
	st := store.New()

	j := New(st, bus, logger, time.Millisecond, 30*time.Second, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return after cancel")
	}
}
