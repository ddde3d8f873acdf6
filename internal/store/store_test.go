package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webitel/floorqueue/internal/model"
	"github.com/webitel/floorqueue/internal/transport"
)

func shopperConn() transport.Connector[model.ShopperOutbound] {
	return transport.NewConnector[model.ShopperOutbound](context.Background(), 4)
}

func repConn() transport.Connector[model.RepOutbound] {
	return transport.NewConnector[model.RepOutbound](context.Background(), 4)
}

func TestUpsertShopper_PreservesConnectedAt(t *testing.T) {
	s := New()

	first := s.UpsertShopper("shopper-1", shopperConn(), false, nil)
	time.Sleep(time.Millisecond)
	second := s.UpsertShopper("shopper-1", shopperConn(), true, nil)

	assert.Equal(t, first.ConnectedAt, second.ConnectedAt)
	assert.True(t, second.HasMicrophone)
}

func TestMarkShopperDisconnected_KeepsAssignment(t *testing.T) {
	s := New()
	s.UpsertShopper("shopper-1", shopperConn(), false, nil)
	_, err := s.Assign("shopper-1", "rep-1")
	require.NoError(t, err)

	entry, ok := s.MarkShopperDisconnected("shopper-1")
	require.True(t, ok)
	assert.False(t, entry.IsConnected())
	assert.Equal(t, "rep-1", entry.AssignedRepID)
}

func TestAssign_AlreadyClaimedByAnotherRep(t *testing.T) {
	s := New()
	s.UpsertShopper("shopper-1", shopperConn(), false, nil)

	_, err := s.Assign("shopper-1", "rep-1")
	require.NoError(t, err)

	_, err = s.Assign("shopper-1", "rep-2")
	require.Error(t, err)
}

func TestAssign_RepBusyWithAnotherShopper(t *testing.T) {
	s := New()
	s.UpsertShopper("shopper-1", shopperConn(), false, nil)
	s.UpsertShopper("shopper-2", shopperConn(), false, nil)

	_, err := s.Assign("shopper-1", "rep-1")
	require.NoError(t, err)

	_, err = s.Assign("shopper-2", "rep-1")
	require.Error(t, err)
}

func TestAssign_SameRepIsIdempotent(t *testing.T) {
	s := New()
	s.UpsertShopper("shopper-1", shopperConn(), false, nil)

	_, err := s.Assign("shopper-1", "rep-1")
	require.NoError(t, err)
	_, err = s.Assign("shopper-1", "rep-1")
	assert.NoError(t, err)
}

func TestPositionOf_OrdersByConnectedAt(t *testing.T) {
	s := New()
	s.UpsertShopper("first", shopperConn(), false, nil)
	time.Sleep(time.Millisecond)
	s.UpsertShopper("second", shopperConn(), false, nil)
	time.Sleep(time.Millisecond)
	s.UpsertShopper("third", shopperConn(), false, nil)

	assert.Equal(t, 1, s.PositionOf("first"))
	assert.Equal(t, 2, s.PositionOf("second"))
	assert.Equal(t, 3, s.PositionOf("third"))
}

func TestPositionOf_ExcludesAssignedShoppers(t *testing.T) {
	s := New()
	s.UpsertShopper("first", shopperConn(), false, nil)
	s.UpsertShopper("second", shopperConn(), false, nil)

	_, err := s.Assign("first", "rep-1")
	require.NoError(t, err)

	assert.Equal(t, 0, s.PositionOf("first"))
	assert.Equal(t, 1, s.PositionOf("second"))
}

func TestPositionOf_UnknownShopperIsZero(t *testing.T) {
	s := New()
	assert.Equal(t, 0, s.PositionOf("nobody"))
}

func TestRelease_ReturnsPreviousRepAndReopensSlot(t *testing.T) {
	s := New()
	s.UpsertShopper("shopper-1", shopperConn(), false, nil)
	_, err := s.Assign("shopper-1", "rep-1")
	require.NoError(t, err)

	entry, previousRep, ok := s.Release("shopper-1")
	require.True(t, ok)
	assert.Equal(t, "rep-1", previousRep)
	assert.Empty(t, entry.AssignedRepID)

	_, err = s.Assign("shopper-1", "rep-2")
	assert.NoError(t, err)
}

func TestRequestCollab_RejectsUnassignedPair(t *testing.T) {
	s := New()
	s.UpsertShopper("shopper-1", shopperConn(), false, nil)

	_, err := s.RequestCollab("shopper-1", "rep-1")
	assert.Error(t, err)
}

func TestRequestCollab_RejectsDuplicatePending(t *testing.T) {
	s := New()
	s.UpsertShopper("shopper-1", shopperConn(), false, nil)
	_, err := s.Assign("shopper-1", "rep-1")
	require.NoError(t, err)

	_, err = s.RequestCollab("shopper-1", "rep-1")
	require.NoError(t, err)

	_, err = s.RequestCollab("shopper-1", "rep-1")
	assert.Error(t, err)
}

func TestRespondCollab_AcceptTransitionsStatus(t *testing.T) {
	s := New()
	s.UpsertShopper("shopper-1", shopperConn(), false, nil)
	_, err := s.Assign("shopper-1", "rep-1")
	require.NoError(t, err)
	_, err = s.RequestCollab("shopper-1", "rep-1")
	require.NoError(t, err)

	session, err := s.RespondCollab("shopper-1", "rep-1", true)
	require.NoError(t, err)
	assert.Equal(t, model.CollabAccepted, session.Status)
}

func TestRespondCollab_NoPendingSession(t *testing.T) {
	s := New()
	_, err := s.RespondCollab("shopper-1", "rep-1", true)
	assert.Error(t, err)
}

func TestEvictStaleShoppers_OnlyPastGraceWindow(t *testing.T) {
	s := New()
	fixed := time.Now()
	s.now = func() time.Time { return fixed }

	s.UpsertShopper("stale", shopperConn(), false, nil)
	s.UpsertShopper("fresh", shopperConn(), false, nil)
	s.MarkShopperDisconnected("stale")
	s.now = func() time.Time { return fixed.Add(45 * time.Second) }
	s.MarkShopperDisconnected("fresh")

	// stale has been gone 60s, fresh 15s; only stale is past the 30s window
	s.now = func() time.Time { return fixed.Add(time.Minute) }
	removed := s.EvictStaleShoppers(30 * time.Second)

	assert.ElementsMatch(t, []string{"stale"}, removed)
	_, ok := s.GetShopper("stale")
	assert.False(t, ok)
	_, ok = s.GetShopper("fresh")
	assert.True(t, ok)
}

func TestEvictStaleShoppers_LeavesConnectedShoppersAlone(t *testing.T) {
	s := New()
	s.UpsertShopper("connected", shopperConn(), false, nil)

	removed := s.EvictStaleShoppers(0)
	assert.Empty(t, removed)

	_, ok := s.GetShopper("connected")
	assert.True(t, ok)
}

func TestSnapshotQueue_SortedByConnectedAt(t *testing.T) {
	s := New()
	s.UpsertShopper("second", shopperConn(), false, nil)
	time.Sleep(time.Millisecond)
	s.UpsertShopper("first", shopperConn(), false, nil)

	snapshot := s.SnapshotQueue()
	require.Len(t, snapshot, 2)
	assert.Equal(t, "second", snapshot[0].ShopperID)
	assert.Equal(t, "first", snapshot[1].ShopperID)
}

func TestRegisterRep_AllRepConns(t *testing.T) {
	s := New()
	s.RegisterRep("rep-1", repConn())
	s.RegisterRep("rep-2", repConn())

	assert.Len(t, s.AllRepConns(), 2)

	s.UnregisterRep("rep-1")
	assert.Len(t, s.AllRepConns(), 1)
}
