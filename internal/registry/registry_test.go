package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/draft"
	"github.com/boosterdraft/draftd/internal/hub"
	"github.com/boosterdraft/draftd/internal/packs"
)

type noopLedger struct{}

func (noopLedger) Record(draft.DraftID, draft.Phase, string) {}

func testHubConfig() hub.Config {
	return hub.Config{
		HeartbeatInterval: time.Hour,
		WarningThreshold:  15 * time.Second,
		ErrorThreshold:    60 * time.Second,
	}
}

func TestFileStore_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	cat, err := catalog.Build("Island\nForest", nil, catalog.BuiltinDatabase())
	require.NoError(t, err)

	cfg := draft.Config{Packs: packs.Spec{PacksPerSeat: 1, CardsPerPack: 1}, MaxSeats: 8}
	engine := draft.New(draft.NewDraftID(), cfg, cat)
	_, err = engine.Join()
	require.NoError(t, err)

	require.NoError(t, store.Save(engine))

	snap, err := store.Load(engine.ID)
	require.NoError(t, err)
	require.Equal(t, draft.SnapshotVersion, snap.Version)
	require.Equal(t, engine.ID, snap.ID)
	require.Len(t, snap.Seats, 1)

	restored := draft.Restore(snap)
	require.Equal(t, engine.Phase, restored.Phase)
	require.Equal(t, engine.Seats[0].ID, restored.Seats[0].ID)
}

func TestRegistry_CreateThenRestore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	reg := New(store, noopLedger{}, testHubConfig(), log)

	cat, err := catalog.Build("Island\nForest", nil, catalog.BuiltinDatabase())
	require.NoError(t, err)
	cfg := draft.Config{Packs: packs.Spec{PacksPerSeat: 1, CardsPerPack: 1}, MaxSeats: 8}

	h, id, err := reg.Create(cfg, cat)
	require.NoError(t, err)
	require.NotNil(t, h)

	reply := make(chan hub.JoinResult, 1)
	h.Inbox() <- hub.JoinMsg{ConnID: "conn-a", Reply: reply}
	join := <-reply
	require.NoError(t, join.Err)
	<-join.Session.Outbox // PlayerList

	require.NoError(t, reg.Shutdown())

	restored, err := Restore(context.Background(), store, noopLedger{}, testHubConfig(), log)
	require.NoError(t, err)
	require.Equal(t, 1, restored.Len())

	h2, ok := restored.Get(id)
	require.True(t, ok)

	view := make(chan hub.View, 1)
	h2.Inbox() <- hub.ViewMsg{Reply: view}
	got := <-view
	require.Equal(t, draft.PhaseLobby, got.Phase)
	require.Len(t, got.Seats, 1)

	require.NoError(t, restored.Shutdown())
}
