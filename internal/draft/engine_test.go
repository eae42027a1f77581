package draft

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/packs"
)

func buildTestCatalog(t *testing.T, names ...string) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Build(strings.Join(names, "\n"), nil, catalog.BuiltinDatabase())
	require.NoError(t, err)
	return cat
}

func unweightedConfig(packsPerSeat, cardsPerPack, maxSeats int) Config {
	return Config{
		Packs: packs.Spec{
			PacksPerSeat: packsPerSeat,
			CardsPerPack: cardsPerPack,
		},
		MaxSeats: maxSeats,
	}
}

func mustStart(t *testing.T, e *Engine, seats ...*Seat) {
	t.Helper()
	for _, s := range seats {
		_, err := e.SetReady(s.ID, true)
		require.NoError(t, err)
	}
}

// TestEngine_TwoSeatMiniDraft walks the full end-to-end scenario from the
// spec: two seats, one pack each of two cards, passed in round 0's +1
// direction.
func TestEngine_TwoSeatMiniDraft(t *testing.T) {
	cat := buildTestCatalog(t, "Llanowar Elves", "Grizzly Bears", "Island", "Forest")
	cfg := unweightedConfig(1, 2, 8)
	e := New(NewDraftID(), cfg, cat)

	a, err := e.Join()
	require.NoError(t, err)
	b, err := e.Join()
	require.NoError(t, err)

	require.NoError(t, e.SetName(a.ID, "Alice"))

	_, err = e.SetReady(a.ID, true)
	require.NoError(t, err)
	require.Equal(t, PhaseLobby, e.Phase)

	events, err := e.SetReady(b.ID, true)
	require.NoError(t, err)
	require.Equal(t, PhaseInProgress, e.Phase)

	var packEvents int
	for _, ev := range events {
		if _, ok := ev.(PackEvent); ok {
			packEvents++
		}
	}
	require.Equal(t, 2, packEvents)

	require.NotNil(t, a.Current)
	require.NotNil(t, b.Current)
	require.Equal(t, 2, a.Current.Len())

	// Round 0 is even: rotation direction is +1, so A's remainder goes to B.
	outcome, err := e.Pick(a.ID, 0)
	require.NoError(t, err)
	require.False(t, outcome.Rejected)
	require.Len(t, a.Pool, 1)
	require.Nil(t, a.Current)
	require.Len(t, b.Queue, 1, "B's second pack should be queued behind its own current pack")

	outcome, err = e.Pick(b.ID, 0)
	require.NoError(t, err)
	require.False(t, outcome.Rejected)
	require.Len(t, b.Pool, 1)
	// B's own 1-card remainder passes on to A; B's current now promotes A's
	// 1-card remainder from its queue.
	require.NotNil(t, b.Current)
	require.Equal(t, 1, b.Current.Len())

	outcome, err = e.Pick(b.ID, 0)
	require.NoError(t, err)
	require.Len(t, b.Pool, 2)

	require.NotNil(t, a.Current, "A should have received B's 1-card remainder")
	outcome, err = e.Pick(a.ID, 0)
	require.NoError(t, err)
	require.Len(t, a.Pool, 2)

	require.Equal(t, PhaseFinished, e.Phase)
	require.True(t, a.Drained())
	require.True(t, b.Drained())
}

func TestEngine_JoinRejectsAfterLobby(t *testing.T) {
	cat := buildTestCatalog(t, "Island", "Forest")
	e := New(NewDraftID(), unweightedConfig(1, 1, 2), cat)

	a, err := e.Join()
	require.NoError(t, err)
	b, err := e.Join()
	require.NoError(t, err)
	mustStart(t, e, a, b)
	require.Equal(t, PhaseInProgress, e.Phase)

	_, err = e.Join()
	require.ErrorIs(t, err, ErrWrongPhase)
}

func TestEngine_JoinRejectsAtSeatCap(t *testing.T) {
	cat := buildTestCatalog(t, "Island", "Forest")
	e := New(NewDraftID(), unweightedConfig(1, 1, 1), cat)

	_, err := e.Join()
	require.NoError(t, err)

	_, err = e.Join()
	require.ErrorIs(t, err, ErrDraftFull)
}

// TestEngine_PickIsIdempotentOnRejection exercises the spec's
// "concurrency-safe picking" requirement: a pick against a seat with no
// current pack is a harmless no-op, never an error.
func TestEngine_PickIsIdempotentOnRejection(t *testing.T) {
	cat := buildTestCatalog(t, "Island", "Forest")
	e := New(NewDraftID(), unweightedConfig(1, 1, 2), cat)

	a, _ := e.Join()
	b, _ := e.Join()
	mustStart(t, e, a, b)

	outcome, err := e.Pick(a.ID, 0)
	require.NoError(t, err)
	require.False(t, outcome.Rejected)

	// A has no current pack anymore (single-card pack, single round): a
	// repeat pick is rejected, not an error, and changes nothing.
	outcome, err = e.Pick(a.ID, 0)
	require.NoError(t, err)
	require.True(t, outcome.Rejected)
	require.Len(t, a.Pool, 1)
}

func TestEngine_PickRejectsOutOfRangeIndex(t *testing.T) {
	cat := buildTestCatalog(t, "Llanowar Elves", "Grizzly Bears")
	e := New(NewDraftID(), unweightedConfig(1, 2, 2), cat)

	a, _ := e.Join()
	b, _ := e.Join()
	mustStart(t, e, a, b)

	outcome, err := e.Pick(a.ID, 99)
	require.NoError(t, err)
	require.True(t, outcome.Rejected)
	require.Equal(t, 2, a.Current.Len())
}

func TestEngine_PickRejectsUnknownSeat(t *testing.T) {
	cat := buildTestCatalog(t, "Island", "Forest")
	e := New(NewDraftID(), unweightedConfig(1, 1, 2), cat)

	a, _ := e.Join()
	b, _ := e.Join()
	mustStart(t, e, a, b)

	outcome, err := e.Pick(NewSeatID(), 0)
	require.NoError(t, err)
	require.True(t, outcome.Rejected)
}

func TestEngine_SetReadyRequiresTwoSeats(t *testing.T) {
	cat := buildTestCatalog(t, "Island", "Forest")
	e := New(NewDraftID(), unweightedConfig(1, 1, 4), cat)

	a, _ := e.Join()
	_, err := e.SetReady(a.ID, true)
	require.NoError(t, err)
	require.Equal(t, PhaseLobby, e.Phase, "a single ready seat never starts a draft")
}

// TestEngine_Deterministic exercises P6: two engines built from the same
// DraftID generate the same pack sequence.
func TestEngine_Deterministic(t *testing.T) {
	id := NewDraftID()
	cat := buildTestCatalog(t, "Llanowar Elves", "Grizzly Bears", "Island", "Forest")
	cfg := unweightedConfig(1, 2, 2)

	e1 := New(id, cfg, cat)
	a1, _ := e1.Join()
	b1, _ := e1.Join()
	mustStart(t, e1, a1, b1)

	e2 := New(id, cfg, cat)
	a2, _ := e2.Join()
	b2, _ := e2.Join()
	mustStart(t, e2, a2, b2)

	require.Equal(t, a1.Current.Cards, a2.Current.Cards)
	require.Equal(t, b1.Current.Cards, b2.Current.Cards)
}

func TestEngine_UpdateHeartbeatStatuses(t *testing.T) {
	cat := buildTestCatalog(t, "Island", "Forest")
	e := New(NewDraftID(), unweightedConfig(1, 1, 2), cat)
	a, _ := e.Join()

	now := time.Now()
	a.LastHeartbeat = now.Add(-10 * time.Second)

	events := e.UpdateHeartbeatStatuses(now, 5*time.Second, 20*time.Second)
	require.Len(t, events, 1)
	pu, ok := events[0].(PlayerUpdateEvent)
	require.True(t, ok)
	require.Equal(t, SeatWarning, pu.Details.Status)

	// A second call with the same inputs is a no-op: status already matches.
	events = e.UpdateHeartbeatStatuses(now, 5*time.Second, 20*time.Second)
	require.Empty(t, events)
}

func TestEngine_QueueSizeAndPlayerList(t *testing.T) {
	cat := buildTestCatalog(t, "Llanowar Elves", "Grizzly Bears", "Island", "Forest")
	e := New(NewDraftID(), unweightedConfig(2, 1, 2), cat)
	a, _ := e.Join()
	b, _ := e.Join()
	mustStart(t, e, a, b)

	require.Equal(t, 0, e.QueueSize(a.ID), "only round 0 has been dealt so far")
	require.Len(t, e.PlayerList(), 2)
}

func TestEngine_SetNameRejectsUnknownSeat(t *testing.T) {
	cat := buildTestCatalog(t, "Island", "Forest")
	e := New(NewDraftID(), unweightedConfig(1, 1, 2), cat)

	err := e.SetName(NewSeatID(), "Nope")
	require.ErrorIs(t, err, ErrUnknownSeat)
}
