package draft

import (
	"crypto/subtle"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/packs"
)

// Engine is the draft coordination state machine described in §3-4: a
// phase, an ordered list of seats, and the pre-generated, round-partitioned
// pack sequence. Every exported method assumes the caller already holds
// exclusive access (the per-draft actor's single goroutine); Engine does
// no locking of its own.
type Engine struct {
	ID      DraftID
	Config  Config
	Catalog *catalog.Catalog
	Seats   []*Seat
	Phase   Phase
	Round   int

	// PacksRemaining is the count of boosters, across the whole draft,
	// that still have at least one card left in them.
	PacksRemaining int

	pendingRounds [][]packs.Pack // [round][seat index]
	seed          int64
}

// New builds a fresh Engine in Lobby phase. cat may be nil if the catalog
// has not finished loading yet; the draft then stays in Lobby even when
// every seat is ready.
func New(id DraftID, cfg Config, cat *catalog.Catalog) *Engine {
	return &Engine{
		ID:      id,
		Config:  cfg,
		Catalog: cat,
		Phase:   PhaseLobby,
		seed:    seedFromDraftID(id),
	}
}

func seedFromDraftID(id DraftID) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return int64(h.Sum64())
}

// PickOutcome is the result of a Pick call. Rejected means the pick was a
// no-op (wrong phase, unknown seat, no current pack, bad index) — soft
// rejection per §4.4, never an error.
type PickOutcome struct {
	Rejected bool
	Card     catalog.Card
	Events   []Event
}

// Join allocates a new seat. Legal only in Lobby.
func (e *Engine) Join() (*Seat, error) {
	if e.Phase != PhaseLobby {
		return nil, ErrWrongPhase
	}
	if len(e.Seats) >= e.Config.MaxSeats {
		return nil, ErrDraftFull
	}

	id := NewSeatID()
	seat := &Seat{
		ID:            id,
		Index:         len(e.Seats),
		Name:          defaultSeatName(id),
		Status:        SeatOk,
		LastHeartbeat: time.Now(),
	}
	e.Seats = append(e.Seats, seat)
	return seat, nil
}

// SetName validates and applies a display name. Not phase-gated: renaming
// mid-draft is harmless.
func (e *Engine) SetName(seatID SeatID, name string) error {
	seat := e.seatByID(seatID)
	if seat == nil {
		return ErrUnknownSeat
	}
	return seat.SetName(name)
}

// SetReady toggles a seat's ready flag. Legal only in Lobby. If this
// toggle makes every seat ready (with at least 2 seats and a loaded
// catalog), the draft starts automatically and the returned events include
// every seat's first Pack.
func (e *Engine) SetReady(seatID SeatID, ready bool) ([]Event, error) {
	if e.Phase != PhaseLobby {
		return nil, ErrWrongPhase
	}
	seat := e.seatByID(seatID)
	if seat == nil {
		return nil, ErrUnknownSeat
	}

	seat.Ready = ready
	events := []Event{PlayerUpdateEvent{Details: seat.Details()}}

	if !e.readyToStart() {
		return events, nil
	}

	startEvents, err := e.start()
	if err != nil {
		return append(events, startEvents...), err
	}
	return append(events, startEvents...), nil
}

func (e *Engine) readyToStart() bool {
	if len(e.Seats) < 2 || e.Catalog == nil {
		return false
	}
	for _, s := range e.Seats {
		if !s.Ready {
			return false
		}
	}
	return true
}

// start generates the full pack sequence and deals round 0. On catalog
// exhaustion it is an engine invariant violation (upload-time validation
// should have caught an undersized catalog already) and the draft
// terminates.
func (e *Engine) start() ([]Event, error) {
	if e.Catalog == nil {
		return nil, ErrCatalogNotLoaded
	}

	rng := rand.New(rand.NewSource(e.seed))
	generated, err := packs.Generate(e.Catalog, e.Config.Packs, len(e.Seats), rng)
	if err != nil {
		return e.Terminate(fmt.Sprintf("pack generation failed: %v", err)), fmt.Errorf("%w: %v", ErrInvariantViolated, err)
	}

	n := len(e.Seats)
	rounds := e.Config.Packs.PacksPerSeat
	e.pendingRounds = make([][]packs.Pack, rounds)
	for r := 0; r < rounds; r++ {
		e.pendingRounds[r] = generated[r*n : (r+1)*n]
	}

	e.Phase = PhaseInProgress
	e.Round = 0
	e.PacksRemaining = len(generated)
	return e.distributeRound(0), nil
}

func (e *Engine) distributeRound(round int) []Event {
	var events []Event
	deal := e.pendingRounds[round]
	for i, seat := range e.Seats {
		promoted, did := seat.Enqueue(deal[i])
		if did {
			events = append(events, PackEvent{Seat: seat.ID, Pack: cloneCards(promoted.Cards)})
		}
	}
	return events
}

// Pick attempts to pick card index from seatID's current pack. A soft
// rejection (wrong phase, unknown seat, no current pack, bad index) is
// reported via PickOutcome.Rejected with a nil error and no state change;
// it is never fatal. The returned error is always nil: an invariant
// violation found while advancing the round transitions the draft to
// Terminated and is reported as a FatalErrorEvent in Events.
func (e *Engine) Pick(seatID SeatID, index int) (PickOutcome, error) {
	if e.Phase != PhaseInProgress {
		return PickOutcome{Rejected: true}, nil
	}
	seat := e.seatByID(seatID)
	if seat == nil {
		return PickOutcome{Rejected: true}, nil
	}

	card, remainder, promoted, didPromote, err := seat.Pick(index)
	if err != nil {
		return PickOutcome{Rejected: true}, nil
	}

	events := []Event{PickSuccessfulEvent{Seat: seat.ID, Card: card}}
	if didPromote {
		events = append(events, PackEvent{Seat: seat.ID, Pack: cloneCards(promoted.Cards)})
	}

	if remainder.IsEmpty() {
		e.PacksRemaining--
	} else {
		neighbor := e.Seats[neighborIndex(seat.Index, len(e.Seats), e.Round)]
		nPromoted, nDid := neighbor.Enqueue(remainder)
		if nDid {
			events = append(events, PackEvent{Seat: neighbor.ID, Pack: cloneCards(nPromoted.Cards)})
		}
	}

	events = append(events, e.advanceIfRoundDrained()...)

	return PickOutcome{Card: card, Events: events}, nil
}

func (e *Engine) advanceIfRoundDrained() []Event {
	if !e.roundDrained() {
		return nil
	}

	if e.Round+1 < e.Config.Packs.PacksPerSeat {
		e.Round++
		return e.distributeRound(e.Round)
	}

	// Last round finished: invariant 5 requires PacksRemaining == 0 here.
	if e.PacksRemaining != 0 {
		return e.Terminate("round drained with packs remaining > 0")
	}

	e.Phase = PhaseFinished
	var events []Event
	for _, s := range e.Seats {
		events = append(events, FinishedEvent{Seat: s.ID, Pool: cloneCards(s.Pool)})
	}
	return events
}

func (e *Engine) roundDrained() bool {
	for _, s := range e.Seats {
		if !s.Drained() {
			return false
		}
	}
	return true
}

// Heartbeat refreshes a seat's last-seen timestamp. No events result.
func (e *Engine) Heartbeat(seatID SeatID, at time.Time) {
	if seat := e.seatByID(seatID); seat != nil {
		seat.LastHeartbeat = at
	}
}

// UpdateHeartbeatStatuses flips any seat's status whose staleness crosses
// a threshold, returning a PlayerUpdateEvent for each seat that changed.
// Status never blocks the draft.
func (e *Engine) UpdateHeartbeatStatuses(now time.Time, warnAfter, errAfter time.Duration) []Event {
	var events []Event
	for _, s := range e.Seats {
		elapsed := now.Sub(s.LastHeartbeat)
		want := SeatOk
		switch {
		case elapsed > errAfter:
			want = SeatError
		case elapsed > warnAfter:
			want = SeatWarning
		}
		if want != s.Status {
			s.Status = want
			events = append(events, PlayerUpdateEvent{Details: s.Details()})
		}
	}
	return events
}

// Terminate forces the draft into Terminated, e.g. because a snapshot
// write failed or an invariant was found violated. Always returns a
// FatalErrorEvent to broadcast.
func (e *Engine) Terminate(reason string) []Event {
	e.Phase = PhaseTerminated
	return []Event{FatalErrorEvent{Message: reason}}
}

// SeatByID is an escape hatch for the Hub and tests to read a seat's
// current pack and pool without exposing internal mutation helpers.
func (e *Engine) SeatByID(id SeatID) (*Seat, bool) {
	s := e.seatByID(id)
	return s, s != nil
}

// QueueSize reports how many packs are waiting behind a seat's current
// pack, mirroring the reference implementation's Draft::queue_size.
func (e *Engine) QueueSize(id SeatID) int {
	s := e.seatByID(id)
	if s == nil {
		return 0
	}
	return len(s.Queue)
}

// PlayerList returns every seat's public details, in seat order.
func (e *Engine) PlayerList() []PlayerDetails {
	out := make([]PlayerDetails, len(e.Seats))
	for i, s := range e.Seats {
		out[i] = s.Details()
	}
	return out
}

// seatToken derives a fixed-width digest of a SeatId. SeatId is possession-
// based authentication (spec.md §3), so matching it against every seat is
// done in constant time rather than with a short-circuiting string compare.
func seatToken(id SeatID) [32]byte {
	return blake2b.Sum256([]byte(id))
}

func (e *Engine) seatByID(id SeatID) *Seat {
	want := seatToken(id)
	for _, s := range e.Seats {
		got := seatToken(s.ID)
		if subtle.ConstantTimeCompare(want[:], got[:]) == 1 {
			return s
		}
	}
	return nil
}

func cloneCards(cards []catalog.Card) []catalog.Card {
	out := make([]catalog.Card, len(cards))
	copy(out, cards)
	return out
}

// SnapshotVersion is the format version written into every Snapshot. The
// Registry skips-and-logs (spec §6) a snapshot file whose Version it does
// not recognize, rather than deleting it.
const SnapshotVersion = 1

// Snapshot is the Engine's full persistable state (spec §6). Because the
// entire pack sequence is generated once, up front, at the Lobby ->
// InProgress transition, PendingRounds already contains every future
// pack a restored Engine will ever deal; no separate RNG-state capture is
// needed to reproduce future output deterministically (P6) — the Seed is
// carried only for forensic/debugging value.
type Snapshot struct {
	Version        int            `json:"version"`
	ID             DraftID        `json:"id"`
	Config         Config         `json:"config"`
	Catalog        []catalog.Card `json:"catalog"`
	Seats          []*Seat        `json:"seats"`
	Phase          Phase          `json:"phase"`
	Round          int            `json:"round"`
	PacksRemaining int            `json:"packs_remaining"`
	PendingRounds  [][]packs.Pack `json:"pending_rounds"`
	Seed           int64          `json:"seed"`
}

// Snapshot captures the Engine's complete state for persistence.
func (e *Engine) Snapshot() Snapshot {
	var cat []catalog.Card
	if e.Catalog != nil {
		cat = e.Catalog.Snapshot()
	}
	return Snapshot{
		Version:        SnapshotVersion,
		ID:             e.ID,
		Config:         e.Config,
		Catalog:        cat,
		Seats:          e.Seats,
		Phase:          e.Phase,
		Round:          e.Round,
		PacksRemaining: e.PacksRemaining,
		PendingRounds:  e.pendingRounds,
		Seed:           e.seed,
	}
}

// Restore reconstructs an Engine from a previously captured Snapshot.
// Callers are expected to have already checked s.Version themselves
// (spec §6: a version mismatch is skip-and-log, never attempted here).
func Restore(s Snapshot) *Engine {
	var cat *catalog.Catalog
	if s.Catalog != nil {
		cat = catalog.FromSnapshot(s.Catalog)
	}
	return &Engine{
		ID:             s.ID,
		Config:         s.Config,
		Catalog:        cat,
		Seats:          s.Seats,
		Phase:          s.Phase,
		Round:          s.Round,
		PacksRemaining: s.PacksRemaining,
		pendingRounds:  s.PendingRounds,
		seed:           s.Seed,
	}
}
