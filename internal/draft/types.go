// Package draft is the pure draft coordination state machine: phase
// transitions, per-seat pack queues, the pick-and-rotate protocol, and the
// invariants that must hold at every externally observable instant. It
// does not know about goroutines, channels, or the network; callers (the
// per-draft actor in package hub) serialize access to an *Engine.
package draft

import (
	"time"

	"github.com/google/uuid"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/packs"
)

type DraftID string

type SeatID string

func NewDraftID() DraftID {
	return DraftID(uuid.NewString())
}

func NewSeatID() SeatID {
	return SeatID(uuid.NewString())
}

type Phase string

const (
	PhaseLobby      Phase = "Lobby"
	PhaseInProgress Phase = "InProgress"
	PhaseFinished   Phase = "Finished"
	PhaseTerminated Phase = "Terminated"
)

type SeatStatus string

const (
	SeatOk      SeatStatus = "Ok"
	SeatWarning SeatStatus = "Warning"
	SeatError   SeatStatus = "Error"
)

// Config is the draft's frozen configuration: the pack-composition policy
// plus the seat cap.
type Config struct {
	Packs    packs.Spec `json:"packs"`
	MaxSeats int        `json:"max_seats"`
}

// Seat is one participant's slot in a draft. All mutation happens through
// methods on *Engine holding exclusive access to the whole draft; Seat
// itself has no locking of its own.
type Seat struct {
	ID            SeatID         `json:"id"`
	Index         int            `json:"index"`
	Name          string         `json:"name"`
	Ready         bool           `json:"ready"`
	Pool          []catalog.Card `json:"pool"`
	Queue         []packs.Pack   `json:"queue"`
	Current       *packs.Pack    `json:"current,omitempty"`
	Status        SeatStatus     `json:"status"`
	LastHeartbeat time.Time      `json:"last_heartbeat"`
}

func defaultSeatName(id SeatID) string {
	s := string(id)
	s = removeHyphens(s)
	if len(s) > 8 {
		s = s[:8]
	}
	return s
}

func removeHyphens(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			out = append(out, s[i])
		}
	}
	return string(out)
}
