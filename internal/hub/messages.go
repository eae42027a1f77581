package hub

import (
	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/draft"
)

// Msg is everything the per-draft actor's loop can receive on its inbox.
type Msg interface{ isHubMsg() }

// JoinMsg is a first-time join at /ws/{draft}.
type JoinMsg struct {
	ConnID string
	Reply  chan JoinResult
}

func (JoinMsg) isHubMsg() {}

type JoinResult struct {
	Session *Session
	Seat    *draft.Seat
	// Phase is always populated, even on error, so the caller can choose
	// between a Started (still running) and Ended (already over) wire
	// rejection per spec §4.5.
	Phase draft.Phase
	Err   error
}

// RejoinMsg is a reconnect at /ws/{draft}/{seat}.
type RejoinMsg struct {
	ConnID string
	Seat   draft.SeatID
	Reply  chan RejoinResult
}

func (RejoinMsg) isHubMsg() {}

// RejoinResult carries what the Hub needs to answer with a Reconnected
// message, or the error that should instead close the connection.
type RejoinResult struct {
	Session    *Session
	InProgress bool
	Pool       []catalog.Card
	Pack       []catalog.Card
	Err        error
}

// ClientMsg carries an already-decoded inbound wire message (see
// pkg/wire.Decode) from a bound session.
type ClientMsg struct {
	ConnID  string
	Seat    draft.SeatID
	Inbound interface{}
}

func (ClientMsg) isHubMsg() {}

// DisconnectMsg unbinds a session, e.g. because its socket's read loop
// exited. It is a no-op if ConnID no longer owns the seat's slot (it was
// superseded by a rejoin).
type DisconnectMsg struct{ ConnID string }

func (DisconnectMsg) isHubMsg() {}

// HeartbeatTick drives periodic staleness evaluation across every seat.
type HeartbeatTick struct{}

func (HeartbeatTick) isHubMsg() {}

// ShutdownMsg asks the actor to close every session and stop its loop.
type ShutdownMsg struct{ Reply chan struct{} }

func (ShutdownMsg) isHubMsg() {}

// ViewMsg is a test-only / operator-only introspection request.
type ViewMsg struct{ Reply chan View }

func (ViewMsg) isHubMsg() {}

// View is a point-in-time, race-free snapshot of hub-visible state.
type View struct {
	Phase    draft.Phase
	Seats    []draft.PlayerDetails
	Sessions int
}
