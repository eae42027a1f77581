package draft

import "github.com/boosterdraft/draftd/internal/catalog"

// Event is something the Engine wants the caller (the per-draft actor in
// package hub) to deliver to clients. Engine methods return a []Event
// describing everything that happened as a side effect of one inbound
// command; the caller is responsible for wire encoding and fanout scoping.
type Event interface {
	isEvent()
}

// PackEvent addresses a seat: it has a new current pack.
type PackEvent struct {
	Seat SeatID
	Pack []catalog.Card
}

func (PackEvent) isEvent() {}

// PickSuccessfulEvent addresses a seat: its pick was accepted.
type PickSuccessfulEvent struct {
	Seat SeatID
	Card catalog.Card
}

func (PickSuccessfulEvent) isEvent() {}

// FinishedEvent addresses a seat: the draft is over and this is its final
// pool.
type FinishedEvent struct {
	Seat SeatID
	Pool []catalog.Card
}

func (FinishedEvent) isEvent() {}

// PlayerUpdateEvent is broadcast to every connected session of the draft.
type PlayerUpdateEvent struct {
	Details PlayerDetails
}

func (PlayerUpdateEvent) isEvent() {}

// FatalErrorEvent is broadcast to every connected session; the draft has
// moved to Terminated.
type FatalErrorEvent struct {
	Message string
}

func (FatalErrorEvent) isEvent() {}

// PlayerDetails is the public, broadcastable view of one seat.
type PlayerDetails struct {
	Seat   SeatID     `json:"seat"`
	Name   string     `json:"name"`
	Ready  bool       `json:"ready"`
	Status SeatStatus `json:"status"`
}

func (s *Seat) Details() PlayerDetails {
	return PlayerDetails{Seat: s.ID, Name: s.Name, Ready: s.Ready, Status: s.Status}
}
