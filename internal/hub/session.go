package hub

import (
	"github.com/boosterdraft/draftd/internal/draft"
	"github.com/boosterdraft/draftd/pkg/wire"
)

// Session is one live WebSocket connection bound to a seat. ConnID
// disambiguates a stale connection's late Disconnect from the connection
// that currently owns the seat after a rejoin.
type Session struct {
	ConnID string
	Seat   draft.SeatID
	Outbox chan wire.ServerMessage
}

func newSession(connID string, seat draft.SeatID) *Session {
	return &Session{ConnID: connID, Seat: seat, Outbox: make(chan wire.ServerMessage, 32)}
}
