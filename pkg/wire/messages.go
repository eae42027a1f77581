// Package wire defines the JSON shapes exchanged over the draft
// WebSocket: a tagged union of {"type": "...", "value": ...} in both
// directions, per spec §6.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/draft"
)

// ClientMessage is the wire shape of every inbound message. Value is
// decoded according to Type by Decode.
type ClientMessage struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Client -> server message kinds, per spec §4.5 / §6.
type (
	HeartBeat    struct{}
	ReadyState   struct{ Ready bool }
	SetName      struct{ Name string }
	Pick         struct{ Index int }
	Disconnected struct{}
)

// Decode inspects msg.Type and unmarshals msg.Value into the matching
// client-message struct, returned as an untyped interface for the Hub's
// type switch.
func Decode(msg ClientMessage) (interface{}, error) {
	switch msg.Type {
	case "HeartBeat":
		return HeartBeat{}, nil
	case "Disconnected":
		return Disconnected{}, nil
	case "ReadyState":
		var ready bool
		if err := json.Unmarshal(msg.Value, &ready); err != nil {
			return nil, fmt.Errorf("decoding ReadyState: %w", err)
		}
		return ReadyState{Ready: ready}, nil
	case "SetName":
		var name string
		if err := json.Unmarshal(msg.Value, &name); err != nil {
			return nil, fmt.Errorf("decoding SetName: %w", err)
		}
		return SetName{Name: name}, nil
	case "Pick":
		var index int
		if err := json.Unmarshal(msg.Value, &index); err != nil {
			return nil, fmt.Errorf("decoding Pick: %w", err)
		}
		return Pick{Index: index}, nil
	default:
		return nil, fmt.Errorf("unknown client message type %q", msg.Type)
	}
}

// ServerMessage is the wire shape of every outbound message.
type ServerMessage struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
}

type connectedValue struct {
	Draft draft.DraftID `json:"draft"`
	Seat  draft.SeatID  `json:"seat"`
}

// Connected answers a first-time join.
func Connected(d draft.DraftID, s draft.SeatID) ServerMessage {
	return ServerMessage{Type: "Connected", Value: connectedValue{Draft: d, Seat: s}}
}

type reconnectedValue struct {
	Draft      draft.DraftID  `json:"draft"`
	Seat       draft.SeatID   `json:"seat"`
	InProgress bool           `json:"in_progress"`
	Pool       []catalog.Card `json:"pool"`
	Pack       []catalog.Card `json:"pack,omitempty"`
}

// Reconnected answers a rejoin, carrying whatever the seat would need to
// resume drafting without a re-dealt pack.
func Reconnected(d draft.DraftID, s draft.SeatID, inProgress bool, pool, pack []catalog.Card) ServerMessage {
	return ServerMessage{Type: "Reconnected", Value: reconnectedValue{
		Draft:      d,
		Seat:       s,
		InProgress: inProgress,
		Pool:       pool,
		Pack:       pack,
	}}
}

// Started rejects a first-time join to a draft that has already left Lobby.
func Started() ServerMessage { return ServerMessage{Type: "Started"} }

// Ended rejects a join to a draft already Finished or Terminated.
func Ended() ServerMessage { return ServerMessage{Type: "Ended"} }

// FatalError announces an unrecoverable draft-wide error.
func FatalError(message string) ServerMessage {
	return ServerMessage{Type: "FatalError", Value: message}
}

// Pack delivers a seat's new current pack.
func Pack(cards []catalog.Card) ServerMessage {
	return ServerMessage{Type: "Pack", Value: cards}
}

// PickSuccessful echoes back the card a seat just picked.
func PickSuccessful(card catalog.Card) ServerMessage {
	return ServerMessage{Type: "PickSuccessful", Value: card}
}

// Finished delivers a seat's final pool.
func Finished(pool []catalog.Card) ServerMessage {
	return ServerMessage{Type: "Finished", Value: pool}
}

// PlayerUpdate broadcasts one seat's changed public details.
func PlayerUpdate(details draft.PlayerDetails) ServerMessage {
	return ServerMessage{Type: "PlayerUpdate", Value: details}
}

// PlayerList broadcasts the full seat roster, e.g. on first join.
func PlayerList(details []draft.PlayerDetails) ServerMessage {
	return ServerMessage{Type: "PlayerList", Value: details}
}

// Refresh tells every connected client of a draft to reload the page,
// e.g. after a state-format migration was detected on restore.
func Refresh() ServerMessage { return ServerMessage{Type: "Refresh"} }
