package draft

import (
	"errors"
	"unicode/utf8"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/packs"
)

var (
	ErrSeatHasNoCurrentPack = errors.New("seat has no current pack")
	ErrPickIndexOutOfRange  = errors.New("pick index out of range")
	ErrNameLength           = errors.New("name must be between 1 and 32 characters")
)

// Enqueue appends p to the seat's FIFO. If the seat has no current pack,
// the head of the queue is immediately promoted to current. It reports the
// pack that was promoted, if any, so the caller can emit a Pack event.
func (s *Seat) Enqueue(p packs.Pack) (promoted packs.Pack, didPromote bool) {
	s.Queue = append(s.Queue, p)
	return s.promoteIfIdle()
}

func (s *Seat) promoteIfIdle() (packs.Pack, bool) {
	if s.Current != nil || len(s.Queue) == 0 {
		return packs.Pack{}, false
	}
	head := s.Queue[0]
	s.Queue = s.Queue[1:]
	s.Current = &head
	return head, true
}

// Pick removes the card at index from the seat's current pack, appends it
// to the pool, and returns the picked card plus the remainder pack (which
// may be empty). The seat's current slot is cleared and, if the queue is
// non-empty, its head is promoted; promoted reports that pack so the
// caller can emit a Pack event for this same seat.
func (s *Seat) Pick(index int) (card catalog.Card, remainder packs.Pack, promoted packs.Pack, didPromote bool, err error) {
	if s.Current == nil {
		return catalog.Card{}, packs.Pack{}, packs.Pack{}, false, ErrSeatHasNoCurrentPack
	}
	if index < 0 || index >= s.Current.Len() {
		return catalog.Card{}, packs.Pack{}, packs.Pack{}, false, ErrPickIndexOutOfRange
	}

	card, remainder = s.Current.RemoveAt(index)
	s.Pool = append(s.Pool, card)
	s.Current = nil

	promoted, didPromote = s.promoteIfIdle()
	return card, remainder, promoted, didPromote, nil
}

// SetName validates and applies a new display name.
func (s *Seat) SetName(name string) error {
	if n := utf8.RuneCountInString(name); n < 1 || n > 32 {
		return ErrNameLength
	}
	s.Name = name
	return nil
}

// Drained reports whether this seat has nothing left to do in the current
// round: no pack in hand and nothing queued.
func (s *Seat) Drained() bool {
	return s.Current == nil && len(s.Queue) == 0
}
