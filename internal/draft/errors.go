package draft

import "errors"

var (
	ErrWrongPhase       = errors.New("operation not legal in current phase")
	ErrDraftFull        = errors.New("draft is at its seat cap")
	ErrNotEnoughSeats   = errors.New("at least 2 seats are required to start")
	ErrCatalogNotLoaded = errors.New("no catalog loaded for this draft")
	ErrUnknownSeat      = errors.New("no such seat in this draft")
	// ErrInvariantViolated is the sentinel wrapped by assertion failures
	// that force a transition to Terminated. It should never be observed
	// in a correct build; surfacing it means a real bug.
	ErrInvariantViolated = errors.New("draft engine invariant violated")
)
