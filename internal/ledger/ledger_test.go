package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/boosterdraft/draftd/internal/draft"
)

func TestNoopLedger_DoesNotPanic(t *testing.T) {
	n := NoopLedger{Log: zaptest.NewLogger(t)}
	require.NotPanics(t, func() {
		n.Record(draft.NewDraftID(), draft.PhaseLobby, "draft created")
	})
}

func TestEntry_TableName(t *testing.T) {
	require.Equal(t, "lifecycle_entries", Entry{}.TableName())
}
