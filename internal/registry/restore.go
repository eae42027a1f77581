package registry

import (
	"context"

	"golang.org/x/sync/errgroup"

	"go.uber.org/zap"

	"github.com/boosterdraft/draftd/internal/draft"
	"github.com/boosterdraft/draftd/internal/hub"
)

// restoreConcurrency bounds how many snapshot files are decoded and
// reconstructed into Engines at once, per SPEC_FULL §5.
const restoreConcurrency = 8

// Restore scans store's data directory and reconstructs every draft it
// finds, registering a fresh Hub for each. A snapshot whose Version this
// build does not recognize is skipped and logged, never deleted (spec
// §6). Restoration of distinct drafts is independent, so one corrupt
// file does not prevent the others from coming back.
func Restore(ctx context.Context, store *FileStore, ledger hub.LifecycleRecorder, hubConfig hub.Config, log *zap.Logger) (*Registry, error) {
	r := New(store, ledger, hubConfig, log)

	ids, err := store.List()
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(restoreConcurrency)

	for _, id := range ids {
		id := id
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			r.restoreOne(id)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	log.Info("registry restore complete", zap.Int("drafts", r.Len()))
	return r, nil
}

func (r *Registry) restoreOne(id draft.DraftID) {
	snap, err := r.store.Load(id)
	if err != nil {
		r.log.Error("failed to read snapshot", zap.String("draft_id", string(id)), zap.Error(err))
		return
	}
	if snap.Version != draft.SnapshotVersion {
		r.log.Warn("skipping snapshot with unrecognized version",
			zap.String("draft_id", string(id)), zap.Int("version", snap.Version))
		return
	}

	engine := draft.Restore(snap)
	h := hub.New(engine, r.hubConfig, r.store, r.ledger, r.log)
	r.adopt(id, h)
	r.log.Info("restored draft", zap.String("draft_id", string(id)), zap.String("phase", string(engine.Phase)))
}
