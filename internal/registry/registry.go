// Package registry implements the Draft Registry & Persistence component
// (spec §4.6): the process-wide mapping from DraftId to a running Session
// Hub, plus the snapshot/restore machinery that lets an engine survive a
// process restart.
package registry

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/draft"
	"github.com/boosterdraft/draftd/internal/hub"
)

// Registry owns every active draft's Hub for the lifetime of the
// process. Constructed once at startup (spec §9: "give it an explicit
// lifecycle ... no ambient access") and passed by reference into the
// HTTP and WebSocket layers.
type Registry struct {
	mu   sync.RWMutex
	hubs map[draft.DraftID]*hub.Hub

	store     *FileStore
	ledger    hub.LifecycleRecorder
	hubConfig hub.Config
	log       *zap.Logger
}

// New constructs an empty Registry that persists through store.
func New(store *FileStore, ledger hub.LifecycleRecorder, hubConfig hub.Config, log *zap.Logger) *Registry {
	return &Registry{
		hubs:      make(map[draft.DraftID]*hub.Hub),
		store:     store,
		ledger:    ledger,
		hubConfig: hubConfig,
		log:       log,
	}
}

// Create builds a brand-new draft with a fresh DraftId, registers its Hub,
// and writes the first snapshot before returning so a crash immediately
// after upload never loses the draft silently.
func (r *Registry) Create(cfg draft.Config, cat *catalog.Catalog) (*hub.Hub, draft.DraftID, error) {
	id := draft.NewDraftID()
	engine := draft.New(id, cfg, cat)

	if err := r.store.Save(engine); err != nil {
		return nil, "", err
	}
	r.ledger.Record(id, draft.PhaseLobby, "draft created")

	h := hub.New(engine, r.hubConfig, r.store, r.ledger, r.log)

	r.mu.Lock()
	r.hubs[id] = h
	r.mu.Unlock()

	return h, id, nil
}

// Get looks up the Hub for an existing DraftId.
func (r *Registry) Get(id draft.DraftID) (*hub.Hub, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hubs[id]
	return h, ok
}

// adopt registers an already-constructed Hub, used by restore.
func (r *Registry) adopt(id draft.DraftID, h *hub.Hub) {
	r.mu.Lock()
	r.hubs[id] = h
	r.mu.Unlock()
}

// Len reports how many drafts are currently registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.hubs)
}

// Shutdown stops every Hub concurrently, combining any errors with
// multierr so one slow or stuck draft does not delay the others.
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	hubs := make([]*hub.Hub, 0, len(r.hubs))
	for _, h := range r.hubs {
		hubs = append(hubs, h)
	}
	r.mu.Unlock()

	var (
		wg   sync.WaitGroup
		errs error
		mu   sync.Mutex
	)
	for _, h := range hubs {
		wg.Add(1)
		go func(h *hub.Hub) {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					mu.Lock()
					errs = multierr.Append(errs, recoveredErr(rec))
					mu.Unlock()
				}
			}()
			h.Shutdown()
		}(h)
	}
	wg.Wait()
	return errs
}

func recoveredErr(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("panic shutting down hub: %v", rec)
}
