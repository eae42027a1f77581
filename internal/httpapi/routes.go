package httpapi

import (
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/boosterdraft/draftd/internal/ws"
)

// SetupRoutes wires the HTTP and WebSocket surface described in spec.md
// §6: the config form, the upload endpoint, per-draft pages, static
// assets, and the WebSocket upgrade routes.
func SetupRoutes(d Deps, contentDir string, log *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Post("/api/start", StartDraft(d))
	r.Get("/healthz", Healthz)

	r.Get("/ws/{draftId}", ws.Handler(d.Registry, log))
	r.Get("/ws/{draftId}/{seatId}", ws.Handler(d.Registry, log))

	r.Get("/{draftId}", serveDraftPage(contentDir))

	fileServer := http.FileServer(http.Dir(contentDir))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})

	return r
}

// serveDraftPage answers GET /{DraftId} with the static draft page; the
// client's JS bootstraps its own WebSocket connection from the URL.
func serveDraftPage(contentDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join(contentDir, "draft.html"))
	}
}
