package httpapi

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/draft"
	"github.com/boosterdraft/draftd/internal/hub"
	"github.com/boosterdraft/draftd/internal/registry"
)

type noopLedger struct{}

func (noopLedger) Record(draft.DraftID, draft.Phase, string) {}

func testDeps(t *testing.T) Deps {
	t.Helper()
	store, err := registry.NewFileStore(t.TempDir())
	require.NoError(t, err)

	reg := registry.New(store, noopLedger{}, hub.Config{
		HeartbeatInterval: time.Second,
		WarningThreshold:  time.Second,
		ErrorThreshold:    time.Second,
	}, zap.NewNop())

	return Deps{
		Registry:       reg,
		Builtin:        catalog.BuiltinDatabase(),
		DefaultSeatCap: 8,
		Log:            zap.NewNop(),
	}
}

func writeMultipartForm(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestStartDraft_RejectsMissingList(t *testing.T) {
	body, contentType := writeMultipartForm(t, map[string]string{
		"packs":          "3",
		"cards_per_pack": "2",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/start", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	StartDraft(testDeps(t))(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStartDraft_RejectsUnknownCard(t *testing.T) {
	body, contentType := writeMultipartForm(t, map[string]string{
		"list":           "Nonexistent Card\n",
		"packs":          "1",
		"cards_per_pack": "1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/start", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	StartDraft(testDeps(t))(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStartDraft_SucceedsAndRedirects(t *testing.T) {
	body, contentType := writeMultipartForm(t, map[string]string{
		"list":           "Black Lotus\nLightning Bolt\n",
		"packs":          "1",
		"cards_per_pack": "2",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/start", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	StartDraft(testDeps(t))(rr, req)

	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.NotEmpty(t, rr.Header().Get("Location"))
}

func TestStartDraft_RejectsMismatchedRaritySum(t *testing.T) {
	body, contentType := writeMultipartForm(t, map[string]string{
		"list":           "Black Lotus\n",
		"packs":          "1",
		"cards_per_pack": "4",
		"use_rarities":   "checked",
		"rares":          "1",
		"uncommons":      "1",
		"commons":        "1",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/start", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()

	StartDraft(testDeps(t))(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)
}
