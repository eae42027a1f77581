package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/boosterdraft/draftd/internal/catalog"
	"github.com/boosterdraft/draftd/internal/draft"
	"github.com/boosterdraft/draftd/internal/packs"
	"github.com/boosterdraft/draftd/internal/registry"
)

const maxUploadBytes = 32 << 20

// Deps bundles what the HTTP surface needs beyond the router itself.
type Deps struct {
	Registry       *registry.Registry
	Builtin        map[string]catalog.Card
	DefaultSeatCap int
	Log            *zap.Logger
}

// uploadedConfig accumulates /api/start's multipart fields into a Spec,
// mirroring the original DraftConfig accumulator in draft/handlers.rs.
type uploadedConfig struct {
	spec packs.Spec
	list string
	seen struct {
		list, packs, cardsPerPack bool
	}
}

// StartDraft implements POST /api/start (spec.md §6): a multipart upload
// of a card list, an optional custom card database, and the pack-
// composition fields, producing a fresh draft and redirecting to its page.
func StartDraft(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			badRequest(w, fmt.Sprintf("failed to parse upload: %v", err))
			return
		}

		custom, cfg, err := parseStartForm(r.MultipartForm)
		if err != nil {
			badRequest(w, err.Error())
			return
		}

		if cfg.list == "" {
			badRequest(w, "no card list provided for draft")
			return
		}

		cat, err := catalog.Build(cfg.list, custom, d.Builtin)
		if err != nil {
			badRequest(w, buildErrorMessage(err))
			return
		}

		if err := packs.Validate(cat, cfg.spec, d.DefaultSeatCap); err != nil {
			badRequest(w, err.Error())
			return
		}

		draftCfg := draft.Config{Packs: cfg.spec, MaxSeats: d.DefaultSeatCap}
		_, id, err := d.Registry.Create(draftCfg, cat)
		if err != nil {
			d.Log.Error("failed to create draft", zap.Error(err))
			serverError(w, fmt.Sprintf("failed to create draft: %v", err))
			return
		}

		redirectTo(w, r, "/"+string(id))
	}
}

func buildErrorMessage(err error) string {
	var unknown *catalog.UnknownCardError
	if errors.As(err, &unknown) {
		return unknown.Error()
	}
	return err.Error()
}

// parseStartForm walks every multipart field, following the original
// implementation's field-by-field accumulation (draft/handlers.rs), except
// unrecognized fields are ignored rather than rejected, matching its `_ =>
// {}` fallthrough.
func parseStartForm(form *multipart.Form) (map[string]catalog.Card, uploadedConfig, error) {
	var cfg uploadedConfig

	custom, err := readCardDatabaseField(form)
	if err != nil {
		return nil, cfg, err
	}

	for name, values := range form.Value {
		if len(values) == 0 {
			continue
		}
		if err := applyFormField(&cfg, name, values[0]); err != nil {
			return nil, cfg, err
		}
	}

	if cfg.spec.UseRarities {
		sum := cfg.spec.RaresPerPack + cfg.spec.UncommonsPerPack + cfg.spec.CommonsPerPack
		if sum != cfg.spec.CardsPerPack {
			return nil, cfg, fmt.Errorf(
				"count of rares (%d) + uncommons (%d) + commons (%d) does not equal cards per pack (%d)",
				cfg.spec.RaresPerPack, cfg.spec.UncommonsPerPack, cfg.spec.CommonsPerPack, cfg.spec.CardsPerPack,
			)
		}
	}

	return custom, cfg, nil
}

func readCardDatabaseField(form *multipart.Form) (map[string]catalog.Card, error) {
	files := form.File["card_database"]
	if len(files) == 0 {
		return nil, nil
	}
	f, err := files[0].Open()
	if err != nil {
		return nil, fmt.Errorf("opening card database: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading card database: %w", err)
	}

	custom, err := catalog.DecodeCockatriceXML(data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load card database: %w", err)
	}
	return custom, nil
}

func applyFormField(cfg *uploadedConfig, name, value string) error {
	switch name {
	case "list":
		cfg.list = value
	case "packs":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid pack count: %q", value)
		}
		cfg.spec.PacksPerSeat = n
	case "cards_per_pack":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid number of cards per pack: %q", value)
		}
		cfg.spec.CardsPerPack = n
	case "unique_cards":
		b, err := parseCheckbox(value)
		if err != nil {
			return fmt.Errorf("invalid checkbox value for unique_cards: %q", value)
		}
		cfg.spec.UniqueCards = b
	case "use_rarities":
		b, err := parseCheckbox(value)
		if err != nil {
			return fmt.Errorf("invalid checkbox value for use_rarities: %q", value)
		}
		cfg.spec.UseRarities = b
	case "mythic_incidence":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 || v > 1 {
			return fmt.Errorf("invalid mythic incidence: %q", value)
		}
		cfg.spec.MythicIncidence = v
	case "rares":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid number of rares per pack: %q", value)
		}
		cfg.spec.RaresPerPack = n
	case "uncommons":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid number of uncommons per pack: %q", value)
		}
		cfg.spec.UncommonsPerPack = n
	case "commons":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid number of commons per pack: %q", value)
		}
		cfg.spec.CommonsPerPack = n
	}
	return nil
}

func parseCheckbox(value string) (bool, error) {
	switch value {
	case "checked", "true", "on":
		return true, nil
	case "unchecked", "false", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized checkbox value %q", value)
	}
}

// Healthz is an operator liveness probe.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
