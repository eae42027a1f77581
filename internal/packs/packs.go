// Package packs implements the pack-generation algorithm: turning a
// catalog and a pack-composition policy into the full, reproducible
// sequence of boosters for a draft.
package packs

import (
	"errors"
	"math/rand"

	"github.com/boosterdraft/draftd/internal/catalog"
)

// ErrCatalogExhausted is returned when unique_cards generation needs to
// draw from a rarity bucket (or the whole catalog, in no-rarity mode) that
// has already been fully consumed.
var ErrCatalogExhausted = errors.New("catalog exhausted")

// Spec is the draft's pack-composition policy (PackSpec in the data
// model).
type Spec struct {
	PacksPerSeat     int     `json:"packs_per_seat"`
	CardsPerPack     int     `json:"cards_per_pack"`
	UniqueCards      bool    `json:"unique_cards"`
	UseRarities      bool    `json:"use_rarities"`
	RaresPerPack     int     `json:"rares_per_pack"`
	UncommonsPerPack int     `json:"uncommons_per_pack"`
	CommonsPerPack   int     `json:"commons_per_pack"`
	MythicIncidence  float64 `json:"mythic_incidence"`
}

// Pack is an ordered sequence of cards dealt to a seat in one round. Its
// length shrinks by one each time it is picked from and passed along.
type Pack struct {
	Cards []catalog.Card `json:"cards"`
}

func (p Pack) Len() int {
	return len(p.Cards)
}

func (p Pack) IsEmpty() bool {
	return len(p.Cards) == 0
}

// RemoveAt removes and returns the card at index, along with the pack that
// remains after removal. The receiver is left untouched; callers replace
// their copy with the returned remainder.
func (p Pack) RemoveAt(index int) (catalog.Card, Pack) {
	card := p.Cards[index]
	remainder := make([]catalog.Card, 0, len(p.Cards)-1)
	remainder = append(remainder, p.Cards[:index]...)
	remainder = append(remainder, p.Cards[index+1:]...)
	return card, Pack{Cards: remainder}
}

// Validate checks that the catalog has enough cards of each relevant
// rarity (or, in no-rarity mode, enough cards overall) to satisfy unique
// generation demand for the given seat count. It is a precondition check
// run at upload time, independent of generation itself.
func Validate(cat *catalog.Catalog, spec Spec, seatCount int) error {
	if !spec.UniqueCards {
		return nil
	}

	total := seatCount * spec.PacksPerSeat
	if !spec.UseRarities {
		if cat.Len() < total*spec.CardsPerPack {
			return ErrCatalogTooSmall
		}
		return nil
	}

	if len(cat.ByRarity(catalog.RarityRare)) < total*spec.RaresPerPack {
		return ErrCatalogTooSmall
	}
	if len(cat.ByRarity(catalog.RarityUncommon)) < total*spec.UncommonsPerPack {
		return ErrCatalogTooSmall
	}
	if len(cat.ByRarity(catalog.RarityCommon)) < total*spec.CommonsPerPack {
		return ErrCatalogTooSmall
	}
	return nil
}

// ErrCatalogTooSmall is returned by Validate when the catalog cannot
// possibly satisfy unique-card demand for the configured pack count, card
// count, and seat count.
var ErrCatalogTooSmall = errors.New("catalog too small for requested draft configuration")

// Generate produces seatCount*spec.PacksPerSeat packs from the catalog
// under spec, using rng for every random draw. Given an identical
// (catalog, spec, seatCount) and an rng seeded identically, the sequence
// produced is identical (P6).
func Generate(cat *catalog.Catalog, spec Spec, seatCount int, rng *rand.Rand) ([]Pack, error) {
	total := seatCount * spec.PacksPerSeat
	out := make([]Pack, total)

	if !spec.UseRarities {
		return generateUnweighted(cat, spec, out, rng)
	}
	return generateWeighted(cat, spec, out, rng)
}

func generateUnweighted(cat *catalog.Catalog, spec Spec, out []Pack, rng *rand.Rand) ([]Pack, error) {
	pool := cat.All()

	var bucket *drawPool
	if spec.UniqueCards {
		bucket = newDrawPool(pool, rng)
	}

	for i := range out {
		cards := make([]catalog.Card, 0, spec.CardsPerPack)
		for j := 0; j < spec.CardsPerPack; j++ {
			card, ok := draw(bucket, pool, rng)
			if !ok {
				return nil, ErrCatalogExhausted
			}
			cards = append(cards, card)
		}
		out[i] = Pack{Cards: cards}
	}
	return out, nil
}

func generateWeighted(cat *catalog.Catalog, spec Spec, out []Pack, rng *rand.Rand) ([]Pack, error) {
	mythics := cat.ByRarity(catalog.RarityMythic)
	rares := cat.ByRarity(catalog.RarityRare)
	uncommons := cat.ByRarity(catalog.RarityUncommon)
	commons := cat.ByRarity(catalog.RarityCommon)

	var mythicPool, rarePool, uncommonPool, commonPool *drawPool
	if spec.UniqueCards {
		mythicPool = newDrawPool(mythics, rng)
		rarePool = newDrawPool(rares, rng)
		uncommonPool = newDrawPool(uncommons, rng)
		commonPool = newDrawPool(commons, rng)
	}

	for i := range out {
		cards := make([]catalog.Card, 0, spec.RaresPerPack+spec.UncommonsPerPack+spec.CommonsPerPack)

		for s := 0; s < spec.RaresPerPack; s++ {
			card, ok := drawRareSlot(rng, spec.MythicIncidence, mythicPool, mythics, rarePool, rares)
			if !ok {
				return nil, ErrCatalogExhausted
			}
			cards = append(cards, card)
		}

		for s := 0; s < spec.UncommonsPerPack; s++ {
			card, ok := draw(uncommonPool, uncommons, rng)
			if !ok {
				return nil, ErrCatalogExhausted
			}
			cards = append(cards, card)
		}

		for s := 0; s < spec.CommonsPerPack; s++ {
			card, ok := draw(commonPool, commons, rng)
			if !ok {
				return nil, ErrCatalogExhausted
			}
			cards = append(cards, card)
		}

		out[i] = Pack{Cards: cards}
	}
	return out, nil
}

// drawRareSlot fills one rare slot: with probability mythicIncidence it
// tries the mythic bucket first, falling back to rare (never an error) if
// mythic is exhausted or empty.
func drawRareSlot(rng *rand.Rand, mythicIncidence float64, mythicPool *drawPool, mythics []catalog.Card, rarePool *drawPool, rares []catalog.Card) (catalog.Card, bool) {
	if rng.Float64() < mythicIncidence {
		if card, ok := draw(mythicPool, mythics, rng); ok {
			return card, true
		}
	}
	return draw(rarePool, rares, rng)
}

// draw pulls one card from bucket without replacement if pool is non-nil
// (unique_cards mode), otherwise with replacement from the full slice.
func draw(pool *drawPool, withReplacement []catalog.Card, rng *rand.Rand) (catalog.Card, bool) {
	if pool != nil {
		return pool.draw()
	}
	if len(withReplacement) == 0 {
		return catalog.Card{}, false
	}
	return withReplacement[rng.Intn(len(withReplacement))], true
}

// drawPool is a shuffled, single-use copy of a rarity bucket (or the whole
// catalog) consumed front-to-back, giving without-replacement draws for
// the lifetime of one Generate call.
type drawPool struct {
	cards []catalog.Card
	pos   int
}

func newDrawPool(cards []catalog.Card, rng *rand.Rand) *drawPool {
	shuffled := make([]catalog.Card, len(cards))
	copy(shuffled, cards)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return &drawPool{cards: shuffled}
}

func (b *drawPool) draw() (catalog.Card, bool) {
	if b.pos >= len(b.cards) {
		return catalog.Card{}, false
	}
	c := b.cards[b.pos]
	b.pos++
	return c, true
}
