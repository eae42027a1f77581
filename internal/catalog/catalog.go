// Package catalog builds the immutable universe of cards eligible for a
// single draft from an uploaded card list plus a database (built-in,
// optionally overridden by an uploaded Cockatrice-XML database).
package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
)

type Rarity string

const (
	RarityMythic   Rarity = "Mythic"
	RarityRare     Rarity = "Rare"
	RarityUncommon Rarity = "Uncommon"
	RarityCommon   Rarity = "Common"
	RaritySpecial  Rarity = "Special"
	RarityBonus    Rarity = "Bonus"
)

// Card is immutable once a Catalog has been built.
type Card struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	Set      string `json:"set"`
	Rarity   Rarity `json:"rarity"`
	Text     string `json:"text"`
}

var ErrMalformedDatabase = errors.New("malformed card database")

// UnknownCardError is returned when a line in the uploaded card list has no
// matching entry in either the custom or the built-in database.
type UnknownCardError struct {
	Name string
}

func (e *UnknownCardError) Error() string {
	return fmt.Sprintf("unknown card: %q", e.Name)
}

// Catalog is the immutable, per-draft universe of cards. Build it once;
// never mutate it afterwards.
type Catalog struct {
	all      []Card
	byRarity map[Rarity][]int
	byName   map[string]int
}

// Build parses listText (one card name per line, "#" comments, blank lines
// ignored, trailing whitespace trimmed) and resolves each name against
// custom (entries from an uploaded Cockatrice database, may be nil) falling
// back to builtin. Matching is case-sensitive, per the card-list format.
func Build(listText string, custom, builtin map[string]Card) (*Catalog, error) {
	names, err := parseList(listText)
	if err != nil {
		return nil, err
	}

	cat := &Catalog{
		byRarity: make(map[Rarity][]int),
		byName:   make(map[string]int),
	}

	for _, name := range names {
		card, ok := custom[name]
		if !ok {
			card, ok = builtin[name]
		}
		if !ok {
			return nil, &UnknownCardError{Name: name}
		}

		idx := len(cat.all)
		cat.all = append(cat.all, card)
		cat.byRarity[card.Rarity] = append(cat.byRarity[card.Rarity], idx)
		cat.byName[card.Name] = idx
	}

	return cat, nil
}

func parseList(text string) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading card list: %w", err)
	}
	return names, nil
}

// Lookup returns the card with the given exact name, if it is present in
// this catalog.
func (c *Catalog) Lookup(name string) (Card, bool) {
	idx, ok := c.byName[name]
	if !ok {
		return Card{}, false
	}
	return c.all[idx], true
}

// ByRarity returns all cards of the given rarity, in catalog order.
func (c *Catalog) ByRarity(r Rarity) []Card {
	idxs := c.byRarity[r]
	out := make([]Card, len(idxs))
	for i, idx := range idxs {
		out[i] = c.all[idx]
	}
	return out
}

// All returns every card in the catalog, in the order it was built.
func (c *Catalog) All() []Card {
	out := make([]Card, len(c.all))
	copy(out, c.all)
	return out
}

// Len returns the number of cards in the catalog.
func (c *Catalog) Len() int {
	return len(c.all)
}

// Snapshot returns every card in catalog order, suitable for persisting
// the whole resolved catalog (rather than the list+database it was built
// from) alongside a draft's snapshot.
func (c *Catalog) Snapshot() []Card {
	return c.All()
}

// FromSnapshot rebuilds a Catalog from a previously-resolved card
// sequence, e.g. one produced by Snapshot. Unlike Build, this never
// fails: the cards are already resolved, not names awaiting lookup.
func FromSnapshot(cards []Card) *Catalog {
	cat := &Catalog{
		all:      make([]Card, len(cards)),
		byRarity: make(map[Rarity][]int),
		byName:   make(map[string]int),
	}
	copy(cat.all, cards)
	for idx, card := range cat.all {
		cat.byRarity[card.Rarity] = append(cat.byRarity[card.Rarity], idx)
		cat.byName[card.Name] = idx
	}
	return cat
}
