package catalog

import (
	"encoding/xml"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

type xmlCardSet struct {
	Rarity string `xml:"rarity,attr"`
	Image  string `xml:"picURL,attr"`
	Name   string `xml:",chardata"`
}

type xmlCard struct {
	Name string     `xml:"name"`
	Set  xmlCardSet `xml:"set"`
	Text string     `xml:"text"`
}

type xmlCardList struct {
	Cards []xmlCard `xml:"card"`
}

type xmlCardDatabase struct {
	XMLName xml.Name    `xml:"cockatrice_carddatabase"`
	Cards   xmlCardList `xml:"cards"`
}

// DecodeCockatriceXML parses a Cockatrice-shaped card database XML document
// into a map from exact card name to Card. Cards whose rarity does not map
// to one of the six known rarities are skipped, matching the reference
// implementation's card.rarity() filter. log may be nil.
func DecodeCockatriceXML(data []byte, log *zap.Logger) (map[string]Card, error) {
	var doc xmlCardDatabase
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDatabase, err)
	}

	out := make(map[string]Card, len(doc.Cards.Cards))
	for _, xc := range doc.Cards.Cards {
		rarity, ok := parseRarity(xc.Set.Rarity)
		if !ok {
			continue
		}
		out[xc.Name] = Card{
			Name:     xc.Name,
			ImageURL: xc.Set.Image,
			Set:      strings.TrimSpace(xc.Set.Name),
			Rarity:   rarity,
			Text:     xc.Text,
		}
	}

	if log != nil {
		for _, name := range detectCaseCollisions(out) {
			log.Warn("card database has names differing only by case", zap.String("name", name))
		}
	}

	return out, nil
}

func parseRarity(raw string) (Rarity, bool) {
	// Cockatrice databases sometimes write "Mythic Rare" instead of plain
	// "Mythic"; strip the trailing qualifier before matching.
	s := strings.TrimSuffix(raw, " Rare")
	switch s {
	case "Mythic":
		return RarityMythic, true
	case "Rare":
		return RarityRare, true
	case "Uncommon":
		return RarityUncommon, true
	case "Common":
		return RarityCommon, true
	case "Special":
		return RaritySpecial, true
	case "Bonus":
		return RarityBonus, true
	default:
		return "", false
	}
}

// detectCaseCollisions reports card names that are identical once
// case-folded but differ in the raw database, a diagnostic for inconsistent
// uploads; it never changes which card wins.
func detectCaseCollisions(cards map[string]Card) []string {
	folder := cases.Fold()
	seen := make(map[string]string, len(cards))
	var collided []string
	for name := range cards {
		key := folder.String(name)
		if existing, ok := seen[key]; ok && existing != name {
			collided = append(collided, name)
			continue
		}
		seen[key] = name
	}
	return collided
}
