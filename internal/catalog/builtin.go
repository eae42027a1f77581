package catalog

// BuiltinDatabase returns a small hardcoded fallback database, covering a
// handful of well-known cards of Mythic, Rare, Uncommon and Common rarity
// so that a draft can be started without an uploaded custom database. Production
// deployments are expected to upload a full Cockatrice database; this is a
// smoke-test fixture, not a complete card pool.
func BuiltinDatabase() map[string]Card {
	cards := []Card{
		{Name: "Black Lotus", Set: "LEA", Rarity: RarityMythic, ImageURL: "https://example.com/cards/black-lotus.jpg", Text: "Sacrifice Black Lotus: Add three mana of any one color."},
		{Name: "Ancestral Recall", Set: "LEA", Rarity: RarityMythic, ImageURL: "https://example.com/cards/ancestral-recall.jpg", Text: "Target player draws three cards."},
		{Name: "Lightning Bolt", Set: "LEA", Rarity: RarityRare, ImageURL: "https://example.com/cards/lightning-bolt.jpg", Text: "Lightning Bolt deals 3 damage to any target."},
		{Name: "Swords to Plowshares", Set: "LEA", Rarity: RarityRare, ImageURL: "https://example.com/cards/swords-to-plowshares.jpg", Text: "Exile target creature. Its controller gains life equal to its power."},
		{Name: "Counterspell", Set: "LEA", Rarity: RarityUncommon, ImageURL: "https://example.com/cards/counterspell.jpg", Text: "Counter target spell."},
		{Name: "Giant Growth", Set: "LEA", Rarity: RarityUncommon, ImageURL: "https://example.com/cards/giant-growth.jpg", Text: "Target creature gets +3/+3 until end of turn."},
		{Name: "Llanowar Elves", Set: "LEA", Rarity: RarityCommon, ImageURL: "https://example.com/cards/llanowar-elves.jpg", Text: "Tap: Add G."},
		{Name: "Grizzly Bears", Set: "LEA", Rarity: RarityCommon, ImageURL: "https://example.com/cards/grizzly-bears.jpg", Text: "A 2/2 bear for two mana."},
		{Name: "Island", Set: "LEA", Rarity: RarityCommon, ImageURL: "https://example.com/cards/island.jpg", Text: "Tap: Add U."},
		{Name: "Forest", Set: "LEA", Rarity: RarityCommon, ImageURL: "https://example.com/cards/forest.jpg", Text: "Tap: Add G."},
	}

	out := make(map[string]Card, len(cards))
	for _, c := range cards {
		out[c.Name] = c
	}
	return out
}
