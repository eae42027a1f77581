package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDatabase = `<?xml version="1.0" encoding="UTF-8"?>
<cockatrice_carddatabase version="3">
  <sets>
    <set>
      <name>KR2</name>
      <longname>KR2</longname>
    </set>
  </sets>
  <cards>
    <card>
      <name>Nibbles, Corpse Companion</name>
      <set rarity="Uncommon" picURL="https://mtg.design/i/vjre15.jpg">KR2</set>
      <manacost>G/B</manacost>
      <cmc>1</cmc>
      <type>Legendary Creature - Zombie Squirrel</type>
      <text>Each other Zombie or Gnome creature you control enters with a counter.</text>
    </card>
    <card>
      <name>Ur-Dragon</name>
      <set rarity="Mythic Rare" picURL="https://mtg.design/i/ur.jpg">KR2</set>
      <text>Flying.</text>
    </card>
    <card>
      <name>Unreadable</name>
      <set rarity="Land" picURL="https://mtg.design/i/x.jpg">KR2</set>
      <text>Skipped: unknown rarity.</text>
    </card>
  </cards>
</cockatrice_carddatabase>`

func TestDecodeCockatriceXML(t *testing.T) {
	cards, err := DecodeCockatriceXML([]byte(sampleDatabase), nil)
	require.NoError(t, err)

	nibbles, ok := cards["Nibbles, Corpse Companion"]
	require.True(t, ok)
	assert.Equal(t, RarityUncommon, nibbles.Rarity)
	assert.Equal(t, "https://mtg.design/i/vjre15.jpg", nibbles.ImageURL)
	assert.Equal(t, "KR2", nibbles.Set)

	dragon, ok := cards["Ur-Dragon"]
	require.True(t, ok)
	assert.Equal(t, RarityMythic, dragon.Rarity, `"Mythic Rare" must normalize to Mythic`)

	_, ok = cards["Unreadable"]
	assert.False(t, ok, "cards with unrecognised rarity are skipped")
}

func TestDecodeCockatriceXML_Malformed(t *testing.T) {
	_, err := DecodeCockatriceXML([]byte("not xml at all <<<"), nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrMalformedDatabase)
}
