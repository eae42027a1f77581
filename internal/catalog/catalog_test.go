package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ResolvesAgainstCustomThenBuiltin(t *testing.T) {
	builtin := BuiltinDatabase()
	custom := map[string]Card{
		"Black Lotus": {Name: "Black Lotus", Rarity: RarityRare, Set: "CUSTOM"},
	}

	list := "# comment\nBlack Lotus\n\nLightning Bolt\n  \nIsland  \n"
	cat, err := Build(list, custom, builtin)
	require.NoError(t, err)
	assert.Equal(t, 3, cat.Len())

	lotus, ok := cat.Lookup("Black Lotus")
	require.True(t, ok)
	assert.Equal(t, RarityRare, lotus.Rarity, "custom database entry should override builtin")
	assert.Equal(t, "CUSTOM", lotus.Set)

	bolt, ok := cat.Lookup("Lightning Bolt")
	require.True(t, ok)
	assert.Equal(t, RarityRare, bolt.Rarity)
}

func TestBuild_UnknownCard(t *testing.T) {
	_, err := Build("Not A Real Card", nil, BuiltinDatabase())
	require.Error(t, err)
	var unknown *UnknownCardError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Not A Real Card", unknown.Name)
}

func TestBuild_CaseSensitiveMatch(t *testing.T) {
	_, err := Build("black lotus", nil, BuiltinDatabase())
	require.Error(t, err, "card names must match case-sensitively")
}

func TestByRarity(t *testing.T) {
	cat, err := Build("Black Lotus\nAncestral Recall\nLightning Bolt", nil, BuiltinDatabase())
	require.NoError(t, err)
	assert.Len(t, cat.ByRarity(RarityMythic), 2)
	assert.Len(t, cat.ByRarity(RarityRare), 1)
	assert.Len(t, cat.ByRarity(RarityCommon), 0)
}
