package npc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollLootRespectsChance(t *testing.T) {
	table := &LootTable{Items: []ItemDrop{
		{Item: "Rat Tail", Chance: 0.5},
		{Item: "Rusty Dagger", Chance: 0.5},
	}}
	items := testItems()

	// first roll under the 5000 threshold, second over it
	src := &seqSource{values: []int{100, 9000}}
	drops := RollLoot(src, table, items)
	require.Len(t, drops, 1)
	assert.Equal(t, "Rat Tail", drops[0].Name)
}

func TestRollLootSkipsUnknownItems(t *testing.T) {
	table := &LootTable{Items: []ItemDrop{
		{Item: "Crown of the Unwritten", Chance: 1.0},
	}}
	drops := RollLoot(&seqSource{values: []int{0}}, table, testItems())
	assert.Empty(t, drops)
}

func TestRollLootNilTable(t *testing.T) {
	assert.Nil(t, RollLoot(&seqSource{}, nil, testItems()))
}

func TestRollGold(t *testing.T) {
	assert.Zero(t, RollGold(&seqSource{}, nil))
	assert.Zero(t, RollGold(&seqSource{}, &GoldDrop{Min: 0, Max: 0}))
	assert.Equal(t, 7, RollGold(&seqSource{}, &GoldDrop{Min: 7, Max: 7}))

	got := RollGold(&seqSource{values: []int{3}}, &GoldDrop{Min: 10, Max: 20})
	assert.Equal(t, 13, got)
}
