package npc

import (
	"fmt"

	"github.com/seiyria/landoftherair/internal/game/dice"
	"github.com/seiyria/landoftherair/internal/game/item"
)

// ItemDrop is one entry in a loot table. Chance is a probability in
// (0, 1]; the item name resolves against the item registry when the drop
// actually happens.
type ItemDrop struct {
	Item   string  `yaml:"item"`
	Chance float64 `yaml:"chance"`
}

// LootTable lists the items an NPC can leave behind. Gold is separate; see
// Template.Gold.
type LootTable struct {
	Items []ItemDrop `yaml:"items"`
}

// Validate checks the loot table invariants.
//
// Postcondition: returns nil iff every entry names an item and carries a
// chance in (0, 1]. An empty table is valid.
func (lt *LootTable) Validate() error {
	for i, drop := range lt.Items {
		if drop.Item == "" {
			return fmt.Errorf("loot table: item[%d] must have a non-empty item name", i)
		}
		if drop.Chance <= 0 || drop.Chance > 1.0 {
			return fmt.Errorf("loot table: item[%d] chance must be in (0, 1.0], got %f", i, drop.Chance)
		}
	}
	return nil
}

// chance rolls are done in ten-thousandths so a dice.Source suffices.
const chanceGranularity = 10000

// RollLoot rolls the table against the item registry. Entries naming an
// unknown item are skipped rather than failing the whole corpse.
//
// Precondition: lt must have passed Validate.
// Postcondition: every returned item is freshly instantiated.
func RollLoot(src dice.Source, lt *LootTable, items *item.Registry) []*item.Item {
	if lt == nil || items == nil {
		return nil
	}
	var out []*item.Item
	for _, drop := range lt.Items {
		threshold := int(drop.Chance * chanceGranularity)
		if src.Intn(chanceGranularity) >= threshold {
			continue
		}
		def, ok := items.Get(drop.Item)
		if !ok {
			continue
		}
		out = append(out, item.New(def))
	}
	return out
}

// RollGold rolls a gold amount in [drop.Min, drop.Max].
func RollGold(src dice.Source, drop *GoldDrop) int {
	if drop == nil || drop.Max <= 0 {
		return 0
	}
	if drop.Min == drop.Max {
		return drop.Min
	}
	return dice.Between(src, drop.Min, drop.Max)
}
