package character

import (
	"fmt"
	"strings"

	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/skill"
)

// HandSlot names one of the three hand positions.
type HandSlot string

const (
	LeftHand   HandSlot = "leftHand"
	RightHand  HandSlot = "rightHand"
	PotionHand HandSlot = "potionHand"
)

// HasEmptyHand reports whether at least one weapon hand is free.
func (c *Character) HasEmptyHand() bool {
	return c.LeftHand == nil || c.RightHand == nil
}

// meetsRequirements checks condition, class equippability, and the item's
// stated requirements, ignoring slot occupancy.
func (c *Character) meetsRequirements(it *item.Item) bool {
	if it == nil || !it.HasCondition() || !item.IsEquippable(it.ItemClass) {
		return false
	}
	req := it.Requirements
	if req == nil {
		return true
	}
	if req.Level > 0 && c.Level < req.Level {
		return false
	}
	if len(req.Profession) > 0 {
		found := false
		for _, p := range req.Profession {
			if p == string(c.BaseClass) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if req.Alignment != "" && string(c.Alignment) != req.Alignment {
		return false
	}
	if req.Skill != nil && c.SkillLevel(skill.Type(strings.ToLower(req.Skill.Name))) < req.Skill.Level {
		return false
	}
	return true
}

// CanEquip reports whether it can go into a gear slot right now: bind
// ownership, requirements, and a free compatible slot.
func (c *Character) CanEquip(it *item.Item) bool {
	if it == nil || !it.IsOwnedBy(c.Username) || !c.meetsRequirements(it) {
		return false
	}
	_, ok := c.slotToEquipIn(it)
	return ok
}

// slotToEquipIn picks the gear slot it would occupy. Robes may fill the
// Armor slot or either robe slot; rings take the first free ring slot.
func (c *Character) slotToEquipIn(it *item.Item) (item.Slot, bool) {
	switch {
	case item.IsRobe(it.ItemClass):
		for _, s := range []item.Slot{item.SlotArmor, item.SlotRobe1, item.SlotRobe2} {
			if c.Gear[s] == nil {
				return s, true
			}
		}
		return "", false
	case item.IsArmor(it.ItemClass):
		if c.Gear[item.SlotArmor] != nil {
			return "", false
		}
		return item.SlotArmor, true
	case it.ItemClass == item.ClassRing:
		for _, s := range []item.Slot{item.SlotRing1, item.SlotRing2} {
			if c.Gear[s] == nil {
				return s, true
			}
		}
		return "", false
	default:
		s, ok := item.EquipSlotFor(it.ItemClass)
		if !ok || c.Gear[s] != nil {
			return "", false
		}
		return s, true
	}
}

// Equip places it into its gear slot, refreshes totals, runs the bind
// check, and autocasts the item's permanent effect if it carries one.
//
// Postcondition: returns false and changes nothing when the item cannot be
// equipped.
func (c *Character) Equip(it *item.Item) bool {
	if !c.CanEquip(it) {
		return false
	}
	slot, ok := c.slotToEquipIn(it)
	if !ok {
		return false
	}

	c.Gear[slot] = it
	c.Recalculate()
	c.itemCheck(it)
	c.castEquippedEffect(it)
	return true
}

// Unequip empties a gear slot, retracting any autocast effect the item was
// sustaining.
func (c *Character) Unequip(slot item.Slot) *item.Item {
	it := c.Gear[slot]
	if it == nil {
		return nil
	}
	delete(c.Gear, slot)

	if it.Effect != nil && it.Effect.Autocast {
		if active := c.EffectByName(it.Effect.Name); active != nil {
			c.UnapplyEffect(active, true, false)
		}
	}

	c.Recalculate()
	return it
}

// SetLeftHand swaps the left hand item and refreshes totals.
func (c *Character) SetLeftHand(it *item.Item) {
	c.LeftHand = it
	c.itemCheck(it)
	c.Recalculate()
}

// SetRightHand swaps the right hand item and refreshes totals.
func (c *Character) SetRightHand(it *item.Item) {
	c.RightHand = it
	c.itemCheck(it)
	c.Recalculate()
}

// SetPotionHand swaps the potion hand item. Potion-hand items never grant
// stats, so no recompute.
func (c *Character) SetPotionHand(it *item.Item) {
	c.itemCheck(it)
	c.PotionHand = it
}

// itemCheck runs the bind-on-pickup rules for an item entering this
// character's possession.
func (c *Character) itemCheck(it *item.Item) {
	if it == nil || it.ItemClass == item.ClassCorpse {
		return
	}
	if it.Binds && it.Owner == "" {
		it.SetOwner(c.Username)
		if it.TellsBind {
			c.SendMessageToRadius(fmt.Sprintf("%s has looted %s.", c.Name, it.Desc), 4)
		}
		c.SendMessage(fmt.Sprintf(
			"The %s feels momentarily warm to the touch as it molds to fit your grasp.",
			strings.ToLower(string(it.ItemClass))))
	}
}

// castEquippedEffect applies the item's autocast effect as a permanent
// casting.
func (c *Character) castEquippedEffect(it *item.Item) {
	if it == nil || it.Effect == nil || !it.Effect.Autocast || it.Effect.Name == "" {
		return
	}
	if c.ctx == nil || c.ctx.Effects == nil {
		return
	}
	e, ok := c.ctx.Effects.Create(it.Effect.Name)
	if !ok {
		return
	}
	e.Duration = effect.PermanentDuration
	e.Info.IsPermanent = true
	e.Info.Potency = it.Effect.Potency
	c.ApplyEffect(e)
}

// TryToCastEquippedEffects re-applies the permanent effects of every
// equipped gear item, used after hydration. Held items do not count.
func (c *Character) TryToCastEquippedEffects() {
	for _, slot := range item.AllGearSlots {
		c.castEquippedEffect(c.Gear[slot])
	}
}

// AddItemToSack stows it in the sack. Coins convert straight into the
// currency ledger.
//
// Postcondition: on rejection the reason has been delivered to the player
// and false is returned.
func (c *Character) AddItemToSack(it *item.Item) bool {
	if it != nil && it.ItemClass == item.ClassCoin {
		c.EarnCurrency(CurrencyGold, it.Value)
		return true
	}
	if reason := c.Sack.AddItem(it); reason != "" {
		c.SendMessage(reason)
		return false
	}
	c.itemCheck(it)
	return true
}

// AddItemToBelt stows it on the belt.
func (c *Character) AddItemToBelt(it *item.Item) bool {
	if reason := c.Belt.AddItem(it); reason != "" {
		c.SendMessage(reason)
		return false
	}
	c.itemCheck(it)
	return true
}

// AddItemToPouch stows it in the pouch, if the account has one.
func (c *Character) AddItemToPouch(it *item.Item) bool {
	if c.Pouch == nil {
		c.SendMessage("You do not have a pouch.")
		return false
	}
	if reason := c.Pouch.AddItem(it); reason != "" {
		c.SendMessage(reason)
		return false
	}
	c.itemCheck(it)
	return true
}

// HasHeldItem reports whether the named item sits in the given hand and is
// usable by this character.
func (c *Character) HasHeldItem(name string, h HandSlot) bool {
	var ref *item.Item
	switch h {
	case LeftHand:
		ref = c.LeftHand
	case RightHand:
		ref = c.RightHand
	}
	return ref != nil && ref.Name == name && ref.IsOwnedBy(c.Username)
}

// HasHeldItems reports whether the two named items are held, one per hand,
// in either arrangement.
func (c *Character) HasHeldItems(item1, item2 string) bool {
	return (c.HasHeldItem(item1, RightHand) && c.HasHeldItem(item2, LeftHand)) ||
		(c.HasHeldItem(item2, RightHand) && c.HasHeldItem(item1, LeftHand))
}

// handItem returns the item in the given hand slot.
func (c *Character) handItem(h HandSlot) *item.Item {
	switch h {
	case LeftHand:
		return c.LeftHand
	case RightHand:
		return c.RightHand
	case PotionHand:
		return c.PotionHand
	}
	return nil
}

func (c *Character) clearHand(h HandSlot) {
	switch h {
	case LeftHand:
		c.LeftHand = nil
	case RightHand:
		c.RightHand = nil
	case PotionHand:
		c.PotionHand = nil
	}
}

// UseItem consumes a use of the item in the given hand: its effect fires at
// the item's potency, ounce bookkeeping runs, and an emptied consumable
// leaves the hand. Succor consumables whisk the character home.
func (c *Character) UseItem(h HandSlot) {
	it := c.handItem(h)
	if it == nil || !it.IsOwnedBy(c.Username) || !it.HasCondition() {
		return
	}

	if it.Effect != nil && !it.Effect.Autocast && c.ctx != nil && c.ctx.Effects != nil {
		if e, ok := c.ctx.Effects.Create(it.Effect.Name); ok {
			e.Info.Potency = it.Effect.Potency
			c.ApplyEffect(e)
		}
	}

	remove := false
	if it.ItemClass == item.ClassBottle && it.Ounces == 0 {
		c.SendMessage("The bottle was empty.")
		remove = true
	} else if it.Ounces > 0 {
		it.Ounces--
		if it.Ounces <= 0 {
			remove = true
		}
	}

	if remove {
		c.clearHand(h)
		c.Recalculate()
	}

	if it.Succor != nil {
		c.doSuccor(it.Succor)
	}
}

func (c *Character) doSuccor(info *item.SuccorInfo) {
	c.SendMessage("You are whisked back to the place in your stored memories!")
	if c.ctx != nil && c.ctx.Teleport != nil {
		c.ctx.Teleport.Teleport(c, Destination{Map: info.Map, X: info.X, Y: info.Y})
	}
}
