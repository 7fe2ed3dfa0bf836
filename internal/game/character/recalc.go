package character

import (
	"math"

	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/game/stat"
	"github.com/seiyria/landoftherair/internal/game/trait"
)

// Recalculate rebuilds the derived stat layer from scratch. The pipeline is
// order-sensitive: later stages read partial sums from earlier ones, so the
// stages below must not be reordered.
//
// Postcondition: totals are a pure function of base stats, active effects,
// qualifying equipment, class, traits, party, and owner bonuses; calling
// Recalculate again without intervening mutation yields identical totals.
func (c *Character) Recalculate() {
	wasRecursing := c.inRecalc
	c.inRecalc = true
	defer func() { c.inRecalc = wasRecursing }()

	totals := c.BaseStats.Clone()
	totals.AddAll(c.additionalStats)

	for _, e := range c.Effects {
		totals.AddAll(e.Boosts)
	}

	totals.AddAll(class.ForName(c.BaseClass).CalcBonusStats(c.classView()))

	encrustCounts := map[string]int{}
	for _, slot := range item.AllGearSlots {
		gearItem := c.Gear[slot]
		if gearItem == nil || !c.meetsRequirements(gearItem) {
			continue
		}
		c.foldItemStats(totals, gearItem, encrustCounts)
	}

	if c.LeftHand != nil && c.canGetBonusFromItemInHand(c.LeftHand, left) {
		c.foldItemStats(totals, c.LeftHand, encrustCounts)
	}
	if c.RightHand != nil && c.canGetBonusFromItemInHand(c.RightHand, right) {
		c.foldItemStats(totals, c.RightHand, encrustCounts)
	}

	c.adjustStatsForTraits(totals)
	c.adjustStatsForPartyAbilities(totals)

	c.totalStats = totals
	c.rederiveHPMP()

	totals.Add(stat.Stealth, c.TraitLevel(trait.DarkerShadows)*5)
	if totals.Get(stat.Stealth) > 0 {
		totals.Add(stat.Stealth, -c.HidePenalty())
	}

	totals.Add(stat.Perception, c.PerceptionLevel())

	c.reconcileEncumberance()

	if c.applyOwnerBonuses(totals) {
		c.rederiveHPMP()
	}

	if !wasRecursing {
		c.recalculatePets()
	}
}

// rederiveHPMP re-derives the HP/MP maxima from the current totals and
// re-clamps the current values. MP is forced to 0 for characters whose base
// mp stat is exactly 0; they have no mana pool at all.
func (c *Character) rederiveHPMP() {
	hpMax := c.totalStats.Get(stat.HP)
	if hpMax < 1 {
		hpMax = 1
	}
	c.HP.SetMaximum(hpMax)

	mpMax := c.totalStats.Get(stat.MP)
	if mpMax < 0 || c.BaseStats.Get(stat.MP) == 0 {
		mpMax = 0
	}
	c.MP.SetMaximum(mpMax)
}

// foldItemStats folds one item's stats into totals, encrust bonuses
// included. Encrust stats stack across items only up to the encrust type's
// max-stack count; ReflectiveEncrusting mirrors in one extra application per
// trait level.
func (c *Character) foldItemStats(totals stat.Stats, it *item.Item, encrustCounts map[string]int) {
	totals.AddAll(it.Stats)
	if it.Encrust == nil {
		return
	}

	maxStack := it.Encrust.MaxStack
	if maxStack <= 0 {
		maxStack = 1
	}
	maxStack += c.TraitLevel(trait.ReflectiveEncrusting)

	if encrustCounts[it.Encrust.Name] >= maxStack {
		return
	}
	encrustCounts[it.Encrust.Name]++
	totals.AddAll(it.Encrust.Stats)
}

type hand int

const (
	left hand = iota
	right
)

// canGetBonusFromItemInHand applies the hand-bonus eligibility rules that
// keep stat stacking out of unsanctioned dual-wield setups:
//   - a shield in the right hand, or next to a two-hander, needs the
//     Shieldbearer trait;
//   - ammunition in the left hand counts only when the right hand can fire
//     it;
//   - any other non-offhand weapon grants nothing from the left hand.
func (c *Character) canGetBonusFromItemInHand(it *item.Item, h hand) bool {
	if !c.meetsRequirements(it) || !item.GivesBonusInHand(it.ItemClass) {
		return false
	}

	if it.ItemClass == item.ClassShield {
		if h == right {
			return c.TraitLevel(trait.Shieldbearer) > 0
		}
		if c.RightHand != nil && item.IsTwoHanded(c.RightHand.ItemClass) {
			return c.TraitLevel(trait.Shieldbearer) > 0
		}
		return true
	}

	if item.IsAmmunition(it.ItemClass) {
		return h == left && c.RightHand != nil && item.CanFireAmmunition(c.RightHand.ItemClass)
	}

	if h == left && item.IsWeapon(it.ItemClass) && !it.IsOffhand {
		return false
	}

	return true
}

// adjustStatsForTraits folds the table-driven trait stat bonuses.
func (c *Character) adjustStatsForTraits(totals stat.Stats) {
	totals.Add(stat.ArmorClass, c.TraitLevel(trait.NaturalArmor))
	totals.Add(stat.Accuracy, c.TraitLevel(trait.EagleEye))
	totals.Add(stat.Defense, c.TraitLevel(trait.FunkyMoves))
	totals.Add(stat.Offense, c.TraitLevel(trait.SwordTricks))

	totals.Add(stat.MP, c.TraitLevel(trait.MagicBoost))
	totals.Add(stat.MPRegen, c.TraitLevel(trait.CalmMind))

	totals.Add(stat.Offense, c.TraitLevel(trait.Swashbuckler))
	totals.Add(stat.Accuracy, c.TraitLevel(trait.Deadeye))
}

// adjustStatsForPartyAbilities folds the party aura traits, active only
// while the member level spread allows party abilities.
func (c *Character) adjustStatsForPartyAbilities(totals stat.Stats) {
	p := c.partyFor(c.Username)
	if p == nil || !p.CanApplyPartyAbilities() {
		return
	}

	totals.Add(stat.Defense, c.TraitLevel(trait.PartyDefense))
	totals.Add(stat.Offense, c.TraitLevel(trait.PartyOffense))
	totals.Add(stat.MP, c.TraitLevel(trait.PartyMana))
	totals.Add(stat.HP, c.TraitLevel(trait.PartyHealth))
	totals.Add(stat.MPRegen, c.TraitLevel(trait.PartyManaRegeneration))
	totals.Add(stat.HPRegen, c.TraitLevel(trait.PartyHealthRegeneration))
}

// reconcileEncumberance ensures the Encumbered effect exactly mirrors the
// character's heavy-gear state. The effects map is edited directly rather
// than through ApplyEffect so the reconciliation cannot re-enter the
// pipeline.
func (c *Character) reconcileEncumberance() {
	shouldBe := false
	if class.ForName(c.BaseClass).CanBeEncumbered() {
		for _, gearItem := range c.Gear {
			if gearItem != nil && gearItem.IsHeavy {
				shouldBe = true
				break
			}
		}
	}

	existing, has := c.Effects[effect.Encumbered]
	switch {
	case shouldBe && !has:
		e := c.encumberedEffect()
		c.Effects[effect.Encumbered] = e
		c.totalStats.AddAll(e.Boosts)
		if b := c.behavior(e.Name); b.OnStart != nil {
			b.OnStart(c, e)
		}
	case !shouldBe && has:
		for s, v := range existing.Boosts {
			c.totalStats.Add(s, -v)
		}
		if b := c.behavior(existing.Name); b.OnEnd != nil {
			b.OnEnd(c, existing)
		}
		delete(c.Effects, effect.Encumbered)
	}
}

// encumberedEffect builds the Encumbered instance, preferring the content
// registry's definition so its boosts and messages stay data-driven.
func (c *Character) encumberedEffect() *effect.Effect {
	if c.ctx != nil && c.ctx.Effects != nil {
		if e, ok := c.ctx.Effects.Create(effect.Encumbered); ok {
			e.Duration = effect.PermanentDuration
			e.Info.IsPermanent = true
			return e
		}
	}
	return &effect.Effect{
		Name:         effect.Encumbered,
		Duration:     effect.PermanentDuration,
		Info:         effect.Info{IsPermanent: true},
		Boosts:       stat.Stats{stat.Move: -1, stat.Stealth: -10},
		StartMessage: "You feel the weight of your armor press down on you.",
		EndMessage:   "Your movements feel free again.",
	}
}

// applyOwnerBonuses folds the familiar bonuses a summoned pet inherits from
// its owner's traits. Reports whether anything was folded.
func (c *Character) applyOwnerBonuses(totals stat.Stats) bool {
	if c.OwnerUUID == "" || c.ctx == nil || c.ctx.World == nil {
		return false
	}
	owner := c.ctx.World.CharacterByUUID(c.OwnerUUID)
	if owner == nil {
		return false
	}

	strength := owner.TraitLevel(trait.FamiliarStrength)
	fortitude := owner.TraitLevel(trait.FamiliarFortitude)
	if strength == 0 && fortitude == 0 {
		return false
	}

	totals.Add(stat.Str, strength)
	totals.Add(stat.Offense, strength)
	totals.Add(stat.HP, fortitude*5)
	return true
}

// recalculatePets recursively recomputes every owned pet, so owner trait
// changes propagate immediately. The inRecalc guard keeps a corrupt cyclic
// snapshot from recursing forever.
func (c *Character) recalculatePets() {
	if len(c.PetUUIDs) == 0 || c.ctx == nil || c.ctx.World == nil {
		return
	}
	for _, petUUID := range c.PetUUIDs {
		if pet := c.ctx.World.CharacterByUUID(petUUID); pet != nil {
			pet.Recalculate()
		}
	}
}

// StealthLevel is the hide formula: thievery skill and agility weighted
// toward thieves, character level, the every-5-thief-levels hide boost, and
// DarkerShadows.
func (c *Character) StealthLevel() int {
	isThief := c.BaseClass == class.Thief
	thiefLevel := float64(c.SkillLevel(skill.Thievery))

	casterThiefSkill := thiefLevel
	casterAgi := float64(c.GetTotalStat(stat.Agi)) / 3
	hideBoost := 0.0
	if isThief {
		casterThiefSkill = thiefLevel * 1.5
		casterAgi = float64(c.GetTotalStat(stat.Agi)) / 1.5
		hideBoost = math.Floor(thiefLevel/5) * 10
	}

	traitBoost := float64(c.TraitLevel(trait.DarkerShadows) * 5)

	return int(math.Floor(casterThiefSkill + casterAgi + float64(c.Level) + hideBoost + traitBoost))
}

// HidePenalty is the stealth cost of the items currently held, as a portion
// of total stealth. ShadowSheath shaves percentage points off the reduction.
func (c *Character) HidePenalty() int {
	reductionPercent := 0
	if c.LeftHand != nil {
		reductionPercent += item.HideReductionPercent(c.LeftHand.ItemClass)
	}
	if c.RightHand != nil {
		reductionPercent += item.HideReductionPercent(c.RightHand.ItemClass)
	}
	reductionPercent -= c.TraitLevel(trait.ShadowSheath)
	if reductionPercent < 0 {
		reductionPercent = 0
	}

	stealth := c.GetTotalStat(stat.Stealth)
	return int(math.Floor(float64(stealth) * float64(reductionPercent) / 100))
}

// PerceptionLevel is the detection formula: thievery skill plus dexterity,
// weighted for thieves, plus a flat per-level bonus.
func (c *Character) PerceptionLevel() int {
	thiefTotal := float64(c.SkillLevel(skill.Thievery) + c.GetTotalStat(stat.Dex))
	if c.BaseClass == class.Thief {
		thiefTotal *= 1.5
	}
	return int(math.Floor(thiefTotal + float64(c.Level*3)))
}

// CanSeeThroughStealthOf resolves whether c perceives other despite stealth.
// Hard overrides first: GMs see everything, an only-visible-to pin beats
// perception both ways, party members always see each other, invisibility
// requires the TrueSight counter-trait, and players who are not actively
// hiding are simply visible. Past those, perception races stealth scaled up
// by distance.
func (c *Character) CanSeeThroughStealthOf(other *Character) bool {
	if c.IsGM {
		return true
	}
	if other.OnlyVisibleTo != "" {
		return other.OnlyVisibleTo == c.UUID
	}
	if c.sameParty(other) {
		return true
	}
	if other.HasEffect(effect.Invisible) && c.TraitLevel(trait.TrueSight) == 0 {
		return false
	}
	if other.IsPlayer() && !other.HasEffect(effect.Hidden) {
		return true
	}

	// +1 so stealth is never zeroed out on the same tile.
	distFactor := float64(c.DistFrom(other.X, other.Y) + 1)
	otherStealth := float64(other.GetTotalStat(stat.Stealth))
	perTile := 0.05
	if other.BaseClass == class.Thief {
		perTile = 0.2
	}

	totalStealth := int(math.Floor(otherStealth + otherStealth*distFactor*perTile))
	return c.GetTotalStat(stat.Perception) >= totalStealth
}

func (c *Character) sameParty(other *Character) bool {
	p := c.partyFor(c.Username)
	return p != nil && other.Username != "" && p.HasMember(other.Username)
}
