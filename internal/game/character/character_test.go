package character_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/party"
	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/game/stat"
	"github.com/seiyria/landoftherair/internal/game/trait"
)

type sink struct {
	messages []string
}

func (s *sink) SendMessage(_ *character.Character, m string) {
	s.messages = append(s.messages, m)
}

func (s *sink) SendMessageToRadius(_ *character.Character, m string, _ int) {
	s.messages = append(s.messages, m)
}

type fakeWorld struct {
	maxSkill int
	maxLevel int
	chars    map[string]*character.Character
	executed []string
}

func (w *fakeWorld) MaxSkill() int { return w.maxSkill }
func (w *fakeWorld) MaxLevel() int { return w.maxLevel }
func (w *fakeWorld) CharacterByUUID(uuid string) *character.Character {
	return w.chars[uuid]
}
func (w *fakeWorld) TriggerTrapAt(*character.Character, int, int) {}
func (w *fakeWorld) ExecuteCommand(_ *character.Character, command, args string) {
	w.executed = append(w.executed, command+" "+args)
}

type seqSource struct {
	values []int
	idx    int
}

func (s *seqSource) Intn(n int) int {
	if s.idx >= len(s.values) {
		return 0
	}
	v := s.values[s.idx] % n
	s.idx++
	return v
}

type harness struct {
	world    *fakeWorld
	sink     *sink
	registry *effect.Registry
	parties  *party.Manager
	ctx      *character.Context
}

func newHarness() *harness {
	h := &harness{
		world:    &fakeWorld{maxSkill: 10, maxLevel: 50, chars: map[string]*character.Character{}},
		sink:     &sink{},
		registry: effect.NewRegistry(),
		parties:  party.NewManager(),
	}
	h.registry.Register(&effect.Def{Name: "Poisoned", Duration: 10, DamagePerTick: 2, DamageClass: "necrotic"})
	h.registry.Register(&effect.Def{Name: effect.Nourishment, Duration: 100})
	h.registry.Register(&effect.Def{
		Name:     "Barkskin",
		Duration: 20,
		Boosts:   map[stat.Stat]int{stat.ArmorClass: 5},
	})
	h.ctx = &character.Context{
		World:    h.world,
		Messages: h.sink,
		Effects:  h.registry,
		Parties:  h.parties,
		Rand:     &seqSource{},
	}
	return h
}

func (h *harness) newCharacter(name string, kind character.Kind, cls class.Name) *character.Character {
	c := character.New(name, kind, cls)
	c.SetContext(h.ctx)
	c.Recalculate()
	h.world.chars[c.UUID] = c
	return c
}

func (h *harness) effect(name string) *effect.Effect {
	e, ok := h.registry.Create(name)
	if !ok {
		panic(fmt.Sprintf("unknown effect %q", name))
	}
	return e
}

func TestRecalculateIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := newHarness()
		c := h.newCharacter("subject", character.KindNPC, class.Warrior)

		c.GainBaseStat(stat.Str, rapid.IntRange(0, 30).Draw(t, "str"))
		c.GainBaseStat(stat.HP, rapid.IntRange(0, 200).Draw(t, "hp"))
		c.GainStat(stat.Dex, rapid.IntRange(0, 10).Draw(t, "dexBonus"))
		if rapid.Bool().Draw(t, "barkskin") {
			c.ApplyEffect(h.effect("Barkskin"))
		}
		if rapid.Bool().Draw(t, "sword") {
			c.SetRightHand(item.New(&item.Def{
				Name: "steel longsword", ItemClass: item.ClassLongsword,
				Stats: map[stat.Stat]int{stat.Offense: 3},
			}))
		}

		c.Recalculate()
		first := c.TotalStats()
		c.Recalculate()
		assert.Equal(t, first, c.TotalStats())
	})
}

func TestShieldGrantsNothingBesideTwoHander(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("tank", character.KindNPC, class.Warrior)

	shield := item.New(&item.Def{
		Name: "tower shield", ItemClass: item.ClassShield,
		Stats: map[stat.Stat]int{stat.ArmorClass: 10},
	})
	greatsword := item.New(&item.Def{
		Name: "greatsword", ItemClass: item.ClassGreatsword,
		Stats: map[stat.Stat]int{stat.Offense: 5},
	})

	c.SetLeftHand(shield)
	withShieldOnly := c.GetTotalStat(stat.ArmorClass)

	c.SetRightHand(greatsword)
	assert.Equal(t, withShieldOnly-10, c.GetTotalStat(stat.ArmorClass),
		"shield must contribute nothing next to a two-hander")

	c.Traits[trait.Shieldbearer] = 1
	c.Recalculate()
	assert.Equal(t, withShieldOnly, c.GetTotalStat(stat.ArmorClass),
		"Shieldbearer restores the shield bonus")
}

func TestAmmunitionBonusNeedsFiringWeapon(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("archer", character.KindNPC, class.Thief)

	arrows := item.New(&item.Def{
		Name: "barbed arrows", ItemClass: item.ClassArrow,
		Stats: map[stat.Stat]int{stat.Accuracy: 4},
	})
	c.SetLeftHand(arrows)
	base := c.GetTotalStat(stat.Accuracy)

	bow := item.New(&item.Def{Name: "shortbow", ItemClass: item.ClassShortbow})
	c.SetRightHand(bow)
	assert.Equal(t, base+4, c.GetTotalStat(stat.Accuracy))
}

func TestEncumbranceReconciliation(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("scholar", character.KindNPC, class.Mage)

	plate := item.New(&item.Def{
		Name: "full plate", ItemClass: item.ClassFullplate, IsHeavy: true,
	})
	require.True(t, c.Equip(plate))
	assert.True(t, c.HasEffect(effect.Encumbered))

	c.Unequip(item.SlotArmor)
	assert.False(t, c.HasEffect(effect.Encumbered))
}

func TestEncumbranceSkipsUnencumberableClasses(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("tank", character.KindNPC, class.Warrior)

	plate := item.New(&item.Def{
		Name: "full plate", ItemClass: item.ClassFullplate, IsHeavy: true,
	})
	require.True(t, c.Equip(plate))
	assert.False(t, c.HasEffect(effect.Encumbered))
}

func TestEncrustStatsStopAtMaxStack(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("sparkly", character.KindNPC, class.Thief)

	ring := func(slotName string) *item.Item {
		it := item.New(&item.Def{Name: "ruby ring " + slotName, ItemClass: item.ClassRing})
		it.Encrust = &item.Encrust{
			Name:     "ruby",
			Stats:    stat.Stats{stat.FireResist: 5},
			MaxStack: 1,
		}
		return it
	}

	require.True(t, c.Equip(ring("a")))
	require.True(t, c.Equip(ring("b")))
	assert.Equal(t, 5, c.GetTotalStat(stat.FireResist),
		"second ruby past max stack contributes nothing")
}

func TestPoisonedReplacement(t *testing.T) {
	h := newHarness()

	starts, ends := 0, 0
	h.registry.RegisterBehavior("Poisoned", effect.Behavior{
		OnStart: func(effect.Target, *effect.Effect) { starts++ },
		OnEnd:   func(effect.Target, *effect.Effect) { ends++ },
	})

	c := h.newCharacter("victim", character.KindNPC, class.Undecided)

	first := h.effect("Poisoned")
	c.ApplyEffect(first)

	second := h.effect("Poisoned")
	second.Duration = 5
	c.ApplyEffect(second)

	require.Len(t, c.Effects, 1)
	assert.Equal(t, 5, c.Effects["Poisoned"].Duration)
	assert.Equal(t, 2, starts)
	assert.Equal(t, 1, ends)
}

func TestPermanentEffectRefusesReplacement(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("blessed", character.KindNPC, class.Undecided)

	permanent := h.effect("Barkskin")
	permanent.Duration = effect.PermanentDuration
	permanent.Info.IsPermanent = true
	c.ApplyEffect(permanent)

	replacement := h.effect("Barkskin")
	c.ApplyEffect(replacement)

	assert.True(t, c.Effects["Barkskin"].IsPermanent(), "permanent casting survives")
	assert.Contains(t, h.sink.messages[len(h.sink.messages)-1], "refused to take hold")

	partySourced := h.effect("Barkskin")
	partySourced.Info.IsPartySourced = true
	c.ApplyEffect(partySourced)
	assert.False(t, c.Effects["Barkskin"].IsPermanent(), "party-sourced casting replaces")
}

func TestZeroDurationEffectIsSingleShot(t *testing.T) {
	h := newHarness()

	starts := 0
	h.registry.Register(&effect.Def{Name: "Flash", Duration: 0})
	h.registry.RegisterBehavior("Flash", effect.Behavior{
		OnStart: func(effect.Target, *effect.Effect) { starts++ },
	})

	c := h.newCharacter("blinky", character.KindNPC, class.Undecided)
	c.ApplyEffect(h.effect("Flash"))

	assert.Equal(t, 1, starts)
	assert.False(t, c.HasEffect("Flash"))
}

func TestNaturalResourceRefusesEffects(t *testing.T) {
	h := newHarness()
	node := h.newCharacter("ore vein", character.KindNaturalResource, class.Undecided)

	node.ApplyEffect(h.effect("Poisoned"))
	assert.Empty(t, node.Effects)
}

func TestDeathClearsEffectsExceptExempt(t *testing.T) {
	h := newHarness()

	ends := map[string]int{}
	for _, name := range []string{"Poisoned", effect.Nourishment} {
		name := name
		h.registry.RegisterBehavior(name, effect.Behavior{
			OnEnd: func(effect.Target, *effect.Effect) { ends[name]++ },
		})
	}

	c := h.newCharacter("doomed", character.KindNPC, class.Undecided)
	c.ApplyEffect(h.effect("Poisoned"))
	c.ApplyEffect(h.effect(effect.Nourishment))

	c.Die(nil, false)

	assert.False(t, c.HasEffect("Poisoned"))
	assert.True(t, c.HasEffect(effect.Nourishment), "exempt effect survives death")
	assert.Equal(t, 1, ends["Poisoned"])
	assert.Zero(t, ends[effect.Nourishment])
	assert.Equal(t, character.Center, c.Dir)
	assert.True(t, c.IsDead())
}

func TestEffectExpiresThroughTick(t *testing.T) {
	h := newHarness()
	h.registry.Register(&effect.Def{Name: "Haste", Duration: 2, EndMessage: "You slow down."})

	c := h.newCharacter("swift", character.KindNPC, class.Undecided)
	c.ApplyEffect(h.effect("Haste"))

	c.Tick()
	assert.True(t, c.HasEffect("Haste"))
	c.Tick()
	assert.False(t, c.HasEffect("Haste"))
	assert.Contains(t, h.sink.messages, "You slow down.")
}

func TestTickRegen(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("tough", character.KindNPC, class.Undecided)

	c.GainBaseStat(stat.Con, 18)
	c.HP.Set(50)
	c.Tick()
	// hpregen 1 plus con bonus 18-15
	assert.Equal(t, 54, c.HP.Current)
}

func TestTickRegenNeverCrossesLethalFloor(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("bleeding", character.KindNPC, class.Undecided)

	c.LoseStat(stat.HPRegen, 10)
	c.HP.Set(5)
	c.Tick()
	assert.Equal(t, 5, c.HP.Current, "negative regen that would kill is withheld")
}

func TestAgroPartySpread(t *testing.T) {
	h := newHarness()

	attacker := h.newCharacter("alice", character.KindPlayer, class.Warrior)
	attacker.Username = "alice"
	attacker.UUID = "alice"
	h.world.chars["alice"] = attacker

	h.parties.Register(&party.Party{
		Name:    "the breakfast club",
		Leader:  "alice",
		Members: []string{"alice", "bob", "carol"},
	})

	target := h.newCharacter("troll", character.KindNPC, class.Undecided)
	target.AddAgro(attacker, 10)

	assert.Equal(t, 10, target.Agro["alice"])
	assert.Equal(t, 1, target.Agro["bob"])
	assert.Equal(t, 1, target.Agro["carol"])
}

func TestAgroRejections(t *testing.T) {
	h := newHarness()

	troll := h.newCharacter("troll", character.KindNPC, class.Undecided)
	troll.Allegiance = character.AllegianceEnemy

	troll.AddAgro(troll, 10)
	assert.Empty(t, troll.Agro, "self agro rejected")

	kin := h.newCharacter("troll kin", character.KindNPC, class.Undecided)
	kin.Allegiance = character.AllegianceEnemy
	troll.AddAgro(kin, 10)
	assert.Empty(t, troll.Agro, "same-faction npc agro rejected")

	owner := h.newCharacter("summoner", character.KindPlayer, class.Mage)
	pet := h.newCharacter("imp", character.KindNPC, class.Undecided)
	pet.OwnerUUID = owner.UUID
	pet.AddAgro(owner, 10)
	assert.Empty(t, pet.Agro, "pets never hate their owner")
}

func TestAgroBreaksInvisibility(t *testing.T) {
	h := newHarness()
	h.registry.Register(&effect.Def{Name: effect.Invisible, Duration: 50})

	sneak := h.newCharacter("sneak", character.KindPlayer, class.Thief)
	sneak.ApplyEffect(h.effect(effect.Invisible))
	require.True(t, sneak.HasEffect(effect.Invisible))

	troll := h.newCharacter("troll", character.KindNPC, class.Undecided)
	troll.AddAgro(sneak, 5)

	assert.False(t, sneak.HasEffect(effect.Invisible))
	assert.Equal(t, 5, troll.Agro[sneak.UUID])
}

func TestAgroDeletedAtZero(t *testing.T) {
	h := newHarness()
	attacker := h.newCharacter("alice", character.KindPlayer, class.Warrior)
	target := h.newCharacter("troll", character.KindNPC, class.Undecided)

	target.AddAgro(attacker, 10)
	target.AddAgro(attacker, -10)
	_, ok := target.Agro[attacker.UUID]
	assert.False(t, ok, "entries at zero are deleted, not stored")
}

func TestAddAgroOverTop(t *testing.T) {
	h := newHarness()
	alice := h.newCharacter("alice", character.KindPlayer, class.Warrior)
	bob := h.newCharacter("bob", character.KindPlayer, class.Warrior)
	target := h.newCharacter("troll", character.KindNPC, class.Undecided)

	target.AddAgro(alice, 50)
	target.AddAgroOverTop(bob, 10)

	assert.Equal(t, 60, target.Agro[bob.UUID])
}

func TestAncientTechniqueMitigation(t *testing.T) {
	h := newHarness()
	attacker := h.newCharacter("quiet one", character.KindPlayer, class.Warrior)
	attacker.Traits[trait.AncientTechnique] = 10

	target := h.newCharacter("troll", character.KindNPC, class.Undecided)
	target.AddAgro(attacker, 100)

	assert.Equal(t, 50, target.Agro[attacker.UUID])
}

func TestFiftyDaggerSkillIsLevelZero(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("cutpurse", character.KindPlayer, class.Thief)

	for i := 0; i < 5; i++ {
		require.NoError(t, c.GainSkill(skill.Dagger, 10))
	}
	assert.InDelta(t, 50, c.Skills[skill.Dagger], 0.0001)
	assert.Equal(t, 0, c.SkillLevel(skill.Dagger))
}

func TestSkillGainDampedAtCap(t *testing.T) {
	h := newHarness()
	h.world.maxSkill = 1

	c := h.newCharacter("capped", character.KindPlayer, class.Warrior)
	c.Skills[skill.Mace] = 100 // exactly level 1, the cap

	require.NoError(t, c.GainSkill(skill.Mace, 10))
	assert.InDelta(t, 101, c.Skills[skill.Mace], 0.0001, "gain divided by 10 at the cap")

	c.Skills[skill.Alchemy] = 100
	require.NoError(t, c.GainSkill(skill.Alchemy, 10))
	assert.InDelta(t, 110, c.Skills[skill.Alchemy], 0.0001, "trade skills bypass the cap")
}

func TestGainSkillRejectsNonFinite(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("glitched", character.KindPlayer, class.Warrior)
	c.Skills[skill.Mace] = 50

	err := c.GainSkill(skill.Mace, math.Inf(1))
	var sgErr *character.SkillGainError
	require.ErrorAs(t, err, &sgErr)
	assert.Equal(t, skill.Mace, sgErr.Skill)
	assert.InDelta(t, 50, c.Skills[skill.Mace], 0.0001, "mutation rolled back")
}

func TestGainExpWalkDown(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("veteran", character.KindNPC, class.Warrior)
	c.Level = 5
	c.HighestLevel = 5
	c.Exp = character.LevelXP(5) + 500

	c.GainExp(-float64(character.LevelXP(5)))
	assert.Equal(t, 1, c.Level, "negative xp walks levels back down")

	c.Exp = 50
	c.GainExp(-10)
	assert.Equal(t, 100, c.Exp, "exp floors at 100")
}

func TestTryLevelUpGrantsClassStatsOnce(t *testing.T) {
	h := newHarness()
	h.ctx.Rand = &seqSource{values: []int{4, 4, 4, 4}}

	c := h.newCharacter("climber", character.KindPlayer, class.Warrior)
	baseHP := c.GetBaseStat(stat.HP)

	c.Exp = character.LevelXP(2) + 1
	c.TryLevelUp(50)
	require.Equal(t, 2, c.Level)
	// warrior level gain is rng(25)+10
	assert.Equal(t, baseHP+14, c.GetBaseStat(stat.HP))

	// walking the same level again must not re-grant
	c.Level = 1
	c.TryLevelUp(50)
	assert.Equal(t, 2, c.Level)
	assert.Equal(t, baseHP+14, c.GetBaseStat(stat.HP))
}

func TestCurrencyLedger(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("merchant", character.KindPlayer, class.Undecided)

	c.EarnCurrency(character.CurrencyGold, 100)
	assert.True(t, c.HasCurrency(character.CurrencyGold, 100))

	assert.False(t, c.SpendCurrency(character.CurrencyGold, 150), "insufficient funds refuse")
	assert.Equal(t, 100, c.CurrencyValue(character.CurrencyGold))

	assert.True(t, c.SpendCurrency(character.CurrencyGold, 100))
	assert.Zero(t, c.CurrencyValue(character.CurrencyGold))

	c.EarnCurrency(character.CurrencyGold, -5)
	assert.Zero(t, c.CurrencyValue(character.CurrencyGold), "negative earns ignored")
}

func TestCoinGoesStraightToLedger(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("looter", character.KindPlayer, class.Undecided)

	coin := item.New(&item.Def{Name: "gold coin", ItemClass: item.ClassCoin, Value: 250})
	assert.True(t, c.AddItemToSack(coin))
	assert.Equal(t, 250, c.CurrencyValue(character.CurrencyGold))
	assert.Zero(t, c.Sack.Size())
}

func TestStealthVisibilityOverrides(t *testing.T) {
	h := newHarness()
	h.registry.Register(&effect.Def{Name: effect.Hidden, Duration: 100})
	h.registry.Register(&effect.Def{Name: effect.Invisible, Duration: 100})

	observer := h.newCharacter("watcher", character.KindPlayer, class.Warrior)
	sneak := h.newCharacter("sneak", character.KindPlayer, class.Thief)
	sneak.Username = "sneak"

	assert.True(t, observer.CanSeeThroughStealthOf(sneak),
		"a player who is not hiding is simply visible")

	sneak.GainStat(stat.Stealth, 500)
	sneak.ApplyEffect(h.effect(effect.Hidden))
	assert.False(t, observer.CanSeeThroughStealthOf(sneak))

	observer.IsGM = true
	assert.True(t, observer.CanSeeThroughStealthOf(sneak), "GM sees everything")
	observer.IsGM = false

	sneak.OnlyVisibleTo = observer.UUID
	assert.True(t, observer.CanSeeThroughStealthOf(sneak), "only-visible-to pin wins")
	sneak.OnlyVisibleTo = "someone else"
	assert.False(t, observer.CanSeeThroughStealthOf(sneak))
	sneak.OnlyVisibleTo = ""

	sneak.ApplyEffect(h.effect(effect.Invisible))
	assert.False(t, observer.CanSeeThroughStealthOf(sneak))
	observer.Traits[trait.TrueSight] = 1
	sneak.UnapplyEffect(sneak.EffectByName(effect.Hidden), true, true)
	assert.True(t, observer.CanSeeThroughStealthOf(sneak),
		"TrueSight counters invisibility for a non-hiding target")
}

func TestBindOnPickup(t *testing.T) {
	h := newHarness()
	c := h.newCharacter("alice", character.KindPlayer, class.Warrior)
	c.Username = "alice"

	blade := item.New(&item.Def{
		Name: "soulblade", ItemClass: item.ClassLongsword, Binds: true,
	})
	c.SetRightHand(blade)

	assert.Equal(t, "alice", blade.Owner)
	assert.True(t, blade.IsOwnedBy("alice"))
	assert.False(t, blade.IsOwnedBy("bob"))
}

func TestOwnerBonusPropagatesToPets(t *testing.T) {
	h := newHarness()

	owner := h.newCharacter("summoner", character.KindPlayer, class.Mage)
	pet := h.newCharacter("imp", character.KindNPC, class.Undecided)
	pet.OwnerUUID = owner.UUID
	owner.PetUUIDs = []string{pet.UUID}

	owner.Traits[trait.FamiliarStrength] = 3
	owner.Recalculate()

	assert.Equal(t, 3, pet.GetTotalStat(stat.Str),
		"owner recompute recursively refreshes pets")
}
