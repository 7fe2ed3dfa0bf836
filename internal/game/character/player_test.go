package character_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seiyria/landoftherair/internal/game/character"
	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/game/stat"
)

type teleportRecorder struct {
	moved []character.Destination
}

func (r *teleportRecorder) Teleport(_ *character.Character, dest character.Destination) {
	r.moved = append(r.moved, dest)
}

func (h *harness) newPlayer(username string) *character.Player {
	p := character.NewPlayer(username, 0, class.Warrior)
	p.InitServer(h.ctx)
	h.world.chars[p.UUID] = &p.Character
	return p
}

func tradeGood(value int) *item.Item {
	return item.New(&item.Def{
		Name: "silver chalice", ItemClass: item.ClassGem, Value: value,
	})
}

func TestSellValueScalesWithCharisma(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")
	goods := tradeGood(1000)

	assert.Equal(t, 83, p.SellValue(goods), "cha 0 divides by 12")
	assert.Equal(t, 1, p.SellValue(tradeGood(3)), "every sale nets at least one gold")

	p.GainBaseStat(stat.Cha, 10)
	assert.Equal(t, 100, p.SellValue(goods), "cha 10 divides by 10")

	p.GainBaseStat(stat.Cha, 25)
	assert.Equal(t, 200, p.SellValue(goods), "cha 35 divides by 5")

	p.GainBaseStat(stat.Cha, 25)
	assert.Equal(t, 1000, p.SellValue(goods), "cha past the curve pays full value")
}

func TestSellItemBuybackEviction(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")

	var first *item.Item
	for i := 0; i < 6; i++ {
		it := item.New(&item.Def{
			Name: fmt.Sprintf("trinket %d", i), ItemClass: item.ClassGem, Value: 100,
		})
		if i == 0 {
			first = it
		}
		p.SellItem(it)
	}

	require.Len(t, p.Buyback, 5)
	for _, b := range p.Buyback {
		assert.NotEqual(t, first.UUID, b.UUID, "oldest entry evicted")
		assert.Equal(t, 8, b.BuybackValue)
	}
	assert.Equal(t, 48, p.CurrencyValue(character.CurrencyGold))
}

func TestBuyItemBack(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")

	it := tradeGood(100)
	p.SellItem(it)

	assert.Nil(t, p.BuyItemBack(5))
	assert.Nil(t, p.BuyItemBack(-1))

	got := p.BuyItemBack(0)
	require.NotNil(t, got)
	assert.Equal(t, it.UUID, got.UUID)
	assert.Empty(t, p.Buyback)
}

func TestBankClamping(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")
	p.EarnCurrency(character.CurrencyGold, 100)

	_, ok := p.DepositBank("rylt", 0)
	assert.False(t, ok, "non-positive deposits refuse")

	deposited, ok := p.DepositBank("rylt", 250)
	require.True(t, ok)
	assert.Equal(t, 100, deposited, "deposit clamps to carried gold")
	assert.Equal(t, 100, p.Banks["rylt"])
	assert.Zero(t, p.CurrencyValue(character.CurrencyGold))

	withdrawn, ok := p.WithdrawBank("rylt", 9999)
	require.True(t, ok)
	assert.Equal(t, 100, withdrawn, "withdrawal clamps to the balance")
	assert.Zero(t, p.Banks["rylt"])
	assert.Equal(t, 100, p.CurrencyValue(character.CurrencyGold))
}

func TestActionQueueCapAndOrder(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")

	for i := 0; i < 25; i++ {
		p.QueueAction("say", fmt.Sprintf("%d", i))
	}
	assert.Equal(t, 20, p.QueuedActions(), "actions past the cap are dropped")

	p.Tick()
	p.Tick()
	assert.Equal(t, 18, p.QueuedActions())
	assert.Equal(t, []string{"say 0", "say 1"}, h.world.executed, "one dequeue per tick, oldest first")
}

func TestLearnSpell(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")

	assert.True(t, p.LearnSpell("FireBall"))
	assert.False(t, p.LearnSpell("fireball"), "relearning is a no-op")
	assert.True(t, p.HasLearned("FIREBALL"), "lookup is case-insensitive")
	assert.False(t, p.HasLearned("heal"))
}

func TestKillSplitsSkillAcrossFlagged(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")

	victim := h.newCharacter("rat", character.KindNPC, class.Undecided)
	victim.SkillOnKill = 40

	p.FlagSkill(skill.Mace, skill.Thievery)
	p.Kill(victim)
	assert.InDelta(t, 30, p.Skills[skill.Mace], 0.0001)
	assert.InDelta(t, 10, p.Skills[skill.Thievery], 0.0001)

	p.FlagSkill(skill.Mace)
	p.Kill(victim)
	assert.InDelta(t, 70, p.Skills[skill.Mace], 0.0001, "sole flagged skill takes everything")
}

func TestPlayerDeathConDecay(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")
	p.GainBaseStat(stat.Con, 10)

	killer := h.newCharacter("troll", character.KindNPC, class.Undecided)
	p.LeftHand = item.New(&item.Def{Name: "torch", ItemClass: item.ClassMace})

	p.Die(killer, false)

	assert.True(t, p.IsDead())
	assert.Equal(t, 9, p.GetBaseStat(stat.Con), "death above rock bottom costs one con")
	assert.Nil(t, p.LeftHand, "an npc kill spills the hands")
	assert.Equal(t, 360*5, p.DeathTicks())

	conBefore := p.GetBaseStat(stat.Con)
	p.Die(killer, false)
	assert.Equal(t, conBefore, p.GetBaseStat(stat.Con), "death while already dead is a no-op")
}

func TestPlayerDeathAgainstPlayerKeepsHands(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")
	p.GainBaseStat(stat.Con, 10)

	killer := &h.newPlayer("bob").Character
	p.RightHand = item.New(&item.Def{Name: "club", ItemClass: item.ClassMace})

	p.Die(killer, false)
	assert.NotNil(t, p.RightHand)
}

func TestLethalDamageTakesThePlayerDeathWindow(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")

	p.TakeDamage(p.HP.Maximum+100, "physical", "")

	require.True(t, p.IsDead())
	assert.Equal(t, 360*5, p.DeathTicks(), "a player corpse waits the full player window")
}

func TestLethalDamageAttributesTheEffectCaster(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")
	p.GainBaseStat(stat.Con, 10)
	p.LeftHand = item.New(&item.Def{Name: "torch", ItemClass: item.ClassMace})

	rat := h.newCharacter("rat", character.KindNPC, class.Undecided)
	poison := h.effect("Poisoned")
	poison.Info.Caster = rat.UUID
	p.ApplyEffect(poison)

	p.TakeDamage(p.HP.Maximum+100, "necrotic", "")

	require.True(t, p.IsDead())
	assert.Equal(t, 360*5, p.DeathTicks())
	assert.Equal(t, 9, p.GetBaseStat(stat.Con), "an attributed npc kill costs one con")
	assert.Nil(t, p.LeftHand, "an attributed npc kill spills the hands")
}

func TestPoisonTickKillsWithThePlayerFlow(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")
	p.GainBaseStat(stat.Con, 10)

	rat := h.newCharacter("rat", character.KindNPC, class.Undecided)
	poison := h.effect("Poisoned")
	poison.Info.Caster = rat.UUID
	p.ApplyEffect(poison)
	p.HP.Set(1)

	p.Tick()

	require.True(t, p.IsDead(), "regen must not undo a death from the same tick")
	assert.Equal(t, 360*5, p.DeathTicks())
	assert.Equal(t, 9, p.GetBaseStat(stat.Con))
}

func TestRestore(t *testing.T) {
	h := newHarness()
	teleports := &teleportRecorder{}
	h.ctx.Teleport = teleports

	p := h.newPlayer("alice")
	p.RespawnPoint = character.Destination{Map: "Rylt", X: 14, Y: 14}
	p.Die(nil, false)
	require.True(t, p.IsDead())

	p.Restore(true)

	assert.Equal(t, 1, p.HP.Current)
	assert.False(t, p.IsDead())
	assert.Zero(t, p.DeathTicks())
	assert.Equal(t, character.South, p.Dir)
	require.Len(t, teleports.moved, 1)
	assert.Equal(t, p.RespawnPoint, teleports.moved[0])
	assert.Contains(t, h.sink.messages, "You feel a churning sensation.")
}

func TestSwimDamage(t *testing.T) {
	h := newHarness()
	p := h.newPlayer("alice")
	p.HP.Set(p.HP.Maximum)

	p.SwimLevel = 2
	before := p.HP.Current
	p.Tick()
	// regen clamps at full health, then 8% of max comes off
	expected := before - p.HP.Maximum*8/100
	assert.Equal(t, expected, p.HP.Current)
	assert.Contains(t, h.sink.messages, "You are drowning!")
}
