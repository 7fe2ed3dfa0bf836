package character

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/container"
	"github.com/seiyria/landoftherair/internal/game/dice"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/game/stat"
)

// player death countdown: five minutes of simulation ticks.
const playerDeathTicks = 360 * 5

// actionQueueCap bounds how many commands a player may have pending.
const actionQueueCap = 20

// Action is one queued player command.
type Action struct {
	Command string
	Args    string
}

// Player is the persistent-account specialization of Character: identity,
// buyback, banks, learned spells, and the per-tick action queue.
type Player struct {
	Character

	CharSlot  int       `json:"charSlot"`
	CreatedAt time.Time `json:"createdAt"`

	Buyback []*item.Item   `json:"buyback,omitempty"`
	Banks   map[string]int `json:"banks,omitempty"`

	LearnedSpells map[string]bool `json:"learnedSpells,omitempty"`

	RespawnPoint Destination `json:"respawnPoint"`

	actionQueue   []Action
	flaggedSkills []skill.Type
}

// NewPlayer creates a fresh player character for an account.
func NewPlayer(username string, charSlot int, cls class.Name) *Player {
	p := &Player{
		Character: *New(username, KindPlayer, cls),
		CharSlot:  charSlot,
		CreatedAt: time.Now().UTC(),
		Banks:     map[string]int{},
	}
	p.Username = username
	p.dier = p.Die
	return p
}

// Hydrate rebuilds player state after deserialization.
func (p *Player) Hydrate() {
	p.Character.Hydrate()
	p.dier = p.Die
	if p.Banks == nil {
		p.Banks = map[string]int{}
	}
	if p.Buyback == nil {
		p.Buyback = []*item.Item{}
	}
}

// InitServer wires the runtime context and finishes hydration before the
// player enters simulation: one full recompute, uuid pinned to the
// username, and a fresh action queue.
func (p *Player) InitServer(ctx *Context) {
	p.SetContext(ctx)
	p.UUID = p.Username
	p.actionQueue = nil
	p.TryToCastEquippedEffects()
	p.Recalculate()
}

// LearnSpell records a spell as learned.
//
// Postcondition: returns false when the spell was already known.
func (p *Player) LearnSpell(spellName string) bool {
	key := strings.ToLower(spellName)
	if p.LearnedSpells == nil {
		p.LearnedSpells = map[string]bool{}
	}
	if p.LearnedSpells[key] {
		return false
	}
	p.LearnedSpells[key] = true
	return true
}

// HasLearned reports whether the named spell is known.
func (p *Player) HasLearned(spellName string) bool {
	return p.LearnedSpells[strings.ToLower(spellName)]
}

// FlagSkill marks the skills the next kill's reward distributes into:
// primary first, optional secondary after.
func (p *Player) FlagSkill(skills ...skill.Type) {
	p.flaggedSkills = skills
}

// Kill distributes the victim's skill-on-kill value across the flagged
// skills: 75% primary, 25% secondary when a secondary is flagged.
func (p *Player) Kill(victim *Character) {
	if len(p.flaggedSkills) == 0 || victim == nil {
		return
	}
	gain := victim.SkillOnKill

	if len(p.flaggedSkills) > 1 {
		p.logSkillErr(p.GainSkill(p.flaggedSkills[0], gain*0.75))
		p.logSkillErr(p.GainSkill(p.flaggedSkills[1], gain*0.25))
		return
	}
	p.logSkillErr(p.GainSkill(p.flaggedSkills[0], gain))
}

func (p *Player) logSkillErr(err error) {
	if err != nil && p.ctx != nil && p.ctx.Log != nil {
		p.ctx.Log.Error("skill gain failed", zap.Error(err))
	}
}

// Die extends the base death flow with the player-only consequences: a
// five-minute countdown, hand drops against NPC killers, and the
// constitution decay that makes repeated deaths at rock bottom costly.
func (p *Player) Die(killer *Character, silent bool) {
	if p.deathTicks > 0 {
		return
	}
	p.Character.Die(killer, silent)
	p.deathTicks = playerDeathTicks

	if killer == nil {
		return
	}

	if !killer.IsPlayer() {
		p.dropHands()
	}

	con := p.GetTotalStat(stat.Con)
	luk := p.GetTotalStat(stat.Luk)
	src := p.rand()

	switch {
	case con > 3:
		p.BaseStats.Add(stat.Con, -1)
	case con == 3:
		if p.BaseStats.Get(stat.HP) > 10 && dice.Between(src, 1, 5) == 1 {
			p.BaseStats.Add(stat.HP, -2)
		}
		if dice.Between(src, 1, max(1, luk/5)) == 1 {
			p.BaseStats.Add(stat.Con, -1)
		}
	default:
		if p.BaseStats.Get(stat.HP) > 10 {
			p.BaseStats.Add(stat.HP, -2)
		}
	}
	p.Recalculate()
}

// dropHands spills held items onto the ground at the corpse. The actual
// ground placement belongs to the room; the player just lets go.
func (p *Player) dropHands() {
	p.LeftHand = nil
	p.RightHand = nil
	p.Recalculate()
}

// Restore brings a dead player back at their respawn point with a single
// hit point.
func (p *Player) Restore(force bool) {
	if force {
		p.SendMessage("You feel a churning sensation.")
	}
	p.deathTicks = 0
	p.HP.Set(1)
	p.Dir = South
	if p.ctx != nil && p.ctx.Teleport != nil {
		p.ctx.Teleport.Teleport(&p.Character, p.RespawnPoint)
	}
	p.Recalculate()
}

// SellValue prices an item for sale. Charisma past 10 improves the rate,
// roughly two percent per point; every sale nets at least one gold.
func (p *Player) SellValue(it *item.Item) int {
	valueMod := 10 - float64(p.GetTotalStat(stat.Cha)-10)/5
	if valueMod <= 0 {
		valueMod = 1
	}
	value := int(math.Floor(float64(it.Value) / valueMod))
	if value < 1 {
		value = 1
	}
	return value
}

// SellItem converts an item to gold and parks it in the buyback list,
// evicting the oldest entry past capacity.
func (p *Player) SellItem(it *item.Item) {
	value := p.SellValue(it)
	p.EarnCurrency(CurrencyGold, value)
	it.BuybackValue = value

	p.Buyback = append(p.Buyback, it)
	if len(p.Buyback) > container.BuybackSize {
		p.Buyback = p.Buyback[1:]
	}
}

// BuyItemBack removes and returns the buyback entry at slot; the caller
// charges the buyback value.
//
// Postcondition: returns nil for an out-of-range slot.
func (p *Player) BuyItemBack(slot int) *item.Item {
	if slot < 0 || slot >= len(p.Buyback) {
		return nil
	}
	it := p.Buyback[slot]
	p.Buyback = append(p.Buyback[:slot], p.Buyback[slot+1:]...)
	return it
}

// DepositBank moves gold into a regional bank, clamped to what the player
// carries.
//
// Postcondition: returns the amount actually deposited, false for a
// non-positive request.
func (p *Player) DepositBank(region string, amount int) (int, bool) {
	if amount <= 0 {
		return 0, false
	}
	if carried := p.CurrencyValue(CurrencyGold); amount > carried {
		amount = carried
	}
	if amount == 0 {
		return 0, true
	}
	p.Banks[region] += amount
	p.SpendCurrency(CurrencyGold, amount)
	return amount, true
}

// WithdrawBank moves gold out of a regional bank, clamped to the balance.
func (p *Player) WithdrawBank(region string, amount int) (int, bool) {
	if amount <= 0 {
		return 0, false
	}
	if amount > p.Banks[region] {
		amount = p.Banks[region]
	}
	p.Banks[region] -= amount
	p.EarnCurrency(CurrencyGold, amount)
	return amount, true
}

// QueueAction appends a command to the action queue. Anything past the cap
// is dropped on the floor.
func (p *Player) QueueAction(command, args string) {
	if len(p.actionQueue) >= actionQueueCap {
		return
	}
	p.actionQueue = append(p.actionQueue, Action{Command: command, Args: args})
}

// QueuedActions exposes the pending queue length.
func (p *Player) QueuedActions() int {
	return len(p.actionQueue)
}

// Tick extends the base tick with swim damage and one action dequeue.
func (p *Player) Tick() {
	p.Character.Tick()
	if p.IsDead() {
		return
	}

	if p.SwimLevel > 0 {
		lostPercent := p.SwimLevel * 4
		damage := p.HP.Maximum * lostPercent / 100
		element := p.SwimElement
		if element == "" {
			element = "water"
		}
		p.TakeDamage(damage, element, "You are drowning!")
	}

	if len(p.actionQueue) == 0 {
		return
	}
	next := p.actionQueue[0]
	p.actionQueue = p.actionQueue[1:]
	if p.ctx != nil && p.ctx.World != nil {
		p.ctx.World.ExecuteCommand(&p.Character, next.Command, next.Args)
	}
}
