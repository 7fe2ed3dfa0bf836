// Package character implements the server-authoritative simulation core: the
// Character aggregate owning stats, skills, equipment, effects, agro, and the
// per-tick update cycle, plus the Player specialization layered on top.
//
// A Character's mutable state is privately owned by that Character. Cross
// character interactions (party auras, owner and pet propagation, shared
// threat) go through the target's public mutators, never through its fields.
// Every mutation affecting derived stats ends with a synchronous Recalculate,
// so callers never observe stale totals.
package character

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/container"
	"github.com/seiyria/landoftherair/internal/game/effect"
	"github.com/seiyria/landoftherair/internal/game/item"
	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/game/stat"
	"github.com/seiyria/landoftherair/internal/game/trait"
)

// Allegiance is a faction tag used for reputation and NPC hostility checks.
type Allegiance string

const (
	AllegianceNone        Allegiance = "None"
	AllegiancePirates     Allegiance = "Pirates"
	AllegianceTownsfolk   Allegiance = "Townsfolk"
	AllegianceRoyalty     Allegiance = "Royalty"
	AllegianceAdventurers Allegiance = "Adventurers"
	AllegianceWilderness  Allegiance = "Wilderness"
	AllegianceUnderground Allegiance = "Underground"
	AllegianceEnemy       Allegiance = "Enemy"
)

// Alignment is the moral axis some item requirements gate on.
type Alignment string

const (
	AlignmentGood    Alignment = "Good"
	AlignmentNeutral Alignment = "Neutral"
	AlignmentEvil    Alignment = "Evil"
)

// Direction is a facing. Corpses face C (center).
type Direction string

const (
	North  Direction = "N"
	South  Direction = "S"
	East   Direction = "E"
	West   Direction = "W"
	Center Direction = "C"
)

// Kind discriminates the broad behavior families sharing the Character
// aggregate.
type Kind string

const (
	KindPlayer Kind = "player"
	KindNPC    Kind = "npc"
	// KindNaturalResource marks harvestable nodes (trees, ore veins). They
	// refuse effects and never tick.
	KindNaturalResource Kind = "resource"
)

// CurrencyGold is the default currency of the ledger.
const CurrencyGold = "gold"

// reputation thresholds for hostility classification.
const (
	hostileRepAt  = -100
	friendlyRepAt = 100
)

// Character is the root aggregate of the simulation core. Persisted fields
// carry json tags; everything transient is unexported and rebuilt on
// hydration.
type Character struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	// Username is set for players only; players use it as their UUID once
	// they enter simulation.
	Username string `json:"username,omitempty"`
	IsGM     bool   `json:"isGM,omitempty"`

	Kind       Kind       `json:"kind"`
	Allegiance Allegiance `json:"allegiance"`
	Alignment  Alignment  `json:"alignment"`
	BaseClass  class.Name `json:"baseClass"`

	Dir Direction `json:"dir"`
	X   int       `json:"x"`
	Y   int       `json:"y"`
	Map string    `json:"map"`

	Level        int `json:"level"`
	HighestLevel int `json:"highestLevel"`
	Exp          int `json:"exp"`
	AXP          int `json:"axp"`

	// SkillOnKill is the skill points this character is worth to its
	// killer.
	SkillOnKill float64 `json:"skillOnKill,omitempty"`

	HP *stat.BoundedCounter `json:"hp"`
	MP *stat.BoundedCounter `json:"mp"`

	// BaseStats is the permanent, persisted stat layer. Mutate through
	// GainBaseStat/LoseBaseStat so totals stay in sync.
	BaseStats stat.Stats   `json:"stats"`
	Skills    skill.Set    `json:"skills"`
	Traits    trait.Levels `json:"traits,omitempty"`

	Currency map[string]int `json:"currency"`

	Gear       map[item.Slot]*item.Item `json:"gear"`
	LeftHand   *item.Item               `json:"leftHand,omitempty"`
	RightHand  *item.Item               `json:"rightHand,omitempty"`
	PotionHand *item.Item               `json:"potionHand,omitempty"`

	Sack  *container.Container `json:"sack"`
	Belt  *container.Container `json:"belt"`
	Pouch *container.Container `json:"pouch,omitempty"`

	Effects map[string]*effect.Effect `json:"effects"`

	// Agro maps attacker identity (uuid, or username for players) to
	// accumulated threat. Entries are always positive; they are deleted at
	// zero, never stored as zero.
	Agro map[string]int `json:"-"`

	CombatTicks int `json:"combatTicks,omitempty"`

	SwimLevel   int    `json:"swimLevel,omitempty"`
	SwimElement string `json:"swimElement,omitempty"`

	AllegianceReputation map[Allegiance]int `json:"allegianceReputation,omitempty"`

	// OwnerUUID and PetUUIDs are weak backlinks resolved through the
	// world, keeping the entity graph acyclic for serialization.
	OwnerUUID string   `json:"ownerUUID,omitempty"`
	PetUUIDs  []string `json:"petUUIDs,omitempty"`

	// OnlyVisibleTo pins visibility to a single observer uuid regardless
	// of perception.
	OnlyVisibleTo string `json:"-"`

	AquaticOnly  bool `json:"aquaticOnly,omitempty"`
	NeverHostile bool `json:"neverHostile,omitempty"`

	additionalStats stat.Stats
	totalStats      stat.Stats

	deathTicks int
	inRecalc   bool

	// dier routes lethal damage to the outer type's death flow. Player
	// installs its Die here; method shadowing on the embedded Character
	// never reaches it otherwise.
	dier func(killer *Character, silent bool)

	ctx *Context
}

// New creates a fresh Character of the given kind with defaulted state,
// ready for simulation once a Context is attached.
func New(name string, kind Kind, cls class.Name) *Character {
	c := &Character{
		UUID:      uuid.New().String(),
		Name:      name,
		Kind:      kind,
		BaseClass: cls,

		Allegiance: AllegianceNone,
		Alignment:  AlignmentNeutral,
		Dir:        South,

		Level:        1,
		HighestLevel: 1,
		Exp:          1000,

		HP: stat.NewBoundedCounter(0, 100, 100),
		MP: stat.NewBoundedCounter(0, 0, 0),

		BaseStats: stat.Defaults(),
		Skills:    skill.Set{},
		Traits:    trait.Levels{},
		Currency:  map[string]int{},

		Gear:    map[item.Slot]*item.Item{},
		Effects: map[string]*effect.Effect{},
		Agro:    map[string]int{},

		AllegianceReputation: map[Allegiance]int{},

		additionalStats: stat.Stats{},
		totalStats:      stat.Stats{},
	}
	c.InitSack()
	c.InitBelt()
	return c
}

// SetContext wires the collaborator handles. Must be called before the
// character enters simulation.
func (c *Character) SetContext(ctx *Context) {
	c.ctx = ctx
}

// Context returns the wired collaborator handles, or nil.
func (c *Character) Context() *Context {
	return c.ctx
}

// Hydrate rebuilds all transient and nested state after deserializing a
// persisted snapshot: base stats merged over defaults, nested value objects
// reconstructed, maps made non-nil.
func (c *Character) Hydrate() {
	base := stat.Defaults()
	for k, v := range c.BaseStats {
		base[k] = v
	}
	c.BaseStats = base

	if c.Skills == nil {
		c.Skills = skill.Set{}
	}
	if c.Traits == nil {
		c.Traits = trait.Levels{}
	}
	if c.Currency == nil {
		c.Currency = map[string]int{}
	}
	if c.AllegianceReputation == nil {
		c.AllegianceReputation = map[Allegiance]int{}
	}
	if c.Agro == nil {
		c.Agro = map[string]int{}
	}
	c.additionalStats = stat.Stats{}
	c.totalStats = stat.Stats{}

	c.InitHpMp()
	c.InitSack()
	c.InitBelt()
	c.InitGear()
	c.InitEffects()
}

// InitHpMp rebuilds the HP/MP counters, re-clamping persisted values.
func (c *Character) InitHpMp() {
	if c.HP == nil {
		c.HP = stat.NewBoundedCounter(0, 100, 100)
	} else {
		c.HP = stat.NewBoundedCounter(c.HP.Minimum, c.HP.Maximum, c.HP.Current)
	}
	if c.MP == nil {
		c.MP = stat.NewBoundedCounter(0, 0, 0)
	} else {
		c.MP = stat.NewBoundedCounter(c.MP.Minimum, c.MP.Maximum, c.MP.Current)
	}
}

// InitSack ensures the sack exists.
func (c *Character) InitSack() {
	if c.Sack == nil {
		c.Sack = container.NewSack()
	}
}

// InitBelt ensures the belt exists and restores its acceptance rules.
func (c *Character) InitBelt() {
	if c.Belt == nil {
		c.Belt = container.NewBelt()
	} else {
		c.Belt.Hydrate("belt")
	}
}

// InitPouch creates the pouch at the given capacity if absent.
func (c *Character) InitPouch(capacity int) {
	if c.Pouch == nil {
		c.Pouch = container.NewPouch(capacity)
	}
}

// InitGear ensures the gear map exists.
func (c *Character) InitGear() {
	if c.Gear == nil {
		c.Gear = map[item.Slot]*item.Item{}
	}
}

// InitEffects ensures the effects map exists.
func (c *Character) InitEffects() {
	if c.Effects == nil {
		c.Effects = map[string]*effect.Effect{}
	}
}

// IsPlayer reports whether this character is a player.
func (c *Character) IsPlayer() bool {
	return c.Kind == KindPlayer
}

// IsNaturalResource reports whether this character is a harvestable node.
func (c *Character) IsNaturalResource() bool {
	return c.Kind == KindNaturalResource
}

// IsInCombat reports whether the combat countdown is running.
func (c *Character) IsInCombat() bool {
	return c.CombatTicks > 0
}

// IsDead reports whether HP sits on its floor.
func (c *Character) IsDead() bool {
	return c.HP.AtMinimum()
}

// CanDie reports whether HP has reached the lethal floor.
func (c *Character) CanDie() bool {
	return c.HP.AtMinimum()
}

// IsUnableToAct reports whether a frozen Frosted effect or a Stunned effect
// blocks the character from acting.
func (c *Character) IsUnableToAct() bool {
	if frosted, ok := c.Effects[effect.Frosted]; ok && frosted.Info.IsFrozen {
		return true
	}
	return c.HasEffect(effect.Stunned)
}

// GetTotalStat returns the derived value for s.
func (c *Character) GetTotalStat(s stat.Stat) int {
	return c.totalStats.Get(s)
}

// GetBaseStat returns the permanent base value for s.
func (c *Character) GetBaseStat(s stat.Stat) int {
	return c.BaseStats.Get(s)
}

// TotalStats returns a snapshot copy of the derived stat layer.
func (c *Character) TotalStats() stat.Stats {
	return c.totalStats.Clone()
}

// GainBaseStat permanently raises a base stat.
func (c *Character) GainBaseStat(s stat.Stat, value int) {
	c.BaseStats.Add(s, value)
	c.Recalculate()
}

// LoseBaseStat permanently lowers a base stat, flooring at 1.
func (c *Character) LoseBaseStat(s stat.Stat, value int) {
	c.BaseStats.Add(s, -value)
	if c.BaseStats.Get(s) < 1 {
		c.BaseStats[s] = 1
	}
	c.Recalculate()
}

// GainStat raises the transient additional-stats layer.
func (c *Character) GainStat(s stat.Stat, value int) {
	c.additionalStats.Add(s, value)
	c.Recalculate()
}

// LoseStat lowers the transient additional-stats layer.
func (c *Character) LoseStat(s stat.Stat, value int) {
	c.additionalStats.Add(s, -value)
	c.Recalculate()
}

// ResetAdditionalStats drops the whole transient layer.
func (c *Character) ResetAdditionalStats() {
	c.additionalStats = stat.Stats{}
	c.Recalculate()
}

// ChangeBaseClass swaps the character's class, applying the class's one-time
// joining adjustments.
func (c *Character) ChangeBaseClass(newClass class.Name) {
	c.BaseClass = newClass
	c.BaseStats.AddAll(class.ForName(newClass).BecomeClass(c.classView()))
	c.Recalculate()
}

// ChangeAlignment sets the alignment and refreshes totals, since alignment
// gates item requirements.
func (c *Character) ChangeAlignment(a Alignment) {
	c.Alignment = a
	c.Recalculate()
}

// EarnCurrency adds to the named ledger. Non-positive amounts are ignored.
func (c *Character) EarnCurrency(currency string, amount int) {
	if amount <= 0 {
		return
	}
	c.Currency[currency] += amount
}

// SpendCurrency deducts from the named ledger.
//
// Postcondition: returns false and leaves the ledger untouched when the
// balance is insufficient; the balance never goes negative.
func (c *Character) SpendCurrency(currency string, amount int) bool {
	if amount <= 0 {
		return true
	}
	if c.Currency[currency] < amount {
		return false
	}
	c.Currency[currency] -= amount
	if c.Currency[currency] <= 0 {
		delete(c.Currency, currency)
	}
	return true
}

// HasCurrency reports whether the ledger covers amount.
func (c *Character) HasCurrency(currency string, amount int) bool {
	return c.Currency[currency] >= amount
}

// CurrencyValue returns the current balance for currency.
func (c *Character) CurrencyValue(currency string) int {
	return c.Currency[currency]
}

// ChangeRep shifts reputation with a faction.
func (c *Character) ChangeRep(faction Allegiance, modifier int) {
	c.AllegianceReputation[faction] += modifier
}

// IsHostileTo reports whether reputation with faction has sunk to hostility.
func (c *Character) IsHostileTo(faction Allegiance) bool {
	return c.AllegianceReputation[faction] <= hostileRepAt
}

// IsFriendlyTo reports whether reputation with faction has risen to
// friendliness.
func (c *Character) IsFriendlyTo(faction Allegiance) bool {
	return c.AllegianceReputation[faction] >= friendlyRepAt
}

// IsNeutralTo reports whether reputation with faction is neither hostile nor
// friendly.
func (c *Character) IsNeutralTo(faction Allegiance) bool {
	return !c.IsHostileTo(faction) && !c.IsFriendlyTo(faction)
}

// TraitLevel returns the purchased level of the named trait.
func (c *Character) TraitLevel(name string) int {
	return c.Traits.Level(name)
}

// TraitLevelUsage returns the trait level run through its formula-specific
// usage modifier.
func (c *Character) TraitLevelUsage(name string) float64 {
	return trait.UsageModifier(name, c.TraitLevel(name))
}

// SendMessage delivers a message to this character's client, if any sink is
// wired.
func (c *Character) SendMessage(message string) {
	if c.ctx != nil && c.ctx.Messages != nil {
		c.ctx.Messages.SendMessage(c, message)
	}
}

// SendMessageToRadius delivers a message to every client within radius tiles.
func (c *Character) SendMessageToRadius(message string, radius int) {
	if c.ctx != nil && c.ctx.Messages != nil {
		c.ctx.Messages.SendMessageToRadius(c, message, radius)
	}
}

// DistFrom returns the floored euclidean distance to (x, y).
func (c *Character) DistFrom(x, y int) int {
	dx := float64(x - c.X)
	dy := float64(y - c.Y)
	return int(math.Floor(math.Sqrt(dx*dx + dy*dy)))
}

// classView snapshots the state class computations read.
func (c *Character) classView() class.View {
	levels := make(map[skill.Type]int, len(c.Skills))
	for t := range c.Skills {
		levels[t] = c.SkillLevel(t)
	}
	return class.View{
		Level:       c.Level,
		BaseStats:   c.BaseStats.Clone(),
		SkillLevels: levels,
	}
}

// RemovePet drops petUUID from the pet backlink list.
func (c *Character) RemovePet(petUUID string) {
	for i, p := range c.PetUUIDs {
		if p == petUUID {
			c.PetUUIDs = append(c.PetUUIDs[:i], c.PetUUIDs[i+1:]...)
			return
		}
	}
}

func (c *Character) String() string {
	return fmt.Sprintf("%s (%s %s lv%d)", c.Name, c.Kind, c.BaseClass, c.Level)
}
