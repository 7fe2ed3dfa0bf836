package item

import (
	"github.com/google/uuid"

	"github.com/seiyria/landoftherair/internal/game/stat"
)

// MaxCondition is the condition value of a factory-new item. An item at
// condition 0 is broken and grants nothing.
const MaxCondition = 20000

// Encrust is a socketed bonus attached to one item instance.
type Encrust struct {
	Name     string     `json:"name"`
	Stats    stat.Stats `json:"stats"`
	MaxStack int        `json:"maxStack"`
}

// Item is a runtime item instance. Exactly one logical holder (a gear slot,
// a hand, or a container slot) references an Item at a time; moving it is a
// transfer of that sole reference.
type Item struct {
	UUID      string     `json:"uuid"`
	Name      string     `json:"name"`
	Desc      string     `json:"desc"`
	ItemClass Class      `json:"itemClass"`
	Stats     stat.Stats `json:"stats"`

	Requirements *Requirements `json:"requirements,omitempty"`
	Encrust      *Encrust      `json:"encrust,omitempty"`
	Effect       *EffectRef    `json:"effect,omitempty"`
	Succor       *SuccorInfo   `json:"succor,omitempty"`

	Binds     bool `json:"binds,omitempty"`
	TellsBind bool `json:"tellsBind,omitempty"`
	IsHeavy   bool `json:"isHeavy,omitempty"`
	IsOffhand bool `json:"isOffhand,omitempty"`

	// Owner is the username the item bound itself to on first pickup.
	// Empty means unbound.
	Owner string `json:"owner,omitempty"`

	Condition int `json:"condition"`
	Value     int `json:"value"`
	Ounces    int `json:"ounces"`

	BuybackValue int `json:"buybackValue,omitempty"`
}

// New stamps a runtime Item from a static definition.
//
// Precondition: def must not be nil.
// Postcondition: the item has a fresh UUID, full condition, and a copy of the
// def's stats (mutating the item never touches the definition).
func New(def *Def) *Item {
	stats := make(stat.Stats, len(def.Stats))
	for k, v := range def.Stats {
		stats[k] = v
	}
	return &Item{
		UUID:         uuid.New().String(),
		Name:         def.Name,
		Desc:         def.Desc,
		ItemClass:    def.ItemClass,
		Stats:        stats,
		Requirements: def.Requirements,
		Effect:       def.Effect,
		Succor:       def.Succor,
		Binds:        def.Binds,
		TellsBind:    def.TellsBind,
		IsHeavy:      def.IsHeavy,
		IsOffhand:    def.IsOffhand,
		Condition:    MaxCondition,
		Value:        def.Value,
		Ounces:       def.Ounces,
	}
}

// HasCondition reports whether the item is intact enough to function.
func (i *Item) HasCondition() bool {
	return i.Condition > 0
}

// LoseCondition degrades the item, flooring at 0.
func (i *Item) LoseCondition(n int) {
	i.Condition -= n
	if i.Condition < 0 {
		i.Condition = 0
	}
}

// IsOwnedBy reports whether the named character may use this item. Unbound
// items are usable by anyone.
func (i *Item) IsOwnedBy(username string) bool {
	return i.Owner == "" || i.Owner == username
}

// SetOwner binds the item to a username. Binding is set-once; a later call
// on an already-bound item is a no-op.
//
// Postcondition: IsOwnedBy(username) is true.
func (i *Item) SetOwner(username string) {
	if i.Owner != "" {
		return
	}
	i.Owner = username
}
