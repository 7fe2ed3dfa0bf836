// Package container provides the fixed-capacity slot collections characters
// carry: sack, belt, pouch, and the merchant buyback list.
package container

import (
	"fmt"

	"github.com/seiyria/landoftherair/internal/game/item"
)

// Default capacities for the standard carried containers.
const (
	SackSize    = 25
	BeltSize    = 5
	BuybackSize = 5
)

// Container is a fixed-capacity ordered collection of items. AddItem returns
// a human-readable rejection string rather than an error type: callers show
// the string to the acting player verbatim and only ever test it for
// emptiness.
type Container struct {
	Capacity int          `json:"capacity"`
	Items    []*item.Item `json:"items"`

	// accepts optionally restricts which item classes the container takes.
	// nil means everything fits.
	accepts map[item.Class]bool
	// rejection is the message template used when an item class is refused.
	rejection string
}

// New creates a Container with the given capacity that accepts any item.
//
// Precondition: capacity must be > 0.
func New(capacity int) *Container {
	return &Container{Capacity: capacity}
}

// beltClasses are the quick-draw classes a belt will hold.
var beltClasses = map[item.Class]bool{
	item.ClassMace: true, item.ClassAxe: true, item.ClassDagger: true,
	item.ClassLongsword: true, item.ClassShortsword: true, item.ClassWand: true,
	item.ClassStaff: true, item.ClassBottle: true, item.ClassArrow: true,
	item.ClassRock: true, item.ClassTwig: true,
}

// NewSack creates the default 25-slot anything-goes sack.
func NewSack() *Container {
	return New(SackSize)
}

// NewBelt creates the default 5-slot belt, restricted to quick-draw classes.
func NewBelt() *Container {
	c := New(BeltSize)
	c.accepts = beltClasses
	c.rejection = "That item will not fit on your belt."
	return c
}

// NewPouch creates a pouch of the given capacity. Pouch size is a premium
// perk and varies per account.
func NewPouch(capacity int) *Container {
	return New(capacity)
}

// Hydrate rebuilds the private acceptance rules after a container is
// deserialized from a persisted snapshot.
func (c *Container) Hydrate(kind string) {
	if kind == "belt" {
		c.accepts = beltClasses
		c.rejection = "That item will not fit on your belt."
	}
}

// AddItem appends i to the first free slot.
//
// Postcondition: returns "" on success; otherwise a user-facing reason and
// the container is unchanged.
func (c *Container) AddItem(i *item.Item) string {
	if i == nil {
		return "You cannot stash nothing."
	}
	if c.accepts != nil && !c.accepts[i.ItemClass] {
		return c.rejection
	}
	if len(c.Items) >= c.Capacity {
		return fmt.Sprintf("Your %s has no more room.", c.noun())
	}
	c.Items = append(c.Items, i)
	return ""
}

func (c *Container) noun() string {
	if c.accepts != nil {
		return "belt"
	}
	return "container"
}

// GetItemFromSlot is a non-mutating peek at slot index.
//
// Postcondition: returns nil when the slot is empty or out of range.
func (c *Container) GetItemFromSlot(slot int) *item.Item {
	if slot < 0 || slot >= len(c.Items) {
		return nil
	}
	return c.Items[slot]
}

// TakeItemFromSlot removes and returns the item at slot index.
//
// Postcondition: returns nil when the slot is empty or out of range; on
// success the remaining items shift down to fill the gap.
func (c *Container) TakeItemFromSlot(slot int) *item.Item {
	taken := c.GetItemFromSlot(slot)
	if taken == nil {
		return nil
	}
	c.Items = append(c.Items[:slot], c.Items[slot+1:]...)
	return taken
}

// RemoveItemByUUID removes the item with the given UUID if present.
//
// Postcondition: returns true iff an item was removed.
func (c *Container) RemoveItemByUUID(uuid string) bool {
	for idx, it := range c.Items {
		if it != nil && it.UUID == uuid {
			c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			return true
		}
	}
	return false
}

// Size returns the number of occupied slots.
func (c *Container) Size() int {
	return len(c.Items)
}

// IsFull reports whether no slots remain.
func (c *Container) IsFull() bool {
	return len(c.Items) >= c.Capacity
}

// AllItems returns a snapshot copy of the occupied slots.
//
// Postcondition: mutating the returned slice does not affect the container.
func (c *Container) AllItems() []*item.Item {
	out := make([]*item.Item, len(c.Items))
	copy(out, c.Items)
	return out
}
