// Package stat defines the character stat vocabulary and the numeric value
// objects the simulation core builds on: the fixed Stat set, Stats fragments,
// and the bounded HP/MP counter.
package stat

// Stat identifies one named numeric attribute of a character.
type Stat string

const (
	Str Stat = "str"
	Dex Stat = "dex"
	Agi Stat = "agi"

	Int Stat = "int"
	Wis Stat = "wis"
	Wil Stat = "wil"

	Luk Stat = "luk"
	Cha Stat = "cha"
	Con Stat = "con"

	Move    Stat = "move"
	HPRegen Stat = "hpregen"
	MPRegen Stat = "mpregen"

	HP Stat = "hp"
	MP Stat = "mp"

	ArmorClass Stat = "armorClass"
	Accuracy   Stat = "accuracy"
	Offense    Stat = "offense"
	Defense    Stat = "defense"

	Stealth    Stat = "stealth"
	Perception Stat = "perception"

	MagicalResist  Stat = "magicalResist"
	PhysicalResist Stat = "physicalResist"
	NecroticResist Stat = "necroticResist"
	EnergyResist   Stat = "energyResist"
	WaterResist    Stat = "waterResist"
	FireResist     Stat = "fireResist"
	IceResist      Stat = "iceResist"
)

// AllStats lists every Stat in a stable order, used when the pipeline needs
// to iterate deterministically.
var AllStats = []Stat{
	Str, Dex, Agi,
	Int, Wis, Wil,
	Luk, Cha, Con,
	Move, HPRegen, MPRegen,
	HP, MP,
	ArmorClass, Accuracy, Offense, Defense,
	Stealth, Perception,
	MagicalResist, PhysicalResist, NecroticResist, EnergyResist, WaterResist, FireResist, IceResist,
}

// validStats is the membership set for IsValid.
var validStats = func() map[Stat]bool {
	m := make(map[Stat]bool, len(AllStats))
	for _, s := range AllStats {
		m[s] = true
	}
	return m
}()

// IsValid reports whether s names a known stat.
func IsValid(s Stat) bool {
	return validStats[s]
}

// Stats is a sparse fragment of stat values. A missing key reads as zero.
// Items, effects, traits, and classes all contribute Stats fragments that the
// recompute pipeline folds together.
type Stats map[Stat]int

// Defaults returns the base stat block every character starts from.
//
// Postcondition: move is 3, hpregen and mpregen are 1, hp is 100, mp is 0.
func Defaults() Stats {
	return Stats{
		Move:    3,
		HPRegen: 1,
		MPRegen: 1,
		HP:      100,
		MP:      0,
	}
}

// Get returns the value for s, or 0 when absent.
func (st Stats) Get(s Stat) int {
	return st[s]
}

// Add adds value to s in place.
func (st Stats) Add(s Stat, value int) {
	st[s] += value
}

// AddAll folds every entry of other into st in place.
//
// Postcondition: for every stat k, st[k] equals its prior value plus other[k].
func (st Stats) AddAll(other Stats) {
	for k, v := range other {
		st[k] += v
	}
}

// Clone returns an independent copy of st.
func (st Stats) Clone() Stats {
	out := make(Stats, len(st))
	for k, v := range st {
		out[k] = v
	}
	return out
}
