// Package item defines the item taxonomy, static item definitions loaded from
// YAML, and the runtime item instances characters own, hold, and equip.
package item

// Class identifies an item's equip-class: what it is and where it can go.
type Class string

// Weapon classes.
const (
	ClassMace       Class = "Mace"
	ClassAxe        Class = "Axe"
	ClassDagger     Class = "Dagger"
	ClassLongsword  Class = "Longsword"
	ClassGreatsword Class = "Greatsword"
	ClassShortsword Class = "Shortsword"
	ClassHalberd    Class = "Halberd"
	ClassShortbow   Class = "Shortbow"
	ClassLongbow    Class = "Longbow"
	ClassStaff      Class = "Staff"
	ClassWand       Class = "Wand"
	ClassShield     Class = "Shield"
	ClassArrow      Class = "Arrow"
)

// Armor and wearable classes.
const (
	ClassTunic       Class = "Tunic"
	ClassFur         Class = "Fur"
	ClassBreastplate Class = "Breastplate"
	ClassScaleplate  Class = "Scaleplate"
	ClassFullplate   Class = "Fullplate"
	ClassRobe        Class = "Robe"
	ClassRing        Class = "Ring"
	ClassAmulet      Class = "Amulet"
	ClassHelm        Class = "Helm"
	ClassSkull       Class = "Skull"
	ClassSash        Class = "Sash"
	ClassBracers     Class = "Bracers"
	ClassGloves      Class = "Gloves"
	ClassBoots       Class = "Boots"
	ClassEarring     Class = "Earring"
)

// Miscellaneous classes.
const (
	ClassBottle Class = "Bottle"
	ClassCoin   Class = "Coin"
	ClassCorpse Class = "Corpse"
	ClassRock   Class = "Rock"
	ClassKey    Class = "Key"
	ClassBook   Class = "Book"
	ClassGem    Class = "Gem"
	ClassBox    Class = "Box"
	ClassTwig   Class = "Twig"
	ClassHands  Class = "Hands"
)

// Slot identifies a gear slot on a character.
type Slot string

const (
	SlotArmor  Slot = "Armor"
	SlotRobe1  Slot = "Robe1"
	SlotRobe2  Slot = "Robe2"
	SlotRing1  Slot = "Ring1"
	SlotRing2  Slot = "Ring2"
	SlotHead   Slot = "Head"
	SlotNeck   Slot = "Neck"
	SlotWaist  Slot = "Waist"
	SlotWrists Slot = "Wrists"
	SlotHands  Slot = "Hands"
	SlotFeet   Slot = "Feet"
	SlotEar    Slot = "Ear"
)

// AllGearSlots lists every gear slot in a stable order for deterministic
// iteration during the recompute pipeline.
var AllGearSlots = []Slot{
	SlotArmor, SlotRobe1, SlotRobe2, SlotRing1, SlotRing2,
	SlotHead, SlotNeck, SlotWaist, SlotWrists, SlotHands, SlotFeet, SlotEar,
}

// equipHash maps a wearable class to the single slot it occupies. Armor,
// robes, and rings have multi-slot rules handled separately.
var equipHash = map[Class]Slot{
	ClassHelm:    SlotHead,
	ClassSkull:   SlotHead,
	ClassAmulet:  SlotNeck,
	ClassSash:    SlotWaist,
	ClassBracers: SlotWrists,
	ClassGloves:  SlotHands,
	ClassBoots:   SlotFeet,
	ClassEarring: SlotEar,
}

// EquipSlotFor returns the fixed slot for a single-slot wearable class.
//
// Postcondition: returns ("", false) for armor, robes, rings, and anything
// that is not a wearable.
func EquipSlotFor(c Class) (Slot, bool) {
	s, ok := equipHash[c]
	return s, ok
}

// armorClasses fill the Armor slot.
var armorClasses = map[Class]bool{
	ClassTunic:       true,
	ClassFur:         true,
	ClassBreastplate: true,
	ClassScaleplate:  true,
	ClassFullplate:   true,
}

// IsArmor reports whether c fills the Armor slot.
func IsArmor(c Class) bool {
	return armorClasses[c]
}

// IsRobe reports whether c may fill the Armor slot or a robe slot.
func IsRobe(c Class) bool {
	return c == ClassRobe
}

// weaponClasses are the melee/ranged classes tied to a weapon skill.
var weaponClasses = map[Class]bool{
	ClassMace:       true,
	ClassAxe:        true,
	ClassDagger:     true,
	ClassLongsword:  true,
	ClassGreatsword: true,
	ClassShortsword: true,
	ClassHalberd:    true,
	ClassShortbow:   true,
	ClassLongbow:    true,
	ClassStaff:      true,
	ClassWand:       true,
	ClassArrow:      true,
}

// IsWeapon reports whether c is a weapon class.
func IsWeapon(c Class) bool {
	return weaponClasses[c]
}

// twoHandedClasses occupy both hands when wielded; an offhand item grants
// nothing next to them without the right trait.
var twoHandedClasses = map[Class]bool{
	ClassGreatsword: true,
	ClassHalberd:    true,
	ClassLongbow:    true,
}

// IsTwoHanded reports whether wielding c occupies both hands.
func IsTwoHanded(c Class) bool {
	return twoHandedClasses[c]
}

// rangedClasses can fire ammunition held in the other hand.
var rangedClasses = map[Class]bool{
	ClassShortbow: true,
	ClassLongbow:  true,
}

// CanFireAmmunition reports whether class c fires Arrow-class ammunition.
func CanFireAmmunition(c Class) bool {
	return rangedClasses[c]
}

// IsAmmunition reports whether c is consumed-by-firing ammunition.
func IsAmmunition(c Class) bool {
	return c == ClassArrow
}

// equippable is the set of classes that may occupy a gear slot or grant
// stats; everything else is cargo.
var equippable = func() map[Class]bool {
	m := map[Class]bool{
		ClassShield: true,
		ClassRobe:   true,
		ClassRing:   true,
		ClassAmulet: true, ClassHelm: true, ClassSkull: true,
		ClassSash: true, ClassBracers: true, ClassGloves: true,
		ClassBoots: true, ClassEarring: true,
	}
	for c := range armorClasses {
		m[c] = true
	}
	for c := range weaponClasses {
		m[c] = true
	}
	return m
}()

// IsEquippable reports whether c may be worn or wielded for stats.
func IsEquippable(c Class) bool {
	return equippable[c]
}

// givesBonusInHand is the set of classes whose stats apply while merely held.
var givesBonusInHand = func() map[Class]bool {
	m := map[Class]bool{ClassShield: true}
	for c := range weaponClasses {
		m[c] = true
	}
	return m
}()

// GivesBonusInHand reports whether an item of class c contributes stats from
// a hand slot at all. Eligibility rules on top of this live in the character
// core.
func GivesBonusInHand(c Class) bool {
	return givesBonusInHand[c]
}

// hideReductionPercents is the stealth penalty for holding an item of the
// given class, as a percentage of total stealth.
var hideReductionPercents = map[Class]int{
	ClassShield:     50,
	ClassLongsword:  25,
	ClassGreatsword: 35,
	ClassHalberd:    35,
	ClassMace:       20,
	ClassAxe:        20,
	ClassStaff:      20,
	ClassLongbow:    30,
	ClassShortbow:   20,
	ClassShortsword: 15,
	ClassDagger:     5,
	ClassWand:       5,
}

// HideReductionPercent returns the stealth reduction percentage for holding
// an item of class c. Unlisted classes carry no penalty.
func HideReductionPercent(c Class) int {
	return hideReductionPercents[c]
}

// SkillFor maps a weapon class to the skill that governs it.
var skillForClass = map[Class]string{
	ClassMace:       "mace",
	ClassAxe:        "axe",
	ClassDagger:     "dagger",
	ClassLongsword:  "onehanded",
	ClassGreatsword: "twohanded",
	ClassShortsword: "shortsword",
	ClassHalberd:    "polearm",
	ClassShortbow:   "ranged",
	ClassLongbow:    "ranged",
	ClassArrow:      "ranged",
	ClassStaff:      "staff",
	ClassWand:       "wand",
	ClassHands:      "martial",
	ClassRock:       "throwing",
	ClassShield:     "martial",
}

// SkillFor returns the governing skill name for a weapon class, or "" when
// the class has none.
func SkillFor(c Class) string {
	return skillForClass[c]
}
