package character

import (
	"fmt"
	"math"

	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/skill"
)

// SkillGainError reports a skill mutation that would have produced a
// non-finite value. It indicates a formula or data-corruption bug, never a
// user mistake; the attempted mutation is rolled back before it is returned.
type SkillGainError struct {
	CharacterName string
	Skill         skill.Type
	Delta         float64
}

func (e *SkillGainError) Error() string {
	return fmt.Sprintf("skill gain for %s would corrupt %s: delta %v is not finite",
		e.CharacterName, e.Skill, e.Delta)
}

// levelCapXP is the sentinel requirement past the level curve's end; no
// amount of experience reaches it.
const levelCapXP = math.MaxInt64

// maxCurveLevel is the last level with a real experience requirement.
const maxCurveLevel = 20

// SkillLevel maps the character's proficiency in t to its integer level.
func (c *Character) SkillLevel(t skill.Type) int {
	return skill.Level(c.Skills[t])
}

// GainSkill trains a skill. Unknown skills are ignored; gains are damped
// near the room-wide cap per the progression curve, with trade skills
// exempt.
//
// Postcondition: a non-nil error is always a *SkillGainError, and the skill
// set is unchanged in that case.
func (c *Character) GainSkill(t skill.Type, gained float64) error {
	if !skill.IsValid(t) {
		return nil
	}
	gained = skill.DampenGain(t, c.SkillLevel(t), c.maxSkill(), gained)
	if gained == 0 {
		return nil
	}
	return c.gainSkill(t, gained)
}

// gainSkill is the raw mutation behind GainSkill: no validity or cap
// checks, but it still refuses to store a non-finite value.
func (c *Character) gainSkill(t skill.Type, gained float64) error {
	next := c.Skills[t] + gained
	if math.IsNaN(next) || math.IsInf(next, 0) {
		return &SkillGainError{CharacterName: c.Name, Skill: t, Delta: gained}
	}
	if next < 0 {
		next = 0
	}
	c.Skills[t] = next
	return nil
}

// LevelXP returns the total experience required to hold the given level.
// The curve is exponential through level 20 and unreachable past it.
func LevelXP(level int) int {
	if level <= maxCurveLevel {
		return int(math.Pow(2, float64(level-1)) * 1000)
	}
	return levelCapXP
}

// GainExp adds experience, rounding to the nearest point and flooring the
// total at 100. Negative experience walks levels back down while the total
// sits below the current level's requirement, never below level 1. Dead
// characters gain nothing.
func (c *Character) GainExp(xp float64) {
	if c.IsDead() {
		return
	}

	c.Exp += int(math.Round(xp))
	if c.Exp <= 100 {
		c.Exp = 100
	}

	if xp < 0 {
		for c.Level >= 2 && c.Exp < LevelXP(c.Level) {
			c.Level--
		}
	}
}

// GainExpFromKills is the kill-reward entry point; it feeds GainExp.
func (c *Character) GainExpFromKills(xp float64) {
	c.GainExp(xp)
}

// TryLevelUp walks levels upward while experience covers the next level's
// requirement, capped at maxLevel. The first time a new highest level is
// reached the class's permanent level-up stat gains apply.
func (c *Character) TryLevelUp(maxLevel int) {
	for c.Level < maxLevel {
		if c.Exp <= LevelXP(c.Level+1) {
			break
		}
		c.Level++
		if c.Level > c.HighestLevel {
			c.HighestLevel = c.Level
			c.gainLevelStats()
		}
	}
}

func (c *Character) gainLevelStats() {
	src := c.rand()
	gains := class.ForName(c.BaseClass).GainLevelStats(c.classView(), src.Intn)
	c.BaseStats.AddAll(gains)
	c.Recalculate()
}
