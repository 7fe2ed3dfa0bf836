package class_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seiyria/landoftherair/internal/game/class"
	"github.com/seiyria/landoftherair/internal/game/skill"
	"github.com/seiyria/landoftherair/internal/game/stat"
)

func TestForName_FallsBackToUndecided(t *testing.T) {
	assert.Equal(t, class.Undecided, class.ForName("Necromancer").ClassName())
	assert.Equal(t, class.Mage, class.ForName(class.Mage).ClassName())
}

func TestMage_BonusStatsScaleWithInt(t *testing.T) {
	v := class.View{BaseStats: stat.Stats{stat.Int: 15}}
	bonus := class.ForName(class.Mage).CalcBonusStats(v)
	assert.Equal(t, 30, bonus.Get(stat.MP))
	assert.Equal(t, 3, bonus.Get(stat.MPRegen))
}

func TestMage_BecomeClassGrantsManaOnce(t *testing.T) {
	m := class.ForName(class.Mage)

	first := m.BecomeClass(class.View{BaseStats: stat.Stats{}})
	assert.Equal(t, 100, first.Get(stat.MP))

	again := m.BecomeClass(class.View{BaseStats: stat.Stats{stat.MP: 100}})
	assert.Equal(t, 0, again.Get(stat.MP))
}

func TestWarrior_CannotBeEncumbered(t *testing.T) {
	assert.False(t, class.ForName(class.Warrior).CanBeEncumbered())
	assert.False(t, class.ForName(class.Thief).CanBeEncumbered())
	assert.True(t, class.ForName(class.Mage).CanBeEncumbered())
	assert.True(t, class.ForName(class.Healer).CanBeEncumbered())
}

func TestThief_BonusStatsScaleWithThievery(t *testing.T) {
	v := class.View{
		BaseStats:   stat.Stats{stat.Dex: 10},
		SkillLevels: map[skill.Type]int{skill.Thievery: 4},
	}
	bonus := class.ForName(class.Thief).CalcBonusStats(v)
	assert.Equal(t, 8, bonus.Get(stat.Stealth))
	assert.Equal(t, 2, bonus.Get(stat.Perception))
}

func TestGainLevelStats_UsesInjectedRNG(t *testing.T) {
	fixed := func(n int) int { return n - 1 }
	gains := class.ForName(class.Warrior).GainLevelStats(class.View{}, fixed)
	assert.Equal(t, 34, gains.Get(stat.HP))

	zero := func(n int) int { return 0 }
	gains = class.ForName(class.Warrior).GainLevelStats(class.View{}, zero)
	assert.Equal(t, 10, gains.Get(stat.HP))
}
