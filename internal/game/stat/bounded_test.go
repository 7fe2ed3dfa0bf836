package stat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/seiyria/landoftherair/internal/game/stat"
)

func TestBoundedCounter_AddClampsToMaximum(t *testing.T) {
	c := stat.NewBoundedCounter(0, 100, 90)
	c.Add(50)
	assert.Equal(t, 100, c.Current)
	assert.True(t, c.AtMaximum())
}

func TestBoundedCounter_SubClampsToMinimum(t *testing.T) {
	c := stat.NewBoundedCounter(0, 100, 10)
	c.Sub(50)
	assert.Equal(t, 0, c.Current)
	assert.True(t, c.AtMinimum())
}

func TestBoundedCounter_SetClamps(t *testing.T) {
	c := stat.NewBoundedCounter(0, 100, 50)
	c.Set(500)
	assert.Equal(t, 100, c.Current)
	c.Set(-500)
	assert.Equal(t, 0, c.Current)
}

func TestBoundedCounter_LoweringMaximumDragsCurrent(t *testing.T) {
	c := stat.NewBoundedCounter(0, 100, 100)
	c.SetMaximum(40)
	assert.Equal(t, 40, c.Current)
}

func TestBoundedCounter_RaisingMaximumDoesNotResurrect(t *testing.T) {
	c := stat.NewBoundedCounter(0, 100, 0)
	c.SetMaximum(200)
	assert.Equal(t, 0, c.Current)
	assert.True(t, c.AtMinimum())
}

func TestBoundedCounter_Percentage(t *testing.T) {
	c := stat.NewBoundedCounter(0, 200, 50)
	assert.Equal(t, 25, c.Percentage())
	assert.True(t, c.LTEPercent(25))
	assert.False(t, c.GTEPercent(26))
}

func TestBoundedCounter_DegenerateRangePercentageIsZero(t *testing.T) {
	c := stat.NewBoundedCounter(0, 0, 0)
	assert.Equal(t, 0, c.Percentage())
}

// Property: no sequence of Add/Sub/Set/SetMaximum operations ever moves the
// current value outside [Minimum, Maximum].
func TestBoundedCounter_AlwaysWithinBounds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		max := rapid.IntRange(1, 1000).Draw(t, "max")
		c := stat.NewBoundedCounter(0, max, rapid.IntRange(-100, 2000).Draw(t, "start"))

		ops := rapid.IntRange(1, 50).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				c.Add(rapid.IntRange(-500, 500).Draw(t, "n"))
			case 1:
				c.Sub(rapid.IntRange(-500, 500).Draw(t, "n"))
			case 2:
				c.Set(rapid.IntRange(-500, 1500).Draw(t, "n"))
			case 3:
				c.SetMaximum(rapid.IntRange(0, 1000).Draw(t, "m"))
			}
			if c.Current < c.Minimum || c.Current > c.Maximum {
				t.Fatalf("current %d outside [%d, %d]", c.Current, c.Minimum, c.Maximum)
			}
		}
	})
}

func TestStats_AddAll(t *testing.T) {
	a := stat.Stats{stat.Str: 10, stat.HP: 100}
	a.AddAll(stat.Stats{stat.Str: 5, stat.Dex: 3})
	assert.Equal(t, 15, a.Get(stat.Str))
	assert.Equal(t, 3, a.Get(stat.Dex))
	assert.Equal(t, 100, a.Get(stat.HP))
}

func TestStats_CloneIsIndependent(t *testing.T) {
	a := stat.Stats{stat.Str: 10}
	b := a.Clone()
	b.Add(stat.Str, 5)
	assert.Equal(t, 10, a.Get(stat.Str))
	assert.Equal(t, 15, b.Get(stat.Str))
}

func TestDefaults(t *testing.T) {
	d := stat.Defaults()
	assert.Equal(t, 3, d.Get(stat.Move))
	assert.Equal(t, 1, d.Get(stat.HPRegen))
	assert.Equal(t, 1, d.Get(stat.MPRegen))
	assert.Equal(t, 100, d.Get(stat.HP))
	assert.Equal(t, 0, d.Get(stat.MP))
}
