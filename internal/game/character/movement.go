package character

// Step is one unit move in a walk sequence.
type Step struct {
	X int
	Y int
}

// TakeSequenceOfSteps walks steps one at a time against the wired map view:
// wall tiles block, doors get an open attempt, aquatic-only characters
// refuse dry tiles. The final position is clamped to the map bounds and any
// trap on the landing tile fires.
func (c *Character) TakeSequenceOfSteps(steps []Step) {
	var m MapView
	if c.ctx != nil {
		m = c.ctx.Map
	}

	for _, step := range steps {
		nx := c.X + step.X
		ny := c.Y + step.Y

		if m != nil {
			if c.AquaticOnly && !m.IsFluid(nx, ny) {
				continue
			}
			if m.IsDense(nx, ny) {
				continue
			}
			if !m.TryOpenDoorAt(c, nx, ny) {
				continue
			}
		}

		c.X = nx
		c.Y = ny
	}

	if c.X < 0 {
		c.X = 0
	}
	if c.Y < 0 {
		c.Y = 0
	}
	// valid tiles run 0..Width-1 and 0..Height-1
	if m != nil {
		if c.X > m.Width()-1 {
			c.X = m.Width() - 1
		}
		if c.Y > m.Height()-1 {
			c.Y = m.Height() - 1
		}
	}

	if c.ctx != nil && c.ctx.World != nil {
		c.ctx.World.TriggerTrapAt(c, c.X, c.Y)
	}
}

// SetDirBasedOnXYDiff faces the character along the dominant axis of a
// movement delta. A zero delta leaves the facing alone; ties face east or
// west.
func (c *Character) SetDirBasedOnXYDiff(x, y int) {
	if x == 0 && y == 0 {
		return
	}

	absX, absY := x, y
	if absX < 0 {
		absX = -absX
	}
	if absY < 0 {
		absY = -absY
	}

	switch {
	case absX >= absY && x > 0:
		c.Dir = East
	case absX >= absY && x < 0:
		c.Dir = West
	case absY > absX && y > 0:
		c.Dir = South
	case absY > absX && y < 0:
		c.Dir = North
	}
}

// XYFromDir returns the unit offset for a facing.
func XYFromDir(dir Direction) (int, int) {
	switch dir {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}
