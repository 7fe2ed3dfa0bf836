package stat

// BoundedCounter is a numeric value clamped to [Minimum, Maximum], used for
// HP and MP. All mutation goes through its methods; callers never assign the
// current value directly.
//
// Invariant: Minimum <= current <= Maximum at all times.
type BoundedCounter struct {
	Minimum int `json:"minimum" yaml:"minimum"`
	Maximum int `json:"maximum" yaml:"maximum"`
	Current int `json:"current" yaml:"current"`
}

// NewBoundedCounter creates a counter clamped to [minimum, maximum] with the
// given starting value.
//
// Precondition: minimum <= maximum.
// Postcondition: Current() is current clamped into [minimum, maximum].
func NewBoundedCounter(minimum, maximum, current int) *BoundedCounter {
	c := &BoundedCounter{Minimum: minimum, Maximum: maximum}
	c.Set(current)
	return c
}

func (c *BoundedCounter) clamp() {
	if c.Current > c.Maximum {
		c.Current = c.Maximum
	}
	if c.Current < c.Minimum {
		c.Current = c.Minimum
	}
}

// Add increases the current value by n, clamping to the maximum.
func (c *BoundedCounter) Add(n int) {
	c.Current += n
	c.clamp()
}

// Sub decreases the current value by n, clamping to the minimum.
func (c *BoundedCounter) Sub(n int) {
	c.Add(-n)
}

// Set assigns the current value, clamping into bounds.
func (c *BoundedCounter) Set(n int) {
	c.Current = n
	c.clamp()
}

// SetMaximum changes the upper bound and re-clamps the current value.
// Lowering the maximum below the current value drags the current value down
// with it; raising the maximum never resurrects a value on its own.
//
// Precondition: maximum >= Minimum.
func (c *BoundedCounter) SetMaximum(maximum int) {
	c.Maximum = maximum
	c.clamp()
}

// SetMinimum changes the lower bound and re-clamps the current value.
//
// Precondition: minimum <= Maximum.
func (c *BoundedCounter) SetMinimum(minimum int) {
	c.Minimum = minimum
	c.clamp()
}

// ToMinimum sets the current value to the minimum bound.
func (c *BoundedCounter) ToMinimum() {
	c.Current = c.Minimum
}

// ToMaximum sets the current value to the maximum bound.
func (c *BoundedCounter) ToMaximum() {
	c.Current = c.Maximum
}

// AtMinimum reports whether the current value sits on the lower bound.
func (c *BoundedCounter) AtMinimum() bool {
	return c.Current <= c.Minimum
}

// AtMaximum reports whether the current value sits on the upper bound.
func (c *BoundedCounter) AtMaximum() bool {
	return c.Current >= c.Maximum
}

// Percentage returns the current value as a percentage of the range, in
// [0, 100]. A degenerate range (Maximum == Minimum) reads as 0.
func (c *BoundedCounter) Percentage() int {
	span := c.Maximum - c.Minimum
	if span <= 0 {
		return 0
	}
	return (c.Current - c.Minimum) * 100 / span
}

// GTEPercent reports whether the current value is at or above p percent.
func (c *BoundedCounter) GTEPercent(p int) bool {
	return c.Percentage() >= p
}

// LTEPercent reports whether the current value is at or below p percent.
func (c *BoundedCounter) LTEPercent(p int) bool {
	return c.Percentage() <= p
}
