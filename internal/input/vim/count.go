package vim

import "math"

// CountState tracks count prefix accumulation during parsing.
type CountState struct {
	// Value is the accumulated count value.
	Value int

	// Active indicates if a count is being accumulated.
	Active bool
}

// Reset clears the count state.
func (c *CountState) Reset() {
	c.Value = 0
	c.Active = false
}

// AccumulateDigit adds a digit to the count and reports whether it was
// accepted. A leading '0' is rejected because it is the line-start motion.
func (c *CountState) AccumulateDigit(r rune) bool {
	if r < '0' || r > '9' {
		return false
	}
	digit := int(r - '0')
	if !c.Active && digit == 0 {
		return false
	}
	c.Active = true

	if c.Value > (math.MaxInt32-digit)/10 {
		c.Value = math.MaxInt32
		return true
	}
	c.Value = c.Value*10 + digit
	return true
}

// Get returns the effective count (1 if no count was typed).
func (c *CountState) Get() int {
	if c.Value <= 0 {
		return 1
	}
	return c.Value
}

// IsCountStart reports whether r can begin a count.
func IsCountStart(r rune) bool {
	return r >= '1' && r <= '9'
}

// IsCountDigit reports whether r can continue a count.
func IsCountDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// CombineCounts multiplies the counts typed before and after an operator,
// so that 2d3w deletes six words. It returns 0 when neither was typed.
func CombineCounts(before, after CountState) int {
	switch {
	case before.Active && after.Active:
		n := int64(before.Value) * int64(after.Value)
		if n > math.MaxInt32 {
			return math.MaxInt32
		}
		return int(n)
	case before.Active:
		return before.Value
	case after.Active:
		return after.Value
	default:
		return 0
	}
}
