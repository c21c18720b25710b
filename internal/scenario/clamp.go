package scenario

import "math"

// BouncingClamp forces a value into or out of a region by reflecting the
// excursion at the violated boundary. It remembers its previous output so
// NotInRange keeps pushing to the same side of the band.
type BouncingClamp struct {
	prev   float64
	primed bool
}

// Reset forgets the previous output.
func (c *BouncingClamp) Reset() {
	*c = BouncingClamp{}
}

// AtLeast returns v when v >= floor and otherwise reflects it upward off
// floor by the distance it fell short, so the result can pass floor by
// that shortfall instead of landing on it.
func (c *BouncingClamp) AtLeast(v, floor float64) float64 {
	if v < floor {
		v = 2*floor - v
	}

	return c.remember(v)
}

// AtMost returns v when v <= ceiling and otherwise reflects it downward off
// ceiling by the distance it overshot, ending below ceiling by that amount.
func (c *BouncingClamp) AtMost(v, ceiling float64) float64 {
	if v > ceiling {
		v = 2*ceiling - v
	}

	return c.remember(v)
}

// InRange returns v when it lies in [lo, hi]. Otherwise v is reflected
// between both boundaries until it lands inside, so the result never
// passes the opposite boundary.
func (c *BouncingClamp) InRange(v, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	if v >= lo && v <= hi {
		return c.remember(v)
	}

	width := hi - lo
	if width == 0 {
		return c.remember(lo)
	}

	offset := math.Mod(v-lo, 2*width)
	if offset < 0 {
		offset += 2 * width
	}

	if offset > width {
		offset = 2*width - offset
	}

	return c.remember(lo + offset)
}

// NotInRange returns v when it lies outside [lo, hi]. Otherwise v is
// reflected out of the band: to the side of the previous output when there
// is one, to the nearest boundary when not. The result is strictly outside
// the band even after rounding to float32.
func (c *BouncingClamp) NotInRange(v, lo, hi float64) float64 {
	return c.NotInRangeWithin(v, lo, hi, math.Inf(-1), math.Inf(1))
}

// NotInRangeWithin is NotInRange for a quantity confined to [floor, ceiling],
// such as a height above terrain. A side of the band with no room before
// the limit is never chosen, and a reflection past the limit stops at it.
func (c *BouncingClamp) NotInRangeWithin(v, lo, hi, floor, ceiling float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	if v < lo || v > hi {
		return c.remember(v)
	}

	below := v-lo <= hi-v
	if c.primed {
		below = c.prev < lo
	}

	roomBelow, roomAbove := lo > floor, hi < ceiling

	switch {
	case below && !roomBelow && roomAbove:
		below = false
	case !below && !roomAbove && roomBelow:
		below = true
	}

	if below {
		out := math.Min(2*lo-v, float64(math.Nextafter32(float32(lo), float32(math.Inf(-1)))))
		if roomBelow {
			out = math.Max(out, floor)
		}

		return c.remember(out)
	}

	out := math.Max(2*hi-v, float64(math.Nextafter32(float32(hi), float32(math.Inf(1)))))
	if roomAbove {
		out = math.Min(out, ceiling)
	}

	return c.remember(out)
}

func (c *BouncingClamp) remember(v float64) float64 {
	c.prev = v
	c.primed = true

	return v
}
