package alerting

import (
	"github.com/oshokin/taws-partitions/internal/domain/taws"
)

// Mode 1 limits in feet and feet per minute.
const (
	mode1MinHeight = 10
	mode1MaxHeight = 2450
	// steepApproachBias is the descent rate tolerated on top of the
	// envelopes while a steep approach is selected.
	steepApproachBias = 500
)

// point is an envelope vertex: descent rate and the height below which
// that descent rate alerts.
type point struct {
	rate   float64
	height float64
}

// envelope is a piecewise linear boundary with increasing rates.
type envelope []point

//nolint:gochecknoglobals // Constant lookup tables.
var (
	mode1Caution = envelope{
		{rate: 1560, height: 100},
		{rate: 2200, height: 630},
		{rate: 5700, height: 2200},
	}
	mode1Warning = envelope{
		{rate: 1600, height: 100},
		{rate: 1850, height: 300},
		{rate: 10100, height: 1958},
	}
)

// ceiling returns the height below which rate alerts. Rates under the first
// vertex never alert; rates past the last vertex extend it flat.
func (e envelope) ceiling(rate float64) (float64, bool) {
	if len(e) == 0 || rate < e[0].rate {
		return 0, false
	}

	for i := 1; i < len(e); i++ {
		lo, hi := e[i-1], e[i]
		if rate <= hi.rate {
			ratio := (rate - lo.rate) / (hi.rate - lo.rate)
			return lo.height + ratio*(hi.height-lo.height), true
		}
	}

	return e[len(e)-1].height, true
}

// contains reports whether (rate, height) is inside the envelope.
func (e envelope) contains(rate, height float64) bool {
	ceiling, ok := e.ceiling(rate)

	return ok && height <= ceiling
}

// mode1 raises an excessive descent rate alert.
func mode1(state taws.AircraftState) (taws.AlertLevel, bool) {
	height := float64(state.AltitudeGround)
	if height < mode1MinHeight || height > mode1MaxHeight {
		return 0, false
	}

	rate := -float64(state.ClimbRate)
	if state.SteepApproach {
		rate -= steepApproachBias
	}

	switch {
	case mode1Warning.contains(rate, height):
		return taws.Warning, true
	case mode1Caution.contains(rate, height):
		return taws.Caution, true
	default:
		return 0, false
	}
}
