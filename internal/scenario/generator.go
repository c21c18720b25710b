package scenario

import (
	"math/rand/v2"

	"github.com/oshokin/taws-partitions/internal/domain/taws"
)

// Generator produces independent aircraft states within plausible bounds.
// The same seed always yields the same sequence.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // Reproducible test data.
	}
}

// Next returns a fresh aircraft state.
func (g *Generator) Next() taws.AircraftState {
	ground := g.uniform(0, 5000)
	speed := g.uniform(80, 350)
	heading := g.uniform(0, 360)

	return taws.AircraftState{
		AltitudeGround: ground,
		AltitudeSea:    ground + g.uniform(0, 10000),
		ClimbRate:      g.uniform(-6000, 6000),
		SpeedAir:       speed,
		SpeedGround:    speed + g.uniform(-30, 30),
		Heading:        heading,
		Track:          heading + g.uniform(-10, 10),
		Pitch:          g.uniform(-15, 20),
		Roll:           g.uniform(-30, 30),
		Latitude:       g.uniform(-90, 90),
		Longitude:      g.uniform(-180, 180),
	}
}

// Batch returns n states.
func (g *Generator) Batch(n int) []taws.AircraftState {
	frames := make([]taws.AircraftState, n)
	for i := range frames {
		frames[i] = g.Next()
	}

	return frames
}

func (g *Generator) uniform(lo, hi float32) float32 {
	return lo + g.rng.Float32()*(hi-lo)
}
