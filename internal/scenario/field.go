package scenario

import (
	"errors"
	"fmt"
	"math"

	"github.com/oshokin/taws-partitions/internal/domain/taws"
)

// Field selects a numeric flight parameter.
type Field uint8

// Numeric flight parameters.
const (
	FieldAltitudeSea Field = iota + 1
	FieldAltitudeGround
	FieldClimbRate
	FieldSpeedGround
	FieldSpeedAir
	FieldHeading
	FieldTrack
	FieldPitch
	FieldRoll
)

// Flag selects a boolean flight parameter.
type Flag uint8

// Boolean flight parameters.
const (
	FlagSteepApproach Flag = iota + 1
	FlagPrecisionApproach
	FlagGoAround
	FlagTakeOff
)

var (
	// ErrUnknownField is returned for field or flag values out of range.
	ErrUnknownField = errors.New("unknown aircraft state field")

	//nolint:gochecknoglobals // Lookup table.
	fieldNames = map[Field]string{
		FieldAltitudeSea:    "altitude_sea",
		FieldAltitudeGround: "altitude_ground",
		FieldClimbRate:      "climb_rate",
		FieldSpeedGround:    "speed_ground",
		FieldSpeedAir:       "speed_air",
		FieldHeading:        "heading",
		FieldTrack:          "track",
		FieldPitch:          "pitch",
		FieldRoll:           "roll",
	}

	//nolint:gochecknoglobals // Lookup table.
	flagNames = map[Flag]string{
		FlagSteepApproach:     "steep_approach",
		FlagPrecisionApproach: "precision_approach",
		FlagGoAround:          "go_around",
		FlagTakeOff:           "take_off",
	}
)

func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}

	return fmt.Sprintf("field(%d)", uint8(f))
}

// limits returns the physical range of the field. Heights above terrain
// and speeds cannot go negative; the rest is unbounded.
func (f Field) limits() (float64, float64) {
	switch f {
	case FieldAltitudeGround, FieldSpeedGround, FieldSpeedAir:
		return 0, math.Inf(1)
	default:
		return math.Inf(-1), math.Inf(1)
	}
}

// pointer returns the address of the field inside s.
func (f Field) pointer(s *taws.AircraftState) (*float32, error) {
	switch f {
	case FieldAltitudeSea:
		return &s.AltitudeSea, nil
	case FieldAltitudeGround:
		return &s.AltitudeGround, nil
	case FieldClimbRate:
		return &s.ClimbRate, nil
	case FieldSpeedGround:
		return &s.SpeedGround, nil
	case FieldSpeedAir:
		return &s.SpeedAir, nil
	case FieldHeading:
		return &s.Heading, nil
	case FieldTrack:
		return &s.Track, nil
	case FieldPitch:
		return &s.Pitch, nil
	case FieldRoll:
		return &s.Roll, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownField, f)
	}
}

func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}

	return fmt.Sprintf("flag(%d)", uint8(f))
}

// pointer returns the address of the flag inside s.
func (f Flag) pointer(s *taws.AircraftState) (*bool, error) {
	switch f {
	case FlagSteepApproach:
		return &s.SteepApproach, nil
	case FlagPrecisionApproach:
		return &s.PrecisionApproach, nil
	case FlagGoAround:
		return &s.GoAround, nil
	case FlagTakeOff:
		return &s.TakeOff, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownField, f)
	}
}
