package scenario

import (
	"fmt"
	"math"
	"strconv"

	"github.com/oshokin/taws-partitions/internal/domain/taws"
)

// MouldKind tags the constraint a Mould applies.
type MouldKind uint8

// Mould kinds.
const (
	ArmSet MouldKind = iota + 1
	InhibitSet
	FlagSet
	ClampAtLeast
	ClampAtMost
	ClampInRange
	ClampNotInRange
)

// Mould is one scenario precondition pressed into every frame.
// Clamp moulds carry their own BouncingClamp, so a Mould must not be
// shared by concurrently running scenarios.
type Mould struct {
	Kind MouldKind
	// System and Value parametrize ArmSet and InhibitSet.
	System taws.AlertSystemID
	Value  bool
	// Flag parametrizes FlagSet, which also uses Value.
	Flag Flag
	// Field, Lo and Hi parametrize the clamps. ClampAtLeast uses Lo,
	// ClampAtMost uses Hi.
	Field Field
	Lo    float64
	Hi    float64

	clamp BouncingClamp
}

// Arm returns a mould arming or disarming system.
func Arm(system taws.AlertSystemID, armed bool) *Mould {
	return &Mould{Kind: ArmSet, System: system, Value: armed}
}

// Inhibit returns a mould inhibiting or releasing system.
func Inhibit(system taws.AlertSystemID, inhibited bool) *Mould {
	return &Mould{Kind: InhibitSet, System: system, Value: inhibited}
}

// SetFlag returns a mould forcing a boolean parameter.
func SetFlag(flag Flag, value bool) *Mould {
	return &Mould{Kind: FlagSet, Flag: flag, Value: value}
}

// AtLeast returns a mould keeping field at or above floor.
func AtLeast(field Field, floor float64) *Mould {
	return &Mould{Kind: ClampAtLeast, Field: field, Lo: floor}
}

// AtMost returns a mould keeping field at or below ceiling.
func AtMost(field Field, ceiling float64) *Mould {
	return &Mould{Kind: ClampAtMost, Field: field, Hi: ceiling}
}

// InRange returns a mould keeping field within [lo, hi].
func InRange(field Field, lo, hi float64) *Mould {
	return &Mould{Kind: ClampInRange, Field: field, Lo: lo, Hi: hi}
}

// NotInRange returns a mould keeping field outside [lo, hi].
func NotInRange(field Field, lo, hi float64) *Mould {
	return &Mould{Kind: ClampNotInRange, Field: field, Lo: lo, Hi: hi}
}

// Reset clears the clamp state before a new scenario run.
func (m *Mould) Reset() {
	m.clamp.Reset()
}

// Apply presses one frame. Arm and inhibit moulds place their command in
// the subsystem's own slot of the command arrays.
func (m *Mould) Apply(msg *taws.InputMessage) error {
	switch m.Kind {
	case ArmSet:
		return msg.Arm.Set(m.System, m.Value)
	case InhibitSet:
		return msg.Inhibit.Set(m.System, m.Value)
	case FlagSet:
		flag, err := m.Flag.pointer(&msg.AircraftState)
		if err != nil {
			return err
		}

		*flag = m.Value

		return nil
	case ClampAtLeast, ClampAtMost, ClampInRange, ClampNotInRange:
		return m.applyClamp(&msg.AircraftState)
	default:
		return fmt.Errorf("unknown mould kind %d", m.Kind)
	}
}

func (m *Mould) applyClamp(s *taws.AircraftState) error {
	field, err := m.Field.pointer(s)
	if err != nil {
		return err
	}

	v := float64(*field)
	floor, ceiling := m.Field.limits()

	switch m.Kind {
	case ClampAtLeast:
		v = m.clamp.AtLeast(v, m.Lo)
	case ClampAtMost:
		v = m.clamp.AtMost(v, m.Hi)
		// A reflection off a low ceiling can pass the physical floor.
		if v < floor && m.Hi > floor {
			v = m.clamp.InRange(v, floor, m.Hi)
		}
	case ClampInRange:
		lo, hi := math.Max(m.Lo, floor), math.Min(m.Hi, ceiling)
		if lo > hi {
			lo, hi = m.Lo, m.Hi
		}

		v = m.clamp.InRange(v, lo, hi)
	case ClampNotInRange:
		v = m.clamp.NotInRangeWithin(v, m.Lo, m.Hi, floor, ceiling)
	}

	*field = float32(v)

	return nil
}

func (m *Mould) String() string {
	switch m.Kind {
	case ArmSet:
		return m.System.String() + " armed=" + strconv.FormatBool(m.Value)
	case InhibitSet:
		return m.System.String() + " inhibited=" + strconv.FormatBool(m.Value)
	case FlagSet:
		return m.Flag.String() + "=" + strconv.FormatBool(m.Value)
	case ClampAtLeast:
		return fmt.Sprintf("%s >= %g", m.Field, m.Lo)
	case ClampAtMost:
		return fmt.Sprintf("%s <= %g", m.Field, m.Hi)
	case ClampInRange:
		return fmt.Sprintf("%s in [%g, %g]", m.Field, m.Lo, m.Hi)
	case ClampNotInRange:
		return fmt.Sprintf("%s not in [%g, %g]", m.Field, m.Lo, m.Hi)
	default:
		return fmt.Sprintf("mould(%d)", m.Kind)
	}
}
