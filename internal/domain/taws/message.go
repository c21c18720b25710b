package taws

import (
	"fmt"
	"slices"
)

// Port budgets in bytes. They size the sampling ports, so exceeding them is a
// build mistake rather than a runtime condition.
const (
	// AircraftStateSize is the capacity of the aircraft state port.
	AircraftStateSize = 128
	// AlertStateSize is the capacity of the alert port.
	AlertStateSize = 16
)

// MaxAlerts is the number of records that fit into AlertStateSize.
const MaxAlerts = 5

// AlertCommand sets the armed or inhibited flag of one subsystem.
type AlertCommand struct {
	_ struct{} `cbor:",toarray"`

	System AlertSystemID
	Value  bool
}

// CommandArray holds at most one pending command per subsystem, indexed by
// subsystem id. A nil entry leaves the flag unchanged.
type CommandArray [NumAlertSystems]*AlertCommand

// Set stores a command for system in its own slot, replacing any previous one.
func (a *CommandArray) Set(system AlertSystemID, value bool) error {
	if !system.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownAlertSystem, system)
	}

	a[system] = &AlertCommand{System: system, Value: value}

	return nil
}

// Clone returns a deep copy so frames never share command pointers.
func (a *CommandArray) Clone() CommandArray {
	var cloned CommandArray

	for i, command := range a {
		if command != nil {
			c := *command
			cloned[i] = &c
		}
	}

	return cloned
}

// AircraftState is one snapshot of the flight parameters.
type AircraftState struct {
	_ struct{} `cbor:",toarray"`

	// AltitudeSea is the altitude above mean sea level in feet.
	AltitudeSea float32
	// AltitudeGround is the height above terrain in feet.
	AltitudeGround float32
	// ClimbRate is the vertical speed in feet per minute, negative when descending.
	ClimbRate float32
	// SpeedGround is the ground speed in knots.
	SpeedGround float32
	// SpeedAir is the airspeed in knots.
	SpeedAir float32
	// Heading is the true heading in degrees.
	Heading float32
	// Track is the true track in degrees.
	Track float32
	// Pitch is the pitch angle in degrees.
	Pitch float32
	// Roll is the roll angle in degrees.
	Roll float32
	// Latitude in degrees.
	Latitude float32
	// Longitude in degrees.
	Longitude float32

	SteepApproach     bool
	PrecisionApproach bool
	GoAround          bool
	TakeOff           bool
}

// InputMessage is the payload of the aircraft state port.
type InputMessage struct {
	_ struct{} `cbor:",toarray"`

	Arm           CommandArray
	Inhibit       CommandArray
	AircraftState AircraftState
}

// AlertRecord is one raised alert.
type AlertRecord struct {
	_ struct{} `cbor:",toarray"`

	System AlertSystemID
	Level  AlertLevel
}

func (r AlertRecord) String() string {
	return r.System.String() + "/" + r.Level.String()
}

// AlertState is the payload of the alert port: at most MaxAlerts records,
// one per subsystem, most urgent first.
type AlertState []AlertRecord

// Insert adds rec, keeping the more urgent level when the subsystem is already
// present. When the state is full the least urgent record is evicted if rec
// is more urgent than it.
func (s *AlertState) Insert(rec AlertRecord) {
	for i := range *s {
		if (*s)[i].System != rec.System {
			continue
		}

		if rec.Level < (*s)[i].Level {
			(*s)[i].Level = rec.Level
			s.sort()
		}

		return
	}

	if len(*s) < MaxAlerts {
		*s = append(*s, rec)
		s.sort()

		return
	}

	last := len(*s) - 1
	if rec.Level < (*s)[last].Level {
		(*s)[last] = rec
		s.sort()
	}
}

// Contains reports whether system is raised at level or more urgent.
func (s AlertState) Contains(system AlertSystemID, level AlertLevel) bool {
	return slices.ContainsFunc(s, func(rec AlertRecord) bool {
		return rec.System == system && rec.Level.AtLeastAsUrgentAs(level)
	})
}

// sort orders records by urgency, then by subsystem id.
func (s AlertState) sort() {
	slices.SortFunc(s, func(a, b AlertRecord) int {
		if a.Level != b.Level {
			return int(a.Level) - int(b.Level)
		}

		return int(a.System) - int(b.System)
	})
}
