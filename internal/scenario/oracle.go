package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/taws-partitions/internal/domain/taws"
)

// OracleKind tags the property an Oracle asserts.
type OracleKind uint8

// Oracle kinds.
const (
	// NotEmitted fails on any alert of System at Level or more urgent.
	NotEmitted OracleKind = iota + 1
	// EmittedWithin fails when no alert of System at Level or more urgent
	// is observed within Within of simulated time.
	EmittedWithin
)

// Oracle is one then-clause of a scenario.
type Oracle struct {
	Kind   OracleKind
	System taws.AlertSystemID
	Level  taws.AlertLevel
	Within time.Duration
}

// Observation is what the harness saw for one frame.
type Observation struct {
	// Frame is the index of the frame in the batch.
	Frame int
	// SimTime is the simulated time of the frame.
	SimTime time.Duration
	// Alerts is the alert state received for the frame.
	Alerts taws.AlertState
	// Received is false when no alert state arrived within the wait bound.
	Received bool
}

// ErrAssertion is matched by every *AssertionError.
var ErrAssertion = errors.New("scenario assertion failed")

// AssertionError carries the frame that violated an oracle.
type AssertionError struct {
	Oracle      Oracle
	Observation Observation
	State       taws.AircraftState
	Reason      string
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s at frame %d (t=%s): %s\naircraft state: %+v\nalerts emitted: %v",
		e.Oracle, e.Observation.Frame, e.Observation.SimTime, e.Reason, e.State, e.Observation.Alerts)
}

// Is reports whether target is ErrAssertion.
func (e *AssertionError) Is(target error) bool {
	return target == ErrAssertion
}

func (o Oracle) String() string {
	switch o.Kind {
	case NotEmitted:
		return fmt.Sprintf("%s %s not emitted", o.System, o.Level)
	case EmittedWithin:
		return fmt.Sprintf("%s %s emitted within %s", o.System, o.Level, o.Within)
	default:
		return fmt.Sprintf("oracle(%d)", o.Kind)
	}
}

// matches reports whether alerts hold a record the oracle is about.
func (o Oracle) matches(alerts taws.AlertState) bool {
	for _, rec := range alerts {
		if rec.System == o.System && rec.Level.AtLeastAsUrgentAs(o.Level) {
			return true
		}
	}

	return false
}

// verdict follows one oracle across a batch.
type verdict struct {
	oracle Oracle
	// satisfied is set once EmittedWithin saw its alert.
	satisfied bool
	// firstAlert is the simulated time of the first matching alert.
	firstAlert time.Duration
	alerted    bool
}

// observe checks one frame and returns a non-nil error on violation.
func (v *verdict) observe(obs Observation, state taws.AircraftState) *AssertionError {
	matched := obs.Received && v.oracle.matches(obs.Alerts)
	if matched && !v.alerted {
		v.alerted = true
		v.firstAlert = obs.SimTime
	}

	switch v.oracle.Kind {
	case NotEmitted:
		if matched {
			return v.fail(obs, state, "alert was emitted")
		}
	case EmittedWithin:
		if v.satisfied {
			return nil
		}

		if matched && obs.SimTime <= v.oracle.Within {
			v.satisfied = true

			return nil
		}

		if obs.SimTime > v.oracle.Within {
			return v.fail(obs, state, "no alert within "+v.oracle.Within.String())
		}
	}

	return nil
}

// finish checks the batch as a whole once every frame was observed.
func (v *verdict) finish(last Observation, state taws.AircraftState) *AssertionError {
	if v.oracle.Kind == EmittedWithin && !v.satisfied {
		return v.fail(last, state, "no alert in the whole batch")
	}

	return nil
}

func (v *verdict) fail(obs Observation, state taws.AircraftState, reason string) *AssertionError {
	return &AssertionError{
		Oracle:      v.oracle,
		Observation: obs,
		State:       state,
		Reason:      reason,
	}
}
