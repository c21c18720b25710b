package alerting

import (
	"github.com/oshokin/taws-partitions/internal/domain/taws"
)

// Flags is the arm/inhibit table, indexed by subsystem id.
type Flags struct {
	Armed     [taws.NumAlertSystems]bool
	Inhibited [taws.NumAlertSystems]bool
}

// Engine computes the alert state for one snapshot.
type Engine interface {
	Process(flags Flags, state taws.AircraftState) taws.AlertState
}

// function evaluates one subsystem. ok is false when it does not alert.
type function func(state taws.AircraftState) (level taws.AlertLevel, ok bool)

// Reference is the built-in Engine.
type Reference struct {
	functions [taws.NumAlertSystems]function
}

// NewReference returns the reference engine.
func NewReference() *Reference {
	var r Reference

	r.functions[taws.Mode1] = mode1

	return &r
}

// Process evaluates every armed subsystem and reports the ones not inhibited.
// Disarmed subsystems are not evaluated at all.
func (r *Reference) Process(flags Flags, state taws.AircraftState) taws.AlertState {
	var alerts taws.AlertState

	for _, id := range taws.AllAlertSystems() {
		fn := r.functions[id]
		if fn == nil || !flags.Armed[id] {
			continue
		}

		level, ok := fn(state)
		if !ok || flags.Inhibited[id] {
			continue
		}

		alerts.Insert(taws.AlertRecord{System: id, Level: level})
	}

	return alerts
}
