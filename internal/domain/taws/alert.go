package taws

import (
	"errors"
	"fmt"
	"strings"
)

// AlertSystemID identifies one of the alert subsystems.
type AlertSystemID uint8

// Alert subsystems. The order is part of the wire format.
const (
	FFAC AlertSystemID = iota
	FLTA
	Mode1
	Mode2
	Mode3
	Mode4
	Mode5
	PDA
)

// NumAlertSystems is the size of the alert subsystem enumeration.
const NumAlertSystems = 8

// AlertLevel is the urgency of an alert. Lower values are more urgent.
type AlertLevel uint8

// Alert levels.
const (
	Warning AlertLevel = iota
	Caution
	Annunciation
)

var (
	// ErrUnknownAlertSystem is returned when a name matches no subsystem.
	ErrUnknownAlertSystem = errors.New("unknown alert system")
	// ErrUnknownAlertLevel is returned when a name matches no level.
	ErrUnknownAlertLevel = errors.New("unknown alert level")
)

//nolint:gochecknoglobals // Read-only name tables.
var (
	alertSystemNames = [NumAlertSystems]string{
		FFAC:  "ffac",
		FLTA:  "flta",
		Mode1: "mode-1",
		Mode2: "mode-2",
		Mode3: "mode-3",
		Mode4: "mode-4",
		Mode5: "mode-5",
		PDA:   "pda",
	}
	alertLevelNames = [...]string{
		Warning:      "warning",
		Caution:      "caution",
		Annunciation: "annunciation",
	}
)

// AllAlertSystems returns every subsystem in wire order.
func AllAlertSystems() []AlertSystemID {
	systems := make([]AlertSystemID, NumAlertSystems)
	for i := range systems {
		systems[i] = AlertSystemID(i)
	}

	return systems
}

// Valid reports whether id is inside the enumeration.
func (id AlertSystemID) Valid() bool {
	return int(id) < NumAlertSystems
}

func (id AlertSystemID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("alert-system(%d)", uint8(id))
	}

	return alertSystemNames[id]
}

// ParseAlertSystem resolves names such as "mode-1", "Mode 1", "MODE_1" or "flta".
func ParseAlertSystem(name string) (AlertSystemID, error) {
	normalized := normalizeName(name)

	for i, candidate := range alertSystemNames {
		if normalizeName(candidate) == normalized {
			return AlertSystemID(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownAlertSystem, name)
}

func (l AlertLevel) String() string {
	if int(l) >= len(alertLevelNames) {
		return fmt.Sprintf("level(%d)", uint8(l))
	}

	return alertLevelNames[l]
}

// AtLeastAsUrgentAs reports whether l is as urgent as other or more.
func (l AlertLevel) AtLeastAsUrgentAs(other AlertLevel) bool {
	return l <= other
}

// ParseAlertLevel resolves "warning", "caution" or "annunciation".
func ParseAlertLevel(name string) (AlertLevel, error) {
	normalized := normalizeName(name)

	for i, candidate := range alertLevelNames {
		if candidate == normalized {
			return AlertLevel(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownAlertLevel, name)
}

// normalizeName lowercases and drops whitespace, hyphens and underscores.
func normalizeName(name string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '_':
			return -1
		default:
			return r
		}
	}, name))
}
