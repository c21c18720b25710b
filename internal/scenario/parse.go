package scenario

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oshokin/taws-partitions/internal/domain/taws"
)

// ErrUnknownStep is returned for sentences no pattern accepts.
var ErrUnknownStep = errors.New("unknown scenario step")

// maxWithinSeconds is the longest alert window a time.Duration can hold.
const maxWithinSeconds = math.MaxInt64 / int64(time.Second)

// Step is the result of parsing one sentence. Both fields are nil for
// sentences that only document a precondition.
type Step struct {
	Mould  *Mould
	Oracle *Oracle
}

//nolint:gochecknoglobals // Compiled once.
var (
	flyingPattern     = regexp.MustCompile(`^the plane is flying$`)
	armedPattern      = regexp.MustCompile(`^(.+) is (not )?armed$`)
	inhibitedPattern  = regexp.MustCompile(`^(.+) is (not )?inhibited$`)
	steepPattern      = regexp.MustCompile(`^steep approach is (not )?selected$`)
	descentPattern    = regexp.MustCompile(`^the rate of descent is at (most|least) (\d+) feet per minute$`)
	heightPattern     = regexp.MustCompile(`^the height above terrain is (not )?between (\d+) and (\d+) feet$`)
	notEmittedPattern = regexp.MustCompile(`^an? (.+) alert is not emitted at all$`)
	withinPattern     = regexp.MustCompile(`^an? (.+) alert is emitted within (\d+) seconds?$`)
)

// ParseStep turns one given, when or then sentence into a mould or an oracle.
func ParseStep(sentence string) (Step, error) {
	s := strings.ToLower(strings.Join(strings.Fields(sentence), " "))

	switch {
	case flyingPattern.MatchString(s):
		return Step{}, nil
	case steepPattern.MatchString(s):
		m := steepPattern.FindStringSubmatch(s)

		return Step{Mould: SetFlag(FlagSteepApproach, m[1] == "")}, nil
	case armedPattern.MatchString(s):
		m := armedPattern.FindStringSubmatch(s)

		system, err := taws.ParseAlertSystem(m[1])
		if err != nil {
			return Step{}, fmt.Errorf("%w: %q: %w", ErrUnknownStep, sentence, err)
		}

		return Step{Mould: Arm(system, m[2] == "")}, nil
	case inhibitedPattern.MatchString(s):
		m := inhibitedPattern.FindStringSubmatch(s)

		system, err := taws.ParseAlertSystem(m[1])
		if err != nil {
			return Step{}, fmt.Errorf("%w: %q: %w", ErrUnknownStep, sentence, err)
		}

		return Step{Mould: Inhibit(system, m[2] == "")}, nil
	case descentPattern.MatchString(s):
		m := descentPattern.FindStringSubmatch(s)

		rate, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Step{}, fmt.Errorf("%w: %q: %w", ErrUnknownStep, sentence, err)
		}

		// The state carries the climb rate, so descent bounds flip sign and direction.
		if m[1] == "most" {
			return Step{Mould: AtLeast(FieldClimbRate, -rate)}, nil
		}

		return Step{Mould: AtMost(FieldClimbRate, -rate)}, nil
	case heightPattern.MatchString(s):
		m := heightPattern.FindStringSubmatch(s)

		lo, errLo := strconv.ParseFloat(m[2], 64)
		hi, errHi := strconv.ParseFloat(m[3], 64)

		if err := errors.Join(errLo, errHi); err != nil {
			return Step{}, fmt.Errorf("%w: %q: %w", ErrUnknownStep, sentence, err)
		}

		if m[1] != "" {
			return Step{Mould: NotInRange(FieldAltitudeGround, lo, hi)}, nil
		}

		return Step{Mould: InRange(FieldAltitudeGround, lo, hi)}, nil
	case notEmittedPattern.MatchString(s):
		m := notEmittedPattern.FindStringSubmatch(s)

		system, level, err := parseAlert(m[1])
		if err != nil {
			return Step{}, fmt.Errorf("%w: %q: %w", ErrUnknownStep, sentence, err)
		}

		return Step{Oracle: &Oracle{Kind: NotEmitted, System: system, Level: level}}, nil
	case withinPattern.MatchString(s):
		m := withinPattern.FindStringSubmatch(s)

		system, level, err := parseAlert(m[1])
		if err != nil {
			return Step{}, fmt.Errorf("%w: %q: %w", ErrUnknownStep, sentence, err)
		}

		seconds, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			return Step{}, fmt.Errorf("%w: %q: %w", ErrUnknownStep, sentence, err)
		}

		if seconds > maxWithinSeconds {
			return Step{}, fmt.Errorf("%w: %q: window longer than %d seconds", ErrUnknownStep, sentence, maxWithinSeconds)
		}

		return Step{Oracle: &Oracle{
			Kind:   EmittedWithin,
			System: system,
			Level:  level,
			Within: time.Duration(seconds) * time.Second,
		}}, nil
	default:
		return Step{}, fmt.Errorf("%w: %q", ErrUnknownStep, sentence)
	}
}

// parseAlert reads "<system> [<level>]". Without a level any alert of the
// system matches.
func parseAlert(text string) (taws.AlertSystemID, taws.AlertLevel, error) {
	if i := strings.LastIndexByte(text, ' '); i > 0 {
		if level, err := taws.ParseAlertLevel(text[i+1:]); err == nil {
			system, err := taws.ParseAlertSystem(text[:i])

			return system, level, err
		}
	}

	system, err := taws.ParseAlertSystem(text)

	return system, taws.Annunciation, err
}
