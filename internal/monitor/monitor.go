package monitor

import (
	"fmt"
	"sort"
)

// Value is one slot of an event vector: the arrival time of a stream's
// message in seconds, or absent when the stream delivered nothing new.
type Value struct {
	Seconds float64
	Present bool
}

// At marks an arrival at the given time.
func At(seconds float64) Value {
	return Value{Seconds: seconds, Present: true}
}

// Absent marks a slot without a new arrival.
func Absent() Value {
	return Value{}
}

// TriggerID identifies a trigger by its position in the specification.
type TriggerID int

// Verdicts holds one verdict per trigger for a single Accept call.
type Verdicts map[TriggerID]bool

// Fired returns the identifiers of the triggers that fired, in order.
func (v Verdicts) Fired() []TriggerID {
	fired := make([]TriggerID, 0, len(v))

	for id, ok := range v {
		if ok {
			fired = append(fired, id)
		}
	}

	sort.Slice(fired, func(i, j int) bool { return fired[i] < fired[j] })

	return fired
}

// evaluator tracks the state of one trigger.
type evaluator interface {
	accept(events []Value, now float64) bool
}

// Monitor evaluates triggers over a stream of event vectors.
// It is not safe for concurrent use.
type Monitor struct {
	spec       *Spec
	evaluators []evaluator
}

// New builds a monitor from a validated specification.
func New(spec *Spec) (*Monitor, error) {
	if spec == nil {
		return nil, fmt.Errorf("%w: nil specification", ErrInvalidSpec)
	}

	slots := make(map[string]int, len(spec.Inputs))
	for i, name := range spec.Inputs {
		slots[name] = i
	}

	evaluators := make([]evaluator, 0, len(spec.Triggers))

	for _, trigger := range spec.Triggers {
		switch trigger.Kind {
		case KindDeadline:
			evaluators = append(evaluators, &deadline{
				after:  slots[trigger.After],
				expect: slots[trigger.Expect],
				within: trigger.Within,
			})
		case KindSilence:
			evaluators = append(evaluators, &silence{
				stream: slots[trigger.Stream],
				maxGap: trigger.MaxGap,
			})
		case KindUnsolicited:
			evaluators = append(evaluators, &unsolicited{
				after:  slots[trigger.After],
				expect: slots[trigger.Expect],
			})
		default:
			return nil, fmt.Errorf("%w: trigger %q has unknown kind %q", ErrInvalidSpec, trigger.Name, trigger.Kind)
		}
	}

	return &Monitor{
		spec:       spec,
		evaluators: evaluators,
	}, nil
}

// Inputs returns the declared stream names in slot order.
func (m *Monitor) Inputs() []string {
	return append([]string(nil), m.spec.Inputs...)
}

// Name returns the name of a trigger.
func (m *Monitor) Name(id TriggerID) string {
	if int(id) < 0 || int(id) >= len(m.spec.Triggers) {
		return ""
	}

	return m.spec.Triggers[id].Name
}

// Message returns the operator message of a trigger.
func (m *Monitor) Message(id TriggerID) string {
	if int(id) < 0 || int(id) >= len(m.spec.Triggers) {
		return ""
	}

	return m.spec.Triggers[id].Message
}

// Accept submits one event vector at time now and returns every verdict.
// A vector shorter than the declared inputs is padded with absent slots.
func (m *Monitor) Accept(events []Value, now float64) Verdicts {
	if len(events) < len(m.spec.Inputs) {
		padded := make([]Value, len(m.spec.Inputs))
		copy(padded, events)
		events = padded
	}

	verdicts := make(Verdicts, len(m.evaluators))
	for i, e := range m.evaluators {
		verdicts[TriggerID(i)] = e.accept(events, now)
	}

	return verdicts
}

// deadline fires once per unanswered arrival on after.
type deadline struct {
	after, expect int
	within        float64

	pending    float64
	hasPending bool
}

func (d *deadline) accept(events []Value, now float64) bool {
	in, out := events[d.after], events[d.expect]

	if out.Present && d.hasPending && out.Seconds >= d.pending {
		d.hasPending = false
	}

	if in.Present && !d.hasPending && (!out.Present || in.Seconds > out.Seconds) {
		d.pending = in.Seconds
		d.hasPending = true
	}

	if d.hasPending && now-d.pending > d.within {
		d.hasPending = false

		return true
	}

	return false
}

// silence fires once each time a stream stays quiet for longer than maxGap.
type silence struct {
	stream int
	maxGap float64

	last    float64
	started bool
	fired   bool
}

func (s *silence) accept(events []Value, now float64) bool {
	if v := events[s.stream]; v.Present {
		s.last = v.Seconds
		s.started = true
		s.fired = false

		return false
	}

	if !s.started {
		s.last = now
		s.started = true
	}

	if !s.fired && now-s.last > s.maxGap {
		s.fired = true

		return true
	}

	return false
}

// unsolicited fires on every arrival on expect not preceded by a fresh
// arrival on after.
type unsolicited struct {
	after, expect int

	stimulus bool
}

func (u *unsolicited) accept(events []Value, _ float64) bool {
	if events[u.after].Present {
		u.stimulus = true
	}

	if !events[u.expect].Present {
		return false
	}

	fired := !u.stimulus
	u.stimulus = false

	return fired
}
