package scenario

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/taws-partitions/internal/domain/taws"
	"github.com/oshokin/taws-partitions/internal/logger"
	"github.com/oshokin/taws-partitions/internal/metrics"
	"github.com/oshokin/taws-partitions/internal/partition"
)

// PartitionName is the scheduler name of the harness.
const PartitionName = "tester"

// Options configures a Harness.
type Options struct {
	// InputChannel is the aircraft state port the harness sends on.
	InputChannel string
	// OutputChannel is the alert port the harness reads.
	OutputChannel string
	// Validity bounds the wait for an alert state after each frame.
	Validity time.Duration
	// FramePeriod is the simulated time between two frames.
	FramePeriod time.Duration
	// Frames is the batch size of every scenario.
	Frames int
	// Seed seeds the frame generator.
	Seed uint64
}

// Harness drives scenarios against the alerter. It owns the harness end
// of both ports; Run holds its lock for a whole scenario so two scenarios
// never interleave their frames.
type Harness struct {
	mu       sync.Mutex
	runtime  *partition.Runtime
	sender   *partition.SampledSender[taws.InputMessage]
	receiver *partition.SampledReceiver[taws.AlertState]
	opts     Options
	// seen latches the last alert state taken from the receiver.
	seen partition.Instant
	runs uint64
}

// NewHarness creates the harness ports on rt.
func NewHarness(rt *partition.Runtime, opts Options) (*Harness, error) {
	if opts.Frames <= 0 {
		return nil, fmt.Errorf("frames per scenario must be positive, got %d", opts.Frames)
	}

	sender, err := partition.NewSampledSender[taws.InputMessage](rt, opts.InputChannel, taws.AircraftStateSize)
	if err != nil {
		return nil, fmt.Errorf("create input port: %w", err)
	}

	receiver, err := partition.NewSampledReceiver[taws.AlertState](rt, opts.OutputChannel, taws.AlertStateSize, opts.Validity)
	if err != nil {
		return nil, fmt.Errorf("create output port: %w", err)
	}

	return &Harness{
		runtime:  rt,
		sender:   sender,
		receiver: receiver,
		opts:     opts,
	}, nil
}

// RunAll runs every scenario in order and returns one report each.
// Assertion failures are recorded in the reports; any other error stops
// the suite.
func (h *Harness) RunAll(ctx context.Context, slot *partition.Slot, scenarios []*Scenario) ([]Report, error) {
	reports := make([]Report, 0, len(scenarios))

	for _, sc := range scenarios {
		report, err := h.Run(ctx, slot, sc)
		if err != nil && !errors.Is(err, ErrAssertion) {
			return reports, err
		}

		reports = append(reports, report)
	}

	return reports, nil
}

// Run generates a batch, presses it through the scenario's moulds and
// checks every observed alert state. A violated oracle aborts the
// scenario with an *AssertionError, which is also recorded in the report.
func (h *Harness) Run(ctx context.Context, slot *partition.Slot, sc *Scenario) (Report, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ctx = logger.WithKV(ctx, "scenario", sc.Name)

	report := newReport(sc)

	frames := NewGenerator(h.opts.Seed + h.runs).Batch(h.opts.Frames)
	h.runs++

	messages, err := press(frames, sc.Moulds)
	if err != nil {
		return report, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	verdicts := make([]*verdict, len(sc.Oracles))
	for i, oracle := range sc.Oracles {
		verdicts[i] = &verdict{oracle: oracle}
	}

	var last Observation

	for i := range messages {
		last, err = h.exchange(ctx, slot, i, &messages[i])
		if err != nil {
			return report, fmt.Errorf("scenario %q: frame %d: %w", sc.Name, i, err)
		}

		report.Frames++

		for _, v := range verdicts {
			if failure := v.observe(last, messages[i].AircraftState); failure != nil {
				return h.fail(ctx, report, verdicts, failure)
			}
		}
	}

	for _, v := range verdicts {
		if failure := v.finish(last, messages[len(messages)-1].AircraftState); failure != nil {
			return h.fail(ctx, report, verdicts, failure)
		}
	}

	report.complete(verdicts, nil)
	metrics.Scenarios.WithLabelValues(metrics.ResultPassed).Inc()
	logger.InfoKV(ctx, "Scenario passed", "frames", report.Frames)

	return report, nil
}

func (h *Harness) fail(ctx context.Context, report Report, verdicts []*verdict, failure *AssertionError) (Report, error) {
	report.complete(verdicts, failure)
	metrics.Scenarios.WithLabelValues(metrics.ResultFailed).Inc()
	logger.ErrorKV(ctx, "Scenario failed", "frame", failure.Observation.Frame, "error", failure)

	return report, failure
}

// press applies every mould in registration order to every frame. The
// clamps start from a clean state. Every frame starts from the baseline
// command table, so arm and inhibit flags left by an earlier scenario are
// cleared unless a mould sets them again.
func press(frames []taws.AircraftState, moulds []*Mould) ([]taws.InputMessage, error) {
	for _, m := range moulds {
		m.Reset()
	}

	arm, inhibit := baselineCommands()
	messages := make([]taws.InputMessage, len(frames))

	for i, frame := range frames {
		messages[i].AircraftState = frame
		messages[i].Arm = arm.Clone()
		messages[i].Inhibit = inhibit.Clone()

		for _, m := range moulds {
			if err := m.Apply(&messages[i]); err != nil {
				return nil, fmt.Errorf("apply %s: %w", m, err)
			}
		}
	}

	return messages, nil
}

// exchange sends one frame and waits for the alert state it caused. The
// wait ends after the receiver's validity window; that only means no alert
// state was observed for the frame.
func (h *Harness) exchange(ctx context.Context, slot *partition.Slot, frame int, msg *taws.InputMessage) (Observation, error) {
	obs := Observation{
		Frame:   frame,
		SimTime: time.Duration(frame) * h.opts.FramePeriod,
	}

	if err := h.sender.Send(*msg); err != nil {
		return obs, err
	}

	sentAt := h.runtime.Now()

	for {
		if err := slot.Yield(ctx); err != nil {
			return obs, err
		}

		sample, ok, err := h.receiver.Poll()

		switch {
		case err != nil:
			if sample.Timestamp != h.seen {
				h.seen = sample.Timestamp
				logger.WarnKV(ctx, "Dropping undecodable alert state", "frame", frame, "error", err)
			}
		case ok && sample.Timestamp != h.seen && sample.Timestamp.Since >= sentAt.Since:
			h.seen = sample.Timestamp
			obs.Alerts = sample.Value
			obs.Received = true

			return obs, nil
		}

		if h.runtime.Now().Since-sentAt.Since > h.receiver.Validity() {
			logger.DebugKV(ctx, "No alert state for frame", "frame", frame)

			return obs, nil
		}
	}
}

// baselineCommands disarms and uninhibits every subsystem.
func baselineCommands() (taws.CommandArray, taws.CommandArray) {
	var arm, inhibit taws.CommandArray

	for _, id := range taws.AllAlertSystems() {
		// Set only fails for ids outside the enumeration.
		_ = arm.Set(id, false)
		_ = inhibit.Set(id, false)
	}

	return arm, inhibit
}
