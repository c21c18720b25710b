package alerter

import (
	"context"
	"fmt"
	"time"

	"github.com/oshokin/taws-partitions/internal/domain/taws"
	"github.com/oshokin/taws-partitions/internal/logger"
	"github.com/oshokin/taws-partitions/internal/metrics"
	"github.com/oshokin/taws-partitions/internal/partition"
)

// PartitionName is the scheduler name of the alerter.
const PartitionName = "taws"

// Options names the ports of the alerter.
type Options struct {
	// InputChannel carries input messages from the harness.
	InputChannel string
	// OutputChannel carries alert states to the composer and the harness.
	OutputChannel string
	// Validity is the freshness window of the input port.
	Validity time.Duration
}

// Alerter is the partition wrapping a Controller with its ports.
type Alerter struct {
	controller *Controller
	input      *partition.SampledReceiver[taws.InputMessage]
	output     *partition.SampledSender[taws.AlertState]
	// handled is the send instant of the last input taken into account.
	handled partition.Instant
}

// New creates the alerter ports on rt.
func New(rt *partition.Runtime, opts Options, controller *Controller) (*Alerter, error) {
	input, err := partition.NewSampledReceiver[taws.InputMessage](rt, opts.InputChannel, taws.AircraftStateSize, opts.Validity)
	if err != nil {
		return nil, fmt.Errorf("create input port: %w", err)
	}

	output, err := partition.NewSampledSender[taws.AlertState](rt, opts.OutputChannel, taws.AlertStateSize)
	if err != nil {
		return nil, fmt.Errorf("create output port: %w", err)
	}

	return &Alerter{
		controller: controller,
		input:      input,
		output:     output,
	}, nil
}

// Partition returns the scheduler entry of the alerter.
func (a *Alerter) Partition() partition.Partition {
	return partition.Partition{Name: PartitionName, Main: a.Run}
}

// Run processes input messages until the scheduler stops it.
// Only an oversized alert state ends the loop with an error.
func (a *Alerter) Run(ctx context.Context, slot *partition.Slot) error {
	for {
		if err := a.Step(ctx); err != nil {
			return err
		}

		if err := slot.Yield(ctx); err != nil {
			return err
		}
	}
}

// Step handles the current input message once. Messages already handled,
// stale or undecodable are skipped.
func (a *Alerter) Step(ctx context.Context) error {
	status := a.input.Status()
	if !status.LastMessage.Valid || status.LastMessage == a.handled {
		return nil
	}

	a.handled = status.LastMessage

	sample, ok, err := a.input.Poll()
	if err != nil {
		metrics.FramesDropped.WithLabelValues(PartitionName, metrics.ReasonDecode).Inc()
		logger.WarnKV(ctx, "Dropping undecodable input message", "sent_at", status.LastMessage, "error", err)

		return nil
	}

	if !ok {
		metrics.FramesDropped.WithLabelValues(PartitionName, metrics.ReasonStale).Inc()
		logger.DebugKV(ctx, "Input message expired before it was handled", "sent_at", status.LastMessage)

		return nil
	}

	a.controller.ApplyCommands(sample.Value.Arm, sample.Value.Inhibit)

	alerts := a.controller.Process(sample.Value.AircraftState)
	if err = a.output.Send(alerts); err != nil {
		return fmt.Errorf("publish alert state: %w", err)
	}

	metrics.FramesProcessed.Inc()

	return nil
}
