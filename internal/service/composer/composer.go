package composer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/oshokin/taws-partitions/internal/domain/taws"
	"github.com/oshokin/taws-partitions/internal/logger"
	"github.com/oshokin/taws-partitions/internal/metrics"
	"github.com/oshokin/taws-partitions/internal/monitor"
	"github.com/oshokin/taws-partitions/internal/partition"
)

// PartitionName is the scheduler name of the composer.
const PartitionName = "monitor"

// Stream aliases the monitor specification must declare, in slot order.
const (
	InputStream  = "aircraft_state"
	OutputStream = "alerts"
)

// ErrStreamMismatch is returned when the monitor declares other inputs.
var ErrStreamMismatch = errors.New("monitor inputs do not match the composed streams")

// Options names the ports of the composer.
type Options struct {
	// InputChannel is the aircraft state port.
	InputChannel string
	// OutputChannel is the alert port.
	OutputChannel string
	// Validity is the freshness window of both receivers.
	Validity time.Duration
}

// Composer feeds the monitor from two independently updated ports.
type Composer struct {
	runtime *partition.Runtime
	monitor *monitor.Monitor
	feed    *Feed
	input   *partition.SampledReceiver[taws.InputMessage]
	output  *partition.SampledReceiver[taws.AlertState]
	// lastInput and lastOutput latch the newest arrival seen per port.
	lastInput  partition.Instant
	lastOutput partition.Instant
}

// New creates the composer ports on rt. The monitor must declare exactly
// the input stream followed by the output stream.
func New(rt *partition.Runtime, opts Options, m *monitor.Monitor, feed *Feed) (*Composer, error) {
	if inputs := m.Inputs(); !slices.Equal(inputs, []string{InputStream, OutputStream}) {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrStreamMismatch, inputs, []string{InputStream, OutputStream})
	}

	input, err := partition.NewSampledReceiver[taws.InputMessage](rt, opts.InputChannel, taws.AircraftStateSize, opts.Validity)
	if err != nil {
		return nil, fmt.Errorf("create input port: %w", err)
	}

	output, err := partition.NewSampledReceiver[taws.AlertState](rt, opts.OutputChannel, taws.AlertStateSize, opts.Validity)
	if err != nil {
		return nil, fmt.Errorf("create output port: %w", err)
	}

	if feed == nil {
		feed = NewFeed()
	}

	return &Composer{
		runtime: rt,
		monitor: m,
		feed:    feed,
		input:   input,
		output:  output,
	}, nil
}

// Feed returns the feed the composer publishes to.
func (c *Composer) Feed() *Feed {
	return c.feed
}

// Partition returns the scheduler entry of the composer.
func (c *Composer) Partition() partition.Partition {
	return partition.Partition{Name: PartitionName, Main: c.Run}
}

// Run evaluates the monitor once per slot until the scheduler stops it.
func (c *Composer) Run(ctx context.Context, slot *partition.Slot) error {
	for {
		c.Step(ctx)

		if err := slot.Yield(ctx); err != nil {
			return err
		}
	}
}

// Step composes one event, submits it and returns the messages of the
// triggers that fired, in trigger order.
func (c *Composer) Step(ctx context.Context) []string {
	events := []monitor.Value{
		arrival(ctx, c.input, &c.lastInput, InputStream),
		arrival(ctx, c.output, &c.lastOutput, OutputStream),
	}

	now := c.runtime.Now().Seconds()
	verdicts := c.monitor.Accept(events, now)

	var active []string

	for _, id := range verdicts.Fired() {
		message := c.monitor.Message(id)
		active = append(active, message)

		metrics.MonitorTriggers.WithLabelValues(c.monitor.Name(id)).Inc()
		logger.WarnKV(ctx, "Monitor trigger", "trigger", c.monitor.Name(id), "message", message, "at", now)
	}

	c.feed.Publish(now, active)

	return active
}

// arrival returns the slot value of one port: its send time when a message
// newer than the latch is present and decodes, absent otherwise.
func arrival[T any](ctx context.Context, rx *partition.SampledReceiver[T], latch *partition.Instant, stream string) monitor.Value {
	sample, ok, err := rx.Poll()

	switch {
	case err != nil:
		if sample.Timestamp != *latch {
			*latch = sample.Timestamp

			metrics.FramesDropped.WithLabelValues(PartitionName, metrics.ReasonDecode).Inc()
			logger.WarnKV(ctx, "Dropping undecodable message", "stream", stream, "error", err)
		}

		return monitor.Absent()
	case !ok || sample.Timestamp == *latch:
		return monitor.Absent()
	}

	*latch = sample.Timestamp

	metrics.MonitorEvents.WithLabelValues(stream).Inc()

	return monitor.At(sample.Timestamp.Seconds())
}
