package partition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oshokin/taws-partitions/internal/clock"
	"github.com/oshokin/taws-partitions/internal/logger"
)

// Main is the entry point of a partition. It runs until it returns or the
// context passed to Yield is cancelled.
type Main func(ctx context.Context, slot *Slot) error

// Partition is a named, independently scheduled unit of work.
type Partition struct {
	Name string
	Main Main
}

// Slot is the partition's handle on the scheduler.
type Slot struct {
	name   string
	resume chan struct{}
	yield  chan struct{}
}

// Name returns the partition name.
func (s *Slot) Name() string { return s.name }

// Yield hands the processor back and blocks until the partition's next slot.
// It returns the context error once the scheduler stops.
func (s *Slot) Yield(ctx context.Context) error {
	select {
	case s.yield <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-s.resume:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Scheduler runs partitions round-robin, one at a time.
type Scheduler struct {
	// clock paces the slots.
	clock clock.Clock
	// slot is the pause between two consecutive slots.
	slot time.Duration
}

// NewScheduler creates a scheduler pausing slotDuration between slots.
func NewScheduler(c clock.Clock, slotDuration time.Duration) *Scheduler {
	return &Scheduler{
		clock: c,
		slot:  slotDuration,
	}
}

// scheduled tracks one running partition.
type scheduled struct {
	partition Partition
	slot      *Slot
	done      chan error
	halted    bool
}

// Run schedules the partitions until ctx is cancelled or all of them halted.
// A partition returning an error halts only itself; the errors are joined
// into the result.
func (s *Scheduler) Run(ctx context.Context, partitions ...Partition) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	running := make([]*scheduled, 0, len(partitions))

	for _, p := range partitions {
		sp := &scheduled{
			partition: p,
			slot: &Slot{
				name:   p.Name,
				resume: make(chan struct{}),
				yield:  make(chan struct{}),
			},
			done: make(chan error, 1),
		}
		running = append(running, sp)

		go sp.start(logger.WithName(runCtx, p.Name))
	}

	var (
		errs  []error
		alive = len(running)
	)

	for alive > 0 && runCtx.Err() == nil {
		for _, sp := range running {
			if sp.halted || runCtx.Err() != nil {
				continue
			}

			if err := sp.runSlot(runCtx); err != nil {
				sp.halted = true
				alive--

				switch {
				case errors.Is(err, errHalted):
					logger.InfoKV(ctx, "Partition finished", "partition", sp.partition.Name)
				case errors.Is(err, context.Canceled):
				default:
					logger.ErrorKV(ctx, "Partition halted", "partition", sp.partition.Name, "error", err)
					errs = append(errs, fmt.Errorf("partition %s: %w", sp.partition.Name, err))
				}
			}

			s.clock.Sleep(s.slot)
		}
	}

	cancel()

	for _, sp := range running {
		if !sp.halted {
			<-sp.done
		}
	}

	return errors.Join(errs...)
}

// start waits for the first slot and then runs the partition.
func (sp *scheduled) start(ctx context.Context) {
	select {
	case <-sp.slot.resume:
	case <-ctx.Done():
		sp.done <- ctx.Err()
		return
	}

	err := sp.partition.Main(ctx, sp.slot)
	if err == nil {
		err = errHalted
	}

	sp.done <- err
}

// errHalted marks a partition that returned without error.
var errHalted = errors.New("halted")

// runSlot grants one slot and waits for the partition to yield or finish.
// It returns nil after a yield and the terminal error otherwise.
func (sp *scheduled) runSlot(ctx context.Context) error {
	select {
	case sp.slot.resume <- struct{}{}:
	case err := <-sp.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-sp.slot.yield:
		return nil
	case err := <-sp.done:
		return err
	}
}
