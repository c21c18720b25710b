package alerter

import (
	"github.com/oshokin/taws-partitions/internal/domain/taws"
	"github.com/oshokin/taws-partitions/internal/engine/alerting"
)

// Controller owns the arm/inhibit table of every subsystem.
// Only ApplyCommands mutates it.
type Controller struct {
	engine alerting.Engine
	flags  alerting.Flags
}

// NewController returns a controller with every subsystem disarmed and
// uninhibited.
func NewController(engine alerting.Engine) *Controller {
	return &Controller{engine: engine}
}

// ApplyCommands updates the flags from the command arrays. Nil entries
// leave a flag unchanged; entries naming an unknown subsystem are ignored.
// Applying the same commands twice yields the same table.
func (c *Controller) ApplyCommands(arm, inhibit taws.CommandArray) {
	apply(&c.flags.Armed, arm)
	apply(&c.flags.Inhibited, inhibit)
}

func apply(table *[taws.NumAlertSystems]bool, commands taws.CommandArray) {
	for _, command := range commands {
		if command == nil || !command.System.Valid() {
			continue
		}

		table[command.System] = command.Value
	}
}

// Process computes the alert state of one snapshot with the current flags.
func (c *Controller) Process(state taws.AircraftState) taws.AlertState {
	return c.engine.Process(c.flags, state)
}

// Flags returns a copy of the arm/inhibit table.
func (c *Controller) Flags() alerting.Flags {
	return c.flags
}
