package scenario

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/taws-partitions/internal/domain/taws"
)

// TestMould_ArmUsesSubsystemSlot verifies commands land in the slot of their subsystem.
func TestMould_ArmUsesSubsystemSlot(t *testing.T) {
	t.Parallel()

	var msg taws.InputMessage

	require.NoError(t, Arm(taws.Mode1, true).Apply(&msg))
	require.NoError(t, Inhibit(taws.FLTA, false).Apply(&msg))

	require.Nil(t, msg.Arm[0])
	require.Equal(t, &taws.AlertCommand{System: taws.Mode1, Value: true}, msg.Arm[taws.Mode1])
	require.Equal(t, &taws.AlertCommand{System: taws.FLTA, Value: false}, msg.Inhibit[taws.FLTA])
}

// TestMould_Clamps verifies each clamp kind edits its field.
func TestMould_Clamps(t *testing.T) {
	t.Parallel()

	msg := taws.InputMessage{AircraftState: taws.AircraftState{
		ClimbRate:      -1000,
		AltitudeGround: 2600,
	}}

	require.NoError(t, AtMost(FieldClimbRate, -2000).Apply(&msg))
	require.InDelta(t, float32(-3000), msg.AircraftState.ClimbRate, 0)

	require.NoError(t, InRange(FieldAltitudeGround, 0, 2500).Apply(&msg))
	require.InDelta(t, float32(2400), msg.AircraftState.AltitudeGround, 0)

	require.NoError(t, AtLeast(FieldClimbRate, -1500).Apply(&msg))
	require.InDelta(t, float32(0), msg.AircraftState.ClimbRate, 0)

	// 2400 is closer to the upper boundary.
	require.NoError(t, NotInRange(FieldAltitudeGround, 0, 2500).Apply(&msg))
	require.InDelta(t, float32(2600), msg.AircraftState.AltitudeGround, 0)

	require.NoError(t, SetFlag(FlagSteepApproach, true).Apply(&msg))
	require.True(t, msg.AircraftState.SteepApproach)
}

// TestMould_Errors verifies invalid parameters are reported.
func TestMould_Errors(t *testing.T) {
	t.Parallel()

	var msg taws.InputMessage

	require.ErrorIs(t, Arm(taws.AlertSystemID(99), true).Apply(&msg), taws.ErrUnknownAlertSystem)
	require.ErrorIs(t, AtLeast(Field(0), 1).Apply(&msg), ErrUnknownField)
	require.ErrorIs(t, SetFlag(Flag(42), true).Apply(&msg), ErrUnknownField)
	require.Error(t, (&Mould{}).Apply(&msg))
}

// TestMould_String verifies moulds describe themselves for reports.
func TestMould_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "mode-1 armed=true", Arm(taws.Mode1, true).String())
	require.Equal(t, "mode-1 inhibited=false", Inhibit(taws.Mode1, false).String())
	require.Equal(t, "steep_approach=true", SetFlag(FlagSteepApproach, true).String())
	require.Equal(t, "climb_rate <= -2000", AtMost(FieldClimbRate, -2000).String())
	require.Equal(t, "altitude_ground not in [0, 2500]", NotInRange(FieldAltitudeGround, 0, 2500).String())
}

// TestPress_ResetsClampsPerRun verifies two presses of the same frames give the same result.
func TestPress_ResetsClampsPerRun(t *testing.T) {
	t.Parallel()

	moulds := []*Mould{NotInRange(FieldAltitudeGround, 0, 2500)}
	frames := []taws.AircraftState{{AltitudeGround: 100}, {AltitudeGround: 2400}}

	first, err := press(frames, moulds)
	require.NoError(t, err)

	second, err := press(frames, moulds)
	require.NoError(t, err)

	require.Equal(t, first, second)
	// Height above terrain has no room below 0, so both frames go above the band.
	require.InDelta(t, float32(4900), first[0].AircraftState.AltitudeGround, 0)
	require.InDelta(t, float32(2600), first[1].AircraftState.AltitudeGround, 0)
}

// TestPress_StaysAboveTerrain verifies a height band starting at the ground never yields negative heights.
func TestPress_StaysAboveTerrain(t *testing.T) {
	t.Parallel()

	for seed := range uint64(20) {
		messages, err := press(NewGenerator(seed).Batch(100), []*Mould{NotInRange(FieldAltitudeGround, 0, 2500)})
		require.NoError(t, err)

		for i, msg := range messages {
			require.GreaterOrEqual(t, msg.AircraftState.AltitudeGround, float32(0), "seed %d frame %d", seed, i)
			require.Greater(t, msg.AircraftState.AltitudeGround, float32(2500), "seed %d frame %d", seed, i)
		}
	}
}

// TestMould_AtMostKeepsHeightAboveTerrain verifies a reflection off a low ceiling folds back above the ground.
func TestMould_AtMostKeepsHeightAboveTerrain(t *testing.T) {
	t.Parallel()

	msg := taws.InputMessage{AircraftState: taws.AircraftState{AltitudeGround: 3500}}

	require.NoError(t, AtMost(FieldAltitudeGround, 1000).Apply(&msg))
	require.InDelta(t, float32(500), msg.AircraftState.AltitudeGround, 0)

	// Unbounded fields keep the plain reflection.
	msg.AircraftState.ClimbRate = 3500
	require.NoError(t, AtMost(FieldClimbRate, 1000).Apply(&msg))
	require.InDelta(t, float32(-1500), msg.AircraftState.ClimbRate, 0)
}

// TestPress_ClearsCommandsFromEarlierScenarios verifies every frame carries the baseline arm and inhibit table.
func TestPress_ClearsCommandsFromEarlierScenarios(t *testing.T) {
	t.Parallel()

	frames := []taws.AircraftState{{}, {}}

	messages, err := press(frames, []*Mould{Arm(taws.Mode1, true)})
	require.NoError(t, err)

	for _, msg := range messages {
		for _, id := range taws.AllAlertSystems() {
			require.Equal(t, &taws.AlertCommand{System: id, Value: id == taws.Mode1}, msg.Arm[id])
			require.Equal(t, &taws.AlertCommand{System: id, Value: false}, msg.Inhibit[id])
		}
	}

	// Frames do not share command pointers.
	messages[0].Inhibit[taws.Mode1].Value = true
	require.False(t, messages[1].Inhibit[taws.Mode1].Value)
}

// TestGenerator_Deterministic verifies equal seeds give equal batches.
func TestGenerator_Deterministic(t *testing.T) {
	t.Parallel()

	a := NewGenerator(7).Batch(10)
	b := NewGenerator(7).Batch(10)
	c := NewGenerator(8).Batch(10)

	require.Equal(t, a, b)
	require.NotEqual(t, a, c)

	for _, frame := range a {
		require.GreaterOrEqual(t, frame.AltitudeGround, float32(0))
		require.LessOrEqual(t, frame.AltitudeGround, float32(5000))
		require.GreaterOrEqual(t, frame.AltitudeSea, frame.AltitudeGround)
	}
}
