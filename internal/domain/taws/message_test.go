package taws

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/taws-partitions/internal/codec"
)

// worstCaseInput fills every command slot and uses values that need full float32 encodings.
func worstCaseInput() InputMessage {
	var msg InputMessage

	for _, id := range AllAlertSystems() {
		_ = msg.Arm.Set(id, true)
		_ = msg.Inhibit.Set(id, false)
	}

	v := float32(math.Pi)
	msg.AircraftState = AircraftState{
		AltitudeSea:       v,
		AltitudeGround:    v,
		ClimbRate:         -v,
		SpeedGround:       v,
		SpeedAir:          v,
		Heading:           v,
		Track:             v,
		Pitch:             v,
		Roll:              v,
		Latitude:          v,
		Longitude:         v,
		SteepApproach:     true,
		PrecisionApproach: true,
		GoAround:          true,
		TakeOff:           true,
	}

	return msg
}

// TestInputMessage_Budget checks default and worst-case encodings fit AircraftStateSize.
func TestInputMessage_Budget(t *testing.T) {
	t.Parallel()

	for _, msg := range []InputMessage{{}, worstCaseInput()} {
		size, err := codec.Size(msg)
		require.NoError(t, err)
		require.LessOrEqual(t, size, AircraftStateSize, "AircraftStateSize needs to be at least %d", size)
	}
}

// TestAlertState_Budget checks empty and full alert states fit AlertStateSize.
func TestAlertState_Budget(t *testing.T) {
	t.Parallel()

	var full AlertState
	for _, id := range AllAlertSystems() {
		full.Insert(AlertRecord{System: id, Level: Annunciation})
	}

	require.Len(t, full, MaxAlerts)

	for _, state := range []AlertState{nil, {}, full} {
		size, err := codec.Size(state)
		require.NoError(t, err)
		require.LessOrEqual(t, size, AlertStateSize, "AlertStateSize needs to be at least %d", size)
	}
}

// TestMessages_Roundtrip verifies encode-then-decode yields equal values within budget.
func TestMessages_Roundtrip(t *testing.T) {
	t.Parallel()

	in := worstCaseInput()
	data, err := codec.EncodeInto(in, make([]byte, AircraftStateSize))
	require.NoError(t, err)

	var gotIn InputMessage
	require.NoError(t, codec.Decode(data, &gotIn))
	require.Equal(t, in, gotIn)

	alerts := AlertState{
		{System: Mode1, Level: Warning},
		{System: FLTA, Level: Caution},
	}
	data, err = codec.EncodeInto(alerts, make([]byte, AlertStateSize))
	require.NoError(t, err)

	var gotAlerts AlertState
	require.NoError(t, codec.Decode(data, &gotAlerts))
	require.Equal(t, alerts, gotAlerts)
}

// TestCommandArray_SetIndexesBySystem ensures commands land in the slot of their subsystem.
func TestCommandArray_SetIndexesBySystem(t *testing.T) {
	t.Parallel()

	var commands CommandArray
	require.NoError(t, commands.Set(Mode3, true))
	require.NoError(t, commands.Set(Mode3, false))
	require.Error(t, commands.Set(AlertSystemID(42), true))

	require.Nil(t, commands[0])
	require.NotNil(t, commands[Mode3])
	require.Equal(t, Mode3, commands[Mode3].System)
	require.False(t, commands[Mode3].Value)

	cloned := commands.Clone()
	require.Equal(t, commands, cloned)
	require.NotSame(t, commands[Mode3], cloned[Mode3])
}

// TestAlertState_Insert covers deduplication, urgency ordering and eviction.
func TestAlertState_Insert(t *testing.T) {
	t.Parallel()

	var state AlertState
	state.Insert(AlertRecord{System: Mode1, Level: Caution})
	state.Insert(AlertRecord{System: Mode1, Level: Warning})
	state.Insert(AlertRecord{System: Mode1, Level: Annunciation})
	require.Equal(t, AlertState{{System: Mode1, Level: Warning}}, state)

	for _, id := range []AlertSystemID{FFAC, FLTA, Mode2, Mode3} {
		state.Insert(AlertRecord{System: id, Level: Annunciation})
	}

	require.Len(t, state, MaxAlerts)

	// Full: a more urgent record evicts the least urgent one.
	state.Insert(AlertRecord{System: PDA, Level: Caution})
	require.Len(t, state, MaxAlerts)
	require.True(t, state.Contains(PDA, Caution))
	require.False(t, state.Contains(Mode3, Annunciation))

	// Full: an equally urgent record is dropped.
	state.Insert(AlertRecord{System: Mode5, Level: Annunciation})
	require.False(t, state.Contains(Mode5, Annunciation))

	require.Equal(t, AlertRecord{System: Mode1, Level: Warning}, state[0])
	require.True(t, state.Contains(Mode1, Caution))
	require.False(t, state.Contains(Mode2, Caution))
}
