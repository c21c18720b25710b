package taws

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseAlertSystem verifies the accepted spellings and the error for unknown names.
func TestParseAlertSystem(t *testing.T) {
	t.Parallel()

	cases := map[string]AlertSystemID{
		"mode-1": Mode1,
		"Mode 1": Mode1,
		"MODE_3": Mode3,
		"mode5":  Mode5,
		"flta":   FLTA,
		" PDA ":  PDA,
		"ffac":   FFAC,
	}
	for name, want := range cases {
		got, err := ParseAlertSystem(name)
		require.NoError(t, err, name)
		require.Equal(t, want, got, name)
	}

	_, err := ParseAlertSystem("mode-9")
	require.ErrorIs(t, err, ErrUnknownAlertSystem)
}

// TestAlertLevel_Urgency checks that lower levels are more urgent.
func TestAlertLevel_Urgency(t *testing.T) {
	t.Parallel()

	require.True(t, Warning.AtLeastAsUrgentAs(Caution))
	require.True(t, Caution.AtLeastAsUrgentAs(Caution))
	require.False(t, Annunciation.AtLeastAsUrgentAs(Caution))

	level, err := ParseAlertLevel("Caution")
	require.NoError(t, err)
	require.Equal(t, Caution, level)

	_, err = ParseAlertLevel("panic")
	require.ErrorIs(t, err, ErrUnknownAlertLevel)
}

// TestAllAlertSystems ensures the enumeration has N entries with unique names.
func TestAllAlertSystems(t *testing.T) {
	t.Parallel()

	systems := AllAlertSystems()
	require.Len(t, systems, NumAlertSystems)

	seen := make(map[string]struct{}, len(systems))
	for _, id := range systems {
		require.True(t, id.Valid())
		seen[id.String()] = struct{}{}
	}

	require.Len(t, seen, NumAlertSystems)
	require.False(t, AlertSystemID(NumAlertSystems).Valid())
}
