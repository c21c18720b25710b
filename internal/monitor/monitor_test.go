package monitor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newDefaultMonitor(t *testing.T) *Monitor {
	t.Helper()

	spec, err := DefaultSpec()
	require.NoError(t, err)

	m, err := New(spec)
	require.NoError(t, err)

	return m
}

func triggerID(t *testing.T, m *Monitor, name string) TriggerID {
	t.Helper()

	for i := range m.spec.Triggers {
		if m.Name(TriggerID(i)) == name {
			return TriggerID(i)
		}
	}

	t.Fatalf("trigger %q not found", name)

	return -1
}

// TestDefaultSpec verifies the embedded specification declares both channels in slot order.
func TestDefaultSpec(t *testing.T) {
	t.Parallel()

	m := newDefaultMonitor(t)
	require.Equal(t, []string{"aircraft_state", "alerts"}, m.Inputs())
	require.NotEmpty(t, m.Message(triggerID(t, m, "alert_state_late")))
	require.Empty(t, m.Name(TriggerID(42)))
}

// TestParseSpecRejectsInvalidDocuments verifies schema and cross-reference validation.
func TestParseSpecRejectsInvalidDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		contents string
	}{
		{
			name:     "not yaml",
			contents: "inputs: [a",
		},
		{
			name:     "missing triggers",
			contents: "inputs: [a]",
		},
		{
			name: "deadline without within",
			contents: `
inputs: [a, b]
triggers:
  - {name: late, kind: deadline, after: a, expect: b, message: late}`,
		},
		{
			name: "unknown kind",
			contents: `
inputs: [a]
triggers:
  - {name: odd, kind: sometimes, message: odd}`,
		},
		{
			name: "unknown stream",
			contents: `
inputs: [a]
triggers:
  - {name: quiet, kind: silence, stream: b, max_gap: 1, message: quiet}`,
		},
		{
			name: "duplicate trigger",
			contents: `
inputs: [a]
triggers:
  - {name: quiet, kind: silence, stream: a, max_gap: 1, message: quiet}
  - {name: quiet, kind: silence, stream: a, max_gap: 2, message: quiet}`,
		},
		{
			name: "bad trigger name",
			contents: `
inputs: [a]
triggers:
  - {name: Quiet, kind: silence, stream: a, max_gap: 1, message: quiet}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseSpec([]byte(tt.contents))
			require.ErrorIs(t, err, ErrInvalidSpec)
		})
	}
}

// TestLoadSpecEmptyPathFallsBackToDefault verifies the embedded default is used without a path.
func TestLoadSpecEmptyPathFallsBackToDefault(t *testing.T) {
	t.Parallel()

	spec, err := LoadSpec("")
	require.NoError(t, err)
	require.Len(t, spec.Triggers, 4)

	_, err = LoadSpec("/nonexistent/monitor.yaml")
	require.Error(t, err)
}

// TestDeadlineTrigger verifies a late output fires exactly once and a timely one never fires.
func TestDeadlineTrigger(t *testing.T) {
	t.Parallel()

	m := newDefaultMonitor(t)
	late := triggerID(t, m, "alert_state_late")

	require.False(t, m.Accept([]Value{At(1.0), At(1.05)}, 1.1)[late])

	require.False(t, m.Accept([]Value{At(2.0), Absent()}, 2.0)[late])
	require.False(t, m.Accept([]Value{Absent(), Absent()}, 2.4)[late])
	require.True(t, m.Accept([]Value{Absent(), Absent()}, 2.6)[late])
	require.False(t, m.Accept([]Value{Absent(), Absent()}, 2.7)[late])

	require.False(t, m.Accept([]Value{At(3.0), Absent()}, 3.0)[late])
	require.False(t, m.Accept([]Value{Absent(), At(3.2)}, 3.2)[late])
	require.False(t, m.Accept([]Value{Absent(), Absent()}, 4.0)[late])
}

// TestSilenceTrigger verifies silence fires once per quiet period and re-arms on arrival.
func TestSilenceTrigger(t *testing.T) {
	t.Parallel()

	m := newDefaultMonitor(t)
	quiet := triggerID(t, m, "aircraft_state_silent")

	require.False(t, m.Accept(nil, 0)[quiet])
	require.False(t, m.Accept(nil, 2.0)[quiet])
	require.True(t, m.Accept(nil, 2.1)[quiet])
	require.False(t, m.Accept(nil, 5.0)[quiet])

	require.False(t, m.Accept([]Value{At(5.0)}, 5.0)[quiet])
	require.False(t, m.Accept(nil, 6.5)[quiet])
	require.True(t, m.Accept(nil, 7.5)[quiet])
}

// TestUnsolicitedTrigger verifies an output without a fresh input fires.
func TestUnsolicitedTrigger(t *testing.T) {
	t.Parallel()

	m := newDefaultMonitor(t)
	unsolicited := triggerID(t, m, "alert_state_unsolicited")

	require.False(t, m.Accept([]Value{At(0.1), At(0.15)}, 0.2)[unsolicited])
	require.True(t, m.Accept([]Value{Absent(), At(0.3)}, 0.3)[unsolicited])
	require.False(t, m.Accept([]Value{At(0.4), Absent()}, 0.4)[unsolicited])
	require.False(t, m.Accept([]Value{Absent(), At(0.45)}, 0.45)[unsolicited])
}

// TestVerdictsFired verifies fired triggers are listed in ascending order.
func TestVerdictsFired(t *testing.T) {
	t.Parallel()

	v := Verdicts{3: true, 0: false, 1: true, 2: true}
	require.Equal(t, []TriggerID{1, 2, 3}, v.Fired())
	require.Empty(t, Verdicts{0: false}.Fired())
}
