package partition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/taws-partitions/internal/clock"
	"github.com/oshokin/taws-partitions/internal/codec"
)

// newFakeRuntime returns a runtime on a fake clock.
func newFakeRuntime() (*Runtime, *clock.FakeClock) {
	c := clock.Fake(time.Unix(0, 0))

	return NewRuntime(c), c
}

// TestReceiver_ValidityWindow checks a message is present at Δ ≤ W and absent at Δ > W.
func TestReceiver_ValidityWindow(t *testing.T) {
	t.Parallel()

	rt, c := newFakeRuntime()

	tx, err := rt.NewSender("aircraft_state", 8)
	require.NoError(t, err)

	rx, err := rt.NewReceiver("aircraft_state", 8, time.Second)
	require.NoError(t, err)

	_, _, ok := rx.Recv()
	require.False(t, ok)
	require.False(t, rx.Status().LastMessage.Valid)

	c.Advance(5 * time.Second)
	require.NoError(t, tx.Send([]byte{1, 2, 3}))

	c.Advance(time.Second)

	payload, ts, ok := rx.Recv()
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, payload)
	require.Equal(t, Instant{Since: 5 * time.Second, Valid: true}, ts)

	c.Advance(time.Nanosecond)

	_, _, ok = rx.Recv()
	require.False(t, ok)

	// Status ignores the validity window.
	require.Equal(t, ts, rx.Status().LastMessage)
}

// TestSender_LastValueWins verifies a second send overwrites the first.
func TestSender_LastValueWins(t *testing.T) {
	t.Parallel()

	rt, c := newFakeRuntime()

	tx, err := rt.NewSender("taws::alerts", 4)
	require.NoError(t, err)

	rx, err := rt.NewReceiver("taws::alerts", 4, time.Minute)
	require.NoError(t, err)

	require.NoError(t, tx.Send([]byte{1, 2, 3, 4}))
	c.Advance(time.Millisecond)
	require.NoError(t, tx.Send([]byte{9}))

	payload, ts, ok := rx.Recv()
	require.True(t, ok)
	require.Equal(t, []byte{9}, payload)
	require.Equal(t, time.Millisecond, ts.Since)

	err = tx.Send([]byte{1, 2, 3, 4, 5})
	require.ErrorIs(t, err, codec.ErrEncodingTooLarge)
}

// TestRuntime_ChannelUnavailable covers the port creation failures.
func TestRuntime_ChannelUnavailable(t *testing.T) {
	t.Parallel()

	rt, _ := newFakeRuntime()

	_, err := rt.NewSender("", 8)
	require.ErrorIs(t, err, ErrChannelUnavailable)

	_, err = rt.NewSender("a", 0)
	require.ErrorIs(t, err, ErrChannelUnavailable)

	_, err = rt.NewReceiver("a", 8, 0)
	require.ErrorIs(t, err, ErrChannelUnavailable)

	_, err = rt.NewSender("a", 8)
	require.NoError(t, err)

	_, err = rt.NewSender("a", 8)
	require.ErrorIs(t, err, ErrChannelUnavailable)

	_, err = rt.NewReceiver("a", 16, time.Second)
	require.ErrorIs(t, err, ErrChannelUnavailable)
}

// message is a small toarray payload for the typed port tests.
type message struct {
	_ struct{} `cbor:",toarray"`

	Seq   uint16
	Value float32
}

// TestSampled_PollAndDecodeFailure checks typed polling and the drop path for malformed bytes.
func TestSampled_PollAndDecodeFailure(t *testing.T) {
	t.Parallel()

	rt, c := newFakeRuntime()

	tx, err := NewSampledSender[message](rt, "typed", 16)
	require.NoError(t, err)

	rx, err := NewSampledReceiver[message](rt, "typed", 16, time.Second)
	require.NoError(t, err)
	require.Equal(t, "typed", rx.Name())
	require.Equal(t, time.Second, rx.Validity())

	c.Advance(time.Millisecond)
	require.NoError(t, tx.Send(message{Seq: 7, Value: 2.5}))

	sample, ok, err := rx.Poll()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint16(7), sample.Value.Seq)
	require.Equal(t, rx.Status().LastMessage, sample.Timestamp)

	// A raw sender on another port shows the decode-failure path.
	raw, err := rt.NewSender("raw", 16)
	require.NoError(t, err)

	rawRx, err := NewSampledReceiver[message](rt, "raw", 16, time.Second)
	require.NoError(t, err)

	c.Advance(time.Millisecond)
	require.NoError(t, raw.Send([]byte{0xff, 0xff}))

	sample, ok, err = rawRx.Poll()
	require.ErrorIs(t, err, codec.ErrDecodingFailed)
	require.False(t, ok)
	require.True(t, sample.Timestamp.Valid)
}
