package partition

import (
	"fmt"
	"time"

	"github.com/oshokin/taws-partitions/internal/codec"
)

// Sample is a decoded message together with its send instant.
type Sample[T any] struct {
	Value     T
	Timestamp Instant
}

// SampledSender encodes values of T into a fixed-capacity port.
type SampledSender[T any] struct {
	sender *Sender
	buf    []byte
}

// NewSampledSender creates a typed sender for the named port.
func NewSampledSender[T any](r *Runtime, name string, capacity int) (*SampledSender[T], error) {
	sender, err := r.NewSender(name, capacity)
	if err != nil {
		return nil, err
	}

	return &SampledSender[T]{
		sender: sender,
		buf:    make([]byte, capacity),
	}, nil
}

// Name returns the port name.
func (s *SampledSender[T]) Name() string { return s.sender.Name() }

// Send encodes v into the port, failing with codec.ErrEncodingTooLarge
// when the encoding exceeds the port capacity.
func (s *SampledSender[T]) Send(v T) error {
	payload, err := codec.EncodeInto(v, s.buf)
	if err != nil {
		return fmt.Errorf("send on %q: %w", s.sender.Name(), err)
	}

	return s.sender.Send(payload)
}

// SampledReceiver decodes values of T from a port.
type SampledReceiver[T any] struct {
	receiver *Receiver
}

// NewSampledReceiver creates a typed receiver for the named port.
func NewSampledReceiver[T any](r *Runtime, name string, capacity int, validity time.Duration) (*SampledReceiver[T], error) {
	receiver, err := r.NewReceiver(name, capacity, validity)
	if err != nil {
		return nil, err
	}

	return &SampledReceiver[T]{receiver: receiver}, nil
}

// Name returns the port name.
func (r *SampledReceiver[T]) Name() string { return r.receiver.Name() }

// Validity returns the receiver's validity window.
func (r *SampledReceiver[T]) Validity() time.Duration { return r.receiver.Validity() }

// Poll returns the freshest message if it is inside the validity window.
// A message that does not decode is reported with codec.ErrDecodingFailed;
// the returned sample still carries its timestamp so callers can skip it.
func (r *SampledReceiver[T]) Poll() (Sample[T], bool, error) {
	payload, sentAt, ok := r.receiver.Recv()
	if !ok {
		return Sample[T]{}, false, nil
	}

	var value T
	if err := codec.Decode(payload, &value); err != nil {
		return Sample[T]{Timestamp: sentAt}, false, fmt.Errorf("poll %q: %w", r.receiver.Name(), err)
	}

	return Sample[T]{Value: value, Timestamp: sentAt}, true, nil
}

// Status reports the last send instant regardless of validity.
func (r *SampledReceiver[T]) Status() ChannelStatus {
	return r.receiver.Status()
}
