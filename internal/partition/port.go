package partition

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/taws-partitions/internal/clock"
	"github.com/oshokin/taws-partitions/internal/codec"
)

// ErrChannelUnavailable is returned when a port cannot be created.
var ErrChannelUnavailable = errors.New("channel unavailable")

// Instant is an optional monotonic timestamp measured from runtime boot.
// The zero value means "no message seen yet". Instants compare with ==.
type Instant struct {
	// Since is the elapsed time from boot.
	Since time.Duration
	// Valid is false when no message has been recorded.
	Valid bool
}

// Seconds returns the instant as seconds since boot.
func (i Instant) Seconds() float64 {
	return i.Since.Seconds()
}

func (i Instant) String() string {
	if !i.Valid {
		return "none"
	}

	return i.Since.String()
}

// ChannelStatus describes a port independently of any validity window.
type ChannelStatus struct {
	// LastMessage is the send time of the current message.
	LastMessage Instant
}

// Runtime owns the named ports of every partition in the process.
type Runtime struct {
	// clock provides monotonic time for send stamps and freshness checks.
	clock clock.Clock
	// boot is the instant every Instant is measured from.
	boot time.Time
	// mu guards ports while partitions create them.
	mu sync.Mutex
	// ports maps port names to their storage.
	ports map[string]*port
}

// port is the storage of one sampling port.
type port struct {
	name      string
	capacity  int
	data      []byte
	size      int
	sentAt    Instant
	hasSender bool
}

// NewRuntime creates a runtime whose boot instant is the clock's current time.
func NewRuntime(c clock.Clock) *Runtime {
	return &Runtime{
		clock: c,
		boot:  c.Now(),
		ports: make(map[string]*port),
	}
}

// Clock returns the runtime clock.
func (r *Runtime) Clock() clock.Clock {
	return r.clock
}

// Now returns the current instant since boot.
func (r *Runtime) Now() Instant {
	return Instant{Since: r.clock.Now().Sub(r.boot), Valid: true}
}

// NewSender creates the sending side of a port. A port has one sender.
func (r *Runtime) NewSender(name string, capacity int) (*Sender, error) {
	p, err := r.attach(name, capacity)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p.hasSender {
		return nil, fmt.Errorf("%w: %q already has a sender", ErrChannelUnavailable, name)
	}

	p.hasSender = true

	return &Sender{runtime: r, port: p}, nil
}

// NewReceiver creates a receiving side of a port with its own validity window.
func (r *Runtime) NewReceiver(name string, capacity int, validity time.Duration) (*Receiver, error) {
	if validity <= 0 {
		return nil, fmt.Errorf("%w: %q: validity must be positive", ErrChannelUnavailable, name)
	}

	p, err := r.attach(name, capacity)
	if err != nil {
		return nil, err
	}

	return &Receiver{runtime: r, port: p, validity: validity}, nil
}

// attach returns the port called name, creating it on first use.
func (r *Runtime) attach(name string, capacity int) (*port, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrChannelUnavailable)
	}

	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %q: capacity must be positive", ErrChannelUnavailable, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.ports[name]; ok {
		if p.capacity != capacity {
			return nil, fmt.Errorf("%w: %q has capacity %d, requested %d",
				ErrChannelUnavailable, name, p.capacity, capacity)
		}

		return p, nil
	}

	p := &port{
		name:     name,
		capacity: capacity,
		data:     make([]byte, capacity),
	}
	r.ports[name] = p

	return p, nil
}

// Sender writes into a port.
type Sender struct {
	runtime *Runtime
	port    *port
}

// Name returns the port name.
func (s *Sender) Name() string { return s.port.name }

// Capacity returns the port capacity in bytes.
func (s *Sender) Capacity() int { return s.port.capacity }

// Send overwrites the port content with payload and stamps the send time.
func (s *Sender) Send(payload []byte) error {
	if len(payload) > s.port.capacity {
		return fmt.Errorf("%w: %d bytes for port %q of capacity %d",
			codec.ErrEncodingTooLarge, len(payload), s.port.name, s.port.capacity)
	}

	s.port.size = copy(s.port.data, payload)
	s.port.sentAt = s.runtime.Now()

	return nil
}

// Receiver reads from a port.
type Receiver struct {
	runtime  *Runtime
	port     *port
	validity time.Duration
}

// Name returns the port name.
func (r *Receiver) Name() string { return r.port.name }

// Validity returns the receiver's validity window.
func (r *Receiver) Validity() time.Duration { return r.validity }

// Recv returns a copy of the current message and its send instant. It
// reports false when the port is empty or the message is older than the
// validity window.
func (r *Receiver) Recv() ([]byte, Instant, bool) {
	sentAt := r.port.sentAt
	if !sentAt.Valid {
		return nil, Instant{}, false
	}

	if r.runtime.Now().Since-sentAt.Since > r.validity {
		return nil, Instant{}, false
	}

	payload := make([]byte, r.port.size)
	copy(payload, r.port.data[:r.port.size])

	return payload, sentAt, true
}

// Status reports the last send instant regardless of validity.
func (r *Receiver) Status() ChannelStatus {
	return ChannelStatus{LastMessage: r.port.sentAt}
}
