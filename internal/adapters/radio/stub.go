// Package radio provides ports.Radio implementations: an in-process stub
// for host runs and tests, and a JSON bridge to a network server over HTTP.
package radio

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/airship/internal/domain"
	"github.com/bft-labs/airship/internal/ports"
	"github.com/bft-labs/airship/internal/timesync"
	"github.com/bft-labs/airship/pkg/log"
)

// GPSLeapSeconds is the GPS-UTC offset the stub network adds to its time
// replies.
const GPSLeapSeconds = 18

// Uplink is one message transmitted through the stub.
type Uplink struct {
	Port    uint8
	Payload []byte
	At      time.Time
}

// Stub is an in-process network. Downlinks queued with Enqueue are handed
// out one per uplink, in order.
type Stub struct {
	mu           sync.Mutex
	rx           ring
	tx           []Uplink
	joined       bool
	joinFailures int
	timeFailures int
	now          func() time.Time
	logger       log.Logger
}

// NewStub creates a stub network that accepts the first join.
func NewStub(logger log.Logger) *Stub {
	return &Stub{now: time.Now, logger: logger}
}

// FailJoins makes the next n join attempts fail.
func (s *Stub) FailJoins(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joinFailures = n
}

// FailTimeRequests makes the next n network time requests go unanswered.
func (s *Stub) FailTimeRequests(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeFailures = n
}

// SetTimeSource replaces the host clock used for network time replies.
func (s *Stub) SetTimeSource(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Join implements ports.Radio.
func (s *Stub) Join(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.joinFailures > 0 {
		s.joinFailures--
		return domain.ErrNotJoined
	}
	s.joined = true
	return nil
}

// Send records the uplink and returns the next queued downlink, if any.
func (s *Stub) Send(ctx context.Context, port uint8, payload []byte) (ports.Downlink, error) {
	if err := ctx.Err(); err != nil {
		return ports.Downlink{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.joined {
		return ports.Downlink{}, domain.ErrNotJoined
	}
	s.record(port, payload)

	dl, ok := s.rx.pop()
	if !ok {
		return ports.Downlink{}, nil
	}
	s.logger.Debug("stub downlink delivered", log.Int("port", int(dl.Port)), log.Hex("data", dl.Data))
	return dl, nil
}

// RequestNetworkTime answers with the host time as a GPS epoch.
func (s *Stub) RequestNetworkTime(ctx context.Context) (uint32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.joined {
		return 0, domain.ErrNotJoined
	}
	s.record(ports.PortTimeRequest, nil)

	if s.timeFailures > 0 {
		s.timeFailures--
		return 0, domain.ErrNoTimeReply
	}
	return uint32(s.now().Unix() - timesync.GPSToUnixOffset + GPSLeapSeconds), nil
}

// Enqueue queues dl for the next uplink's receive window.
func (s *Stub) Enqueue(dl ports.Downlink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dl.Data = append([]byte(nil), dl.Data...)
	s.rx.push(dl)
}

// Uplinks returns a copy of every uplink sent so far.
func (s *Stub) Uplinks() []Uplink {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Uplink, len(s.tx))
	copy(out, s.tx)
	return out
}

func (s *Stub) record(port uint8, payload []byte) {
	s.tx = append(s.tx, Uplink{
		Port:    port,
		Payload: append([]byte(nil), payload...),
		At:      s.now(),
	})
}

const ringCapacity = 16

// ring is a bounded FIFO that drops the oldest entry when full.
type ring struct {
	data       [ringCapacity]ports.Downlink
	head, tail int
	count      int
}

func (r *ring) push(dl ports.Downlink) {
	if r.count == ringCapacity {
		r.head = (r.head + 1) % ringCapacity
		r.count--
	}
	r.data[r.tail] = dl
	r.tail = (r.tail + 1) % ringCapacity
	r.count++
}

func (r *ring) pop() (ports.Downlink, bool) {
	if r.count == 0 {
		return ports.Downlink{}, false
	}
	dl := r.data[r.head]
	r.data[r.head] = ports.Downlink{}
	r.head = (r.head + 1) % ringCapacity
	r.count--
	return dl, true
}

var (
	_ ports.Radio         = (*Stub)(nil)
	_ ports.DownlinkQueue = (*Stub)(nil)
)
