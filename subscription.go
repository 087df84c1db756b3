package nsub

import (
	"fmt"
	"sync"
	"sync/atomic"
)

type state uint8

const (
	stateOpen state = iota
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Subscription represents interest in a subject, optionally as part of a queue group.
// Messages are pushed in by the owning connection via Deliver and pulled out by
// consumers with NextMsg or NextMsgContext.
type Subscription struct {
	sid     int64
	subject string
	queue   string
	log     Logger
	depth   int
	q       *queue

	// mu guards the lifecycle state, the connection reference, the limits and the maxima.
	mu          sync.Mutex
	conn        Connection
	state       state
	connClosed  bool
	pMsgsLimit  int
	pBytesLimit int64
	pMsgsMax    int
	pBytesMax   int64

	// Hot path counters, updated by the delivery and retrieval paths without mu.
	pMsgs     atomic.Int64
	pBytes    atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64
	received  atomic.Int64
	max       atomic.Int64
	slow      atomic.Bool

	done        chan struct{}
	closeOnce   sync.Once
	disposeOnce sync.Once
}

// Stats is a snapshot of the statistics of a subscription. Fields are read
// individually so the snapshot is not guaranteed to be self-consistent.
type Stats struct {
	SID     int64
	Subject string
	Queue   string

	PendingMsgs       int
	PendingBytes      int64
	MaxPendingMsgs    int
	MaxPendingBytes   int64
	PendingMsgsLimit  int
	PendingBytesLimit int64
	Queued            int

	Delivered int64
	Dropped   int64
	Received  int64

	Slow  bool
	Valid bool
}

// SID returns the id assigned by the owning connection.
func (s *Subscription) SID() int64 {
	return s.sid
}

// Subject returns the subscribed subject.
func (s *Subscription) Subject() string {
	return s.subject
}

// Queue returns the queue group or an empty string.
func (s *Subscription) Queue() string {
	return s.queue
}

// Max returns the auto-unsubscribe ceiling. Zero means none.
func (s *Subscription) Max() int64 {
	return s.max.Load()
}

// IsValid returns false once the subscription is closed.
func (s *Subscription) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state == stateOpen && s.conn != nil
}

// Done returns a channel that is closed when the subscription closes.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Pending returns the number of buffered messages and bytes.
func (s *Subscription) Pending() (int, int64) {
	return int(s.pMsgs.Load()), s.pBytes.Load()
}

// PendingMsgs returns the number of buffered messages.
func (s *Subscription) PendingMsgs() int {
	return int(s.pMsgs.Load())
}

// PendingBytes returns the number of buffered payload bytes.
func (s *Subscription) PendingBytes() int64 {
	return s.pBytes.Load()
}

// MaxPending returns the high-water marks of buffered messages and bytes.
func (s *Subscription) MaxPending() (int, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pMsgsMax, s.pBytesMax
}

// MaxPendingMsgs returns the high-water mark of buffered messages.
func (s *Subscription) MaxPendingMsgs() int {
	msgs, _ := s.MaxPending()
	return msgs
}

// MaxPendingBytes returns the high-water mark of buffered bytes.
func (s *Subscription) MaxPendingBytes() int64 {
	_, bytes := s.MaxPending()
	return bytes
}

// ClearMaxPending resets the high-water marks.
func (s *Subscription) ClearMaxPending() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pMsgsMax = 0
	s.pBytesMax = 0
}

// Delivered returns the number of messages handed to consumers.
func (s *Subscription) Delivered() int64 {
	return s.delivered.Load()
}

// Dropped returns the number of messages dropped by this client. It is not reconciled
// with drops the server may have done on its side.
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Received returns the number of accepted deliveries, consumed or still pending.
func (s *Subscription) Received() int64 {
	return s.received.Load()
}

// QueuedMsgs returns the number of messages currently in the delivery queue.
func (s *Subscription) QueuedMsgs() int {
	return s.q.len()
}

// IsSlow reports whether the last delivery attempt was dropped.
func (s *Subscription) IsSlow() bool {
	return s.slow.Load()
}

// PendingLimits returns the message and byte limits. Negative values mean unlimited.
func (s *Subscription) PendingLimits() (int, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r := s.checkStateLocked(); r != nil {
		return 0, 0, r
	}
	return s.pMsgsLimit, s.pBytesLimit, nil
}

// PendingMsgsLimit returns the pending message limit.
func (s *Subscription) PendingMsgsLimit() (int, error) {
	msgs, _, err := s.PendingLimits()
	return msgs, err
}

// PendingBytesLimit returns the pending bytes limit.
func (s *Subscription) PendingBytesLimit() (int64, error) {
	_, bytes, err := s.PendingLimits()
	return bytes, err
}

// SetPendingLimits sets both limits at once. Zero is rejected for either value, in which
// case neither limit changes. Negative values mean unlimited.
func (s *Subscription) SetPendingLimits(msgs int, bytes int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r := s.checkStateLocked(); r != nil {
		return r
	}
	if msgs == 0 || bytes == 0 {
		return fmt.Errorf("%w: pending limits cannot be zero", ErrInvalidArg)
	}

	s.pMsgsLimit = msgs
	s.pBytesLimit = bytes
	return nil
}

// SetPendingMsgsLimit sets the pending message limit.
func (s *Subscription) SetPendingMsgsLimit(msgs int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r := s.checkStateLocked(); r != nil {
		return r
	}
	if msgs == 0 {
		return fmt.Errorf("%w: pending message limit cannot be zero", ErrInvalidArg)
	}

	s.pMsgsLimit = msgs
	return nil
}

// SetPendingBytesLimit sets the pending bytes limit.
func (s *Subscription) SetPendingBytesLimit(bytes int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r := s.checkStateLocked(); r != nil {
		return r
	}
	if bytes == 0 {
		return fmt.Errorf("%w: pending bytes limit cannot be zero", ErrInvalidArg)
	}

	s.pBytesLimit = bytes
	return nil
}

// Stats returns a snapshot of all statistics.
func (s *Subscription) Stats() Stats {
	s.mu.Lock()
	st := Stats{
		SID:               s.sid,
		Subject:           s.subject,
		Queue:             s.queue,
		MaxPendingMsgs:    s.pMsgsMax,
		MaxPendingBytes:   s.pBytesMax,
		PendingMsgsLimit:  s.pMsgsLimit,
		PendingBytesLimit: s.pBytesLimit,
		Valid:             s.state == stateOpen && s.conn != nil,
	}
	s.mu.Unlock()

	st.PendingMsgs, st.PendingBytes = s.Pending()
	st.Queued = s.q.len()
	st.Delivered = s.delivered.Load()
	st.Dropped = s.dropped.Load()
	st.Received = s.received.Load()
	st.Slow = s.slow.Load()
	return st
}

func (s *Subscription) checkState() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.checkStateLocked()
}

func (s *Subscription) checkStateLocked() error {
	switch {
	case s.connClosed:
		return ErrConnectionClosed
	case s.state == stateClosed || s.conn == nil:
		return ErrBadSubscription
	}
	return nil
}

func (s *Subscription) connection() Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.conn
}
