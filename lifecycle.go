package nsub

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Close marks the subscription closed and releases the connection reference.
// No further deliveries are accepted and waiting consumers return. Statistics keep
// their last values. Close is idempotent and is normally called by the connection.
func (s *Subscription) Close() {
	s.mu.Lock()
	prev := s.state
	s.state = stateClosed
	s.conn = nil
	s.mu.Unlock()

	s.closeOnce.Do(func() { close(s.done) })
	if prev != stateClosed {
		s.log.Infof("closed subscription: subject => %s, sid => %d", s.subject, s.sid)
	}
}

// MarkConnClosed records that the owning connection closed and closes the subscription.
// Subsequent operations fail with ErrConnectionClosed.
func (s *Subscription) MarkConnClosed() {
	s.mu.Lock()
	s.connClosed = true
	s.mu.Unlock()

	s.Close()
}

// Unsubscribe removes interest in the subject immediately.
func (s *Subscription) Unsubscribe() error {
	conn, err := s.unsubscribeConn(true)
	if err != nil {
		return err
	}
	return conn.Unsubscribe(s.sid, 0)
}

// AutoUnsubscribe unsubscribes once max messages have been received. A max <= 0
// unsubscribes immediately.
func (s *Subscription) AutoUnsubscribe(max int) error {
	conn, err := s.unsubscribeConn(false)
	if err != nil {
		return err
	}
	if max < 0 {
		max = 0
	}

	s.max.Store(int64(max))
	return conn.Unsubscribe(s.sid, max)
}

func (s *Subscription) unsubscribeConn(checkDraining bool) (Connection, error) {
	s.mu.Lock()
	conn, closed, connClosed := s.conn, s.state == stateClosed, s.connClosed
	s.mu.Unlock()

	switch {
	case connClosed:
		return nil, ErrConnectionClosed
	case conn == nil:
		return nil, fmt.Errorf("%w: no connection", ErrBadSubscription)
	case conn.IsClosed():
		return nil, ErrConnectionClosed
	case closed:
		return nil, fmt.Errorf("%w: already closed", ErrBadSubscription)
	case checkDraining && conn.IsDraining():
		return nil, ErrConnectionDraining
	}
	return conn, nil
}

// DrainAsync starts draining the subscription: new deliveries stop, the buffered
// messages remain available to consumers and once they are consumed the subscription
// is unsubscribed. The returned channel yields the result of the drain.
func (s *Subscription) DrainAsync(timeout time.Duration) (<-chan error, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: drain timeout must be positive, got %v", ErrInvalidArg, timeout)
	}

	s.mu.Lock()
	conn, closed := s.conn, s.state == stateClosed
	s.mu.Unlock()

	if conn == nil {
		return nil, fmt.Errorf("%w: no connection", ErrBadSubscription)
	}
	if closed {
		return nil, fmt.Errorf("%w: already closed", ErrBadSubscription)
	}

	s.log.Infof("draining subscription: subject => %s, sid => %d, timeout => %v", s.subject, s.sid, timeout)
	return conn.DrainSubscription(s.sid, timeout), nil
}

// Drain drains the subscription and blocks until the drain completes. It returns
// ErrTimeout if buffered messages remain when the timeout passes; the subscription
// may still end up unsubscribed in that case.
func (s *Subscription) Drain(timeout time.Duration) error {
	ch, err := s.DrainAsync(timeout)
	if err != nil {
		return err
	}

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case r := <-ch:
		if errors.Is(r, context.DeadlineExceeded) {
			return fmt.Errorf("%w: drain: %v", ErrTimeout, r)
		}
		return r
	case <-t.C:
		return fmt.Errorf("%w: drain did not complete within %v", ErrTimeout, timeout)
	}
}

// Dispose unsubscribes, ignoring any error, closes the subscription and releases the
// connection. Only the first call has an effect.
func (s *Subscription) Dispose() {
	s.disposeOnce.Do(func() {
		if r := s.Unsubscribe(); r != nil {
			s.log.Infof("dispose: subject => %s, sid => %d: unsubscribe: %v", s.subject, s.sid, r)
		}
		s.Close()
	})
}
