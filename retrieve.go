package nsub

import (
	"context"
	"time"
)

// NextMsg returns the next buffered message, waiting up to timeout for one to arrive.
// A timeout <= 0 waits until a message arrives or the subscription closes.
// It returns ErrTimeout if the deadline passes and ErrBadSubscription or
// ErrConnectionClosed if the subscription closes while waiting.
func (s *Subscription) NextMsg(timeout time.Duration) (*Msg, error) {
	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	return s.next(context.Background(), expired)
}

// NextMsgContext returns the next buffered message, waiting until one arrives or ctx
// is done. Cancellation is returned as ctx.Err().
func (s *Subscription) NextMsgContext(ctx context.Context) (*Msg, error) {
	return s.next(ctx, nil)
}

func (s *Subscription) next(ctx context.Context, expired <-chan time.Time) (*Msg, error) {
	for {
		if r := s.checkState(); r != nil {
			return nil, r
		}
		if m, ok := s.q.pop(); ok {
			s.recordDelivery(m)
			return m, nil
		}

		select {
		case <-s.q.ready:
		case <-s.done:
		case <-expired:
			return nil, ErrTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// AwaitEmpty blocks until every buffered message has been consumed. It is used by
// connections to implement draining.
func (s *Subscription) AwaitEmpty(ctx context.Context) error {
	for {
		if s.q.len() == 0 {
			return nil
		}

		select {
		case <-s.q.empty:
		case <-s.done:
			return ErrBadSubscription
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
