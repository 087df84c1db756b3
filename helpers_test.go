package nsub_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tehsphinx/nsub"
)

type unsubCall struct {
	sid int64
	max int
}

// fakeConn is an in-memory nsub.Connection.
type fakeConn struct {
	mu       sync.Mutex
	subs     map[int64]*nsub.Subscription
	closed   bool
	draining bool
	unsubs   []unsubCall
	slow     int
}

var _ nsub.Connection = (*fakeConn)(nil)

func newFakeConn() *fakeConn {
	return &fakeConn{subs: map[int64]*nsub.Subscription{}}
}

func (c *fakeConn) subscribe(subject string, opts ...nsub.Option) *nsub.Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	sid := int64(len(c.subs) + 1)
	sub := nsub.New(c, sid, subject, "", opts...)
	c.subs[sid] = sub
	return sub
}

func (c *fakeConn) Unsubscribe(sid int64, max int) error {
	c.mu.Lock()
	c.unsubs = append(c.unsubs, unsubCall{sid: sid, max: max})
	sub, ok := c.subs[sid]
	if max == 0 {
		delete(c.subs, sid)
	}
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: unknown sid %d", nsub.ErrBadSubscription, sid)
	}
	if max == 0 {
		sub.Close()
	}
	return nil
}

func (c *fakeConn) DrainSubscription(sid int64, timeout time.Duration) <-chan error {
	ch := make(chan error, 1)

	c.mu.Lock()
	sub, ok := c.subs[sid]
	c.mu.Unlock()
	if !ok {
		ch <- nsub.ErrBadSubscription
		return ch
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := sub.AwaitEmpty(ctx)
		c.mu.Lock()
		delete(c.subs, sid)
		c.mu.Unlock()
		sub.Close()
		ch <- err
	}()
	return ch
}

func (c *fakeConn) ReportSlowConsumer(*nsub.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.slow++
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

func (c *fakeConn) IsDraining() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.draining
}

func (c *fakeConn) slowReports() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.slow
}

func (c *fakeConn) unsubCalls() []unsubCall {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]unsubCall(nil), c.unsubs...)
}

func msg(i int) *nsub.Msg {
	return &nsub.Msg{Subject: "a.b", Data: []byte(fmt.Sprintf("msg-%03d", i))}
}
