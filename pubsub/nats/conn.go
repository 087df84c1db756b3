// Package nats implements the pubsub interfaces and the nsub.Connection on top of
// github.com/nats-io/nats.go.
package nats

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/nsub"
	"github.com/tehsphinx/nsub/pubsub"
	"golang.org/x/time/rate"
)

var _ nsub.Connection = (*Conn)(nil)
var _ pubsub.Subscriber = (*Conn)(nil)

// Conn wraps a NATS connection. Subscriptions created through it buffer messages in
// nsub, which enforces the pending limits; the NATS side limits are disabled.
type Conn struct {
	nc  *nats.Conn
	log nsub.Logger

	slowLog   *rate.Limiter
	observers []SlowConsumerObserver
	subOpts   []nsub.Option

	sids atomic.Int64
	subs *subscriptions
}

// New wraps nc. It chains a closed handler in front of the one configured on nc so
// that subscriptions learn about the connection closing.
func New(nc *nats.Conn, opts ...Option) *Conn {
	opt := getOptions(opts)

	c := &Conn{
		nc:        nc,
		log:       opt.logger,
		slowLog:   rate.NewLimiter(rate.Every(opt.slowLogInterval), 1),
		observers: opt.observers,
		subOpts:   append([]nsub.Option{nsub.WithLogger(opt.logger)}, opt.subOpts...),
		subs:      newSubscriptions(opt.logger),
	}

	prev := nc.Opts.ClosedCB
	nc.SetClosedHandler(func(nc *nats.Conn) {
		c.subs.connClosed()
		if prev != nil {
			prev(nc)
		}
	})
	return c
}

// Subscribe implements the pubsub.Subscriber interface.
func (c *Conn) Subscribe(subject, queue string, opts ...nsub.Option) (*nsub.Subscription, error) {
	if !nsub.IsValidSubject(subject) {
		return nil, fmt.Errorf("%w: invalid subject %q", nsub.ErrInvalidArg, subject)
	}
	if queue != "" && !nsub.IsValidQueueGroupName(queue) {
		return nil, fmt.Errorf("%w: invalid queue group %q", nsub.ErrInvalidArg, queue)
	}
	if c.nc.IsClosed() {
		return nil, nsub.ErrConnectionClosed
	}

	sid := c.sids.Add(1)
	sub := nsub.New(c, sid, subject, queue, append(c.subOpts[:len(c.subOpts):len(c.subOpts)], opts...)...)
	e := &entry{sub: sub}

	ns, err := c.nc.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		c.deliver(e, msg)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	if r := ns.SetPendingLimits(-1, -1); r != nil {
		_ = ns.Unsubscribe()
		return nil, fmt.Errorf("failed to disable nats pending limits: %w", r)
	}
	e.ns = ns
	c.subs.register(sid, e)

	c.log.Infof("Subscribed: subject => %s, queue => %s, sid => %d", subject, queue, sid)
	return sub, nil
}

// Flush implements the pubsub.Subscriber interface.
func (c *Conn) Flush() error {
	return c.nc.Flush()
}

// deliver runs on the nats delivery goroutine of the subscription. The server side
// auto-unsubscribe counts dropped messages too, so the ceiling is checked against
// every message seen rather than the accepted ones.
func (c *Conn) deliver(e *entry, msg *nats.Msg) {
	seen := e.seen.Add(1)
	max := e.max.Load()
	if max > 0 && seen > max {
		return
	}

	e.sub.Deliver(&nsub.Msg{
		Subject: msg.Subject,
		Reply:   msg.Reply,
		Header:  msg.Header,
		Data:    msg.Data,
	})

	if max > 0 && seen >= max {
		go c.finish(e)
	}
}

// finish closes a subscription that reached its auto-unsubscribe ceiling once its
// buffered messages are consumed.
func (c *Conn) finish(e *entry) {
	e.finish.Do(func() {
		_ = e.sub.AwaitEmpty(context.Background())

		c.subs.remove(e.sub.SID())
		e.sub.Close()
		c.log.Infof("Auto-unsubscribed: subject => %s, sid => %d, max => %d, dropped => %d",
			e.sub.Subject(), e.sub.SID(), e.max.Load(), e.sub.Dropped())
	})
}

// Unsubscribe implements the nsub.Connection interface.
func (c *Conn) Unsubscribe(sid int64, max int) error {
	e, ok := c.subs.lookup(sid)
	if !ok {
		return fmt.Errorf("%w: unknown sid %d", nsub.ErrBadSubscription, sid)
	}

	if max > 0 {
		e.max.Store(int64(max))
		if r := e.ns.AutoUnsubscribe(max); r != nil && !errors.Is(r, nats.ErrBadSubscription) {
			return fmt.Errorf("failed to auto-unsubscribe: %w", r)
		}
		if e.seen.Load() >= int64(max) {
			go c.finish(e)
		}
		return nil
	}

	c.subs.remove(sid)
	defer e.sub.Close()

	if r := e.ns.Unsubscribe(); r != nil {
		return fmt.Errorf("failed to unsubscribe: %w", r)
	}
	c.log.Infof("Un-subscribed: subject => %s, sid => %d", e.sub.Subject(), sid)
	return nil
}

// DrainSubscription implements the nsub.Connection interface.
func (c *Conn) DrainSubscription(sid int64, timeout time.Duration) <-chan error {
	ch := make(chan error, 1)

	e, ok := c.subs.lookup(sid)
	if !ok {
		ch <- fmt.Errorf("%w: unknown sid %d", nsub.ErrBadSubscription, sid)
		return ch
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		ch <- c.drain(ctx, e)
	}()
	return ch
}

func (c *Conn) drain(ctx context.Context, e *entry) error {
	sid := e.sub.SID()
	defer func() {
		c.subs.remove(sid)
		e.sub.Close()
	}()

	if r := e.ns.Drain(); r != nil {
		return fmt.Errorf("failed to drain: %w", r)
	}

	// messages already buffered by nats still pass through deliver
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()
	for e.ns.IsValid() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: drain sid %d: %v", nsub.ErrTimeout, sid, ctx.Err())
		case <-ticker.C:
		}
	}

	if r := e.sub.AwaitEmpty(ctx); r != nil {
		if errors.Is(r, context.DeadlineExceeded) {
			return fmt.Errorf("%w: drain sid %d: %d messages left", nsub.ErrTimeout, sid, e.sub.QueuedMsgs())
		}
		return r
	}

	c.log.Infof("Drained: subject => %s, sid => %d", e.sub.Subject(), sid)
	return nil
}

// ReportSlowConsumer implements the nsub.Connection interface.
func (c *Conn) ReportSlowConsumer(sub *nsub.Subscription) {
	for _, o := range c.observers {
		o.ObserveSlowConsumer(sub)
	}

	if c.slowLog.Allow() {
		c.log.Errorf("Slow consumer: subject => %s, sid => %d, pending => %d, dropped => %d",
			sub.Subject(), sub.SID(), sub.PendingMsgs(), sub.Dropped())
	}
}

// IsClosed implements the nsub.Connection interface.
func (c *Conn) IsClosed() bool {
	return c.nc.IsClosed()
}

// IsDraining implements the nsub.Connection interface.
func (c *Conn) IsDraining() bool {
	return c.nc.IsDraining()
}

// NumSubscriptions returns the number of live subscriptions.
func (c *Conn) NumSubscriptions() int {
	return c.subs.len()
}
