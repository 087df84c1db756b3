package nats

import (
	"sync"
	"sync/atomic"

	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/nsub"
)

type entry struct {
	sub *nsub.Subscription
	ns  *nats.Subscription
	// max is the auto-unsubscribe ceiling, 0 if none.
	max    atomic.Int64
	// seen counts every message nats handed over, accepted or dropped.
	seen   atomic.Int64
	finish sync.Once
}

func newSubscriptions(log nsub.Logger) *subscriptions {
	return &subscriptions{
		log:  log,
		subs: make(map[int64]*entry),
	}
}

// subscriptions is the sid keyed table of live subscriptions of a connection.
type subscriptions struct {
	log nsub.Logger

	m    sync.RWMutex
	subs map[int64]*entry
}

func (s *subscriptions) register(sid int64, e *entry) {
	s.m.Lock()
	defer s.m.Unlock()

	s.subs[sid] = e
}

func (s *subscriptions) lookup(sid int64) (*entry, bool) {
	s.m.RLock()
	defer s.m.RUnlock()

	e, ok := s.subs[sid]
	return e, ok
}

func (s *subscriptions) remove(sid int64) {
	s.m.Lock()
	defer s.m.Unlock()

	delete(s.subs, sid)
}

func (s *subscriptions) len() int {
	s.m.RLock()
	defer s.m.RUnlock()

	return len(s.subs)
}

// connClosed severs every subscription from the closed connection.
func (s *subscriptions) connClosed() {
	s.m.Lock()
	subs := s.subs
	s.subs = make(map[int64]*entry)
	s.m.Unlock()

	for sid, e := range subs {
		e.sub.MarkConnClosed()
		s.log.Infof("connection closed: subject => %s, sid => %d", e.sub.Subject(), sid)
	}
}
