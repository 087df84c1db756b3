package nsub

import "sync"

// compactAt is the number of consumed slots after which the backing slice is compacted.
const compactAt = 64

// queue is an unbounded FIFO of received messages. It never blocks the producer.
// Waiters select on ready, which holds a token while items may be available, and on
// empty, which is signalled whenever a pop leaves the queue empty.
type queue struct {
	mu    sync.Mutex
	items []*Msg
	head  int

	ready chan struct{}
	empty chan struct{}
}

func newQueue() *queue {
	return &queue{
		ready: make(chan struct{}, 1),
		empty: make(chan struct{}, 1),
	}
}

func (q *queue) push(m *Msg) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.mu.Unlock()

	signal(q.ready)
}

// pop removes the head of the queue without blocking.
func (q *queue) pop() (*Msg, bool) {
	q.mu.Lock()
	if q.head == len(q.items) {
		q.mu.Unlock()
		return nil, false
	}

	m := q.items[q.head]
	q.items[q.head] = nil
	q.head++

	remaining := len(q.items) - q.head
	switch {
	case remaining == 0:
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactAt && q.head*2 >= len(q.items):
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	q.mu.Unlock()

	// pass the token on so another waiter picks up the rest
	if remaining > 0 {
		signal(q.ready)
	} else {
		signal(q.empty)
	}
	return m, true
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items) - q.head
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
