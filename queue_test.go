package nsub

import (
	"fmt"
	"testing"

	"github.com/matryer/is"
)

func TestQueue(t *testing.T) {
	asrt := is.New(t)

	t.Run("fifo", func(t *testing.T) {
		asrt := asrt.New(t)
		q := newQueue()

		for i := 0; i < 10; i++ {
			q.push(&Msg{Subject: fmt.Sprint(i)})
		}
		asrt.Equal(q.len(), 10)

		for i := 0; i < 10; i++ {
			m, ok := q.pop()
			asrt.True(ok)
			asrt.Equal(m.Subject, fmt.Sprint(i))
		}
		_, ok := q.pop()
		asrt.True(!ok)
		asrt.Equal(q.len(), 0)
	})

	t.Run("interleaved with compaction", func(t *testing.T) {
		asrt := asrt.New(t)
		q := newQueue()

		var next, expect int
		for round := 0; round < 50; round++ {
			for i := 0; i < 7; i++ {
				q.push(&Msg{Subject: fmt.Sprint(next)})
				next++
			}
			for i := 0; i < 5; i++ {
				m, ok := q.pop()
				asrt.True(ok)
				asrt.Equal(m.Subject, fmt.Sprint(expect))
				expect++
			}
		}
		asrt.Equal(q.len(), next-expect)

		for q.len() > 0 {
			m, _ := q.pop()
			asrt.Equal(m.Subject, fmt.Sprint(expect))
			expect++
		}
		asrt.Equal(expect, next)
	})

	t.Run("signals", func(t *testing.T) {
		asrt := asrt.New(t)
		q := newQueue()

		q.push(&Msg{})
		q.push(&Msg{})
		<-q.ready

		_, _ = q.pop()
		select {
		case <-q.ready:
		default:
			asrt.Fail() // remaining item must keep the ready token
		}

		_, _ = q.pop()
		select {
		case <-q.empty:
		default:
			asrt.Fail() // draining the queue must signal empty
		}
	})
}
