package nsub_test

import (
	"errors"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/tehsphinx/nsub"
)

func TestPendingLimits(t *testing.T) {
	asrt := is.New(t)

	t.Run("defaults", func(t *testing.T) {
		asrt := asrt.New(t)
		sub := newFakeConn().subscribe("a.b")

		msgs, bytes, err := sub.PendingLimits()
		asrt.NoErr(err)
		asrt.Equal(msgs, nsub.DefaultPendingMsgsLimit)
		asrt.Equal(bytes, int64(nsub.DefaultPendingBytesLimit))
	})

	t.Run("zero is rejected", func(t *testing.T) {
		asrt := asrt.New(t)
		sub := newFakeConn().subscribe("a.b")
		asrt.NoErr(sub.SetPendingLimits(10, 1000))

		err := sub.SetPendingLimits(0, 100)
		asrt.True(errors.Is(err, nsub.ErrInvalidArg))
		err = sub.SetPendingLimits(100, 0)
		asrt.True(errors.Is(err, nsub.ErrInvalidArg))
		err = sub.SetPendingMsgsLimit(0)
		asrt.True(errors.Is(err, nsub.ErrInvalidArg))
		err = sub.SetPendingBytesLimit(0)
		asrt.True(errors.Is(err, nsub.ErrInvalidArg))

		msgs, err := sub.PendingMsgsLimit()
		asrt.NoErr(err)
		asrt.Equal(msgs, 10)
		bytes, err := sub.PendingBytesLimit()
		asrt.NoErr(err)
		asrt.Equal(bytes, int64(1000))
	})

	t.Run("negative means unlimited", func(t *testing.T) {
		asrt := asrt.New(t)
		sub := newFakeConn().subscribe("a.b")
		asrt.NoErr(sub.SetPendingLimits(-1, -1))

		for i := 0; i < 1000; i++ {
			asrt.True(sub.Deliver(msg(i)))
		}
		asrt.Equal(sub.Dropped(), int64(0))
	})

	t.Run("zero option keeps default", func(t *testing.T) {
		asrt := asrt.New(t)
		sub := newFakeConn().subscribe("a.b", nsub.WithPendingLimits(0, 0))

		msgs, bytes, err := sub.PendingLimits()
		asrt.NoErr(err)
		asrt.Equal(msgs, nsub.DefaultPendingMsgsLimit)
		asrt.Equal(bytes, int64(nsub.DefaultPendingBytesLimit))
	})

	t.Run("closed subscription", func(t *testing.T) {
		asrt := asrt.New(t)
		sub := newFakeConn().subscribe("a.b")
		asrt.True(sub.Deliver(msg(0)))
		sub.Close()

		_, _, err := sub.PendingLimits()
		asrt.True(errors.Is(err, nsub.ErrBadSubscription))
		err = sub.SetPendingLimits(1, 1)
		asrt.True(errors.Is(err, nsub.ErrBadSubscription))

		// statistics keep their last values
		asrt.Equal(sub.PendingMsgs(), 1)
		asrt.Equal(sub.MaxPendingMsgs(), 1)
	})

	t.Run("no connection", func(t *testing.T) {
		asrt := asrt.New(t)
		sub := nsub.New(nil, 1, "a.b", "")

		_, _, err := sub.PendingLimits()
		asrt.True(errors.Is(err, nsub.ErrBadSubscription))
		asrt.True(!sub.IsValid())
	})
}

func TestConnClosed(t *testing.T) {
	asrt := is.New(t)
	sub := newFakeConn().subscribe("a.b")
	sub.MarkConnClosed()

	asrt.True(!sub.IsValid())
	_, _, err := sub.PendingLimits()
	asrt.True(errors.Is(err, nsub.ErrConnectionClosed))
	_, err = sub.NextMsg(10 * time.Millisecond)
	asrt.True(errors.Is(err, nsub.ErrConnectionClosed))
	asrt.True(errors.Is(sub.Unsubscribe(), nsub.ErrConnectionClosed))
}

func TestStats(t *testing.T) {
	asrt := is.New(t)
	conn := newFakeConn()
	sub := conn.subscribe("a.b", nsub.WithPendingLimits(2, -1))

	asrt.True(sub.Deliver(msg(0)))
	asrt.True(sub.Deliver(msg(1)))
	asrt.True(!sub.Deliver(msg(2)))
	_, err := sub.NextMsg(time.Second)
	asrt.NoErr(err)

	st := sub.Stats()
	asrt.Equal(st.SID, sub.SID())
	asrt.Equal(st.Subject, "a.b")
	asrt.Equal(st.Queue, "")
	asrt.Equal(st.PendingMsgs, 1)
	asrt.Equal(st.PendingBytes, int64(len(msg(0).Data)))
	asrt.Equal(st.MaxPendingMsgs, 2)
	asrt.Equal(st.PendingMsgsLimit, 2)
	asrt.Equal(st.PendingBytesLimit, int64(-1))
	asrt.Equal(st.Queued, 1)
	asrt.Equal(st.Delivered, int64(1))
	asrt.Equal(st.Dropped, int64(1))
	asrt.Equal(st.Received, int64(2))
	asrt.True(st.Slow)
	asrt.True(st.Valid)
}
