package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/tehsphinx/nsub"
	"github.com/tehsphinx/nsub/metrics"
)

type nopConn struct{}

func (nopConn) Unsubscribe(int64, int) error { return nil }

func (nopConn) DrainSubscription(int64, time.Duration) <-chan error {
	ch := make(chan error, 1)
	ch <- nil
	return ch
}

func (nopConn) ReportSlowConsumer(*nsub.Subscription) {}
func (nopConn) IsClosed() bool                       { return false }
func (nopConn) IsDraining() bool                     { return false }

func TestCollector(t *testing.T) {
	asrt := is.New(t)

	sub := nsub.New(nopConn{}, 7, "a.b", "q", nsub.WithPendingLimits(1, -1))
	asrt.True(sub.Deliver(&nsub.Msg{Data: []byte("hello")}))
	asrt.True(!sub.Deliver(&nsub.Msg{Data: []byte("world")}))

	c := metrics.New("")
	c.Track(sub)
	c.ObserveSlowConsumer(sub)

	reg := prometheus.NewRegistry()
	asrt.NoErr(reg.Register(c))

	expected := `
# HELP nsub_subscription_dropped_total Messages dropped by pending limits or queue depth.
# TYPE nsub_subscription_dropped_total counter
nsub_subscription_dropped_total{queue="q",sid="7",subject="a.b"} 1
# HELP nsub_subscription_pending_bytes Payload bytes buffered and not yet consumed.
# TYPE nsub_subscription_pending_bytes gauge
nsub_subscription_pending_bytes{queue="q",sid="7",subject="a.b"} 5
# HELP nsub_subscription_pending_messages Messages buffered and not yet consumed.
# TYPE nsub_subscription_pending_messages gauge
nsub_subscription_pending_messages{queue="q",sid="7",subject="a.b"} 1
# HELP nsub_subscription_slow 1 if the last delivery attempt was dropped.
# TYPE nsub_subscription_slow gauge
nsub_subscription_slow{queue="q",sid="7",subject="a.b"} 1
# HELP nsub_subscription_slow_consumer_events_total Slow consumer notifications by subject.
# TYPE nsub_subscription_slow_consumer_events_total counter
nsub_subscription_slow_consumer_events_total{queue="q",subject="a.b"} 1
`
	asrt.NoErr(testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"nsub_subscription_dropped_total",
		"nsub_subscription_pending_bytes",
		"nsub_subscription_pending_messages",
		"nsub_subscription_slow",
		"nsub_subscription_slow_consumer_events_total",
	))

	t.Run("closed subscriptions are reported once", func(t *testing.T) {
		asrt := asrt.New(t)

		sub.Close()
		asrt.Equal(testutil.CollectAndCount(c, "nsub_subscription_delivered_total"), 1)
		asrt.Equal(testutil.CollectAndCount(c, "nsub_subscription_delivered_total"), 0)
	})

	t.Run("untrack", func(t *testing.T) {
		asrt := asrt.New(t)

		other := nsub.New(nopConn{}, 8, "c.d", "")
		c.Track(other)
		asrt.Equal(testutil.CollectAndCount(c, "nsub_subscription_queued_messages"), 1)
		c.Untrack(other)
		asrt.Equal(testutil.CollectAndCount(c, "nsub_subscription_queued_messages"), 0)
	})
}
