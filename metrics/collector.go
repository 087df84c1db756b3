// Package metrics exports subscription statistics to Prometheus.
package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tehsphinx/nsub"
)

const (
	defaultNamespace = "nsub"
	subsystem        = "subscription"
)

var labels = []string{"subject", "queue", "sid"}

// Collector implements prometheus.Collector for a set of tracked subscriptions.
// Statistics are read at scrape time. Closed subscriptions are reported one last
// time and then forgotten.
type Collector struct {
	mu   sync.Mutex
	subs map[*nsub.Subscription]struct{}

	pendingMsgs     *prometheus.Desc
	pendingBytes    *prometheus.Desc
	maxPendingMsgs  *prometheus.Desc
	maxPendingBytes *prometheus.Desc
	queued          *prometheus.Desc
	delivered       *prometheus.Desc
	dropped         *prometheus.Desc
	slow            *prometheus.Desc

	slowConsumers *prometheus.CounterVec
}

// Compile-time assertion that Collector implements prometheus.Collector.
var _ prometheus.Collector = (*Collector)(nil)

// New creates a collector. The namespace defaults to "nsub" if empty.
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = defaultNamespace
	}
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, labels, nil)
	}

	return &Collector{
		subs: make(map[*nsub.Subscription]struct{}),

		pendingMsgs:     desc("pending_messages", "Messages buffered and not yet consumed."),
		pendingBytes:    desc("pending_bytes", "Payload bytes buffered and not yet consumed."),
		maxPendingMsgs:  desc("max_pending_messages", "High-water mark of buffered messages."),
		maxPendingBytes: desc("max_pending_bytes", "High-water mark of buffered bytes."),
		queued:          desc("queued_messages", "Messages currently in the delivery queue."),
		delivered:       desc("delivered_total", "Messages handed to consumers."),
		dropped:         desc("dropped_total", "Messages dropped by pending limits or queue depth."),
		slow:            desc("slow", "1 if the last delivery attempt was dropped."),

		slowConsumers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "slow_consumer_events_total",
			Help:      "Slow consumer notifications by subject.",
		}, []string{"subject", "queue"}),
	}
}

// Track adds sub to the set of exported subscriptions.
func (c *Collector) Track(sub *nsub.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.subs[sub] = struct{}{}
}

// Untrack removes sub from the set of exported subscriptions.
func (c *Collector) Untrack(sub *nsub.Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.subs, sub)
}

// ObserveSlowConsumer counts a slow consumer notification. It implements the
// SlowConsumerObserver of the nats connection wrapper.
func (c *Collector) ObserveSlowConsumer(sub *nsub.Subscription) {
	c.slowConsumers.WithLabelValues(sub.Subject(), sub.Queue()).Inc()
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.pendingMsgs
	ch <- c.pendingBytes
	ch <- c.maxPendingMsgs
	ch <- c.maxPendingBytes
	ch <- c.queued
	ch <- c.delivered
	ch <- c.dropped
	ch <- c.slow
	c.slowConsumers.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for sub := range c.subs {
		st := sub.Stats()
		lv := []string{st.Subject, st.Queue, strconv.FormatInt(st.SID, 10)}

		ch <- prometheus.MustNewConstMetric(c.pendingMsgs, prometheus.GaugeValue, float64(st.PendingMsgs), lv...)
		ch <- prometheus.MustNewConstMetric(c.pendingBytes, prometheus.GaugeValue, float64(st.PendingBytes), lv...)
		ch <- prometheus.MustNewConstMetric(c.maxPendingMsgs, prometheus.GaugeValue, float64(st.MaxPendingMsgs), lv...)
		ch <- prometheus.MustNewConstMetric(c.maxPendingBytes, prometheus.GaugeValue, float64(st.MaxPendingBytes), lv...)
		ch <- prometheus.MustNewConstMetric(c.queued, prometheus.GaugeValue, float64(st.Queued), lv...)
		ch <- prometheus.MustNewConstMetric(c.delivered, prometheus.CounterValue, float64(st.Delivered), lv...)
		ch <- prometheus.MustNewConstMetric(c.dropped, prometheus.CounterValue, float64(st.Dropped), lv...)
		ch <- prometheus.MustNewConstMetric(c.slow, prometheus.GaugeValue, boolToFloat(st.Slow), lv...)

		if !st.Valid {
			delete(c.subs, sub)
		}
	}

	c.slowConsumers.Collect(ch)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
