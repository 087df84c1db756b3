// Package pubsub defines the transport facing interfaces used to create nsub
// subscriptions. The `nats` sub package implements them for NATS.
package pubsub

import (
	"github.com/tehsphinx/nsub"
)

// Subscriber creates subscriptions. An empty queue subscribes without a queue group.
type Subscriber interface {
	Subscribe(subject, queue string, opts ...nsub.Option) (*nsub.Subscription, error)
	Flush() error
}
