package nats

import (
	"time"

	"github.com/tehsphinx/nsub"
)

const (
	defaultSlowConsumerLogInterval = 5 * time.Second
	drainPollInterval              = 10 * time.Millisecond
)

// SlowConsumerObserver is notified about every dropped message.
type SlowConsumerObserver interface {
	ObserveSlowConsumer(sub *nsub.Subscription)
}

// Option defines an option for configuring the connection wrapper.
type Option func(opt *options)

func getOptions(opts []Option) options {
	opt := options{
		logger:          nsub.StandardLogger{},
		slowLogInterval: defaultSlowConsumerLogInterval,
	}

	for _, o := range opts {
		o(&opt)
	}
	return opt
}

type options struct {
	logger          nsub.Logger
	slowLogInterval time.Duration
	observers       []SlowConsumerObserver
	subOpts         []nsub.Option
}

// WithLogger sets the logger for the connection and its subscriptions.
func WithLogger(log nsub.Logger) Option {
	return func(opt *options) {
		opt.logger = log
	}
}

// WithSlowConsumerLogInterval throttles slow consumer log lines to one per interval.
func WithSlowConsumerLogInterval(d time.Duration) Option {
	return func(opt *options) {
		opt.slowLogInterval = d
	}
}

// WithSlowConsumerObserver registers an observer for dropped messages,
// e.g. a *metrics.Collector.
func WithSlowConsumerObserver(o SlowConsumerObserver) Option {
	return func(opt *options) {
		opt.observers = append(opt.observers, o)
	}
}

// WithSubscriptionOptions sets options applied to every subscription before the
// options passed to Subscribe.
func WithSubscriptionOptions(opts ...nsub.Option) Option {
	return func(opt *options) {
		opt.subOpts = append(opt.subOpts, opts...)
	}
}
