// Package nsub implements the client side of a topic based pubsub subscription.
// A Subscription buffers the messages pushed to it by a connection's read path,
// enforces pending limits, reports slow consumers and manages its own lifecycle
// (unsubscribe, auto-unsubscribe and drain).
// The connection itself is abstracted by the Connection interface. The `pubsub/nats`
// package implements it on top of github.com/nats-io/nats.go.
package nsub

import (
	"time"
)

const (
	// DefaultPendingMsgsLimit is the default number of messages a subscription buffers
	// before dropping.
	DefaultPendingMsgsLimit = 512 * 1024
	// DefaultPendingBytesLimit is the default number of payload bytes a subscription
	// buffers before dropping.
	DefaultPendingBytesLimit = 64 * 1024 * 1024
	// DefaultDrainTimeout is the drain deadline used by callers that don't specify one.
	DefaultDrainTimeout = 30 * time.Second
)

// New creates a subscription owned by conn. The sid is assigned by the connection and
// used for all calls back into it.
func New(conn Connection, sid int64, subject, queue string, opts ...Option) *Subscription {
	opt := getOptions(opts)

	return &Subscription{
		sid:     sid,
		subject: subject,
		queue:   queue,
		log:     opt.logger,
		depth:   opt.queueDepth,
		q:       newQueue(),
		done:    make(chan struct{}),

		conn:        conn,
		pMsgsLimit:  opt.msgsLimit,
		pBytesLimit: opt.bytesLimit,
	}
}
