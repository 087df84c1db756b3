package nats

import (
	"github.com/nats-io/nats.go"
	"github.com/tehsphinx/nsub/pubsub"
)

// Publisher returns a NATS wrapper implementing the pubsub.Publisher interface.
func Publisher(nats *nats.Conn) pubsub.Publisher {
	return &publisher{nats: nats}
}

type publisher struct {
	nats *nats.Conn
}

// Publish implements the pubsub.Publisher interface.
func (s *publisher) Publish(msg pubsub.Message) error {
	return s.nats.PublishMsg(&nats.Msg{
		Subject: msg.Subject,
		Reply:   msg.Reply,
		Header:  msg.Header,
		Data:    msg.Data,
	})
}

// Flush implements the pubsub.Publisher interface.
func (s *publisher) Flush() error {
	return s.nats.Flush()
}
