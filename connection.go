package nsub

import "time"

// Connection is the owning connection of a subscription. The subscription only keeps
// a non-owning reference to it and calls back for the operations below. The connection
// keeps its subscriptions in a sid keyed table and calls Deliver for every message
// addressed to one of them, in receipt order and from a single goroutine.
type Connection interface {
	// Unsubscribe removes interest in sid. A max > 0 defers the unsubscribe until max
	// messages have been received. Immediate unsubscribes close the subscription.
	Unsubscribe(sid int64, max int) error
	// DrainSubscription stops new deliveries to sid, waits for the buffered messages
	// to be consumed and then unsubscribes, all bounded by timeout. The returned
	// channel yields exactly one result.
	DrainSubscription(sid int64, timeout time.Duration) <-chan error
	// ReportSlowConsumer is called whenever sub drops a message.
	ReportSlowConsumer(sub *Subscription)

	IsClosed() bool
	IsDraining() bool
}
