package pubsub

// Publisher publishes messages to a subject.
type Publisher interface {
	Publish(msg Message) error
	Flush() error
}
