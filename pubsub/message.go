package pubsub

// Message defines a pubsub message.
type Message struct {
	Subject string
	Reply   string
	Header  map[string][]string
	Data    []byte
}
