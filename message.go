package nsub

// Msg is a message received on a subscription.
type Msg struct {
	Subject string
	Reply   string
	Header  map[string][]string
	Data    []byte

	// Sub is the subscription the message was delivered to.
	Sub *Subscription
}

// Size returns the payload size accounted against the pending bytes limit.
func (m *Msg) Size() int {
	return len(m.Data)
}
