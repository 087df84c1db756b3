package nsub

// Deliver is called by the owning connection for every message addressed to this
// subscription. It never blocks and reports whether the message was buffered.
// Rejections are not errors: they are counted as drops and reported to the
// connection as a slow consumer.
func (s *Subscription) Deliver(m *Msg) bool {
	if m == nil {
		return false
	}
	m.Sub = s
	return s.recordArrival(m, s.depth)
}

// recordArrival checks the message against the limits before it is counted, so a
// rejected message never shows up in the pending counters or the maxima.
func (s *Subscription) recordArrival(m *Msg, depth int) bool {
	size := int64(m.Size())

	s.mu.Lock()
	msgs := s.pMsgs.Load() + 1
	bytes := s.pBytes.Load() + size

	if (s.pMsgsLimit > 0 && msgs > int64(s.pMsgsLimit)) ||
		(s.pBytesLimit > 0 && bytes > s.pBytesLimit) {
		s.mu.Unlock()
		s.handleSlowConsumer(m)
		return false
	}
	if s.state == stateClosed {
		s.mu.Unlock()
		return false
	}
	if depth > 0 && s.q.len() >= depth {
		s.mu.Unlock()
		s.handleSlowConsumer(m)
		return false
	}

	msgs = s.pMsgs.Add(1)
	bytes = s.pBytes.Add(size)
	if int(msgs) > s.pMsgsMax {
		s.pMsgsMax = int(msgs)
	}
	if bytes > s.pBytesMax {
		s.pBytesMax = bytes
	}
	s.received.Add(1)
	s.q.push(m)
	s.mu.Unlock()

	s.slow.Store(false)
	return true
}

func (s *Subscription) handleSlowConsumer(m *Msg) {
	dropped := s.dropped.Add(1)
	if !s.slow.Swap(true) {
		s.log.Errorf("slow consumer: subject => %s, sid => %d: dropping messages (dropped => %d)",
			s.subject, s.sid, dropped)
	}

	if conn := s.connection(); conn != nil {
		conn.ReportSlowConsumer(s)
	}
}

// recordDelivery accounts a message handed to a consumer and returns the new
// delivered total.
func (s *Subscription) recordDelivery(m *Msg) int64 {
	s.pMsgs.Add(-1)
	s.pBytes.Add(-int64(m.Size()))
	return s.delivered.Add(1)
}
