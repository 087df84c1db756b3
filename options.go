package nsub

// Option defines an option for configuring a subscription.
type Option func(opt *options)

func getOptions(opts []Option) options {
	opt := options{
		logger:     noopLogger{},
		msgsLimit:  DefaultPendingMsgsLimit,
		bytesLimit: DefaultPendingBytesLimit,
	}

	for _, o := range opts {
		o(&opt)
	}
	return opt
}

type options struct {
	logger     Logger
	msgsLimit  int
	bytesLimit int64
	queueDepth int
}

// WithLogger sets the logger for the subscription.
func WithLogger(log Logger) Option {
	return func(opt *options) {
		if log == nil {
			return
		}
		opt.logger = log
	}
}

// WithPendingLimits sets the initial pending limits. Negative values disable a limit.
// A zero value keeps the corresponding default since zero is not a valid limit.
func WithPendingLimits(msgs int, bytes int64) Option {
	return func(opt *options) {
		if msgs != 0 {
			opt.msgsLimit = msgs
		}
		if bytes != 0 {
			opt.bytesLimit = bytes
		}
	}
}

// WithQueueDepth caps the number of buffered messages independently of the pending
// limits. Deliveries arriving at a full queue are dropped. Zero or negative disables it.
func WithQueueDepth(n int) Option {
	return func(opt *options) {
		opt.queueDepth = n
	}
}
