package nsub

import (
	"log"

	"go.uber.org/zap"
)

// Logger receives the lifecycle and slow consumer events of subscriptions.
type Logger interface {
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
}

var (
	_ Logger = noopLogger{}
	_ Logger = StandardLogger{}
	_ Logger = (*ZapLogger)(nil)
)

// noopLogger discards everything. It is the default of New.
type noopLogger struct{}

func (noopLogger) Info(...interface{})           {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Error(...interface{})          {}
func (noopLogger) Errorf(string, ...interface{}) {}

// StandardLogger writes to the standard library's default logger. Errors are not
// distinguished from informational lines.
type StandardLogger struct{}

// Info logs args with log.Println.
func (StandardLogger) Info(args ...interface{}) {
	log.Println(args...)
}

// Infof logs with log.Printf.
func (StandardLogger) Infof(format string, args ...interface{}) {
	log.Printf(format, args...)
}

// Error logs args with log.Println.
func (l StandardLogger) Error(args ...interface{}) {
	l.Info(args...)
}

// Errorf logs with log.Printf.
func (l StandardLogger) Errorf(format string, args ...interface{}) {
	l.Infof(format, args...)
}

// ZapLogger implements the Logger interface on top of a zap sugared logger.
type ZapLogger struct {
	log *zap.SugaredLogger
}

// NewZapLogger wraps the given zap logger. A nil logger falls back to zap.NewNop.
func NewZapLogger(l *zap.Logger) *ZapLogger {
	if l == nil {
		l = zap.NewNop()
	}
	return &ZapLogger{log: l.Sugar()}
}

// Info logs at info level.
func (z *ZapLogger) Info(args ...interface{}) {
	z.log.Info(args...)
}

// Infof logs a formatted line at info level.
func (z *ZapLogger) Infof(format string, args ...interface{}) {
	z.log.Infof(format, args...)
}

// Error logs at error level.
func (z *ZapLogger) Error(args ...interface{}) {
	z.log.Error(args...)
}

// Errorf logs a formatted line at error level.
func (z *ZapLogger) Errorf(format string, args ...interface{}) {
	z.log.Errorf(format, args...)
}
