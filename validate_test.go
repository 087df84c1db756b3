package nsub_test

import (
	"testing"

	"github.com/matryer/is"
	"github.com/tehsphinx/nsub"
)

func TestIsValidSubject(t *testing.T) {
	tests := []struct {
		subject string
		want    bool
	}{
		{subject: "a.b.c", want: true},
		{subject: "a", want: true},
		{subject: "orders.*.created", want: true},
		{subject: "orders.>", want: true},
		{subject: "a..b", want: false},
		{subject: ".a.b", want: false},
		{subject: "a.b.", want: false},
		{subject: "", want: false},
		{subject: "a b", want: false},
		{subject: "a.\tb", want: false},
		{subject: "a.\x00", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.subject, func(t *testing.T) {
			asrt := is.New(t)
			asrt.Equal(nsub.IsValidSubject(tt.subject), tt.want)
		})
	}
}

func TestIsValidPrefix(t *testing.T) {
	tests := []struct {
		prefix string
		want   bool
	}{
		{prefix: "a.b.", want: true},
		{prefix: "a.", want: true},
		{prefix: "a.b", want: false},
		{prefix: ".a.", want: false},
		{prefix: "", want: false},
		{prefix: "a b.", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			asrt := is.New(t)
			asrt.Equal(nsub.IsValidPrefix(tt.prefix), tt.want)
		})
	}
}

func TestIsValidQueueGroupName(t *testing.T) {
	asrt := is.New(t)

	asrt.True(nsub.IsValidQueueGroupName("workers"))
	asrt.True(nsub.IsValidQueueGroupName("workers.eu"))
	asrt.True(!nsub.IsValidQueueGroupName(""))
	asrt.True(!nsub.IsValidQueueGroupName("work ers"))
	asrt.True(!nsub.IsValidQueueGroupName("workers\n"))
}
