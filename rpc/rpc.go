// Package rpc carries protobuf payloads over nsub subscriptions and maps the nsub
// errors onto gRPC status codes, so services fronting a subscription can answer
// with a proper status.
package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/tehsphinx/nsub"
	"github.com/tehsphinx/nsub/pubsub"
	spb "google.golang.org/genproto/googleapis/rpc/status"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
)

// Code returns the gRPC code for err.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}

	switch {
	case errors.Is(err, nsub.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, nsub.ErrInvalidArg):
		return codes.InvalidArgument
	case errors.Is(err, nsub.ErrBadSubscription):
		return codes.FailedPrecondition
	case errors.Is(err, nsub.ErrConnectionClosed), errors.Is(err, nsub.ErrConnectionDraining):
		return codes.Unavailable
	}
	return codes.Unknown
}

// Status converts err to a gRPC status. A nil error yields an OK status.
func Status(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	if st, ok := status.FromError(err); ok {
		return st
	}
	return status.New(Code(err), err.Error())
}

// Encode marshals v into a message payload.
func Encode(v proto.Message) ([]byte, error) {
	return proto.Marshal(v)
}

// Decode unmarshals the payload of m into target.
func Decode(m *nsub.Msg, target proto.Message) error {
	if r := proto.Unmarshal(m.Data, target); r != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", m.Subject, r)
	}
	return nil
}

// Next retrieves the next message of sub and decodes it into target.
func Next(ctx context.Context, sub *nsub.Subscription, target proto.Message) (*nsub.Msg, error) {
	m, err := sub.NextMsgContext(ctx)
	if err != nil {
		return nil, err
	}
	return m, Decode(m, target)
}

// EncodeError marshals err as a google.rpc.Status payload.
func EncodeError(err error) ([]byte, error) {
	return proto.Marshal(Status(err).Proto())
}

// DecodeError unmarshals a google.rpc.Status payload back into an error.
// An OK status decodes to nil.
func DecodeError(data []byte) error {
	var st spb.Status
	if r := proto.Unmarshal(data, &st); r != nil {
		return fmt.Errorf("unable to unmarshal error: %w", r)
	}
	return status.ErrorProto(&st)
}

// Reply answers a request message with the outcome of handling it, encoded as a
// google.rpc.Status payload. A nil err replies with an OK status. Messages without
// a reply subject are ignored.
func Reply(pub pubsub.Publisher, m *nsub.Msg, err error) error {
	if m.Reply == "" {
		return nil
	}

	data, r := EncodeError(err)
	if r != nil {
		return fmt.Errorf("unable to marshal reply status: %w", r)
	}
	return pub.Publish(pubsub.Message{
		Subject: m.Reply,
		Data:    data,
	})
}
