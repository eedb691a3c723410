package queue

import "context"

type ctxKey string

// RequestIDKey carries the inbound request id into published events.
const RequestIDKey ctxKey = "request_id"

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	return nil
}
func (NoopPub) Close() error { return nil }

// Event payloads. Account ids are the opaque hex strings the identity
// service issues.

type UserRegistered struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Token  string `json:"token"` // verification token for the mail link
}

type UserSignedIn struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type UserNotified struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
