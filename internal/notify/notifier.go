// Package notify is the alert capability the gateway reports failures
// through. The mobile client rendered these as popups; here they go to the
// event queue (cmd/notifier delivers them) or straight to the log.
package notify

import (
	"context"

	"go.uber.org/zap"
)

type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

type Noop struct{}

func (Noop) Notify(ctx context.Context, title, message string) error { return nil }

// LogNotifier writes notifications to the service log only.
type LogNotifier struct{ Log *zap.Logger }

func (n LogNotifier) Notify(ctx context.Context, title, message string) error {
	n.Log.Warn("user notification", zap.String("title", title), zap.String("message", message))
	return nil
}
