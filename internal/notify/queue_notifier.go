package notify

import (
	"context"

	"github.com/tazhibayda/wallet-service/internal/metrics"
	"github.com/tazhibayda/wallet-service/internal/queue"
)

// QueueNotifier publishes notifications as user.notified events; the
// notifier worker picks them up and delivers them out-of-band.
type QueueNotifier struct {
	Events   queue.Publisher
	Exchange string
}

func NewQueue(pub queue.Publisher, exchange string) *QueueNotifier {
	return &QueueNotifier{Events: pub, Exchange: exchange}
}

func (n *QueueNotifier) Notify(ctx context.Context, title, message string) error {
	metrics.NotificationsTotal.WithLabelValues(title).Inc()
	reqID, _ := ctx.Value(queue.RequestIDKey).(string)
	return n.Events.Publish(ctx, n.Exchange, "user.notified",
		queue.UserNotified{Title: title, Message: message}, reqID)
}
