package main

import (
	"context"
	"encoding/json"
	"fmt"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/tazhibayda/wallet-service/internal/config"
	"github.com/tazhibayda/wallet-service/internal/log"
	"github.com/tazhibayda/wallet-service/internal/mail"
	"github.com/tazhibayda/wallet-service/internal/queue"
)

// The notifier turns wallet.events into user-visible mail: verification
// links for user.registered, alert popup texts for user.notified.
func main() {
	cfg := config.LoadNotifier()

	if _, err := log.Init(false); err != nil {
		stdlog.Fatalf("log init: %v", err)
	}
	defer log.Sync()

	cons, err := queue.NewConsumer(cfg.RabbitURL, cfg.Exchange, cfg.Queue, cfg.BindKey)
	if err != nil {
		stdlog.Fatalf("rabbit consumer init failed: %v", err)
	}
	defer cons.Close()

	sender := &mail.Sender{From: "no-reply@wallet.local"}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("notifier up. exchange=%s queue=%s key=%s workers=%d",
		cfg.Exchange, cfg.Queue, cfg.BindKey, cfg.Concurrency)

	if err := cons.Consume(ctx, cfg.Concurrency, func(key string, body []byte) error {
		switch key {
		case "user.registered":
			var ev queue.UserRegistered
			if err := json.Unmarshal(body, &ev); err != nil {
				return nil // malformed event, do not requeue
			}
			return sender.Send(ev.Email, "Verify your account",
				fmt.Sprintf("Confirm your email: /api/auth/verify?token=%s", ev.Token))
		case "user.notified":
			var ev queue.UserNotified
			if err := json.Unmarshal(body, &ev); err != nil {
				return nil
			}
			log.Infof("[ALERT] %s: %s", ev.Title, ev.Message)
			return nil
		default:
			log.Infof("event %s: %s", key, string(body))
			return nil
		}
	}); err != nil {
		stdlog.Fatalf("consumer stopped: %v", err)
	}
}
