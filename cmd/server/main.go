package main

import (
	"context"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/tazhibayda/wallet-service/internal/config"
	"github.com/tazhibayda/wallet-service/internal/gateway"
	api "github.com/tazhibayda/wallet-service/internal/http"
	"github.com/tazhibayda/wallet-service/internal/identity"
	"github.com/tazhibayda/wallet-service/internal/log"
	"github.com/tazhibayda/wallet-service/internal/metrics"
	"github.com/tazhibayda/wallet-service/internal/notify"
	"github.com/tazhibayda/wallet-service/internal/queue"
	"github.com/tazhibayda/wallet-service/internal/repo"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(cfg.Prod)
	if err != nil {
		stdlog.Fatalf("log init: %v", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		stdlog.Fatalf("mongo connect: %v", err)
	}
	defer store.Close(context.Background())

	if err := store.EnsureAccountIndexes(ctx); err != nil {
		stdlog.Fatalf("account indexes: %v", err)
	}
	if err := store.EnsureRefreshIndexes(ctx); err != nil {
		stdlog.Fatalf("refresh indexes: %v", err)
	}
	if err := store.EnsureEmailTokenIndexes(ctx); err != nil {
		stdlog.Fatalf("email token indexes: %v", err)
	}

	rds := repo.NewRedis(cfg.RedisAddr)
	defer rds.Close()

	pub, err := queue.NewRabbit(cfg.RabbitURL, cfg.Exchange)
	if err != nil {
		logger.Warn("rabbit unavailable, events disabled", zap.Error(err))
		pub = queue.NewNoop()
	}
	defer pub.Close()

	metrics.MustRegister()

	ids := identity.New(store, cfg.JWTSecret, cfg.RefreshTTLDays, pub, cfg.Exchange, logger)
	gw := gateway.New(ids, store.Docs(), notify.NewQueue(pub, cfg.Exchange), logger)
	h := api.NewHandler(gw, ids, store, rds, cfg.JWTSecret, cfg.RateLimitPerMin)
	r := api.NewRouter(h)

	srvErr := make(chan error, 1)
	go func() { srvErr <- r.Run(":" + cfg.Port) }()

	logger.Info("wallet-service listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}
}
