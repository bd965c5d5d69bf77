package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/Max3uc3Planz/lcdt-back/internal/invoices"
	"github.com/Max3uc3Planz/lcdt-back/internal/notifier"
	"github.com/Max3uc3Planz/lcdt-back/pkg/config"
	"github.com/Max3uc3Planz/lcdt-back/pkg/db"
	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
	"github.com/Max3uc3Planz/lcdt-back/pkg/mailer"
	"github.com/Max3uc3Planz/lcdt-back/pkg/outbox/idempotency"
	"github.com/Max3uc3Planz/lcdt-back/pkg/pdf"
	"github.com/Max3uc3Planz/lcdt-back/pkg/pubsub"
	"github.com/Max3uc3Planz/lcdt-back/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "notifier-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "notifier-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer redisClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	pdfClient, err := pdf.NewClient(cfg.PDF)
	requireResource(ctx, logg, "pdf renderer", err)

	invoiceSvc, err := invoices.NewService(pdfClient, cfg.PDF)
	requireResource(ctx, logg, "invoice service", err)

	mailClient, err := mailer.NewClient(cfg.Mailer)
	requireResource(ctx, logg, "mailer", err)

	idemManager, err := idempotency.NewManager(redisClient, cfg.Outbox.IdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	orderRepo := notifier.NewRepository(dbClient.DB())
	orderConsumer, err := notifier.NewConsumer(
		orderRepo,
		invoiceSvc,
		mailClient,
		idemManager,
		pubsubClient.OrdersSubscription(),
		logg,
	)
	requireResource(ctx, logg, "order consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env": cfg.App.Env,
	})
	logg.Info(runCtx, "notifier worker ready")

	if err := orderConsumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "notifier worker not working", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
