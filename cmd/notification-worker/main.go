package main

import (
	"context"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/eventia/internal/config"
	notifapp "github.com/dmehra2102/eventia/internal/notification/application"
	notifkafka "github.com/dmehra2102/eventia/internal/notification/infrastructure/kafka"
	"github.com/dmehra2102/eventia/internal/notification/infrastructure/smtp"
	orderapp "github.com/dmehra2102/eventia/internal/order/application"
	orderpg "github.com/dmehra2102/eventia/internal/order/infrastructure/postgres"
	platformpg "github.com/dmehra2102/eventia/internal/platform/postgres"
	"github.com/dmehra2102/eventia/pkg/clock"
	"github.com/dmehra2102/eventia/pkg/idempotency"
	"github.com/dmehra2102/eventia/pkg/logging"
	"github.com/dmehra2102/eventia/pkg/shutdown"
	"github.com/dmehra2102/eventia/pkg/tracing"
)

func main() {
	cfg, err := config.Load("notification-worker", os.Args[1:])
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "eventia-notification-worker", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	pool, err := platformpg.Open(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
		os.Exit(1)
	}
	idem := idempotency.NewStore(rdb, 24*time.Hour)

	loc, err := time.LoadLocation(cfg.Mail.TimeZone)
	if err != nil {
		log.Error("invalid mail time zone", "time_zone", cfg.Mail.TimeZone, "err", err)
		os.Exit(1)
	}
	mailer, err := smtp.NewMailer(log, smtp.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	})
	if err != nil {
		log.Error("mailer init failed", "err", err)
		os.Exit(1)
	}
	renderer, err := notifapp.NewRenderer()
	if err != nil {
		log.Error("email templates failed to parse", "err", err)
		os.Exit(1)
	}

	orders := orderapp.NewService(orderpg.NewRepository(log, pool), clock.Real())
	dispatcher := notifapp.NewDispatcher(log, orders, mailer, renderer, notifapp.WithLocation(loc))

	reader := notifkafka.NewReader(cfg.KafkaBrokers, cfg.ResendTopic, "eventia-notification-worker")
	consumer := notifkafka.NewConsumer(log, reader, dispatcher, idem)

	log.Info("notification worker started", "topic", cfg.ResendTopic)
	if err := consumer.Run(ctx); err != nil {
		log.Error("consumer stopped", "err", err)
		os.Exit(1)
	}
	log.Info("notification worker shutdown complete")
}
