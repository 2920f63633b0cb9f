package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	checkoutapp "github.com/dmehra2102/eventia/internal/checkout/application"
	checkouthttp "github.com/dmehra2102/eventia/internal/checkout/infrastructure/http"
	"github.com/dmehra2102/eventia/internal/checkout/infrastructure/widget"
	"github.com/dmehra2102/eventia/internal/config"
	eventapp "github.com/dmehra2102/eventia/internal/event/application"
	eventhttp "github.com/dmehra2102/eventia/internal/event/infrastructure/http"
	eventpg "github.com/dmehra2102/eventia/internal/event/infrastructure/postgres"
	notifapp "github.com/dmehra2102/eventia/internal/notification/application"
	notifhttp "github.com/dmehra2102/eventia/internal/notification/infrastructure/http"
	notifkafka "github.com/dmehra2102/eventia/internal/notification/infrastructure/kafka"
	"github.com/dmehra2102/eventia/internal/notification/infrastructure/smtp"
	orderapp "github.com/dmehra2102/eventia/internal/order/application"
	orderhttp "github.com/dmehra2102/eventia/internal/order/infrastructure/http"
	orderkafka "github.com/dmehra2102/eventia/internal/order/infrastructure/kafka"
	orderpg "github.com/dmehra2102/eventia/internal/order/infrastructure/postgres"
	paymentapp "github.com/dmehra2102/eventia/internal/payment/application"
	paymenthttp "github.com/dmehra2102/eventia/internal/payment/infrastructure/http"
	"github.com/dmehra2102/eventia/internal/payment/infrastructure/razorpay"
	platformpg "github.com/dmehra2102/eventia/internal/platform/postgres"
	userpg "github.com/dmehra2102/eventia/internal/user/infrastructure/postgres"
	"github.com/dmehra2102/eventia/pkg/clock"
	"github.com/dmehra2102/eventia/pkg/logging"
	"github.com/dmehra2102/eventia/pkg/outbox"
	"github.com/dmehra2102/eventia/pkg/shutdown"
	"github.com/dmehra2102/eventia/pkg/tracing"
)

func main() {
	cfg, err := config.Load("web", os.Args[1:])
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(2)
	}
	log := logging.New(cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "eventia-web", cfg.OTLPEndpoint, log)
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
	if err := platformpg.EnsureSchema(ctx, pool); err != nil {
		log.Error("schema bootstrap failed", "err", err)
		os.Exit(1)
	}

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

	// Kafka producer shared by the outbox relay and the resend queue.
	writer := orderkafka.NewWriter(cfg.KafkaBrokers)
	defer writer.Close()

	clk := clock.Real()
	users := userpg.NewRepository(log, pool)
	eventSvc := eventapp.NewService(eventpg.NewRepository(log, pool))
	orderSvc := orderapp.NewService(orderpg.NewRepository(log, pool), clk)
	paymentSvc := paymentapp.NewService(log, razorpay.NewClient(log, razorpay.Config{
		BaseURL:   cfg.Razorpay.BaseURL,
		KeyID:     cfg.Razorpay.KeyID,
		KeySecret: cfg.Razorpay.KeySecret,
	}), cfg.Checkout.Currency)
	dispatcher := notifapp.NewDispatcher(log, orderSvc, mailer, renderer,
		notifapp.WithLocation(loc),
		notifapp.WithResendQueue(notifkafka.NewPublisher(writer, cfg.ResendTopic)),
	)

	orchestrator := checkoutapp.NewOrchestrator(log, orderSvc, paymentSvc, dispatcher, clk,
		checkoutapp.WidgetConfig{
			Key:          cfg.Razorpay.KeyID,
			Currency:     cfg.Checkout.Currency,
			MerchantName: cfg.Checkout.MerchantName,
			ThemeColor:   cfg.Checkout.ThemeColor,
		}, cfg.Checkout.CompletionDelay)
	checkoutSvc := checkoutapp.NewService(log, eventSvc, orderSvc, orchestrator, clk)
	bridge := widget.NewBridge(cfg.Checkout.SessionTTL)

	handler := newRouter(log, pool, users,
		eventhttp.NewHandler(log, eventSvc, cfg.ServerURL),
		orderhttp.NewHandler(log, orderSvc),
		paymenthttp.NewHandler(log, paymentSvc),
		notifhttp.NewHandler(log, dispatcher, clk),
		checkouthttp.NewHandler(log, checkoutSvc, bridge,
			cfg.Checkout.SessionTTL+cfg.Checkout.CompletionDelay+time.Minute),
	)

	relay := outbox.NewRelay(log, outbox.NewPostgresStore(pool), outbox.NewDispatcher(log, writer, cfg.OutboxTopic), "eventia-web-relay")
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// confirm holds the request through both emails and the completion delay
		WriteTimeout: time.Minute,
	}
	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("eventia-web shutdown complete")
}
