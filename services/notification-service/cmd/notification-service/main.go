package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"bookly/libs/config"
	"bookly/libs/db"
	"bookly/libs/httpx"
	"bookly/libs/kafkax"
	otelx "bookly/libs/otel"
	"bookly/libs/runtime"
	"bookly/services/notification-service/internal/consumer"
	"bookly/services/notification-service/internal/email"
	"bookly/services/notification-service/internal/handlers"
	"bookly/services/notification-service/internal/inbox"
	"bookly/services/notification-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8085")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	inboxRepo := inbox.NewRepository(pool)
	notificationsRepo := storage.NewRepository(pool)

	var emailSender email.Sender
	smtpHost := config.String("SMTP_HOST", "")
	if smtpHost != "" {
		emailSender = email.NewSMTPSender(
			smtpHost,
			config.String("SMTP_PORT", "1025"),
			config.String("SMTP_FROM", "no-reply@bookly.local"),
		)
	} else {
		logger.Warn("no SMTP_HOST configured; client email disabled")
		emailSender = email.NoopSender{}
	}

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notification-service")
	startConsumer := func(topic string, handler consumer.Handler) {
		if strings.TrimSpace(topic) == "" {
			return
		}
		c := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
		}, handler)
		go c.Run(ctx)
	}
	startConsumer(config.String("KAFKA_CREATED_TOPIC", "booking.appointment.created.v1"), handleCreated(logger, notificationsRepo, emailSender))
	startConsumer(config.String("KAFKA_STATUS_TOPIC", "booking.appointment.status_changed.v1"), handleStatusChanged(logger, notificationsRepo, emailSender))

	handler := handlers.New(notificationsRepo)
	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	mux.HandleFunc("/api/v1/notifications", handler.List)
	mux.HandleFunc("/api/v1/notifications/read", handler.MarkRead)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
