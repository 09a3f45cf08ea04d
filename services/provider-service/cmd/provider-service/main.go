package main

import (
	"context"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"bookly/libs/config"
	"bookly/libs/db"
	"bookly/libs/httpx"
	otelx "bookly/libs/otel"
	"bookly/libs/runtime"
	"bookly/services/provider-service/internal/avatars"
	"bookly/services/provider-service/internal/handlers"
	"bookly/services/provider-service/internal/postal"
	"bookly/services/provider-service/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "provider-service")
	port, err := config.Port("PORT", "8082")
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

	repo := storage.NewRepository(pool)
	postalClient := postal.NewClient(config.String("VIACEP_BASE_URL", postal.DefaultBaseURL))

	var avatarStore *avatars.Store
	bucket := config.String("AVATAR_BUCKET", "")
	if bucket != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			logger.Error("aws config load failed; avatar uploads disabled", "err", err)
			avatarStore = avatars.NewStore(nil, "", "", logger)
		} else {
			avatarStore = avatars.NewStore(
				s3.NewFromConfig(awsCfg),
				bucket,
				config.String("AVATAR_PUBLIC_URL", ""),
				logger,
			)
		}
	} else {
		avatarStore = avatars.NewStore(nil, "", "", logger)
	}

	handler := handlers.New(repo, postalClient, avatarStore, logger)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
	)
	mux.HandleFunc("/api/v1/provider/profile", handler.Profile)
	mux.HandleFunc("/api/v1/provider/avatar", handler.Avatar)
	mux.HandleFunc("/api/v1/provider/services", handler.Services)
	mux.HandleFunc("/api/v1/provider/cep", handler.LookupCep)
	mux.HandleFunc("/api/v1/public/providers", handler.ListProviders)
	mux.HandleFunc("/api/v1/public/provider", handler.GetProvider)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "provider")
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
