package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/md-rashed-zaman/slotengine/libs/config"
	"github.com/md-rashed-zaman/slotengine/libs/db"
	"github.com/md-rashed-zaman/slotengine/libs/httpx"
	"github.com/md-rashed-zaman/slotengine/libs/kafkax"
	otelx "github.com/md-rashed-zaman/slotengine/libs/otel"
	"github.com/md-rashed-zaman/slotengine/libs/runtime"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/engine"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/handlers"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/notify"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/reservations"
	"github.com/md-rashed-zaman/slotengine/services/availability-service/internal/storage"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "availability-service")
	port, err := config.Port("PORT", "8084")
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

	redisAddr, err := config.RequiredString("REDIS_ADDR")
	if err != nil {
		panic(err)
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: config.String("REDIS_PASSWORD", ""),
		DB:       config.Int("REDIS_DB", 0),
	})
	defer func() { _ = rdb.Close() }()

	eventTypes := storage.NewEventTypeRepository(pool)
	users := storage.NewUserRepository(pool)
	schedules := storage.NewScheduleRepository(pool)
	bookings := storage.NewBookingRepository(pool)
	ooo := storage.NewOutOfOfficeRepository(pool)
	reservationStore := reservations.NewStore(rdb, logger)

	opts := []engine.Option{}
	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	publisher := notify.NewPublisher(kafkaBrokers, logger)
	if publisher != nil {
		defer func() { _ = publisher.Close() }()
		opts = append(opts, engine.WithNotifier(publisher))
	} else {
		logger.Warn("empty-availability notifications disabled (no kafka brokers configured)")
	}

	eng := engine.New(eventTypes, users, schedules, bookings, ooo, reservationStore, logger, opts...)
	slotsHandler := handlers.NewSlotsHandler(eng, logger)

	checks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
		{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	}
	if kafkaBrokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}
	mux := runtime.NewBaseMuxWithReady(checks...)
	mux.HandleFunc("/api/v1/slots", slotsHandler.Get)

	rateLimiter := httpx.NewRedisRateLimiter(rdb,
		config.Int("RATE_LIMIT", 120),
		config.Duration("RATE_LIMIT_WINDOW", time.Minute),
		"slots")

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: splitCSV(config.String("CORS_ALLOWED_ORIGINS", "")),
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		rateLimiter.Middleware(logger, true),
		httpx.WithTimeout(20*time.Second),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "availability")

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

func splitCSV(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
