package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jcmexdev/storefront-checkout/internal/checkout/infra/adapters/cart"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/infra/adapters/gateway"
	"github.com/jcmexdev/storefront-checkout/internal/checkout/infra/httpx"
	"github.com/jcmexdev/storefront-checkout/internal/coordinator"
	auditsqlite "github.com/jcmexdev/storefront-checkout/internal/coordinator/checkoutlog/sqlite"
	"github.com/jcmexdev/storefront-checkout/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront-checkout/internal/storage/sqlite"
)

func main() {
	serviceName := getEnv("OTEL_SERVICE_NAME", "checkout-service")
	telemetry.InitLogger(serviceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, serviceName)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	store, err := sqlite.Open(getEnv("CHECKOUT_DB_PATH", "./data/checkout.db"))
	if err != nil {
		slog.Error("failed to open checkout store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	audit, err := auditsqlite.Open(getEnv("CHECKOUT_AUDIT_DB_PATH", "./data/checkout_audit.db"))
	if err != nil {
		slog.Error("failed to open checkout audit log", "error", err)
		os.Exit(1)
	}
	defer audit.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: getEnv("REDIS_ADDR", "redis-cache:6379"),
	})
	defer redisClient.Close()
	carts := cart.NewRedisCart(redisClient)

	flw := gateway.NewFlutterwave(gateway.Config{
		BaseURL:   getEnv("FLW_BASE_URL", "https://api.flutterwave.com/v3"),
		SecretKey: os.Getenv("FLW_SECRET_KEY"),
	}, getEnv("FLW_CURRENCY", "NGN"))

	paystackCfg := gateway.Config{
		BaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		SecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
	}
	selector := gateway.NewSelector(
		flw,
		gateway.NewPaystack(paystackCfg, "mobile_money"),
		gateway.NewPaystack(paystackCfg, "bank_transfer"),
		gateway.NewCashOnDelivery(),
	)

	callbackURL := getEnv("SITE_URL", "http://localhost:8080") + "/payments/callback"
	orchestrator := coordinator.NewOrchestrator(store, carts, selector, audit, callbackURL)

	handler := httpx.NewHandler(orchestrator, store)
	router := httpx.NewRouter(handler)

	addr := ":" + getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("checkout service running", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
