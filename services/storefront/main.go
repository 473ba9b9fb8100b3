package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/chainfit/storefront/cart"
	"github.com/chainfit/storefront/coordinator"
	"github.com/chainfit/storefront/gateway"
	"github.com/chainfit/storefront/ledger"
	"github.com/chainfit/storefront/views"
)

func main() {
	// Initialize OpenTelemetry
	tp, err := initTracer()
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	mp, err := initMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Printf("Error shutting down meter: %v", err)
		}
	}()

	// Initialize cart persistence
	dbPool, err := initDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbPool.Close()

	// Initialize dependencies
	wallet := ledger.NewStaticWallet(getEnv("WALLET_ADDRESS", ""))
	if !wallet.Connected() {
		log.Fatalf("WALLET_ADDRESS is required")
	}

	client := ledger.NewHTTPClient(getEnv("LEDGER_URL", "http://ledger-gateway:8545"))
	cache := initCache()
	readGateway := gateway.New(client, cache)

	cartStore := cart.NewStore(context.Background(), cart.NewPostgresPersister(dbPool, wallet.Address()))

	catalogView := views.NewCatalogView(readGateway)
	ordersView := views.NewOrdersView(readGateway)

	txCoordinator := coordinator.New(client, wallet)
	txCoordinator.OnConfirmed(func(ctx context.Context, keys ...gateway.QueryKey) {
		readGateway.Invalidate(ctx, keys...)
	})

	// Periodic freshness for order status updates done by the admin;
	// must be stopped so the recurring work does not outlive the server
	refreshInterval := getDurationEnv("REFRESH_INTERVAL", 30*time.Second)
	refresher := gateway.NewRefresher(refreshInterval, func() {
		readGateway.Invalidate(context.Background(),
			gateway.KeyAllOrders, gateway.UserOrdersKey(wallet.Address()))
	})
	defer refresher.Stop()

	tracer := tp.Tracer("storefront")
	useCase := NewStorefrontUseCase(cartStore, catalogView, ordersView, txCoordinator, wallet)
	handler := NewStorefrontHandler(useCase, tracer)

	// Setup Gin router
	r := gin.Default()
	r.Use(otelgin.Middleware("storefront"))

	// Health check
	r.GET("/health", handler.HealthCheck)

	// Catalog
	r.GET("/api/products", handler.ListProducts)

	// Cart
	r.GET("/api/cart", handler.GetCart)
	r.POST("/api/cart/items", handler.AddCartItem)
	r.PATCH("/api/cart/items/:id", handler.UpdateCartItem)
	r.DELETE("/api/cart/items/:id", handler.RemoveCartItem)
	r.DELETE("/api/cart", handler.ClearCart)

	// Checkout and buyer orders
	r.POST("/api/checkout", handler.Checkout)
	r.GET("/api/orders", handler.MyOrders)

	// Admin (owner-gated)
	r.POST("/api/admin/products", handler.AddProduct)
	r.PUT("/api/admin/products/:id/stock", handler.UpdateStock)
	r.PUT("/api/admin/products/:id", handler.UpdateProduct)
	r.GET("/api/admin/orders", handler.AllOrders)
	r.PUT("/api/admin/orders/:id/status", handler.UpdateOrderStatus)
	r.GET("/api/admin/balance", handler.Balance)
	r.POST("/api/admin/withdraw", handler.Withdraw)

	port := getEnv("PORT", "8080")
	log.Printf("🚀 Storefront listening on port %s | Wallet: %s", port, wallet.Address())

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // checkout aguarda a confirmação do ledger
		IdleTimeout:  30 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func initDB() (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable&pool_max_conns=25&pool_min_conns=5",
		getEnv("DATABASE_USER", "root"),
		getEnv("DATABASE_PASSWORD", "pass"),
		getEnv("DATABASE_HOST", "localhost"),
		getEnv("DATABASE_PORT", "5432"),
		getEnv("DATABASE_NAME", "storefront_db"),
	)

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Wait for database to be ready
	for i := 0; i < 30; i++ {
		if err := pool.Ping(ctx); err == nil {
			log.Println("✅ Connected to cart database with connection pool")
			return pool, ensureSchema(ctx, pool)
		}
		log.Printf("⏳ Waiting for database... (%d/30)", i+1)
		time.Sleep(1 * time.Second)
	}

	pool.Close()
	return nil, fmt.Errorf("failed to connect to database after 30 attempts")
}

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS carts (
			namespace  TEXT NOT NULL,
			owner      TEXT NOT NULL,
			items      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (namespace, owner)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure carts table: %w", err)
	}
	return nil
}

// initCache escolhe o cache de consultas: Redis quando configurado,
// memória local caso contrário
func initCache() gateway.Cache {
	ttl := getDurationEnv("QUERY_CACHE_TTL", 5*time.Minute)

	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		cache, err := gateway.NewRedisCache(addr, getEnv("REDIS_PASSWORD", ""), 0, ttl)
		if err != nil {
			log.Printf("⚠️ Redis unavailable, falling back to in-memory cache: %v", err)
			return gateway.NewMemoryCache(ttl)
		}
		log.Println("✅ Connected to Redis query cache")
		return cache
	}
	return gateway.NewMemoryCache(ttl)
}

func initTracer() (*sdktrace.TracerProvider, error) {
	ctx := context.Background()

	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(otlpEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(getEnv("SERVICE_NAME", "storefront")),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	otel.SetTracerProvider(tp)

	return tp, nil
}

func initMetrics() (*sdkmetric.MeterProvider, error) {
	ctx := context.Background()

	otlpEndpoint := getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")

	exporter, err := otlpmetrichttp.New(ctx,
		otlpmetrichttp.WithEndpoint(otlpEndpoint),
		otlpmetrichttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(getEnv("SERVICE_NAME", "storefront")),
			semconv.ServiceVersion("1.0.0"),
		),
	)
	if err != nil {
		return nil, err
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	return mp, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		log.Printf("⚠️ Invalid duration for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}
