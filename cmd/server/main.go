package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	appcart "github.com/craveup/leclerc-storefront/internal/application/cart"
	appmenu "github.com/craveup/leclerc-storefront/internal/application/menu"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/cache"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/config"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/event"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/logger"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/storefront"
	"github.com/craveup/leclerc-storefront/internal/infrastructure/telemetry"
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/handler"
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/middleware"
	"github.com/craveup/leclerc-storefront/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const instrumentationName = "github.com/craveup/leclerc-storefront"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	// Money values are JSON numbers in every response
	decimal.MarshalJSONWithoutQuotes = true

	ctx := context.Background()

	// Telemetry: traces, metrics and log export are each off unless enabled
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsExportInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
		Level:             logger.ParseLevel(cfg.Telemetry.LogsLevel),
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log = loggerProvider.Bridge(log)

	log.Info("Starting storefront API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Session stores: Redis when enabled and reachable, memory otherwise
	factoryOpts := []cache.StoreFactoryOption{
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Redis.Required),
	}
	if cfg.Redis.Enabled {
		factoryOpts = append(factoryOpts, cache.WithRedis(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	}
	storeFactory := cache.NewStoreFactory(cache.StoreOptions{
		KeyPrefix:   cfg.Redis.KeyPrefix,
		IdentityTTL: cfg.Session.IdentityTTL,
		TokenTTL:    cfg.Session.TokenTTL,
	}, factoryOpts...)
	stores, err := storeFactory.CreateStores()
	if err != nil {
		log.Fatal("Failed to create session stores", zap.Error(err))
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Error closing session stores", zap.Error(err))
		}
	}()

	// Storefront API client. Without an API key the server still starts;
	// the product proxy answers 500 and carts report errors.
	storefrontConfig := storefront.Config{
		APIKey:         cfg.Storefront.APIKey,
		BaseURL:        cfg.Storefront.BaseURL,
		TimeoutSeconds: cfg.Storefront.TimeoutSeconds,
		MockFallback:   cfg.Storefront.MockFallback,
	}
	var api *storefront.API
	var products handler.ProductLister
	if storefrontConfig.Configured() {
		client, err := storefront.NewClient(storefrontConfig,
			storefront.WithTokenSource(stores.Tokens),
			storefront.WithLogger(log),
			storefront.WithTracer(tracerProvider.Tracer(instrumentationName)),
			storefront.WithMeter(meterProvider.Meter(instrumentationName)),
		)
		if err != nil {
			log.Fatal("Failed to create storefront client", zap.Error(err))
		}
		api = storefront.NewAPI(client)
		products = api
	} else {
		log.Warn("Storefront API key or base URL not configured")
		api = storefront.NewAPI(nil)
	}

	// Menu service
	menuService := appmenu.NewService(api,
		appmenu.WithCache(stores.Menus, cfg.Menu.CacheTTL),
		appmenu.WithDefaultLocation(cfg.Storefront.LocationID),
		appmenu.WithLogger(log),
	)

	// Event bus and notification inbox
	eventBus := event.NewInMemoryEventBus(log)
	inbox := event.NewToastInbox(event.DefaultInboxCapacity)
	eventBus.Subscribe(inbox)
	log.Info("Event handlers registered", zap.Strings("toast_inbox_events", inbox.EventTypes()))

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Cart sessions
	registry := appcart.NewRegistry(appcart.RegistryConfig{
		LocationID:        cfg.Storefront.LocationID,
		FulfillmentMethod: cfg.Storefront.FulfillmentMethod,
		IdleTimeout:       cfg.Session.IdleTimeout,
		CleanupInterval:   cfg.Session.CleanupInterval,
		OnEvict:           inbox.Forget,
	}, appcart.Dependencies{
		API:        api,
		Identities: stores.Identities,
		Notifier:   event.NewBusNotifier(eventBus, log),
		Logger:     log,
	})

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Products: handler.NewProductsHandler(products),
		Menu:     handler.NewMenuHandler(menuService),
		Cart:     handler.NewCartHandler(registry, menuService, inbox),
		Session:  handler.NewSessionHandler(stores.Tokens),
		System: handler.NewSystemHandler(handler.SystemStatus{
			Version:      version,
			StoreBackend: stores.Backend,
			Configured:   storefrontConfig.Configured(),
			MockFallback: storefrontConfig.MockFallback,
			Sessions:     registry.Len,
		}),
	}

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. Recovery - Catch panics
	// 2. RequestID - Generate/propagate request ID
	// 3. CORS - Answer preflights before anything else runs
	// 4. Session - Identify the shopper
	// 5. Logger - Log requests with request and session ids
	// 6. Tracing - Server span, tagged with the ids
	// 7. Metrics - Request counters and latency
	// 8. Security - Add security headers
	// 9. BodyLimit - Limit request body size
	// 10. RateLimit - Per-session rate limiting (if enabled)
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.Session(middleware.SessionConfig{
		CookieName: cfg.Session.CookieName,
		Domain:     cfg.Session.CookieDomain,
		Secure:     cfg.Session.CookieSecure,
		SameSite:   cfg.Session.CookieSameSite,
		MaxAge:     cfg.Session.CookieMaxAge,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     tracerProvider.IsEnabled(),
	}))
	engine.Use(middleware.SpanAttributes())
	engine.Use(middleware.HTTPMetrics(meterProvider.Meter(instrumentationName)))

	securityConfig := middleware.DefaultSecurityConfig()
	securityConfig.HSTSEnabled = cfg.Session.CookieSecure
	engine.Use(middleware.SecureWithConfig(securityConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	var rateLimiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Setup routes
	for _, group := range router.Mount(engine, handlers) {
		log.Debug("Routes registered",
			zap.String("group", group.Name()),
			zap.Int("routes", len(group.Routes())),
		)
	}

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if rateLimiter != nil {
		rateLimiter.Stop()
	}
	if err := registry.Close(); err != nil {
		log.Error("Error closing cart sessions", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Error("Error stopping event bus", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down tracer provider", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down meter provider", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Error shutting down logger provider", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
