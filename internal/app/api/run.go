package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"

	portalserver "github.com/Apurer/petcare-portal/go"
	"github.com/Apurer/petcare-portal/internal/clients/http/petcare"
	appointmentbackend "github.com/Apurer/petcare-portal/internal/domains/appointments/adapters/external/backend"
	appointmentobs "github.com/Apurer/petcare-portal/internal/domains/appointments/adapters/observability"
	appointmentapp "github.com/Apurer/petcare-portal/internal/domains/appointments/application"
	appointmentports "github.com/Apurer/petcare-portal/internal/domains/appointments/ports"
	cartcache "github.com/Apurer/petcare-portal/internal/domains/cart/adapters/cache"
	cartbackend "github.com/Apurer/petcare-portal/internal/domains/cart/adapters/external/backend"
	cartmemory "github.com/Apurer/petcare-portal/internal/domains/cart/adapters/memory"
	cartobs "github.com/Apurer/petcare-portal/internal/domains/cart/adapters/observability"
	cartpostgres "github.com/Apurer/petcare-portal/internal/domains/cart/adapters/persistence/postgres"
	cartworkflows "github.com/Apurer/petcare-portal/internal/domains/cart/adapters/workflows"
	cartapp "github.com/Apurer/petcare-portal/internal/domains/cart/application"
	cartports "github.com/Apurer/petcare-portal/internal/domains/cart/ports"
	platformobservability "github.com/Apurer/petcare-portal/internal/platform/observability"
	platformpostgres "github.com/Apurer/petcare-portal/internal/platform/postgres"
	platformredis "github.com/Apurer/petcare-portal/internal/platform/redis"
	"github.com/Apurer/petcare-portal/internal/shared/datetime"
)

const (
	serviceName     = "petcare-portal-api"
	shutdownTimeout = 10 * time.Second
)

// Run boots the portal HTTP API with observability, storage, the backend client and checkout workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	instruments, shutdown, err := InitObservability(ctx, cfg, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	backend, err := NewBackendClient(cfg)
	if err != nil {
		return err
	}
	cartService, cleanupCart := BuildCartService(ctx, cfg, instruments, backend)
	defer cleanupCart()

	var checkout cartports.CheckoutOrchestrator = cartworkflows.NewInlineCheckoutWorkflows(cartService)
	if temporalClient, err := DialTemporal(cfg, instruments, "temporal-client"); err != nil {
		logger.Warn("Temporal workflows unavailable, running inline checkout", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		checkout = cartworkflows.NewTemporalCheckoutWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := portalserver.ApiHandleFunctions{
		CartAPI:        portalserver.NewCartAPI(cartService, checkout, datetime.LocalFormatter),
		AppointmentAPI: portalserver.NewAppointmentAPI(BuildAppointmentService(instruments, backend), datetime.LocalFormatter),
	}
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           NewHandler(cfg, logger, handlers),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return serve(ctx, server, logger)
}

func serve(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("portal API listening", slog.String("addr", server.Addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("portal API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("portal API shutting down")
	return server.Shutdown(shutdownCtx)
}

// NewHandler mounts the portal routes behind recovery, tracing and access logging.
func NewHandler(cfg Config, logger *slog.Logger, handlers portalserver.ApiHandleFunctions) http.Handler {
	if cfg.Environment != "local" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(accessLog(logger))
	return portalserver.NewRouterWithGinEngine(router, handlers)
}

func accessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		attrs := []slog.Attr{
			slog.String("method", c.Request.Method),
			slog.String("route", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request.id", c.GetString(portalserver.RequestIDHeader)),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}
		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.LogAttrs(c.Request.Context(), level, "http request", attrs...)
	}
}

// InitObservability maps Config onto the observability settings.
func InitObservability(ctx context.Context, cfg Config, name string) (*platformobservability.Instruments, func(context.Context) error, error) {
	return platformobservability.Init(ctx, platformobservability.Settings{
		ServiceName:  name,
		Environment:  cfg.Environment,
		LogLevel:     cfg.LogLevel,
		OTLPEndpoint: cfg.OTLPEndpoint,
		OTLPInsecure: cfg.OTLPInsecure,
	})
}

// NewBackendClient builds the pet-care backend client from Config.
func NewBackendClient(cfg Config) (*petcare.Client, error) {
	client, err := petcare.NewClient(cfg.PetcareBaseURL,
		petcare.WithToken(cfg.PetcareToken),
		petcare.WithTimeout(cfg.PetcareTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build pet-care client: %w", err)
	}
	return client, nil
}

// CartStorage is the cart persistence chosen for this process.
type CartStorage struct {
	Repository cartports.Repository
	Journal    cartports.CheckoutJournal
	// Purger is nil for in-memory storage shared with no other process.
	Purger cartports.IdlePurger
}

// BuildCartStorage prefers Postgres and falls back to memory. A reachable Redis fronts the repository.
func BuildCartStorage(ctx context.Context, cfg Config, logger *slog.Logger) (CartStorage, func()) {
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var storage CartStorage
	db, closeDB := platformpostgres.ConnectAndMigrate(ctx, cfg.PostgresDSN, logger)
	cleanups = append(cleanups, closeDB)
	if db != nil {
		repo := cartpostgres.NewRepository(db)
		storage = CartStorage{Repository: repo, Journal: cartpostgres.NewCheckoutJournal(db), Purger: repo}
		logger.Info("cart repository configured with postgres")
	} else {
		storage = CartStorage{Repository: cartmemory.NewRepository(), Journal: cartmemory.NewCheckoutJournal()}
	}

	redisClient, closeRedis := platformredis.ConnectOptional(ctx, cfg.RedisAddr, logger)
	cleanups = append(cleanups, closeRedis)
	if redisClient != nil {
		storage = frontWithCache(storage, cartcache.NewRepository(storage.Repository, redisClient,
			cartcache.WithTTL(cfg.CartCacheTTL),
			cartcache.WithLogger(logger),
		))
	}
	return storage, cleanup
}

// frontWithCache routes reads, writes and purges through the cache so purged carts
// do not linger in Redis.
func frontWithCache(storage CartStorage, cache *cartcache.Repository) CartStorage {
	storage.Repository = cache
	if storage.Purger != nil {
		storage.Purger = cache
	}
	return storage
}

// BuildCartService wires storage, the checkout gateway and the observability decorator.
func BuildCartService(ctx context.Context, cfg Config, instruments *platformobservability.Instruments, backend *petcare.Client) (cartports.Service, func()) {
	logger := instruments.Logger
	storage, cleanup := BuildCartStorage(ctx, cfg, logger)
	core := cartapp.NewService(
		storage.Repository,
		cartbackend.NewGateway(backend, datetime.LocalFormatter),
		cartapp.WithJournal(storage.Journal),
		cartapp.WithLogger(logger),
	)
	return cartobs.New(
		core,
		cartobs.WithLogger(logger),
		cartobs.WithTracer(instruments.Tracer("internal.cart.application")),
		cartobs.WithMeter(instruments.Meter("internal.cart.application")),
	), cleanup
}

// BuildAppointmentService wires the backend directory and gateway behind the observability decorator.
func BuildAppointmentService(instruments *platformobservability.Instruments, backend *petcare.Client) appointmentports.Service {
	adapter := appointmentbackend.New(backend)
	return appointmentobs.New(
		appointmentapp.NewService(adapter, adapter),
		appointmentobs.WithLogger(instruments.Logger),
		appointmentobs.WithTracer(instruments.Tracer("internal.appointments.application")),
		appointmentobs.WithMeter(instruments.Meter("internal.appointments.application")),
	)
}

// DialTemporal connects a traced Temporal client unless Temporal is disabled.
func DialTemporal(cfg Config, instruments *platformobservability.Instruments, tracerName string) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(tracerName),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.Default()
}
