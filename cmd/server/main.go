package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"github.com/chargegrid/chargegrid/internal/adapter/cache"
	"github.com/chargegrid/chargegrid/internal/adapter/http/fiber/middleware"
	"github.com/chargegrid/chargegrid/internal/adapter/queue"
	"github.com/chargegrid/chargegrid/internal/adapter/storage/memory"
	"github.com/chargegrid/chargegrid/internal/adapter/storage/postgres"
	"github.com/chargegrid/chargegrid/internal/adapter/vault"
	wsAdapter "github.com/chargegrid/chargegrid/internal/adapter/websocket"
	"github.com/chargegrid/chargegrid/internal/observability/telemetry"
	"github.com/chargegrid/chargegrid/internal/ports"
	"github.com/chargegrid/chargegrid/internal/service/auth"
	"github.com/chargegrid/chargegrid/internal/service/email"
	"github.com/chargegrid/chargegrid/internal/service/health"
	"github.com/chargegrid/chargegrid/internal/service/payment"
	"github.com/chargegrid/chargegrid/internal/service/reservation"
	"github.com/chargegrid/chargegrid/internal/service/session"
	"github.com/chargegrid/chargegrid/internal/service/station"
	"github.com/chargegrid/chargegrid/internal/service/status"
	"github.com/chargegrid/chargegrid/internal/service/tariff"
	"github.com/chargegrid/chargegrid/internal/service/vehicle"
	"github.com/chargegrid/chargegrid/pkg/config"
)

// repositories groups the storage ports so the postgres and in-memory
// adapters can be swapped behind one struct.
type repositories struct {
	stations     ports.StationRepository
	reservations ports.ReservationRepository
	sessions     ports.SessionRepository
	tariffs      ports.TariffRepository
	payments     ports.PaymentRepository
	users        ports.UserRepository
	vehicles     ports.VehicleRepository
	statuses     ports.StatusRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration: ", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatal("failed to initialize logger: ", err)
	}
	defer logger.Sync()

	logger.Info("starting chargegrid",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	if err := loadVaultSecrets(cfg, logger); err != nil {
		logger.Fatal("failed to load secrets from vault", zap.Error(err))
	}

	if cfg.OpenTelemetry.Enabled {
		tp, err := telemetry.InitTracer(cfg.App.Name, cfg.App.Version, cfg.OpenTelemetry.JaegerEndpoint)
		if err != nil {
			logger.Fatal("failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				logger.Error("error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	healthSvc := health.NewService(cfg.App.Version, logger)

	repos, db, err := newRepositories(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize storage", zap.Error(err))
	}
	if db != nil {
		defer postgres.Close(db)
		healthSvc.RegisterChecker("database", health.PingChecker("database", func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}))
	}

	appCache := newCache(cfg, logger)
	defer appCache.Close()
	healthSvc.RegisterChecker("cache", health.PingChecker("cache", func(ctx context.Context) error {
		return appCache.Ping()
	}))

	messageQueue, err := newQueue(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to message queue", zap.Error(err))
	}
	if messageQueue != nil {
		defer messageQueue.Close()
	}
	events := queue.NewEventPublisher(messageQueue, logger)

	var emailSvc ports.EmailService
	if cfg.Notification.Email.Enabled {
		svc, err := email.NewService(cfg.Notification.Email, logger)
		if err != nil {
			logger.Fatal("failed to initialize email service", zap.Error(err))
		}
		emailSvc = svc
	}

	// The status registry must resolve every lifecycle slot before the
	// server accepts traffic.
	registry := status.NewRegistry(repos.statuses, cfg.StatusCache.TTL, logger)
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	if err := registry.Validate(startupCtx); err != nil {
		cancelStartup()
		logger.Fatal("reservation status table is incomplete", zap.Error(err))
	}
	cancelStartup()

	tokens := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessTokenDuration, appCache, logger)
	authSvc := auth.NewService(repos.users, tokens, logger)
	stationSvc := station.NewService(repos.stations, appCache, logger)
	tariffSvc := tariff.NewService(repos.tariffs, repos.stations, logger)
	reservationSvc := reservation.NewService(
		repos.reservations, repos.stations, repos.users, registry, emailSvc, events, cfg.Reservation, logger)
	sessionSvc := session.NewService(
		repos.sessions, repos.stations, repos.tariffs, repos.vehicles, repos.users, emailSvc, events, logger)
	paymentSvc := payment.NewService(repos.payments, repos.sessions, repos.vehicles, repos.users, logger)
	vehicleSvc := vehicle.NewService(repos.vehicles, logger)

	hub := wsAdapter.NewHub(logger)
	if messageQueue != nil {
		if err := hub.SubscribeEvents(messageQueue); err != nil {
			logger.Fatal("failed to subscribe websocket hub", zap.Error(err))
		}
	}
	go hub.Run()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
		ReadTimeout:           cfg.HTTP.ReadTimeout,
		WriteTimeout:          cfg.HTTP.WriteTimeout,
		IdleTimeout:           cfg.HTTP.IdleTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(middleware.NewCORS(cfg.HTTP.AllowedOrigins))
	app.Use(middleware.CircuitBreaker(logger))

	health.NewHandler(healthSvc).RegisterRoutes(app)

	if cfg.Prometheus.Enabled {
		metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
		app.Get(cfg.Prometheus.Path, func(c *fiber.Ctx) error {
			metricsHandler(c.Context())
			return nil
		})
	}

	authRequired := middleware.AuthRequired(authSvc)
	adminOnly := middleware.AdminOnly()

	auth.NewHandler(authSvc).RegisterRoutes(app)
	station.NewHandler(stationSvc).RegisterRoutes(app, authRequired, adminOnly)
	tariff.NewHandler(tariffSvc).RegisterRoutes(app, authRequired, adminOnly)
	reservation.NewHandler(reservationSvc).RegisterRoutes(app, authRequired)
	session.NewHandler(sessionSvc).RegisterRoutes(app, authRequired)
	payment.NewHandler(paymentSvc).RegisterRoutes(app, authRequired)
	vehicle.NewHandler(vehicleSvc).RegisterRoutes(app, authRequired)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/updates", websocket.New(func(c *websocket.Conn) {
		hub.AddClient(c, c.Query("user_id", "guest"))
	}))

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go runReservationSweep(sweepCtx, reservationSvc, logger)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		logger.Info("http server listening", zap.String("addr", addr))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.App.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	if level, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
		zapCfg.Level = zap.NewAtomicLevelAt(level)
	}
	return zapCfg.Build()
}

// loadVaultSecrets replaces the database URL and JWT secret with values
// from Vault when a Vault address is configured.
func loadVaultSecrets(cfg *config.Config, logger *zap.Logger) error {
	if cfg.Vault.Address == "" {
		return nil
	}

	sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
	if err != nil {
		return err
	}
	dbURL, err := sm.GetDatabaseURL()
	if err != nil {
		return err
	}
	jwtSecret, err := sm.GetJWTSecret()
	if err != nil {
		return err
	}

	cfg.Database.URL = dbURL
	cfg.JWT.Secret = jwtSecret
	logger.Info("loaded secrets from vault", zap.String("address", cfg.Vault.Address))
	return nil
}

func newRepositories(cfg *config.Config, logger *zap.Logger) (*repositories, *gorm.DB, error) {
	if cfg.Database.Memory {
		logger.Warn("using in-memory storage, data will not survive restarts")
		store := memory.NewStore()
		return &repositories{
			stations:     store.Stations(),
			reservations: store.Reservations(),
			sessions:     store.Sessions(),
			tariffs:      store.Tariffs(),
			payments:     store.Payments(),
			users:        store.Users(),
			vehicles:     store.Vehicles(),
			statuses:     store.Statuses(),
		}, nil, nil
	}

	db, err := postgres.NewConnection(
		cfg.Database.URL,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
		logger,
	)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			return nil, nil, err
		}
	}

	return &repositories{
		stations:     postgres.NewStationRepository(db, logger),
		reservations: postgres.NewReservationRepository(db, logger),
		sessions:     postgres.NewSessionRepository(db, logger),
		tariffs:      postgres.NewTariffRepository(db),
		payments:     postgres.NewPaymentRepository(db),
		users:        postgres.NewUserRepository(db),
		vehicles:     postgres.NewVehicleRepository(db),
		statuses:     postgres.NewStatusRepository(db),
	}, db, nil
}

func newCache(cfg *config.Config, logger *zap.Logger) ports.Cache {
	if cfg.Redis.Enabled {
		c, err := cache.NewRedisCache(cfg.Redis.URL, logger)
		if err == nil {
			return c
		}
		logger.Warn("redis unavailable, falling back to local cache", zap.Error(err))
	}
	return cache.NewLocalCache(time.Minute, logger)
}

func newQueue(cfg *config.Config, logger *zap.Logger) (queue.MessageQueue, error) {
	switch cfg.Queue.Driver {
	case "nats":
		return queue.NewNATSQueue(cfg.Queue.NATSURL, logger)
	case "rabbitmq":
		return queue.NewRabbitMQQueue(cfg.Queue.RabbitMQURL, logger)
	case "":
		logger.Info("message queue disabled, domain events will not be published")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown queue driver: %s", cfg.Queue.Driver)
	}
}

// runReservationSweep closes expired reservations in the background so
// stale rows release their slots even when nobody books.
func runReservationSweep(ctx context.Context, svc ports.ReservationService, logger *zap.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := svc.SweepExpired(ctx); err != nil {
				logger.Warn("background reservation sweep failed", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
