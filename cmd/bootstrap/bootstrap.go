package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"appointment-scheduler/config"
	deliveryHttp "appointment-scheduler/internal/delivery/http"
	"appointment-scheduler/internal/delivery/http/handler"
	"appointment-scheduler/internal/delivery/http/middleware"
	"appointment-scheduler/internal/domain/entity"
	"appointment-scheduler/internal/domain/provider"
	"appointment-scheduler/internal/infrastructure/cache"
	"appointment-scheduler/internal/infrastructure/database"
	"appointment-scheduler/internal/infrastructure/messaging"
	"appointment-scheduler/internal/repository"
	"appointment-scheduler/internal/service"
	"appointment-scheduler/internal/usecase"
	"appointment-scheduler/pkg/jwt"
	"appointment-scheduler/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	dispatcher  *service.EventDispatcher
	localLocker *service.LocalSlotLocker
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg}

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	if cfg.DB.AutoMigrate {
		if err := Migrate(cfg, func(m *database.Migrator) error { return m.Up() }); err != nil {
			app.Close()
			return nil, err
		}
		logrus.Info("Database migrations applied")
	}

	// Initialize Redis
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		app.RedisClient = redisClient
		logrus.Info("Redis connected successfully")
	}

	// Initialize all layers
	server, err := app.initializeServer()
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Server = server

	return app, nil
}

// SetupLogger configures the logrus logger
func SetupLogger(level string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

// Migrate opens a migrator against the configured database and runs fn with it.
func Migrate(cfg *config.Config, fn func(*database.Migrator) error) error {
	migrator, err := database.NewMigrator(database.MigrationURL(cfg.DB))
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logrus.Warnf("Failed to close migrator: %+v", err)
		}
	}()

	if err := fn(migrator); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (app *App) newSlotLocker(log *logrus.Logger) provider.SlotLocker {
	schedule := app.Config.Schedule
	if schedule.LockDriver == config.LockDriverRedis {
		return service.NewRedisSlotLocker(app.RedisClient, log, schedule.LockTTL, schedule.LockWait)
	}

	app.localLocker = service.NewLocalSlotLocker(log, schedule.LockWait)
	return app.localLocker
}

func (app *App) newEventPublisher() (provider.EventPublisher, error) {
	notification := app.Config.Notification
	switch notification.Driver {
	case config.NotifyDriverRedis:
		return messaging.NewRedisPublisher(app.RedisClient, notification.RedisChannel), nil
	case config.NotifyDriverRabbitMQ:
		publisher, err := messaging.NewAMQPPublisher(notification.AMQPURI, notification.AMQPExchange)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		return publisher, nil
	default:
		return messaging.NewLogPublisher(), nil
	}
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer() (*http.Server, error) {
	cfg := app.Config
	db := app.DB

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize notification dispatch
	publisher, err := app.newEventPublisher()
	if err != nil {
		return nil, err
	}
	app.dispatcher = service.NewEventDispatcher(publisher, log, cfg.Notification.BufferSize, cfg.Notification.Workers, cfg.Notification.PublishTimeout)

	// Initialize repositories
	appointmentRepo := repository.NewAppointmentRepository(db)
	doctorRepo := repository.NewCachedDoctorRepository(repository.NewDoctorRepository(db), cfg.Schedule.DoctorCacheSize, cfg.Schedule.DoctorCacheTTL)
	patientRepo := repository.NewPatientRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	transactor := database.NewGormTransactor(db)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	locker := app.newSlotLocker(log)

	defaults := cfg.Schedule.DefaultWorkingHours()
	loc := cfg.App.Location
	graph := entity.StatusGraph{AllowReopen: cfg.Schedule.AllowReopen}

	// Initialize usecases
	availabilityUsecase := usecase.NewAvailabilityUsecase(log, doctorRepo, appointmentRepo, defaults, loc)
	schedulerUsecase := usecase.NewAppointmentSchedulerUsecase(log, transactor, appointmentRepo, doctorRepo, patientRepo, auditService, locker, app.dispatcher, defaults, loc)
	statusUsecase := usecase.NewAppointmentStatusUsecase(log, transactor, appointmentRepo, auditService, app.dispatcher, graph, loc)
	auditLogUsecase := usecase.NewAuditLogUsecase(log, auditLogRepo, appointmentRepo)

	// Initialize handlers
	appointmentHandler := handler.NewAppointmentHandler(schedulerUsecase, statusUsecase, customValidator)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, app.RedisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSAllowedOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(appointmentHandler, availabilityHandler, auditLogHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s, timezone: %s", app.Config.App.Env, app.Config.App.Location)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close drains pending notifications, then closes the lock sweeper, Redis and the database.
func (app *App) Close() {
	if app.dispatcher != nil {
		app.dispatcher.Stop()
	}

	if app.localLocker != nil {
		app.localLocker.Stop()
	}

	// Close Redis connection
	if app.RedisClient != nil {
		if err := app.RedisClient.Close(); err != nil {
			logrus.Warnf("Failed to close Redis: %+v", err)
		}
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
