package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthcare-booking-api/config"
	deliveryHttp "healthcare-booking-api/internal/delivery/http"
	"healthcare-booking-api/internal/delivery/http/handler"
	"healthcare-booking-api/internal/delivery/http/middleware"
	"healthcare-booking-api/internal/infrastructure/cache"
	"healthcare-booking-api/internal/infrastructure/database"
	"healthcare-booking-api/internal/repository"
	"healthcare-booking-api/internal/service"
	"healthcare-booking-api/internal/usecase"
	"healthcare-booking-api/pkg/jwt"
	"healthcare-booking-api/pkg/validator"

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

	bookingUsecase *usecase.BookingUsecase
	sweepStop      chan struct{}
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{sweepStop: make(chan struct{})}

	setupLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db

	if err := database.Migrate(db, cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient

	app.Server = app.initializeServer(cfg, db, redisClient)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer wires every layer and returns the HTTP server
func (app *App) initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *http.Server {
	jwtService := jwt.NewJWTService(cfg.JWT)
	customValidator := validator.NewValidator()
	log := logrus.StandardLogger()

	// Repositories
	appointmentRepo := repository.NewAppointmentRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	clinicRepo := repository.NewClinicRepository(db)
	userRepo := repository.NewUserRepository(db)
	prescriptionRepo := repository.NewPrescriptionRepository(db)

	// Services
	slotLocker := service.NewRedisSlotLocker(redisClient, cfg.Booking.SlotLockTTL)

	// Without gateway credentials (local dev) bookings auto-approve payment
	// through the noop gateway.
	paymentService := service.NewPaymentService(cfg.Payment, log)
	if cfg.Payment.KeyID == "" {
		paymentService = service.NewNoopPaymentService(log)
	}
	notificationService := service.NewNotificationService(redisClient, log)
	doctorCache := service.NewDoctorCacheService(redisClient, log)

	// Usecases
	bookingUsecase := usecase.NewBookingUsecase(
		appointmentRepo, doctorRepo, clinicRepo,
		slotLocker, paymentService, notificationService, doctorCache,
		log, cfg.Booking,
	)
	availabilityUsecase := usecase.NewAvailabilityUsecase(appointmentRepo, doctorRepo, clinicRepo, doctorCache, log, cfg.Booking)
	authUsecase := usecase.NewAuthUsecase(log, userRepo, doctorRepo, jwtService, redisClient)
	doctorUsecase := usecase.NewDoctorUsecase(log, doctorRepo, clinicRepo, doctorCache)
	clinicUsecase := usecase.NewClinicUsecase(log, clinicRepo, doctorCache)
	prescriptionUsecase := usecase.NewPrescriptionUsecase(log, prescriptionRepo, appointmentRepo, notificationService)

	app.bookingUsecase = bookingUsecase

	// Handlers
	authHandler := handler.NewAuthHandler(authUsecase, jwtService, customValidator)
	bookingHandler := handler.NewBookingHandler(bookingUsecase, customValidator)
	availabilityHandler := handler.NewAvailabilityHandler(availabilityUsecase)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, bookingUsecase, customValidator)
	clinicHandler := handler.NewClinicHandler(clinicUsecase, bookingUsecase, customValidator)
	prescriptionHandler := handler.NewPrescriptionHandler(prescriptionUsecase, bookingUsecase, customValidator)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(redisClient, log, cfg.Booking.RateLimitPerMinute)

	router := deliveryHttp.NewRouter(
		authHandler, bookingHandler, availabilityHandler,
		doctorHandler, clinicHandler, prescriptionHandler,
		authMiddleware, corsMiddleware, rateLimitMiddleware,
	)
	httpRouter := router.Setup()

	return &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.App.Port),
		Handler: httpRouter,
	}
}

// Run starts the HTTP server, the no-show sweep, and handles graceful
// shutdown.
func (app *App) Run() {
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	go app.runNoShowSweep()

	app.waitForShutdown()
}

// runNoShowSweep periodically flips stale waiting appointments to NO_SHOW.
func (app *App) runNoShowSweep() {
	ticker := time.NewTicker(app.Config.Booking.NoShowSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			swept, err := app.bookingUsecase.SweepNoShows(ctx)
			cancel()
			if err != nil {
				logrus.Errorf("No-show sweep failed: %v", err)
				continue
			}
			if swept > 0 {
				logrus.Infof("No-show sweep marked %d appointments", swept)
			}
		case <-app.sweepStop:
			return
		}
	}
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	close(app.sweepStop)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
