package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mytrips/service-trips/internal/application"
	"github.com/mytrips/service-trips/internal/config"
	destinationDomain "github.com/mytrips/service-trips/internal/domain/destination"
	placemarkDomain "github.com/mytrips/service-trips/internal/domain/placemark"
	tripEvents "github.com/mytrips/service-trips/internal/events"
	"github.com/mytrips/service-trips/internal/handler"
	"github.com/mytrips/service-trips/internal/location"
	"github.com/mytrips/service-trips/internal/maps"
	"github.com/mytrips/service-trips/internal/repository"
	"github.com/mytrips/service-trips/internal/repository/memory"
	"github.com/mytrips/service-trips/migrations"
	"github.com/mytrips/service-trips/pkg/auth"
	"github.com/mytrips/service-trips/pkg/database"
	"github.com/mytrips/service-trips/pkg/health"
	"github.com/mytrips/service-trips/pkg/kafka"
	"github.com/mytrips/service-trips/pkg/logger"
	"github.com/mytrips/service-trips/pkg/middleware"
)

const requestTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and Kafka consumers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// storage is the repository pair selected by the storage driver. db is nil
// for the memory driver.
type storage struct {
	db           *gorm.DB
	destinations destinationDomain.DestinationRepository
	placemarks   placemarkDomain.PlacemarkRepository
}

func runServe(parent context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, serviceName)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-trips",
		zap.String("port", cfg.Port),
		zap.String("storage", cfg.Storage.Driver),
	)

	store, err := openStorage(cfg, log)
	if err != nil {
		return err
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize maps clients
	searcher, directions, scenes := newMapsClients(cfg.Maps, log)

	// Initialize application services
	tracker := location.NewTracker()
	destinationService := application.NewDestinationService(
		store.destinations,
		store.placemarks,
		destinationDomain.ParseAxisPolicy(cfg.RegionAxisSwap),
		kafkaProducer,
		log,
	)
	placemarkService := application.NewPlacemarkService(store.placemarks, store.destinations, kafkaProducer, log)
	locationService := application.NewLocationService(tracker, log)
	sessions := application.NewSessionRegistry(application.SessionDependencies{
		Searcher:     searcher,
		Directions:   directions,
		Scenes:       scenes,
		Location:     tracker,
		Destinations: store.destinations,
		Placemarks:   store.placemarks,
		Logger:       log,
	}, cfg.Session.IdleTimeout)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sessions.Run(ctx, cfg.Session.SweepInterval)

	// Start the device location consumer when Kafka is configured
	if len(cfg.KafkaConfig.Brokers) > 0 {
		groupID := cfg.KafkaConfig.GroupPrefix + "trips-service"
		locationConsumer := tripEvents.NewLocationEventConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			locationService,
			log,
		)
		defer func() { _ = locationConsumer.Close() }()

		go func() {
			log.Info("starting device location consumer")
			if err := locationConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("device location consumer error", zap.Error(err))
			}
		}()
	}

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.Timeout(requestTimeout))

	// Register health check routes
	health.NewHandler(store.db, serviceName).RegisterRoutes(router)

	// Register routes
	handler.NewDestinationHandler(destinationService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewPlacemarkHandler(placemarkService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewLocationHandler(locationService).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewMapHandler(sessions).RegisterRoutes(&router.RouterGroup, jwtManager)
	handler.NewAdminHandler(placemarkService, destinationService, sessions).RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Graceful shutdown
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	log.Info("shutting down service-trips...")
	stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-trips stopped")
	return nil
}

func openStorage(cfg *config.ServiceConfig, log *zap.Logger) (*storage, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		mem := memory.NewStore()
		log.Warn("using in-memory storage, data is lost on restart")
		return &storage{destinations: mem.Destinations(), placemarks: mem.Placemarks()}, nil

	case config.DriverSQLite:
		db, err = database.OpenSQLite(cfg.Storage.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		if err := repository.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to run auto-migration: %w", err)
		}

	default:
		dbConfig := postgresConfig(cfg)
		db, err = database.Connect(dbConfig, log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		// Run database migrations
		if cfg.AppEnv == "development" {
			if err := repository.AutoMigrate(db); err != nil {
				return nil, fmt.Errorf("failed to run auto-migration: %w", err)
			}
			log.Info("database migration completed (dev auto-migrate)")
		} else if err := database.RunMigrations(dbConfig.DatabaseURL(), migrations.FS, log); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return &storage{
		db:           db,
		destinations: repository.NewGormDestinationRepository(db),
		placemarks:   repository.NewGormPlacemarkRepository(db),
	}, nil
}

func postgresConfig(cfg *config.ServiceConfig) database.PostgresConfig {
	return database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
}

// newMapsClients returns the Google clients, or disabled stand-ins when no
// API key is configured.
func newMapsClients(cfg config.MapsConfig, log *zap.Logger) (maps.Searcher, maps.Directions, maps.SceneLookup) {
	if cfg.APIKey == "" {
		log.Warn("no maps API key configured, search, directions and scenes are disabled")
		return maps.Disabled{}, maps.Disabled{}, maps.Disabled{}
	}

	google := maps.GoogleConfig{
		APIKey:       cfg.APIKey,
		LanguageCode: cfg.LanguageCode,
		Timeout:      cfg.Timeout,
	}
	directions := maps.NewCachedDirections(
		maps.NewGoogleRoutes(google, log),
		maps.WithCacheTTL(cfg.CacheTTL),
		maps.WithCacheLogger(log),
	)
	return maps.NewGooglePlaces(google, log), directions, maps.NewGoogleStreetView(google, log)
}
