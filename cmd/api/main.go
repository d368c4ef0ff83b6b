package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/travelbooking/booking-api/internal/api"
	"github.com/travelbooking/booking-api/internal/api/handler"
	"github.com/travelbooking/booking-api/internal/api/session"
	"github.com/travelbooking/booking-api/internal/core/service"
	"github.com/travelbooking/booking-api/internal/infrastructure/config"
	mongodb "github.com/travelbooking/booking-api/internal/infrastructure/db/mongo"
	"github.com/travelbooking/booking-api/internal/infrastructure/db/postgres"
	redisdb "github.com/travelbooking/booking-api/internal/infrastructure/db/redis"
	"github.com/travelbooking/booking-api/internal/infrastructure/security"
	"github.com/travelbooking/booking-api/pkg/logger"
)

// @title                       Travel Booking API
// @version                     1.0
// @description                 Accounts, trip catalog and reservations with cookie-based JWT sessions.
// @BasePath                    /
// @securityDefinitions.apikey  CookieAuth
// @in                          cookie
// @name                        auth_token
// @securityDefinitions.apikey  AdminCookieAuth
// @in                          cookie
// @name                        admin_auth_token
func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{})
		boot.Fatal().Err(err).Msg("failed to load config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "booking-api",
	})

	// --- Credential store ---
	pg, err := postgres.Connect(ctx, postgres.Config{
		DSN:          cfg.Postgres.DSN,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer pg.Close()

	if err := postgres.Migrate(ctx, pg); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// --- Catalog and reservations ---
	mongoClient, mdb, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongo")
	}
	defer func() { _ = mongoClient.Disconnect(context.WithoutCancel(ctx)) }()

	tripRepo := mongodb.NewTripRepository(mdb)
	reservationRepo := mongodb.NewReservationRepository(mdb)
	if err := mongodb.EnsureIndexes(ctx, tripRepo, reservationRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure indexes")
	}

	// --- Short-lived state ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer rdb.Close()

	// --- Security ---
	// The pool outlives the signal context so in-flight logins finish during
	// graceful shutdown.
	poolCtx, stopPool := context.WithCancel(context.Background())
	defer stopPool()
	pool := security.NewHashPool(cfg.Auth.HashWorkers, log)
	pool.Start(poolCtx)
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost, pool).WithTimeout(cfg.Auth.HashTimeout)

	tokens, err := security.NewTokenManager(cfg.JWTSecret,
		security.WithTTLs(cfg.Auth.StandardTokenTTL, cfg.Auth.AdminTokenTTL))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build token manager")
	}

	// --- Services ---
	credentials := postgres.NewCredentialStore(pg)
	authService := service.NewAuthService(
		credentials,
		hasher,
		tokens,
		redisdb.NewResetTokenStore(rdb, cfg.Auth.ResetTokenTTL),
		log,
	)
	if cfg.Auth.SeedAdmin() {
		admin, err := authService.EnsureAdmin(ctx, cfg.Auth.AdminName, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed admin account")
		}
		log.Info().Str("user_id", admin.ID).Msg("admin account ready")
	}

	tripService := service.NewTripService(tripRepo, log)
	reservationService := service.NewReservationService(
		reservationRepo,
		tripRepo,
		redisdb.NewIdempotencyStore(rdb, cfg.Auth.IdempotencyTTL),
		log,
	)
	adminService := service.NewAdminService(credentials, tripRepo, reservationRepo, log)

	e := api.NewRouter(api.Dependencies{
		Auth:         authService,
		Trips:        tripService,
		Reservations: reservationService,
		Admin:        adminService,
		Tokens:       tokens,
		Cookies:      session.Writer{Secure: cfg.IsProduction()},
		Readiness: map[string]handler.DependencyCheck{
			"postgres": pg.PingContext,
			"mongodb":  mongodb.Ping(mongoClient),
			"redis":    redisdb.Ping(rdb),
		},
		Log: log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting booking API")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
