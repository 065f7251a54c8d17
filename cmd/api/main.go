package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/comitanigiacomo/kanso-habit-stats/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/kanso-habit-stats/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/config"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/services"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/stats"
	"github.com/comitanigiacomo/kanso-habit-stats/internal/core/workers"
)

type app struct {
	router *gin.Engine
	repo   domain.HabitRepository
	db     *sqlx.DB
	redis  *redis.Client
}

func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func openStorage(ctx context.Context, cfg config.Config) (domain.HabitRepository, *sqlx.DB, error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		log.Println("Using in-memory habit storage.")
		return repository.NewInMemoryHabitRepository(), nil, nil

	case config.DriverSQLite:
		log.Printf("Opening SQLite database %s...", cfg.Database.SQLitePath)
		db, err := repository.OpenSQLite(ctx, cfg.Database.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewSQLiteHabitRepository(db), db, nil

	default:
		log.Println("Connecting to database...")
		db, err := sqlx.ConnectContext(ctx, "pgx", cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Println("Database connected successfully.")
		return repository.NewPostgresHabitRepository(db), db, nil
	}
}

// newApp wires storage, cache, services and the router. The streak worker
// runs until ctx is cancelled.
func newApp(ctx context.Context, cfg config.Config, startTime time.Time) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	habitRepo, db, err := openStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a := &app{db: db}

	if cfg.RedisEnabled() {
		rdb, err := cache.NewRedisClient(ctx, cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Printf("Warning: running without cache and rate limiting: %v", err)
		} else {
			a.redis = rdb
			habitRepo = repository.NewCachedHabitRepository(habitRepo, rdb, cfg.Redis.CacheTTL)
		}
	}
	a.repo = habitRepo

	calc := stats.NewCalculator(stats.Options{MaxLookbackDays: cfg.Stats.MaxLookbackDays})
	statsService := services.NewStatsService(habitRepo, calc, loc, nil)

	streakWorker := workers.NewStreakWorker(habitRepo, statsService, 100)
	streakWorker.Start(ctx)

	habitService := services.NewHabitService(habitRepo, streakWorker)
	tokenService := services.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenDuration)

	a.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		HabitHandler: adapterHTTP.NewHabitHandler(habitService),
		StatsHandler: adapterHTTP.NewStatsHandler(statsService),
		Tokens:       tokenService,
		DB:           db,
		Redis:        a.redis,
		RateLimit:    cfg.RateLimit.Limit,
		RateWindow:   cfg.RateLimit.Window,
		StartTime:    startTime,
	})

	return a, nil
}

func main() {
	startTime := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, startTime)
	if err != nil {
		log.Fatalf("Critical: %v", err)
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      a.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Kanso Habit Stats running on http://localhost:%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Critical server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown error: %v", err)
		a.Close()
		os.Exit(1)
	}

	log.Println("Server stopped gracefully.")
}
