package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/engineermuzamil/modernstore/internal/auth"
	"github.com/engineermuzamil/modernstore/internal/cache"
	"github.com/engineermuzamil/modernstore/internal/httpapi"
	"github.com/engineermuzamil/modernstore/internal/repository"
	"github.com/engineermuzamil/modernstore/internal/service"
)

type Config struct {
	HTTPPort        string
	StoreBackend    string // "postgres" or "memory"
	DBHost          string
	DBPort          int
	DBUser          string
	DBPassword      string
	DBName          string
	MigrationsPath  string
	RedisAddr       string // empty disables the cart cache
	JWTSecret       string
	TokenTTL        time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	SeedDemo        bool
	AdminEmail      string
	AdminPassword   string
}

func loadConfig() *Config {
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		log.Fatalf("invalid DB_PORT: %v", err)
	}
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		StoreBackend:    getEnv("STORE_BACKEND", "postgres"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          dbPort,
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "modernstore"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		JWTSecret:       getEnv("JWT_SECRET", "your-secret-key"),
		TokenTTL:        7 * 24 * time.Hour,
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		SeedDemo:        getEnv("SEED_DEMO_DATA", "false") == "true",
		AdminEmail:      getEnv("ADMIN_EMAIL", "admin@modernstore.com"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin123"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("failed to set up store: %v", err)
	}
	defer store.Close()

	var cartCache cache.CartCache
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		cartCache = cache.NewRedisCache(client)
	}

	if cfg.SeedDemo {
		hash, hashErr := auth.HashPassword(cfg.AdminPassword)
		if hashErr != nil {
			log.Fatalf("failed to hash admin password: %v", hashErr)
		}
		if seedErr := repository.SeedDemoData(context.Background(), store, cfg.AdminEmail, hash); seedErr != nil {
			log.Fatalf("failed to seed demo data: %v", seedErr)
		}
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	cartSvc := service.NewCartService(store, cartCache)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Auth:     service.NewAuthService(store, tokens),
		Products: service.NewProductService(store),
		Cart:     cartSvc,
		Checkout: service.NewCheckoutService(store, cartSvc),
		Tokens:   tokens,
		Users:    store,
		Timeout:  cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "modernstore"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("modernstore starting on :%s (backend=%s)", cfg.HTTPPort, cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func buildStore(cfg *Config) (repository.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return repository.NewMemoryStore(), nil
	default:
		cred := &repository.Credentials{
			Host:              cfg.DBHost,
			Port:              cfg.DBPort,
			User:              cfg.DBUser,
			Password:          cfg.DBPassword,
			DBName:            cfg.DBName,
			MigrationsDirPath: cfg.MigrationsPath,
		}
		pg, err := repository.NewPostgres(cred)
		if err != nil {
			return nil, err
		}
		if err := pg.RunMigrations(cred); err != nil {
			return nil, err
		}
		return pg, nil
	}
}
