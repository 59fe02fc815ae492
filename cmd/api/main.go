package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/denisok6893-rgb/property-investment/internal/cache"
	"github.com/denisok6893-rgb/property-investment/internal/catalog"
	httpapi "github.com/denisok6893-rgb/property-investment/internal/http"
	"github.com/denisok6893-rgb/property-investment/internal/investment"
	"github.com/denisok6893-rgb/property-investment/internal/matching"
	"github.com/denisok6893-rgb/property-investment/internal/model"
	"github.com/denisok6893-rgb/property-investment/internal/service"
	"github.com/denisok6893-rgb/property-investment/internal/storage"
)

type Config struct {
	Address            string
	CatalogPath        string
	WeightsPath        string
	DBPath             string
	RedisAddr          string
	CacheTTL           time.Duration
	ModelsDir          string
	RateLimitPerMinute int
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("ignore .env (reason: %v)", err)
	}
	cfg := loadConfig()

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		loaded, err := catalog.LoadFromFile(cfg.CatalogPath)
		if err != nil {
			log.Printf("use default catalog (reason: %v)", err)
		} else {
			cat = loaded
		}
	}
	engine := investment.NewEngine(cat)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		log.Fatalf("create db dir: %v", err)
	}
	store, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.EnsureSchema(); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}

	reportCache := newCache(cfg)

	models, err := model.Load(cfg.ModelsDir)
	if err != nil {
		log.Printf("predictions disabled (reason: %v)", err)
		models = nil
	}

	svc := service.NewReportService(engine, store, reportCache)
	srv := httpapi.NewServer(svc, &httpapi.SQLiteReportsRepo{Store: store}, models)

	w, err := matching.LoadWeightsFromFile(cfg.WeightsPath)
	if err != nil {
		log.Printf("use default match weights (reason: %v)", err)
	}
	srv.Matcher = matching.NewEngine(engine, w)

	limiter := httpapi.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)

	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      srv.Handler(limiter),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // dataset streams set per-message write deadlines
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("API listening on %s", cfg.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalf("server error: %v", err)
	case sig := <-quit:
		log.Printf("shutting down (%s)", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
}

func newCache(cfg Config) cache.Cache {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryCache(cfg.CacheTTL)
	}
	rc := cache.NewRedisCache(cfg.RedisAddr, cfg.CacheTTL)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		log.Printf("use in-memory cache (reason: redis %s: %v)", cfg.RedisAddr, err)
		_ = rc.Close()
		return cache.NewMemoryCache(cfg.CacheTTL)
	}
	log.Printf("report cache: redis %s", cfg.RedisAddr)
	return rc
}

func loadConfig() Config {
	ttl, err := time.ParseDuration(getEnv("CACHE_TTL", "10m"))
	if err != nil {
		log.Printf("use default CACHE_TTL (reason: %v)", err)
		ttl = 10 * time.Minute
	}
	rate, err := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "60"))
	if err != nil || rate <= 0 {
		log.Printf("use default RATE_LIMIT_PER_MINUTE (got %q)", os.Getenv("RATE_LIMIT_PER_MINUTE"))
		rate = 60
	}
	return Config{
		Address:            getEnv("API_ADDRESS", ":8080"),
		CatalogPath:        getEnv("CATALOG_PATH", ""),
		WeightsPath:        getEnv("WEIGHTS_PATH", "configs/weights.json"),
		DBPath:             getEnv("DB_PATH", "data/investment.db"),
		RedisAddr:          getEnv("REDIS_ADDR", ""),
		CacheTTL:           ttl,
		ModelsDir:          getEnv("MODELS_DIR", "models"),
		RateLimitPerMinute: rate,
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
