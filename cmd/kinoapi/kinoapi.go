package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/kinoreel/kinoapi/internal/business"
	"github.com/kinoreel/kinoapi/internal/infrastructure"
	"github.com/kinoreel/kinoapi/internal/service/server"
)

// Environment variables names
const (
	EnvElasticDSN  = "ELASTIC_DSN"
	EnvRedisDSN    = "REDIS_DSN"
	EnvAuthURL     = "AUTH_URL" // Empty means open mode, no authorization checks
	EnvCacheExpire = "CACHE_EXPIRE_SECONDS"
	EnvLogLevel    = "LOG_LEVEL"
	EnvHTTPAddr    = "HTTP_ADDR"
)

func main() {
	godotenv.Load()

	log.SetOutput(os.Stdout)
	if level, err := log.ParseLevel(os.Getenv(EnvLogLevel)); err == nil {
		log.SetLevel(level)
	}

	ttl := 300 * time.Second
	if seconds, err := strconv.Atoi(os.Getenv(EnvCacheExpire)); err == nil && seconds > 0 {
		ttl = time.Duration(seconds) * time.Second
	}

	store, err := infrastructure.NewRedisCache(getenvDefault(EnvRedisDSN, "redis://127.0.0.1:6379"))
	if err != nil {
		log.Fatalf("error connecting to redis: %v", err)
	}
	defer store.Close()

	engine, err := infrastructure.NewElasticEngine(getenvDefault(EnvElasticDSN, "http://127.0.0.1:9200"))
	if err != nil {
		log.Fatalf("error creating search engine: %v", err)
	}

	auth := infrastructure.NewAuthClient(os.Getenv(EnvAuthURL))

	fm := business.NewFilmManagerWrapper(engine, store, ttl)
	gm := business.NewGenreManagerWrapper(engine)
	pm := business.NewPersonManagerWrapper(engine)

	srv := server.NewServer(
		server.NewFilmHandler(fm, auth),
		server.NewGenreHandler(gm),
		server.NewPersonHandler(pm),
		store,
		ttl)
	if err := srv.Run(getenvDefault(EnvHTTPAddr, ":8000")); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func getenvDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
