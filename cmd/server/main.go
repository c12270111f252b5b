// Package main is the entry point for the Tabula API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"tabula/internal/config"
	"tabula/internal/infrastructure/cache"
	v1 "tabula/internal/infrastructure/http/v1"
	"tabula/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting tabula server")

	// --- Cache backend ---
	var backend cache.Backend
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
		})
		defer client.Close()

		if err := client.Ping(ctx).Err(); err != nil {
			log.Fatalw("failed to ping redis", "addr", cfg.Cache.Redis.Addr, "error", err)
		}
		backend = cache.NewRedisBackend(client)
		log.Infow("redis cache initialized", "addr", cfg.Cache.Redis.Addr, "ttl", cfg.Cache.TTL)

	case config.CacheBackendFile:
		backend = cache.NewFileBackend(cfg.Cache.Dir)
		log.Infow("file cache initialized", "dir", cfg.Cache.Dir, "ttl", cfg.Cache.TTL)

	case config.CacheBackendNone:
		log.Info("result caching disabled")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:       log,
		Cache:        backend,
		CacheTTL:     cfg.Cache.TTL,
		FetchTimeout: cfg.Fetch.Timeout,
	})

	// --- HTTP Server ---
	port := strconv.Itoa(cfg.Server.Port)
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
