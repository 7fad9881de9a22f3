package main

import (
	"log"

	"github.com/boxline/boxline-backend/internal/config"
	"github.com/boxline/boxline-backend/internal/db"
	"github.com/boxline/boxline-backend/internal/logger"
	"github.com/boxline/boxline-backend/internal/model"
	"github.com/boxline/boxline-backend/internal/server"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	zl, err := logger.New(cfg.AppMode)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zl.Sync()

	conn, err := db.Connect(cfg)
	if err != nil {
		zl.Fatal("db connect failed", "err", err)
	}
	if err := conn.AutoMigrate(
		&model.User{},
		&model.Pickup{},
		&model.Item{},
		&model.Box{},
		&model.VouchRequest{},
		&model.CurrencyRate{},
	); err != nil {
		zl.Fatal("auto migrate failed", "err", err)
	}

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer cache.Close()
	}

	srv := server.New(conn, cfg, zl, cache)
	addr := ":" + cfg.Port
	zl.Info("starting server", "addr", addr)
	if err := srv.Start(addr); err != nil {
		zl.Fatal("server stopped", "err", err)
	}
}
