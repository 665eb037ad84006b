package main

import (
	"log/slog"
	"net/http"
	"time"

	"phytoguard/internal/app"
	"phytoguard/internal/config"
	"phytoguard/internal/server"
	"phytoguard/internal/usertoken"
	"phytoguard/internal/util"
	"phytoguard/pkg/ai"
	"phytoguard/pkg/storage"
	"phytoguard/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		util.Fatal("failed to load config", "err", err)
	}

	util.InitLogger(cfg.LogLevel, "phytoguard")

	db, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		util.Fatal("failed to init database", "err", err)
	}

	vision, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
	if err != nil {
		util.Fatal("failed to init vision client", "err", err)
	}

	tokens, err := usertoken.NewManager(usertoken.Config{Secret: cfg.TokenSecret})
	if err != nil {
		util.Fatal("failed to init token manager", "err", err)
	}

	// Object storage is optional; without it scans are saved without an image URL.
	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		minioStore, err := storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			util.Fatal("failed to init object storage", "err", err)
		}
		objects = minioStore
	} else {
		slog.Warn("object storage not configured, scan images will not be stored")
	}

	appCore, err := app.New(app.Config{
		Store:   db,
		Objects: objects,
		Vision:  vision,
		Tokens:  tokens,
		Models:  cfg.VisionModels,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	httpServer, err := server.New(server.Config{
		App:                        appCore,
		RedisAddr:                  cfg.RedisAddr,
		RedisPassword:              cfg.RedisPassword,
		DiagnoseRateLimitPerMinute: cfg.DiagnoseRateLimitPerMinute,
	})
	if err != nil {
		util.Fatal("failed to init server", "err", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		util.Fatal("server error", "err", err)
	}
}
