package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"money-copilot/internal/config"
	"money-copilot/internal/db"
	apihttp "money-copilot/internal/http"
	"money-copilot/internal/llm"
	"money-copilot/internal/marketdata"
	"money-copilot/internal/repository"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	var (
		sessionRepo repository.SessionRepository
		messageRepo repository.MessageRepository
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		sessionRepo = repository.NewPgSessionRepository(pool)
		messageRepo = repository.NewPgMessageRepository(pool)
		logger.Info("using postgres session store")
	} else {
		sessionRepo = repository.NewMemSessionRepository()
		messageRepo = repository.NewMemMessageRepository()
		logger.Info("using in-memory session store")
	}

	var llmClient llm.Client
	if cfg.LLMAPIKey != "" {
		llmClient = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	} else {
		logger.Info("no llm key configured, replies use canned templates")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, snapshot cache disabled", zap.Error(err))
			redisClient = nil
		}
		cancel()
	}

	provider := marketdata.NewProvider()
	cache := marketdata.NewSnapshotCache(redisClient, time.Duration(cfg.MarketCacheTTLSeconds)*time.Second)

	chatHandler := apihttp.NewChatHandler(logger, sessionRepo, messageRepo, llmClient)
	tradesHandler := apihttp.NewTradesHandler(logger, provider, cache)
	router := apihttp.NewRouter(logger, chatHandler, tradesHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
