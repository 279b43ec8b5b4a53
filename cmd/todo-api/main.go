package main

import (
	"context"
	"flag"
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/NekruzRakhimov/todo-list/internal/api"
	authapi "github.com/NekruzRakhimov/todo-list/internal/api/auth"
	taskapi "github.com/NekruzRakhimov/todo-list/internal/api/task"
	"github.com/NekruzRakhimov/todo-list/internal/pkg/config"
	"github.com/NekruzRakhimov/todo-list/internal/pkg/jwt"
	"github.com/NekruzRakhimov/todo-list/internal/pkg/logger"
	"github.com/NekruzRakhimov/todo-list/internal/pkg/redis"
	"github.com/NekruzRakhimov/todo-list/internal/repository"
	"github.com/NekruzRakhimov/todo-list/internal/service"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	zap.L().Info("starting todo-list API")

	db, err := repository.Open(cfg.Database.Path)
	if err != nil {
		zap.L().Fatal("failed to open database",
			zap.Error(err))
	}
	defer db.Close()

	limiter := buildRateLimiter(cfg)

	tokens := jwt.New(cfg.JWT.SecretKey, cfg.TokenTTL())
	users := repository.NewUserRepository(db)
	tasks := repository.NewTaskRepository(db)

	authService := service.NewAuthService(users, tokens)
	authHandler := authapi.NewHandler(authService, limiter)
	taskHandler := taskapi.NewHandler(tasks)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	api.SetupRouter(r, authHandler, taskHandler)

	zap.L().Info("listening",
		zap.String("addr", cfg.GetServerAddr()))

	if err := r.Run(cfg.GetServerAddr()); err != nil {
		zap.L().Fatal("server stopped",
			zap.Error(err))
	}
}

// buildRateLimiter wires the auth rate limiter: redis-backed when redis
// is enabled and reachable, in-memory otherwise, nil when disabled.
func buildRateLimiter(cfg *config.Config) service.RateLimiter {
	if cfg.Auth.RateLimitMaxRequests <= 0 {
		return nil
	}

	if cfg.Redis.Enabled {
		client, err := redis.Connect(context.Background(), cfg)
		if err == nil {
			return service.NewRedisRateLimit(client, cfg.RateLimitWindow(), cfg.Auth.RateLimitMaxRequests)
		}
		zap.L().Warn("redis unavailable, falling back to in-memory rate limiting",
			zap.Error(err))
	}

	return service.NewMemoryRateLimit(cfg.RateLimitWindow(), cfg.Auth.RateLimitMaxRequests)
}
