// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"duka-auth-service/internal/config"
	"duka-auth-service/internal/db"
	authHandler "duka-auth-service/internal/handlers/auth"
	"duka-auth-service/internal/middleware"
	"duka-auth-service/internal/pkg/session"
	"duka-auth-service/internal/pkg/token"
	"duka-auth-service/internal/repository/postgres"
	authUsecase "duka-auth-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	pool        *pgxpool.Pool
	redisClient *redis.Client
}

func NewServer() (*Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &Server{
		cfg:    cfg,
		engine: gin.New(),
	}, nil
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.Connect(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	// ----- Token codec -----
	// Missing secrets were already rejected by config.Load; this only fails
	// on programmer error.
	codec, err := token.NewCodec(s.cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to build token codec: %w", err)
	}

	// ----- Session store -----
	var store session.Store = postgres.NewSessionRepository(pool)

	// Redis fronts the store as a read-through cache when configured.
	if s.cfg.RedisAddr != "" {
		redisClient, err := db.NewRedisClient(db.RedisConfig{
			Addr:     s.cfg.RedisAddr,
			Password: s.cfg.RedisPass,
			PoolSize: 10,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		s.redisClient = redisClient
		store = session.NewCache(store, redisClient, codec.AccessTTL(), logger)
		logger.Info("session cache enabled", zap.String("addr", s.cfg.RedisAddr))
	}

	// ----- Core -----
	users := postgres.NewUserRepository(pool)
	sessionManager := session.NewManager(store, users, codec, logger)
	authService := authUsecase.NewAuthService(users, sessionManager, logger)

	// ----- Handlers & middleware -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	authMiddleware := middleware.NewAuthMiddleware(sessionManager, logger)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	handlers := &Handlers{
		AuthHandler:    authHandlerInst,
		AuthMiddleware: authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown releases the server's connection pools.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}
	return nil
}
