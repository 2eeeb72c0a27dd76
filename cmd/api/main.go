package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"taskhub/configs"
	v1 "taskhub/internal/api/v1"
	"taskhub/internal/config"
	"taskhub/internal/repository"
	"taskhub/internal/session"
	"taskhub/internal/websocket"
	"taskhub/pkg/database"
	"taskhub/pkg/logger"
	"taskhub/pkg/storage"
)

func main() {
	cfg := configs.LoadConfig()

	if err := logger.InitLoggers(cfg.LogDir); err != nil {
		log.Fatalf("init loggers: %v", err)
	}
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	ctx := context.Background()

	store, closeStore := openStore(ctx, cfg)
	defer closeStore()

	sessions, closeSessions := openSessions(ctx, cfg)
	defer closeSessions()

	avatars, err := openAvatarStorage(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Fatal("Failed to set up avatar storage", zap.Error(err))
	}

	deps := config.NewDependencies(cfg, store, sessions, avatars, websocket.NewHub())

	if cfg.AdminEmail != "" {
		created, err := deps.Services.Users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			logger.ErrorLogger.Error("Failed to create admin user", zap.Error(err))
		} else if created {
			logger.AuditLogger.Info("Admin user created", zap.String("email", cfg.AdminEmail))
		}
	}

	app := v1.NewApp(deps)

	logger.SystemLogger.Info("Application is running", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg configs.Config) (repository.Store, func()) {
	if cfg.Store == "memory" {
		logger.SystemLogger.Info("Using in-memory store")
		return repository.NewMemoryStore(), func() {}
	}

	db, err := database.ConnectDB(ctx, cfg)
	if db == nil {
		logger.ErrorLogger.Fatal("Failed to open database", zap.Error(err))
	}
	// Keep serving when Postgres is down; /health reports it.
	if err != nil {
		logger.ErrorLogger.Error("Failed to connect to database", zap.Error(err))
	} else {
		logger.SystemLogger.Info("Database connected successfully")
		if err := repository.CreateTablesIfNotExists(ctx, db.DB); err != nil {
			logger.ErrorLogger.Error("Failed to create tables", zap.Error(err))
		}
	}
	return repository.NewPostgresStore(db), func() { _ = db.Close() }
}

// openSessions falls back to process-local revocation when Redis is not
// configured or unreachable.
func openSessions(ctx context.Context, cfg configs.Config) (session.Revoker, func()) {
	if cfg.RedisAddr == "" {
		return session.NewMemoryStore(), func() {}
	}
	client, err := database.ConnectRedis(ctx, cfg)
	if err != nil {
		logger.ErrorLogger.Warn("Redis unavailable, revoked tokens are kept in memory", zap.Error(err))
		return session.NewMemoryStore(), func() {}
	}
	logger.SystemLogger.Info("Redis connected successfully")
	return session.NewRedisStore(client), func() { _ = client.Close() }
}

func openAvatarStorage(ctx context.Context, cfg configs.Config) (storage.AvatarStorage, error) {
	if cfg.AvatarStorage == "s3" {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return storage.NewLocalStorage(cfg.UploadDir)
}
