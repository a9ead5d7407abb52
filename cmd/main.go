package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sahabattani/backend/internal/config"
	"github.com/sahabattani/backend/internal/database"
	"github.com/sahabattani/backend/internal/logger"
	"github.com/sahabattani/backend/internal/prediction"
	"github.com/sahabattani/backend/internal/server"
	"github.com/sahabattani/backend/internal/storage"
	"github.com/sahabattani/backend/internal/user"
	"github.com/sahabattani/backend/internal/utils"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	zl, err := logger.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		log.Fatal("❌ Failed to initialize logger: ", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("❌ Configuration error", zap.Error(err))
	}
	zl.Info("✅ Configuration validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg, zl)
	if err != nil {
		zl.Fatal("❌ Database connection failed", zap.Error(err))
	}

	if err := database.Migrate(db); err != nil {
		zl.Fatal("❌ Migration failed", zap.Error(err))
	}
	zl.Info("✅ Database migrated successfully")

	zl.Info("🔍 Running SQL migrations...", zap.String("dir", cfg.MigrationsDir))
	if applied, err := database.RunMigrations(db, cfg.MigrationsDir, zl); err != nil {
		zl.Warn("⚠️  SQL migrations failed, detection and forum queries may be slower", zap.Error(err))
	} else {
		zl.Info("✅ SQL migrations completed", zap.Strings("applied", applied))
	}

	// ========== STORAGE SETUP ==========
	store, err := storage.New(cfg)
	if err != nil && cfg.UseS3 {
		zl.Warn("⚠️  S3 initialization failed, falling back to local storage", zap.Error(err))
		store, err = storage.NewLocalStorage(cfg.UploadDir)
	}
	if err != nil {
		zl.Fatal("❌ Failed to initialize storage", zap.Error(err))
	}
	if store.Mode() == storage.ModeS3 {
		zl.Info("☁️  Using S3 storage", zap.String("bucket", cfg.S3Bucket), zap.String("region", cfg.S3Region))
	} else {
		zl.Info("💾 Using LOCAL storage", zap.String("dir", cfg.UploadDir))
	}

	// ========== NEWS CACHE ==========
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			zl.Warn("⚠️  Redis unavailable, news cache disabled", zap.Error(err))
			_ = rdb.Close()
			rdb = nil
		} else {
			zl.Info("✅ Redis connected, news cache enabled", zap.Duration("ttl", cfg.NewsCacheTTL))
		}
		cancel()
	}

	// ========== SEED DEFAULT DATA ==========
	created, err := user.SeedAdmin(context.Background(), user.NewRepository(db), utils.NewPasswordHasher(cfg.BcryptCost), cfg)
	switch {
	case err != nil:
		zl.Warn("⚠️  Failed to seed admin account", zap.Error(err))
	case created:
		zl.Info("✅ Admin account seeded", zap.String("email", cfg.AdminEmail))
	}

	// ========== CLASSIFIER ==========
	if !cfg.ClassifierConfigured() {
		zl.Warn("⚠️  Custom Vision is not configured, /api/predict will answer 503")
	}

	// ========== START SERVER ==========
	app := server.New(server.Dependencies{
		Config:     cfg,
		DB:         db,
		Logger:     zl,
		Storage:    store,
		Classifier: prediction.NewCustomVisionClient(cfg),
		Redis:      rdb,
	})

	zl.Info("🚀 SahabatTani API starting", zap.String("addr", cfg.ServerAddr), zap.String("env", cfg.Environment))
	zl.Info("📚 Health check available at /health")
	zl.Info("🔐 JWT Authentication: Enabled")

	if err := app.Listen(cfg.ServerAddr); err != nil {
		zl.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
