// Package bootstrap wires the process-wide runtime shared by the commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"litreview/internal/cache"
	"litreview/internal/config"
	"litreview/internal/database"
	"litreview/internal/middleware"
	"litreview/internal/models"
	"litreview/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// InitRuntime connects to DB and Redis and optionally seeds demo content.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; a nil client disables caching, rate limits and push notifications.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SeedDemo {
		if err := seedDemo(context.Background(), cfg, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return db, r, nil
}

// seedDemo only runs in development and only against an empty users table.
func seedDemo(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.Info("demo seed skipped, database not empty", slog.Int64("users", users))
		return nil
	}

	res, err := seed.Run(ctx, db, seed.Presets["demo"], seed.Options{FastHash: true})
	if err != nil {
		return err
	}
	middleware.Logger.Info("demo data seeded",
		slog.Int("users", len(res.Users)),
		slog.String("password", seed.DefaultPassword),
	)
	return nil
}
