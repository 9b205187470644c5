// Package bootstrap prepares runtime dependencies for the server binary.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with demo content.
	SeedDemo bool
}

// InitRuntime connects to DB and Redis, ensures the development root user and
// optionally seeds demo content.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; a nil client disables caching and pub/sub.
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureDevRoot(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root user: %w", err)
	}

	if opts.SeedDemo {
		if err := seedIfEmpty(ctx, db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed demo content: %w", err)
		}
	}

	return db, r, nil
}

func seedIfEmpty(ctx context.Context, db *gorm.DB) error {
	var n int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	_, err := seed.Seed(ctx, db, seed.DefaultOptions)
	return err
}

// EnsureDevRoot creates or refreshes the development root user when
// DEV_BOOTSTRAP_ROOT is enabled in the development profile.
func EnsureDevRoot(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	login := strings.TrimSpace(cfg.DevRootLogin)
	if login == "" {
		login = "root"
	}
	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@inkwell.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return errors.New("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.Where("login = ?", login).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{Login: login, Email: email, Password: string(hashedPassword)}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&root).Updates(map[string]any{
				"email":      email,
				"password":   string(hashedPassword),
				"is_banned":  false,
				"ban_reason": "",
				"ban_date":   nil,
			}).Error
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "development root user ensured", slog.String("login", login), slog.String("email", email))
	return nil
}
