package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/middleware"

	"gorm.io/gorm"
)

// SchemaStatus describes what a migration run would do.
type SchemaStatus struct {
	Environment    string
	WillMigrate    bool
	MissingTables  []string
	ExistingTables []string
}

func isProdLikeEnv(env string) bool {
	e := strings.ToLower(strings.TrimSpace(env))
	return e == "production" || e == "prod" || e == "staging" || e == "stage"
}

// ApplySchema runs AutoMigrate over PersistentModels.
func ApplySchema(ctx context.Context, db *gorm.DB) error {
	middleware.Logger.Info("Running GORM AutoMigrate", slog.Int("models", len(PersistentModels())))
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// GetSchemaStatus reports which model tables are present without changing anything.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	status := &SchemaStatus{
		Environment: cfg.Env,
		WillMigrate: !isProdLikeEnv(cfg.Env),
	}

	migrator := db.WithContext(ctx).Migrator()
	for _, model := range PersistentModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parse model %T: %w", model, err)
		}
		table := stmt.Schema.Table
		if migrator.HasTable(model) {
			status.ExistingTables = append(status.ExistingTables, table)
		} else {
			status.MissingTables = append(status.MissingTables, table)
		}
	}
	return status, nil
}
