// Command migrate applies the GORM schema or reports what it would change.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"inkwell/internal/config"
	"inkwell/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	dryRun := flag.Bool("dry-run", false, "Report missing tables without migrating")
	force := flag.Bool("force", false, "Migrate even in production-like environments")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	ctx := context.Background()
	status, err := database.GetSchemaStatus(ctx, db, cfg)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	log.Printf("env=%s will_migrate=%t existing=%d missing=%d", status.Environment, status.WillMigrate, len(status.ExistingTables), len(status.MissingTables))
	for _, table := range status.MissingTables {
		log.Printf("missing: %s", table)
	}

	if *dryRun {
		return nil
	}
	if !status.WillMigrate && !*force {
		return fmt.Errorf("refusing to migrate %s without -force", status.Environment)
	}

	if err := database.ApplySchema(ctx, db); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	log.Println("automigrations applied")
	return nil
}
