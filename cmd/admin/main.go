// Command admin provides maintenance utilities for Inkwell.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/notifications"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin recount [-fix]              - Rebuild reaction totals from ledgers")
	fmt.Println("  go run ./cmd/admin ban <user_id> <reason...>   - Ban a user everywhere")
	fmt.Println("  go run ./cmd/admin unban <user_id>             - Lift a user ban")
	fmt.Println("  go run ./cmd/admin listen                      - Print reaction events from Redis")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	command, args := os.Args[1], os.Args[2:]
	switch command {
	case "recount":
		fs := flag.NewFlagSet("recount", flag.ExitOnError)
		fix := fs.Bool("fix", false, "Write recounted totals back")
		_ = fs.Parse(args)
		recount(ctx, connect(cfg), *fix)

	case "ban":
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		setBan(ctx, connect(cfg), args[0], true, strings.Join(args[1:], " "))

	case "unban":
		if len(args) < 1 {
			usage()
			os.Exit(1)
		}
		setBan(ctx, connect(cfg), args[0], false, "")

	case "listen":
		listen(ctx, cfg)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func connect(cfg *config.Config) *gorm.DB {
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	return db
}

func recount(ctx context.Context, db *gorm.DB, fix bool) {
	svc := service.NewMaintenanceService(repository.NewPostRepository(db), repository.NewCommentRepository(db))
	report, err := svc.Recount(ctx, fix)
	if err != nil {
		log.Fatalf("Recount failed: %v", err)
	}

	for _, d := range report.Drifted {
		fmt.Printf("%-14s stored=%d/%d recounted=%d/%d\n", d.Key,
			d.Stored.Likes, d.Stored.Dislikes, d.Recounted.Likes, d.Recounted.Dislikes)
	}
	fmt.Printf("scanned=%d drifted=%d fixed=%d skipped=%d\n", report.Scanned, len(report.Drifted), report.Fixed, report.Skipped)
}

func setBan(ctx context.Context, db *gorm.DB, rawID string, banned bool, reason string) {
	id, err := strconv.ParseUint(rawID, 10, 32)
	if err != nil || id == 0 {
		log.Fatalf("Invalid user id %q", rawID)
	}

	users := service.NewUserService(repository.NewUserRepository(db))
	if err := users.BanUser(ctx, uint(id), service.BanUserInput{IsBanned: banned, BanReason: reason}); err != nil {
		log.Fatalf("Ban update failed: %v", err)
	}

	if banned {
		fmt.Printf("✅ Banned user %d\n", id)
	} else {
		fmt.Printf("✅ Unbanned user %d\n", id)
	}
}

func listen(ctx context.Context, cfg *config.Config) {
	cache.InitRedis(cfg.RedisURL)
	rdb := cache.GetClient()
	if rdb == nil {
		log.Fatal("Redis is unavailable")
	}

	n := notifications.NewNotifier(rdb)
	err := n.StartReactionSubscriber(ctx, func(channel, payload string) {
		fmt.Printf("%s %s\n", channel, payload)
	})
	if err != nil {
		log.Fatalf("Subscribe failed: %v", err)
	}
	<-ctx.Done()
}
