// Package seed populates a database with fake users, blogs, posts, comments and reactions
// for development and demos.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	Users           int
	Blogs           int
	PostsPerBlog    int
	CommentsPerPost int
	// Clean removes existing content first.
	Clean bool
	// RandSeed makes runs reproducible; zero is random.
	RandSeed int64
}

// DefaultOptions is a small but populated dataset.
var DefaultOptions = Options{Users: 20, Blogs: 5, PostsPerBlog: 6, CommentsPerPost: 4}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Blogs    int
	Posts    int
	Comments int
}

// Seed populates db according to opts. Every user reacts to a random subset of posts and comments.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (Summary, error) {
	var sum Summary
	db = db.WithContext(ctx)

	if opts.Clean {
		if err := ClearAll(db); err != nil {
			return sum, err
		}
	}

	f, err := NewFactory(db, opts.RandSeed)
	if err != nil {
		return sum, err
	}

	users := make([]models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser()
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, *u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	for b := 0; b < opts.Blogs; b++ {
		owner := &users[b%len(users)]
		blog, err := f.CreateBlog(owner)
		if err != nil {
			return sum, fmt.Errorf("create blog: %w", err)
		}
		sum.Blogs++

		for p := 0; p < opts.PostsPerBlog; p++ {
			post, err := f.CreatePost(blog, users)
			if err != nil {
				return sum, fmt.Errorf("create post: %w", err)
			}
			sum.Posts++

			for c := 0; c < opts.CommentsPerPost; c++ {
				author := &users[f.faker.Number(0, len(users)-1)]
				if _, err := f.CreateComment(post, author, users); err != nil {
					return sum, fmt.Errorf("create comment: %w", err)
				}
				sum.Comments++
			}
		}
	}

	middleware.Logger.InfoContext(ctx, "seed completed",
		slog.Int("users", sum.Users),
		slog.Int("blogs", sum.Blogs),
		slog.Int("posts", sum.Posts),
		slog.Int("comments", sum.Comments),
	)
	return sum, nil
}

// ClearAll hard-deletes all content, children first.
func ClearAll(db *gorm.DB) error {
	tx := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
	for _, model := range []any{&models.Comment{}, &models.Post{}, &models.BlogUserBan{}, &models.Blog{}, &models.User{}} {
		if err := tx.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}
