package repository

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/reaction"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

// setupSQLite opens a migrated in-memory database. One connection keeps every
// query on the same in-memory schema.
func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.ApplySchema(context.Background(), db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, login string) *models.User {
	t.Helper()
	u := &models.User{Login: login, Email: login + "@example.com", Password: "hash"}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedBlog(t *testing.T, db *gorm.DB, name string, owner *models.User) *models.Blog {
	t.Helper()
	b := &models.Blog{Name: name, Description: "about " + name, WebsiteURL: "https://" + name + ".example.com"}
	if owner != nil {
		b.OwnerID = &owner.ID
		b.OwnerLogin = owner.Login
	}
	require.NoError(t, db.Create(b).Error)
	return b
}

func seedPost(t *testing.T, db *gorm.DB, blog *models.Blog, title string) *models.Post {
	t.Helper()
	p := &models.Post{
		Title:            title,
		ShortDescription: "short",
		Content:          "content of " + title,
		BlogID:           blog.ID,
		BlogName:         blog.Name,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedComment(t *testing.T, db *gorm.DB, post *models.Post, author *models.User, content string) *models.Comment {
	t.Helper()
	c := &models.Comment{
		Content:          content,
		PostID:           post.ID,
		CommentatorID:    author.ID,
		CommentatorLogin: author.Login,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func like(t *testing.T, target reaction.Reactable, u *models.User, status reaction.Status) {
	t.Helper()
	_, changed := reaction.React(target, u.ID, u.Login, status, testNow)
	require.True(t, changed)
}
