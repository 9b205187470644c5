package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/reaction"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	query := regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 AND "users"."deleted_at" IS NULL ORDER BY "users"."id" LIMIT $2`)

	tests := []struct {
		name          string
		userID        uint
		mockBehavior  func()
		expectedLogin string
		expectedCode  string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "login", "email"}).
					AddRow(1, "alice", "alice@example.com")
				mock.ExpectQuery(query).WithArgs(1, 1).WillReturnRows(rows)
			},
			expectedLogin: "alice",
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(query).WithArgs(99, 1).WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedCode != "" {
				assert.True(t, models.HasCode(err, tt.expectedCode))
			} else if assert.NoError(t, err) {
				assert.Equal(t, tt.expectedLogin, user.Login)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByLoginOrEmail_Missing(t *testing.T) {
	db := setupSQLite(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seedUser(t, db, "alice")

	u, err := repo.GetByLoginOrEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "alice", u.Login)

	u, err = repo.GetByLoginOrEmail(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := setupSQLite(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	seedUser(t, db, "alice")

	loginTaken, emailTaken, err := repo.Taken(ctx, "alice", "other@example.com")
	require.NoError(t, err)
	assert.True(t, loginTaken)
	assert.False(t, emailTaken)

	err = repo.Create(ctx, &models.User{Login: "alice", Email: "x@example.com", Password: "h"})
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestUserRepository_ListFilters(t *testing.T) {
	db := setupSQLite(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "alice")
	seedUser(t, db, "bob")
	carol := seedUser(t, db, "carol")
	_, err := repo.SetBan(ctx, carol.ID, true, "spamming the comments", testNow)
	require.NoError(t, err)

	users, total, err := repo.List(ctx, UserFilter{BanStatus: BanStatusBanned})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, users, 1)
	assert.Equal(t, "carol", users[0].Login)

	users, total, err = repo.List(ctx, UserFilter{
		SearchLoginTerm: "AL",
		SearchEmailTerm: "bob@",
		PageQuery:       models.PageQuery{SortBy: "login", SortDirection: "asc"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Login)
	assert.Equal(t, "bob", users[1].Login)

	users, total, err = repo.List(ctx, UserFilter{PageQuery: models.PageQuery{PageNumber: 2, PageSize: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, users, 1)
}

func TestUserRepository_SetBanPropagates(t *testing.T) {
	db := setupSQLite(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	troll := seedUser(t, db, "troll")
	other := seedUser(t, db, "other")
	blog := seedBlog(t, db, "news", owner)
	post := seedPost(t, db, blog, "hello")
	comment := seedComment(t, db, post, troll, "a comment long enough")

	like(t, post, troll, reaction.Like)
	like(t, post, other, reaction.Like)
	require.NoError(t, NewPostRepository(db).SaveReactions(ctx, post, false))
	like(t, comment, troll, reaction.Dislike)
	require.NoError(t, NewCommentRepository(db).SaveReactions(ctx, comment, false))

	res, err := repo.SetBan(ctx, troll.ID, true, "spamming the comments", testNow)
	require.NoError(t, err)
	assert.Equal(t, BanResult{Comments: 1, Posts: 1, Replies: 1}, res)

	var storedPost models.Post
	require.NoError(t, db.First(&storedPost, post.ID).Error)
	rec, ok := storedPost.Ledger.Record(troll.ID)
	require.True(t, ok)
	assert.True(t, rec.IsBanned)
	rec, _ = storedPost.Ledger.Record(other.ID)
	assert.False(t, rec.IsBanned)
	// totals keep counting banned users
	assert.Equal(t, 2, storedPost.Aggregate.Likes)

	var storedComment models.Comment
	require.NoError(t, db.First(&storedComment, comment.ID).Error)
	assert.True(t, storedComment.IsBanned)

	var user models.User
	require.NoError(t, db.First(&user, troll.ID).Error)
	assert.True(t, user.IsBanned)
	assert.Equal(t, "spamming the comments", user.BanReason)
	require.NotNil(t, user.BanDate)

	// unban restores everything
	_, err = repo.SetBan(ctx, troll.ID, false, "", time.Now())
	require.NoError(t, err)
	require.NoError(t, db.First(&storedPost, post.ID).Error)
	rec, _ = storedPost.Ledger.Record(troll.ID)
	assert.False(t, rec.IsBanned)
	require.NoError(t, db.First(&user, troll.ID).Error)
	assert.False(t, user.IsBanned)
	assert.Nil(t, user.BanDate)
}

func TestUserRepository_SetBanInvalidatesStaleReactionWrites(t *testing.T) {
	db := setupSQLite(t)
	users := NewUserRepository(db)
	posts := NewPostRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	troll := seedUser(t, db, "troll")
	late := seedUser(t, db, "late")
	blog := seedBlog(t, db, "news", owner)
	post := seedPost(t, db, blog, "hello")

	like(t, post, troll, reaction.Like)
	require.NoError(t, posts.SaveReactions(ctx, post, false))

	stale, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	staleVersion := stale.Version

	_, err = users.SetBan(ctx, troll.ID, true, "spamming the comments", testNow)
	require.NoError(t, err)

	like(t, stale, late, reaction.Dislike)
	err = posts.SaveReactions(ctx, stale, true)
	assert.ErrorIs(t, err, ErrVersionConflict)

	stored, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, staleVersion+1, stored.Version)
	rec, ok := stored.Ledger.Record(troll.ID)
	require.True(t, ok)
	assert.True(t, rec.IsBanned)
	_, ok = stored.Ledger.Record(late.ID)
	assert.False(t, ok)
	assert.Equal(t, reaction.Aggregate{Likes: 1}, stored.Aggregate)

	// a reload sees the ban and keeps it
	like(t, stored, late, reaction.Dislike)
	require.NoError(t, posts.SaveReactions(ctx, stored, true))
	final, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	rec, _ = final.Ledger.Record(troll.ID)
	assert.True(t, rec.IsBanned)
	assert.Equal(t, reaction.Aggregate{Likes: 1, Dislikes: 1}, final.Aggregate)
}

func TestUserRepository_SetBanLedgerVersionGuard(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	owner := seedUser(t, db, "owner")
	troll := seedUser(t, db, "troll")
	blog := seedBlog(t, db, "news", owner)
	post := seedPost(t, db, blog, "hello")
	like(t, post, troll, reaction.Like)
	require.NoError(t, NewPostRepository(db).SaveReactions(ctx, post, false))

	// a reaction write lands between the cascade's read and its write
	var bumped bool
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:bump_version", func(tx *gorm.DB) {
		if bumped || tx.Statement.Table != "posts" {
			return
		}
		bumped = true
		require.NoError(t, tx.Session(&gorm.Session{NewDB: true}).Exec(
			"UPDATE posts SET version = version + 1 WHERE id = ?", post.ID).Error)
	}))

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := setLedgerBans[models.Post](ctx, tx, troll.ID, true)
		return err
	})
	assert.ErrorIs(t, err, ErrVersionConflict)
	require.True(t, bumped)

	var stored models.Post
	require.NoError(t, db.First(&stored, post.ID).Error)
	rec, _ := stored.Ledger.Record(troll.ID)
	assert.False(t, rec.IsBanned)

	// SetBan reruns the cascade on a fresh read
	res, err := NewUserRepository(db).SetBan(ctx, troll.ID, true, "spamming the comments", testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Posts)
	require.NoError(t, db.First(&stored, post.ID).Error)
	rec, _ = stored.Ledger.Record(troll.ID)
	assert.True(t, rec.IsBanned)
}

func TestUserRepository_SetBanUnknownUser(t *testing.T) {
	db := setupSQLite(t)
	_, err := NewUserRepository(db).SetBan(context.Background(), 42, true, "spamming the comments", testNow)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestUserRepository_Delete(t *testing.T) {
	db := setupSQLite(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	u := seedUser(t, db, "alice")

	require.NoError(t, repo.Delete(ctx, u.ID))
	assert.True(t, models.HasCode(repo.Delete(ctx, u.ID), models.CodeNotFound))
}
