// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// Ban-status filters for user listings.
const (
	BanStatusAll       = "all"
	BanStatusBanned    = "banned"
	BanStatusNotBanned = "notBanned"
)

// UserFilter narrows a user listing. Search terms are OR-ed together.
type UserFilter struct {
	BanStatus       string
	SearchLoginTerm string
	SearchEmailTerm string
	models.PageQuery
}

// setBanAttempts bounds reruns of the ban cascade after a concurrent reaction write.
const setBanAttempts = 3

// BanResult reports what a user ban touched.
type BanResult struct {
	Comments int64
	Posts    int
	Replies  int
}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByLoginOrEmail(ctx context.Context, loginOrEmail string) (*models.User, error)
	Taken(ctx context.Context, login, email string) (loginTaken, emailTaken bool, err error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter UserFilter) ([]models.User, int64, error)
	SetBan(ctx context.Context, id uint, banned bool, reason string, at time.Time) (BanResult, error)
}

type userRepository struct {
	db      *gorm.DB
	log     *observability.RepoLogger
	metrics *observability.DatabaseMetrics
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db:      db,
		log:     observability.NewRepoLogger("users"),
		metrics: observability.NewDatabaseMetrics("users"),
	}
}

var userSortColumns = sortColumns{
	"createdAt": "created_at",
	"login":     "login",
	"email":     "email",
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer r.metrics.TrackQuery("get_by_id")()
	var user models.User
	if err := readDB(r.db).WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

// GetByLoginOrEmail returns nil, nil when no user matches.
func (r *userRepository) GetByLoginOrEmail(ctx context.Context, loginOrEmail string) (*models.User, error) {
	defer r.metrics.TrackQuery("get_by_login_or_email")()
	var user models.User
	value := strings.TrimSpace(loginOrEmail)
	if err := r.db.WithContext(ctx).
		Where("login = ? OR LOWER(email) = ?", value, strings.ToLower(value)).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Taken(ctx context.Context, login, email string) (bool, bool, error) {
	var found []models.User
	if err := r.db.WithContext(ctx).Unscoped().
		Select("login", "email").
		Where("login = ? OR LOWER(email) = ?", login, strings.ToLower(email)).
		Find(&found).Error; err != nil {
		return false, false, models.NewInternalError(err)
	}
	var loginTaken, emailTaken bool
	for _, u := range found {
		loginTaken = loginTaken || u.Login == login
		emailTaken = emailTaken || strings.EqualFold(u.Email, email)
	}
	return loginTaken, emailTaken, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer r.metrics.TrackQuery("create")()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("User already exists")
		}
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"user_id": user.ID, "login": user.Login})
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete")()
	res := r.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"user_id": id})
	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]models.User, int64, error) {
	defer r.metrics.TrackQuery("list")()
	q := readDB(r.db).WithContext(ctx).Model(&models.User{})

	switch filter.BanStatus {
	case BanStatusBanned:
		q = q.Where("is_banned = ?", true)
	case BanStatusNotBanned:
		q = q.Where("is_banned = ?", false)
	}

	login, email := strings.TrimSpace(filter.SearchLoginTerm), strings.TrimSpace(filter.SearchEmailTerm)
	switch {
	case login != "" && email != "":
		q = q.Where("LOWER(login) LIKE ? OR LOWER(email) LIKE ?", likeTerm(login), likeTerm(email))
	case login != "":
		q = q.Where("LOWER(login) LIKE ?", likeTerm(login))
	case email != "":
		q = q.Where("LOWER(email) LIKE ?", likeTerm(email))
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var users []models.User
	if err := paginate(q, filter.PageQuery, userSortColumns).Find(&users).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

// SetBan updates the user's ban info and mirrors the flag onto their comments
// and onto their records in every post and comment reaction ledger, in one transaction.
func (r *userRepository) SetBan(ctx context.Context, id uint, banned bool, reason string, at time.Time) (BanResult, error) {
	defer r.metrics.TrackQuery("set_ban")()
	var result BanResult

	updates := map[string]interface{}{
		"is_banned":  banned,
		"ban_reason": reason,
		"ban_date":   &at,
	}
	if !banned {
		updates["ban_reason"] = ""
		updates["ban_date"] = nil
	}

	var err error
	for attempt := 1; attempt <= setBanAttempts; attempt++ {
		result, err = r.setBanTx(ctx, id, banned, updates)
		if !errors.Is(err, ErrVersionConflict) {
			break
		}
		r.log.LogRetry(ctx, "set_ban", map[string]interface{}{
			"user_id": id,
			"attempt": attempt,
		})
	}
	if err != nil {
		r.log.LogError(ctx, err, "set_ban")
		return result, wrapTxError(err)
	}

	r.log.LogUpdate(ctx, map[string]interface{}{
		"user_id":         id,
		"banned":          banned,
		"comments":        result.Comments,
		"post_ledgers":    result.Posts,
		"comment_ledgers": result.Replies,
	})
	return result, nil
}

func (r *userRepository) setBanTx(ctx context.Context, id uint, banned bool, updates map[string]interface{}) (BanResult, error) {
	var result BanResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("User", id)
		}

		comments := tx.Model(&models.Comment{}).Where("commentator_id = ?", id).Update("is_banned", banned)
		if comments.Error != nil {
			return comments.Error
		}
		result.Comments = comments.RowsAffected

		var err error
		if result.Posts, err = setLedgerBans[models.Post](ctx, tx, id, banned); err != nil {
			return err
		}
		if result.Replies, err = setLedgerBans[models.Comment](ctx, tx, id, banned); err != nil {
			return err
		}
		return nil
	})
	return result, err
}
