package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlogFilter narrows a blog listing.
type BlogFilter struct {
	SearchNameTerm string
	// OwnerID restricts the listing to one blogger's blogs.
	OwnerID *uint
	// IncludeBanned keeps admin-banned blogs, for super-admin listings.
	IncludeBanned bool
	models.PageQuery
}

// BannedUserFilter narrows the users banned for one blog.
type BannedUserFilter struct {
	SearchLoginTerm string
	models.PageQuery
}

// BlogRepository defines persistence operations for blogs and per-blog user bans.
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	Update(ctx context.Context, blog *models.Blog) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter BlogFilter) ([]models.Blog, int64, error)
	BindOwner(ctx context.Context, blogID uint, owner *models.User) error
	SetBanned(ctx context.Context, blogID uint, banned bool, at time.Time) error
	BanUser(ctx context.Context, ban *models.BlogUserBan) error
	UnbanUser(ctx context.Context, blogID, userID uint) error
	IsUserBanned(ctx context.Context, blogID, userID uint) (bool, error)
	ListBannedUsers(ctx context.Context, blogID uint, filter BannedUserFilter) ([]models.BlogUserBan, int64, error)
}

type blogRepository struct {
	db      *gorm.DB
	log     *observability.RepoLogger
	metrics *observability.DatabaseMetrics
}

// NewBlogRepository returns a new BlogRepository implementation.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{
		db:      db,
		log:     observability.NewRepoLogger("blogs"),
		metrics: observability.NewDatabaseMetrics("blogs"),
	}
}

var blogSortColumns = sortColumns{
	"createdAt":    "created_at",
	"name":         "name",
	"description":  "description",
	"websiteUrl":   "website_url",
	"isMembership": "is_membership",
}

var bannedUserSortColumns = sortColumns{
	"createdAt": "ban_date",
	"banDate":   "ban_date",
	"login":     "login",
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	defer r.metrics.TrackQuery("create")()
	if err := r.db.WithContext(ctx).Create(blog).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"blog_id": blog.ID})
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	defer r.metrics.TrackQuery("get_by_id")()
	var blog models.Blog
	if err := readDB(r.db).WithContext(ctx).First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &blog, nil
}

// Update writes the editable fields and keeps post.blog_name in step with a rename.
func (r *blogRepository) Update(ctx context.Context, blog *models.Blog) error {
	defer r.metrics.TrackQuery("update")()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Blog{}).Where("id = ?", blog.ID).Updates(map[string]interface{}{
			"name":          blog.Name,
			"description":   blog.Description,
			"website_url":   blog.WebsiteURL,
			"is_membership": blog.IsMembership,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Blog", blog.ID)
		}
		return tx.Model(&models.Post{}).Where("blog_id = ?", blog.ID).Update("blog_name", blog.Name).Error
	})
	if err != nil {
		return wrapTxError(err)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"blog_id": blog.ID})
	return nil
}

func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete")()
	res := r.db.WithContext(ctx).Delete(&models.Blog{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blog", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"blog_id": id})
	return nil
}

func (r *blogRepository) List(ctx context.Context, filter BlogFilter) ([]models.Blog, int64, error) {
	defer r.metrics.TrackQuery("list")()
	q := readDB(r.db).WithContext(ctx).Model(&models.Blog{})
	if term := strings.TrimSpace(filter.SearchNameTerm); term != "" {
		q = q.Where("LOWER(name) LIKE ?", likeTerm(term))
	}
	if filter.OwnerID != nil {
		q = q.Where("owner_id = ?", *filter.OwnerID)
	}
	if !filter.IncludeBanned {
		q = q.Where("is_banned_by_admin = ?", false)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var blogs []models.Blog
	if err := paginate(q, filter.PageQuery, blogSortColumns).Find(&blogs).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return blogs, total, nil
}

// BindOwner assigns an owner to a blog that has none.
func (r *blogRepository) BindOwner(ctx context.Context, blogID uint, owner *models.User) error {
	defer r.metrics.TrackQuery("bind_owner")()
	res := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("id = ? AND owner_id IS NULL", blogID).
		Updates(map[string]interface{}{"owner_id": owner.ID, "owner_login": owner.Login})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, blogID); err != nil {
			return err
		}
		return models.NewFieldValidationError("id", "blog is already bound to a user")
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"blog_id": blogID, "owner_id": owner.ID})
	return nil
}

func (r *blogRepository) SetBanned(ctx context.Context, blogID uint, banned bool, at time.Time) error {
	defer r.metrics.TrackQuery("set_banned")()
	updates := map[string]interface{}{"is_banned_by_admin": banned, "ban_date": &at}
	if !banned {
		updates["ban_date"] = nil
	}
	res := r.db.WithContext(ctx).Model(&models.Blog{}).Where("id = ?", blogID).Updates(updates)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blog", blogID)
	}
	return nil
}

// BanUser records or refreshes a per-blog ban.
func (r *blogRepository) BanUser(ctx context.Context, ban *models.BlogUserBan) error {
	defer r.metrics.TrackQuery("ban_user")()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blog_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"login", "ban_reason", "ban_date"}),
	}).Create(ban).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) UnbanUser(ctx context.Context, blogID, userID uint) error {
	defer r.metrics.TrackQuery("unban_user")()
	if err := r.db.WithContext(ctx).
		Where("blog_id = ? AND user_id = ?", blogID, userID).
		Delete(&models.BlogUserBan{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) IsUserBanned(ctx context.Context, blogID, userID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BlogUserBan{}).
		Where("blog_id = ? AND user_id = ?", blogID, userID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *blogRepository) ListBannedUsers(ctx context.Context, blogID uint, filter BannedUserFilter) ([]models.BlogUserBan, int64, error) {
	defer r.metrics.TrackQuery("list_banned_users")()
	q := readDB(r.db).WithContext(ctx).Model(&models.BlogUserBan{}).Where("blog_id = ?", blogID)
	if term := strings.TrimSpace(filter.SearchLoginTerm); term != "" {
		q = q.Where("LOWER(login) LIKE ?", likeTerm(term))
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var bans []models.BlogUserBan
	if err := paginate(q, filter.PageQuery, bannedUserSortColumns).Find(&bans).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return bans, total, nil
}

func wrapTxError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}
