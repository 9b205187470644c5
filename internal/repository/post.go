package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// PostFilter narrows a post listing.
type PostFilter struct {
	BlogID *uint
	models.PageQuery
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error)
	SaveReactions(ctx context.Context, post *models.Post, checkVersion bool) error
	InBatches(ctx context.Context, size int, fn func(batch []models.Post) error) error
}

type postRepository struct {
	db      *gorm.DB
	log     *observability.RepoLogger
	metrics *observability.DatabaseMetrics
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{
		db:      db,
		log:     observability.NewRepoLogger("posts"),
		metrics: observability.NewDatabaseMetrics("posts"),
	}
}

var postSortColumns = sortColumns{
	"createdAt":        "created_at",
	"title":            "title",
	"shortDescription": "short_description",
	"content":          "content",
	"blogId":           "blog_id",
	"blogName":         "blog_name",
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("create")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"post_id": post.ID, "blog_id": post.BlogID})
	return nil
}

// GetByID reads from the primary so a reaction read-modify-write sees the latest version.
func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer r.metrics.TrackQuery("get_by_id")()
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer r.metrics.TrackQuery("update")()
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
		"title":             post.Title,
		"short_description": post.ShortDescription,
		"content":           post.Content,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	r.log.LogUpdate(ctx, map[string]interface{}{"post_id": post.ID})
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete")()
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"post_id": id})
	return nil
}

// List pages through posts, leaving out posts of admin-banned blogs.
func (r *postRepository) List(ctx context.Context, filter PostFilter) ([]models.Post, int64, error) {
	defer r.metrics.TrackQuery("list")()
	q := readDB(r.db).WithContext(ctx).Model(&models.Post{}).
		Where("blog_id NOT IN (?)", readDB(r.db).Model(&models.Blog{}).Select("id").Where("is_banned_by_admin = ?", true))
	if filter.BlogID != nil {
		q = q.Where("blog_id = ?", *filter.BlogID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var posts []models.Post
	if err := paginate(q, filter.PageQuery, postSortColumns).Find(&posts).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return posts, total, nil
}

// SaveReactions persists the post's reaction state. See saveReactions.
func (r *postRepository) SaveReactions(ctx context.Context, post *models.Post, checkVersion bool) error {
	defer r.metrics.TrackQuery("save_reactions")()
	return saveReactions(ctx, r.db, "posts", &models.Post{}, post.ID, &post.State, &post.Version, checkVersion)
}

// InBatches walks every post in id order.
func (r *postRepository) InBatches(ctx context.Context, size int, fn func(batch []models.Post) error) error {
	var batch []models.Post
	return r.db.WithContext(ctx).Order("id").FindInBatches(&batch, size, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}
