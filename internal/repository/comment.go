package repository

import (
	"context"
	"errors"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uint) error
	ListByPost(ctx context.Context, postID uint, q models.PageQuery) ([]models.Comment, int64, error)
	SaveReactions(ctx context.Context, comment *models.Comment, checkVersion bool) error
	InBatches(ctx context.Context, size int, fn func(batch []models.Comment) error) error
}

type commentRepository struct {
	db      *gorm.DB
	log     *observability.RepoLogger
	metrics *observability.DatabaseMetrics
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{
		db:      db,
		log:     observability.NewRepoLogger("comments"),
		metrics: observability.NewDatabaseMetrics("comments"),
	}
}

var commentSortColumns = sortColumns{
	"createdAt": "created_at",
	"content":   "content",
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	defer r.metrics.TrackQuery("create")()
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		r.log.LogError(ctx, err, "create")
		return models.NewInternalError(err)
	}
	r.log.LogCreate(ctx, map[string]interface{}{"comment_id": comment.ID, "post_id": comment.PostID})
	return nil
}

// GetByID returns hidden comments too; callers decide visibility.
func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	defer r.metrics.TrackQuery("get_by_id")()
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	defer r.metrics.TrackQuery("update")()
	res := r.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", comment.ID).Update("content", comment.Content)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", comment.ID)
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	defer r.metrics.TrackQuery("delete")()
	res := r.db.WithContext(ctx).Delete(&models.Comment{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Comment", id)
	}
	r.log.LogDelete(ctx, map[string]interface{}{"comment_id": id})
	return nil
}

// ListByPost pages through the visible comments of a post.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, q models.PageQuery) ([]models.Comment, int64, error) {
	defer r.metrics.TrackQuery("list_by_post")()
	base := readDB(r.db).WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND is_banned = ?", postID, false).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var comments []models.Comment
	if err := paginate(base, q, commentSortColumns).Find(&comments).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return comments, total, nil
}

func (r *commentRepository) SaveReactions(ctx context.Context, comment *models.Comment, checkVersion bool) error {
	defer r.metrics.TrackQuery("save_reactions")()
	return saveReactions(ctx, r.db, "comments", &models.Comment{}, comment.ID, &comment.State, &comment.Version, checkVersion)
}

// InBatches walks every comment in id order.
func (r *commentRepository) InBatches(ctx context.Context, size int, fn func(batch []models.Comment) error) error {
	var batch []models.Comment
	return r.db.WithContext(ctx).Order("id").FindInBatches(&batch, size, func(_ *gorm.DB, _ int) error {
		return fn(batch)
	}).Error
}
