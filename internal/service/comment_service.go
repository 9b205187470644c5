package service

import (
	"context"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	posts       *PostService
	blogs       *BlogService
	onDelete    func(key string)
}

type CreateCommentInput struct {
	UserID  uint
	Login   string
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

func NewCommentService(commentRepo repository.CommentRepository, posts *PostService, blogs *BlogService) *CommentService {
	return &CommentService{commentRepo: commentRepo, posts: posts, blogs: blogs}
}

// OnDelete registers a hook that receives the reaction key of every deleted comment.
func (s *CommentService) OnDelete(fn func(key string)) {
	s.onDelete = fn
}

func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (models.CommentView, error) {
	content := strings.TrimSpace(in.Content)
	if err := validation.ValidateCommentContent(content); err != nil {
		return models.CommentView{}, models.NewFieldValidationError("content", err.Error())
	}

	post, err := s.posts.visiblePost(ctx, in.PostID)
	if err != nil {
		return models.CommentView{}, err
	}
	banned, err := s.blogs.IsUserBanned(ctx, post.BlogID, in.UserID)
	if err != nil {
		return models.CommentView{}, err
	}
	if banned {
		return models.CommentView{}, models.NewForbiddenError("You are banned from commenting on this blog")
	}

	comment := &models.Comment{
		Content:          content,
		PostID:           post.ID,
		CommentatorID:    in.UserID,
		CommentatorLogin: in.Login,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return models.CommentView{}, err
	}
	return comment.ToView(in.UserID), nil
}

// ListComments lists the visible comments of a visible post.
func (s *CommentService) ListComments(ctx context.Context, postID uint, q models.PageQuery, viewerID uint) (models.Page[models.CommentView], error) {
	if _, err := s.posts.visiblePost(ctx, postID); err != nil {
		return models.Page[models.CommentView]{}, err
	}
	comments, total, err := s.commentRepo.ListByPost(ctx, postID, q)
	if err != nil {
		return models.Page[models.CommentView]{}, err
	}
	views := make([]models.CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, comments[i].ToView(viewerID))
	}
	return pageOf(views, q, total), nil
}

// GetComment hides comments of banned commentators.
func (s *CommentService) GetComment(ctx context.Context, id, viewerID uint) (models.CommentView, error) {
	comment, err := s.visibleComment(ctx, id)
	if err != nil {
		return models.CommentView{}, err
	}
	return comment.ToView(viewerID), nil
}

// EnsureVisible returns NotFound for missing comments and comments of banned users.
func (s *CommentService) EnsureVisible(ctx context.Context, id uint) error {
	_, err := s.visibleComment(ctx, id)
	return err
}

func (s *CommentService) visibleComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if comment.IsBanned {
		return nil, models.NewNotFoundError("Comment", id)
	}
	return comment, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) error {
	content := strings.TrimSpace(in.Content)
	if err := validation.ValidateCommentContent(content); err != nil {
		return models.NewFieldValidationError("content", err.Error())
	}
	comment, err := s.ownedComment(ctx, in.UserID, in.CommentID)
	if err != nil {
		return err
	}
	comment.Content = content
	return s.commentRepo.Update(ctx, comment)
}

func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	if _, err := s.ownedComment(ctx, userID, commentID); err != nil {
		return err
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return err
	}
	if s.onDelete != nil {
		s.onDelete(models.CommentReactionKey(commentID))
	}
	return nil
}

func (s *CommentService) ownedComment(ctx context.Context, userID, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.CommentatorID != userID {
		return nil, models.NewForbiddenError("You can only modify your own comments")
	}
	return comment, nil
}
