package service

import (
	"context"
	"strings"

	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/reaction"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

type PostService struct {
	postRepo repository.PostRepository
	blogs    *BlogService
	flags    *featureflags.Manager
	onDelete func(key string)
}

// PostInput is the editable part of a post.
type PostInput struct {
	Title            string `json:"title"`
	ShortDescription string `json:"shortDescription"`
	Content          string `json:"content"`
}

func NewPostService(postRepo repository.PostRepository, blogs *BlogService, flags *featureflags.Manager) *PostService {
	return &PostService{postRepo: postRepo, blogs: blogs, flags: flags}
}

// OnDelete registers a hook that receives the reaction key of every deleted post.
func (s *PostService) OnDelete(fn func(key string)) {
	s.onDelete = fn
}

func (in *PostInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.ShortDescription = strings.TrimSpace(in.ShortDescription)
	in.Content = strings.TrimSpace(in.Content)

	var errs fieldErrors
	errs.check("title", validation.RequiredText(in.Title, validation.PostTitleMax))
	errs.check("shortDescription", validation.RequiredText(in.ShortDescription, validation.PostShortDescMax))
	errs.check("content", validation.RequiredText(in.Content, validation.PostContentMax))
	return errs.err()
}

// newest picks the newestLikes ordering for a viewer.
func (s *PostService) newest(viewerID uint) models.NewestLikesFunc {
	if s.flags.Enabled(featureflags.NewestLikesByTime, viewerID) {
		return reaction.NewestLikesByTime
	}
	return reaction.NewestLikes
}

func (s *PostService) view(p *models.Post, viewerID uint) models.PostView {
	return p.ToView(viewerID, s.newest(viewerID))
}

func (s *PostService) page(posts []models.Post, q models.PageQuery, total int64, viewerID uint) models.Page[models.PostView] {
	views := make([]models.PostView, 0, len(posts))
	for i := range posts {
		views = append(views, s.view(&posts[i], viewerID))
	}
	return pageOf(views, q, total)
}

func (s *PostService) ListPosts(ctx context.Context, q models.PageQuery, viewerID uint) (models.Page[models.PostView], error) {
	posts, total, err := s.postRepo.List(ctx, repository.PostFilter{PageQuery: q})
	if err != nil {
		return models.Page[models.PostView]{}, err
	}
	return s.page(posts, q, total, viewerID), nil
}

// ListBlogPosts lists the posts of a visible blog.
func (s *PostService) ListBlogPosts(ctx context.Context, blogID uint, q models.PageQuery, viewerID uint) (models.Page[models.PostView], error) {
	if _, err := s.blogs.GetPublic(ctx, blogID); err != nil {
		return models.Page[models.PostView]{}, err
	}
	posts, total, err := s.postRepo.List(ctx, repository.PostFilter{BlogID: &blogID, PageQuery: q})
	if err != nil {
		return models.Page[models.PostView]{}, err
	}
	return s.page(posts, q, total, viewerID), nil
}

// GetPost returns a post of a visible blog.
func (s *PostService) GetPost(ctx context.Context, id, viewerID uint) (models.PostView, error) {
	post, err := s.visiblePost(ctx, id)
	if err != nil {
		return models.PostView{}, err
	}
	return s.view(post, viewerID), nil
}

// EnsureVisible returns NotFound unless the post exists and its blog is public.
func (s *PostService) EnsureVisible(ctx context.Context, id uint) error {
	_, err := s.visiblePost(ctx, id)
	return err
}

// visiblePost loads a post and hides it when its blog is banned or gone.
func (s *PostService) visiblePost(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.blogs.GetPublic(ctx, post.BlogID); err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) CreatePost(ctx context.Context, userID, blogID uint, in PostInput) (models.PostView, error) {
	if err := in.validate(); err != nil {
		return models.PostView{}, err
	}
	blog, err := s.blogs.OwnedBlog(ctx, userID, blogID)
	if err != nil {
		return models.PostView{}, err
	}
	post := &models.Post{
		Title:            in.Title,
		ShortDescription: in.ShortDescription,
		Content:          in.Content,
		BlogID:           blog.ID,
		BlogName:         blog.Name,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return models.PostView{}, err
	}
	return s.view(post, userID), nil
}

func (s *PostService) UpdatePost(ctx context.Context, userID, blogID, postID uint, in PostInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	post, err := s.ownedPost(ctx, userID, blogID, postID)
	if err != nil {
		return err
	}
	post.Title = in.Title
	post.ShortDescription = in.ShortDescription
	post.Content = in.Content
	return s.postRepo.Update(ctx, post)
}

func (s *PostService) DeletePost(ctx context.Context, userID, blogID, postID uint) error {
	if _, err := s.ownedPost(ctx, userID, blogID, postID); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}
	if s.onDelete != nil {
		s.onDelete(models.PostReactionKey(postID))
	}
	return nil
}

func (s *PostService) ownedPost(ctx context.Context, userID, blogID, postID uint) (*models.Post, error) {
	if _, err := s.blogs.OwnedBlog(ctx, userID, blogID); err != nil {
		return nil, err
	}
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.BlogID != blogID {
		return nil, models.NewNotFoundError("Post", postID)
	}
	return post, nil
}
