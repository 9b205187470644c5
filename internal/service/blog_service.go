package service

import (
	"context"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/jonboulle/clockwork"
)

type BlogService struct {
	blogRepo repository.BlogRepository
	userRepo repository.UserRepository
	clock    clockwork.Clock
}

// BlogInput is the editable part of a blog.
type BlogInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	WebsiteURL   string `json:"websiteUrl"`
	IsMembership bool   `json:"isMembership"`
}

// BlogUserBanInput bans or unbans a user from one blog.
type BlogUserBanInput struct {
	IsBanned  bool   `json:"isBanned"`
	BanReason string `json:"banReason"`
	BlogID    uint   `json:"blogId"`
}

func NewBlogService(blogRepo repository.BlogRepository, userRepo repository.UserRepository) *BlogService {
	return &BlogService{blogRepo: blogRepo, userRepo: userRepo, clock: clockwork.NewRealClock()}
}

func (in *BlogInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.WebsiteURL = strings.TrimSpace(in.WebsiteURL)

	var errs fieldErrors
	errs.check("name", validation.RequiredText(in.Name, validation.BlogNameMax))
	errs.check("description", validation.RequiredText(in.Description, validation.BlogDescriptionMax))
	errs.check("websiteUrl", validation.ValidateWebsiteURL(in.WebsiteURL))
	return errs.err()
}

// ListPublic lists blogs that are not banned by an admin.
func (s *BlogService) ListPublic(ctx context.Context, filter repository.BlogFilter) (models.Page[models.Blog], error) {
	filter.IncludeBanned = false
	filter.OwnerID = nil
	blogs, total, err := s.blogRepo.List(ctx, filter)
	if err != nil {
		return models.Page[models.Blog]{}, err
	}
	return pageOf(blogs, filter.PageQuery, total), nil
}

// GetPublic returns a visible blog, served from the cache when possible.
// Banned blogs are reported as missing.
func (s *BlogService) GetPublic(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	err := cache.Aside(ctx, cache.BlogKey(id), &blog, cache.BlogTTL, func() error {
		b, err := s.blogRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b.IsBannedByAdmin {
			return models.NewNotFoundError("Blog", id)
		}
		blog = *b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// ListOwned lists the caller's blogs, including admin-banned ones.
func (s *BlogService) ListOwned(ctx context.Context, ownerID uint, filter repository.BlogFilter) (models.Page[models.Blog], error) {
	filter.OwnerID = &ownerID
	filter.IncludeBanned = true
	blogs, total, err := s.blogRepo.List(ctx, filter)
	if err != nil {
		return models.Page[models.Blog]{}, err
	}
	return pageOf(blogs, filter.PageQuery, total), nil
}

func (s *BlogService) CreateBlog(ctx context.Context, ownerID uint, ownerLogin string, in BlogInput) (*models.Blog, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	blog := &models.Blog{
		Name:         in.Name,
		Description:  in.Description,
		WebsiteURL:   in.WebsiteURL,
		IsMembership: in.IsMembership,
		OwnerID:      &ownerID,
		OwnerLogin:   ownerLogin,
	}
	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, err
	}
	return blog, nil
}

func (s *BlogService) UpdateBlog(ctx context.Context, userID, blogID uint, in BlogInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	blog, err := s.OwnedBlog(ctx, userID, blogID)
	if err != nil {
		return err
	}
	blog.Name = in.Name
	blog.Description = in.Description
	blog.WebsiteURL = in.WebsiteURL
	blog.IsMembership = in.IsMembership
	if err := s.blogRepo.Update(ctx, blog); err != nil {
		return err
	}
	cache.InvalidateBlog(ctx, blogID)
	return nil
}

func (s *BlogService) DeleteBlog(ctx context.Context, userID, blogID uint) error {
	if _, err := s.OwnedBlog(ctx, userID, blogID); err != nil {
		return err
	}
	if err := s.blogRepo.Delete(ctx, blogID); err != nil {
		return err
	}
	cache.InvalidateBlog(ctx, blogID)
	return nil
}

// OwnedBlog loads a blog and checks that userID owns it.
func (s *BlogService) OwnedBlog(ctx context.Context, userID, blogID uint) (*models.Blog, error) {
	blog, err := s.blogRepo.GetByID(ctx, blogID)
	if err != nil {
		return nil, err
	}
	if !blog.OwnedBy(userID) {
		return nil, models.NewForbiddenError("You do not own this blog")
	}
	return blog, nil
}

// BanUserForBlog lets a blog owner ban or unban a user from commenting on the blog.
func (s *BlogService) BanUserForBlog(ctx context.Context, ownerID, targetUserID uint, in BlogUserBanInput) error {
	var errs fieldErrors
	if in.IsBanned {
		errs.check("banReason", validation.ValidateBanReason(in.BanReason))
	}
	if in.BlogID == 0 {
		errs = append(errs, models.FieldMessage{Field: "blogId", Message: "blogId is required"})
	}
	if err := errs.err(); err != nil {
		return err
	}

	if _, err := s.OwnedBlog(ctx, ownerID, in.BlogID); err != nil {
		return err
	}
	target, err := s.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		return err
	}

	if !in.IsBanned {
		return s.blogRepo.UnbanUser(ctx, in.BlogID, target.ID)
	}
	return s.blogRepo.BanUser(ctx, &models.BlogUserBan{
		BlogID:    in.BlogID,
		UserID:    target.ID,
		Login:     target.Login,
		BanReason: strings.TrimSpace(in.BanReason),
		BanDate:   utcNow(s.clock),
	})
}

func (s *BlogService) ListBannedUsers(ctx context.Context, ownerID, blogID uint, filter repository.BannedUserFilter) (models.Page[models.BannedUserView], error) {
	if _, err := s.OwnedBlog(ctx, ownerID, blogID); err != nil {
		return models.Page[models.BannedUserView]{}, err
	}
	bans, total, err := s.blogRepo.ListBannedUsers(ctx, blogID, filter)
	if err != nil {
		return models.Page[models.BannedUserView]{}, err
	}
	views := make([]models.BannedUserView, 0, len(bans))
	for i := range bans {
		views = append(views, bans[i].ToView())
	}
	return pageOf(views, filter.PageQuery, total), nil
}

// IsUserBanned reports whether userID is banned from blogID.
func (s *BlogService) IsUserBanned(ctx context.Context, blogID, userID uint) (bool, error) {
	return s.blogRepo.IsUserBanned(ctx, blogID, userID)
}

// ListAll is the super-admin listing of every blog with owner and ban info.
func (s *BlogService) ListAll(ctx context.Context, filter repository.BlogFilter) (models.Page[models.SABlogView], error) {
	filter.IncludeBanned = true
	blogs, total, err := s.blogRepo.List(ctx, filter)
	if err != nil {
		return models.Page[models.SABlogView]{}, err
	}
	views := make([]models.SABlogView, 0, len(blogs))
	for i := range blogs {
		views = append(views, blogs[i].ToSAView())
	}
	return pageOf(views, filter.PageQuery, total), nil
}

func (s *BlogService) BindOwner(ctx context.Context, blogID, userID uint) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return models.NewFieldValidationError("userId", "user does not exist")
		}
		return err
	}
	if err := s.blogRepo.BindOwner(ctx, blogID, user); err != nil {
		return err
	}
	cache.InvalidateBlog(ctx, blogID)
	return nil
}

func (s *BlogService) SetBanned(ctx context.Context, blogID uint, banned bool) error {
	if err := s.blogRepo.SetBanned(ctx, blogID, banned, utcNow(s.clock)); err != nil {
		return err
	}
	cache.InvalidateBlog(ctx, blogID)
	return nil
}
