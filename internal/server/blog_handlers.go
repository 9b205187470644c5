package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

func blogFilter(c *fiber.Ctx) repository.BlogFilter {
	return repository.BlogFilter{
		SearchNameTerm: c.Query("searchNameTerm"),
		PageQuery:      parsePageQuery(c),
	}
}

// GetBlogs handles GET /api/blogs
// @Summary List blogs
// @Description Paginated list of blogs that are not banned
// @Tags blogs
// @Produce json
// @Param searchNameTerm query string false "Name filter"
// @Param pageNumber query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Param sortBy query string false "Sort field" default(createdAt)
// @Param sortDirection query string false "asc or desc" default(desc)
// @Success 200 {object} models.Page[models.Blog]
// @Router /blogs [get]
func (s *Server) GetBlogs(c *fiber.Ctx) error {
	page, err := s.blogService.ListPublic(c.UserContext(), blogFilter(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetBlog handles GET /api/blogs/:id
// @Summary Get blog
// @Tags blogs
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} models.Blog
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{id} [get]
func (s *Server) GetBlog(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	blog, err := s.blogService.GetPublic(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(blog)
}

// GetBlogPosts handles GET /api/blogs/:blogId/posts
// @Summary List a blog's posts
// @Tags blogs
// @Produce json
// @Param blogId path int true "Blog ID"
// @Success 200 {object} models.Page[models.PostView]
// @Failure 404 {object} models.ErrorResponse
// @Router /blogs/{blogId}/posts [get]
func (s *Server) GetBlogPosts(c *fiber.Ctx) error {
	blogID, err := parseID(c, "blogId")
	if err != nil {
		return nil
	}
	page, err := s.postService.ListBlogPosts(c.UserContext(), blogID, parsePageQuery(c), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetMyBlogs handles GET /api/blogger/blogs
// @Summary List own blogs
// @Tags blogger
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Page[models.Blog]
// @Router /blogger/blogs [get]
func (s *Server) GetMyBlogs(c *fiber.Ctx) error {
	page, err := s.blogService.ListOwned(c.UserContext(), middleware.UserID(c), blogFilter(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// CreateBlog handles POST /api/blogger/blogs
// @Summary Create blog
// @Tags blogger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.BlogInput true "Blog"
// @Success 201 {object} models.Blog
// @Failure 400 {object} models.ErrorResponse
// @Router /blogger/blogs [post]
func (s *Server) CreateBlog(c *fiber.Ctx) error {
	var req service.BlogInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	blog, err := s.blogService.CreateBlog(c.UserContext(), middleware.UserID(c), middleware.UserLogin(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(blog)
}

// UpdateBlog handles PUT /api/blogger/blogs/:id
// @Summary Update blog
// @Tags blogger
// @Accept json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Param request body service.BlogInput true "Blog"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /blogger/blogs/{id} [put]
func (s *Server) UpdateBlog(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.BlogInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.blogService.UpdateBlog(c.UserContext(), middleware.UserID(c), id, req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteBlog handles DELETE /api/blogger/blogs/:id
// @Summary Delete blog
// @Tags blogger
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Success 204
// @Router /blogger/blogs/{id} [delete]
func (s *Server) DeleteBlog(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.blogService.DeleteBlog(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BanUserForBlog handles PUT /api/blogger/users/:id/ban
// @Summary Ban a user from one blog
// @Tags blogger
// @Accept json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body service.BlogUserBanInput true "Ban"
// @Success 204
// @Router /blogger/users/{id}/ban [put]
func (s *Server) BanUserForBlog(c *fiber.Ctx) error {
	userID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.BlogUserBanInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.blogService.BanUserForBlog(c.UserContext(), middleware.UserID(c), userID, req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetBlogBannedUsers handles GET /api/blogger/users/blog/:id
// @Summary Users banned for a blog
// @Tags blogger
// @Produce json
// @Security BearerAuth
// @Param id path int true "Blog ID"
// @Param searchLoginTerm query string false "Login filter"
// @Success 200 {object} models.Page[models.BannedUserView]
// @Router /blogger/users/blog/{id} [get]
func (s *Server) GetBlogBannedUsers(c *fiber.Ctx) error {
	blogID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	filter := repository.BannedUserFilter{
		SearchLoginTerm: c.Query("searchLoginTerm"),
		PageQuery:       parsePageQuery(c),
	}
	page, err := s.blogService.ListBannedUsers(c.UserContext(), middleware.UserID(c), blogID, filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}
