package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts
// @Summary List posts
// @Tags posts
// @Produce json
// @Param pageNumber query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(10)
// @Param sortBy query string false "Sort field" default(createdAt)
// @Param sortDirection query string false "asc or desc" default(desc)
// @Success 200 {object} models.Page[models.PostView]
// @Router /posts [get]
func (s *Server) GetPosts(c *fiber.Ctx) error {
	page, err := s.postService.ListPosts(c.UserContext(), parsePageQuery(c), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
// @Summary Get post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.PostView
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.postService.GetPost(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/blogger/blogs/:blogId/posts
// @Summary Create post
// @Tags blogger
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param blogId path int true "Blog ID"
// @Param request body service.PostInput true "Post"
// @Success 201 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /blogger/blogs/{blogId}/posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	blogID, err := parseID(c, "blogId")
	if err != nil {
		return nil
	}
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	post, err := s.postService.CreatePost(c.UserContext(), middleware.UserID(c), blogID, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/blogger/blogs/:blogId/posts/:postId
// @Summary Update post
// @Tags blogger
// @Accept json
// @Security BearerAuth
// @Param blogId path int true "Blog ID"
// @Param postId path int true "Post ID"
// @Param request body service.PostInput true "Post"
// @Success 204
// @Router /blogger/blogs/{blogId}/posts/{postId} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	blogID, err := parseID(c, "blogId")
	if err != nil {
		return nil
	}
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}
	var req service.PostInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.postService.UpdatePost(c.UserContext(), middleware.UserID(c), blogID, postID, req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeletePost handles DELETE /api/blogger/blogs/:blogId/posts/:postId
// @Summary Delete post
// @Tags blogger
// @Security BearerAuth
// @Param blogId path int true "Blog ID"
// @Param postId path int true "Post ID"
// @Success 204
// @Router /blogger/blogs/{blogId}/posts/{postId} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	blogID, err := parseID(c, "blogId")
	if err != nil {
		return nil
	}
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}
	if err := s.postService.DeletePost(c.UserContext(), middleware.UserID(c), blogID, postID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
