package server

import (
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/sa/users
// @Summary List users
// @Tags sa
// @Produce json
// @Security BasicAuth
// @Param banStatus query string false "all, banned or notBanned" default(all)
// @Param searchLoginTerm query string false "Login filter"
// @Param searchEmailTerm query string false "Email filter"
// @Success 200 {object} models.Page[models.SAUserView]
// @Router /sa/users [get]
func (s *Server) GetUsers(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		BanStatus:       c.Query("banStatus", repository.BanStatusAll),
		SearchLoginTerm: c.Query("searchLoginTerm"),
		SearchEmailTerm: c.Query("searchEmailTerm"),
		PageQuery:       parsePageQuery(c),
	}
	page, err := s.userService.ListUsers(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// CreateUser handles POST /api/sa/users
// @Summary Create user
// @Tags sa
// @Accept json
// @Produce json
// @Security BasicAuth
// @Param request body service.CreateUserInput true "User"
// @Success 201 {object} models.SAUserView
// @Failure 400 {object} models.ErrorResponse
// @Router /sa/users [post]
func (s *Server) CreateUser(c *fiber.Ctx) error {
	var req service.CreateUserInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	user, err := s.userService.CreateUser(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user.ToSAView())
}

// DeleteUser handles DELETE /api/sa/users/:id
// @Summary Delete user
// @Tags sa
// @Security BasicAuth
// @Param id path int true "User ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /sa/users/{id} [delete]
func (s *Server) DeleteUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.userService.DeleteUser(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BanUser handles PUT /api/sa/users/:id/ban
// @Summary Ban or unban a user
// @Description Banning hides the user's comments and reactions from ban-aware views
// @Tags sa
// @Accept json
// @Security BasicAuth
// @Param id path int true "User ID"
// @Param request body service.BanUserInput true "Ban"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /sa/users/{id}/ban [put]
func (s *Server) BanUser(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.BanUserInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.userService.BanUser(c.UserContext(), id, req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetAllBlogs handles GET /api/sa/blogs
// @Summary List all blogs with owner info
// @Tags sa
// @Produce json
// @Security BasicAuth
// @Success 200 {object} models.Page[models.SABlogView]
// @Router /sa/blogs [get]
func (s *Server) GetAllBlogs(c *fiber.Ctx) error {
	page, err := s.blogService.ListAll(c.UserContext(), blogFilter(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// BindBlogOwner handles PUT /api/sa/blogs/:id/bind-with-user/:userId
// @Summary Bind an ownerless blog to a user
// @Tags sa
// @Security BasicAuth
// @Param id path int true "Blog ID"
// @Param userId path int true "User ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /sa/blogs/{id}/bind-with-user/{userId} [put]
func (s *Server) BindBlogOwner(c *fiber.Ctx) error {
	blogID, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	if err := s.blogService.BindOwner(c.UserContext(), blogID, userID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// BanBlog handles PUT /api/sa/blogs/:id/ban
// @Summary Ban or unban a blog
// @Tags sa
// @Accept json
// @Security BasicAuth
// @Param id path int true "Blog ID"
// @Param request body object{isBanned=bool} true "Ban"
// @Success 204
// @Router /sa/blogs/{id}/ban [put]
func (s *Server) BanBlog(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req struct {
		IsBanned bool `json:"isBanned"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if err := s.blogService.SetBanned(c.UserContext(), id, req.IsBanned); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
