// Package server contains the HTTP handlers for the API endpoints.
package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Registration handles POST /api/auth/registration
// @Summary Register a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.CreateUserInput true "Registration request"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Router /auth/registration [post]
func (s *Server) Registration(c *fiber.Ctx) error {
	var req service.CreateUserInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if _, err := s.authService.Register(c.UserContext(), req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate by login or email and return an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{loginOrEmail=string,password=string} true "Login credentials"
// @Success 200 {object} object{accessToken=string}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		LoginOrEmail string `json:"loginOrEmail"`
		Password     string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	token, err := s.authService.Login(c.UserContext(), req.LoginOrEmail, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"accessToken": token})
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Me
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	me, err := s.authService.Me(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(me)
}
