package server

import (
	"inkwell/internal/middleware"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type commentRequest struct {
	Content string `json:"content"`
}

// GetPostComments handles GET /api/posts/:postId/comments
// @Summary List a post's comments
// @Description Comments of banned users are hidden
// @Tags comments
// @Produce json
// @Param postId path int true "Post ID"
// @Success 200 {object} models.Page[models.CommentView]
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comments [get]
func (s *Server) GetPostComments(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}
	page, err := s.commentService.ListComments(c.UserContext(), postID, parsePageQuery(c), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// CreateComment handles POST /api/posts/:postId/comments
// @Summary Comment on a post
// @Tags comments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Param request body commentRequest true "Comment"
// @Success 201 {object} models.CommentView
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/comments [post]
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	comment, err := s.commentService.CreateComment(c.UserContext(), service.CreateCommentInput{
		UserID:  middleware.UserID(c),
		Login:   middleware.UserLogin(c),
		PostID:  postID,
		Content: req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// GetComment handles GET /api/comments/:id
// @Summary Get comment
// @Tags comments
// @Produce json
// @Param id path int true "Comment ID"
// @Success 200 {object} models.CommentView
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{id} [get]
func (s *Server) GetComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), id, middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(comment)
}

// UpdateComment handles PUT /api/comments/:id
// @Summary Update own comment
// @Tags comments
// @Accept json
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Param request body commentRequest true "Comment"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [put]
func (s *Server) UpdateComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req commentRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	err = s.commentService.UpdateComment(c.UserContext(), service.UpdateCommentInput{
		UserID:    middleware.UserID(c),
		CommentID: id,
		Content:   req.Content,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DeleteComment handles DELETE /api/comments/:id
// @Summary Delete own comment
// @Tags comments
// @Security BearerAuth
// @Param id path int true "Comment ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Router /comments/{id} [delete]
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.commentService.DeleteComment(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
