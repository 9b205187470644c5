package server

import (
	"context"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/reaction"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type likeStatusRequest struct {
	LikeStatus string `json:"likeStatus" example:"Like"`
}

// SetPostLikeStatus handles PUT /api/posts/:postId/like-status
// @Summary React to a post
// @Description Sets the caller's reaction: None, Like or Dislike. Repeating the current status is a no-op.
// @Tags reactions
// @Accept json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Param request body likeStatusRequest true "Reaction"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/like-status [put]
func (s *Server) SetPostLikeStatus(c *fiber.Ctx) error {
	return s.setLikeStatus(c, "postId", s.postService.EnsureVisible, s.reactionService.ReactToPost)
}

// SetCommentLikeStatus handles PUT /api/comments/:commentId/like-status
// @Summary React to a comment
// @Tags reactions
// @Accept json
// @Security BearerAuth
// @Param commentId path int true "Comment ID"
// @Param request body likeStatusRequest true "Reaction"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /comments/{commentId}/like-status [put]
func (s *Server) SetCommentLikeStatus(c *fiber.Ctx) error {
	return s.setLikeStatus(c, "commentId", s.commentService.EnsureVisible, s.reactionService.ReactToComment)
}

// setLikeStatus validates the body before looking the target up, so a bad status is a 400 even
// for a missing target. Hidden targets (banned blog, banned commentator) are 404.
func (s *Server) setLikeStatus(
	c *fiber.Ctx,
	param string,
	visible func(context.Context, uint) error,
	react func(context.Context, service.ReactInput) error,
) error {
	targetID, err := parseID(c, param)
	if err != nil {
		return nil
	}
	var req likeStatusRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	if _, err := reaction.ParseStatus(req.LikeStatus); err != nil {
		return respondError(c, models.NewFieldValidationError("likeStatus", "likeStatus must be one of None, Like, Dislike"))
	}
	if err := visible(c.UserContext(), targetID); err != nil {
		return respondError(c, err)
	}
	err = react(c.UserContext(), service.ReactInput{
		UserID:     middleware.UserID(c),
		Login:      middleware.UserLogin(c),
		TargetID:   targetID,
		LikeStatus: req.LikeStatus,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
