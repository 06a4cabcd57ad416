package handler

import (
	"github.com/gofiber/fiber/v2"

	"permit-review/internal/domain"
	"permit-review/internal/middleware"
	"permit-review/internal/service/comment"
)

type CommentHandler struct {
	commentService comment.Service
}

func NewCommentHandler(commentService comment.Service) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (h *CommentHandler) Create(c *fiber.Ctx) error {
	principal := middleware.GetPrincipal(c)
	if principal == nil {
		return middleware.Unauthorized("User not authenticated")
	}

	projectID, err := parseIDParam(c, "id", "project")
	if err != nil {
		return err
	}

	var input domain.CreateCommentInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	comment, err := h.commentService.Create(c.Context(), projectID, *principal, input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) List(c *fiber.Ctx) error {
	projectID, err := parseIDParam(c, "id", "project")
	if err != nil {
		return err
	}

	result, err := h.commentService.ListByProject(c.Context(), projectID, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *CommentHandler) Delete(c *fiber.Ctx) error {
	projectID, err := parseIDParam(c, "id", "project")
	if err != nil {
		return err
	}
	commentID, err := parseIDParam(c, "commentId", "comment")
	if err != nil {
		return err
	}

	if err := h.commentService.Delete(c.Context(), middleware.GetCurrentUserID(c), projectID, commentID); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}
