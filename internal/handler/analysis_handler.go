package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"permit-review/internal/domain"
	"permit-review/internal/middleware"
	"permit-review/internal/service/project"
)

type AnalysisHandler struct {
	projectService project.Service
}

func NewAnalysisHandler(projectService project.Service) *AnalysisHandler {
	return &AnalysisHandler{projectService: projectService}
}

func (h *AnalysisHandler) Start(c *fiber.Ctx) error {
	var input domain.StartAnalysisInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	projectID := strings.TrimSpace(input.ProjectID)
	if projectID == "" {
		return domain.NewValidationError("projectId", "projectId is required")
	}
	id, err := uuid.Parse(projectID)
	if err != nil {
		return domain.NewValidationError("projectId", "invalid project id")
	}

	result, err := h.projectService.StartAnalysis(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// Results receives the analysis service's callback.
func (h *AnalysisHandler) Results(c *fiber.Ctx) error {
	var input domain.AnalysisResultInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	p, err := h.projectService.RecordAnalysisResult(c.Context(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":     p.ID,
		"status": p.Status,
	})
}
