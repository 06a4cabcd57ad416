package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"permit-review/internal/domain"
	"permit-review/internal/middleware"
	"permit-review/internal/service"
)

type Handlers struct {
	Project      *ProjectHandler
	Analysis     *AnalysisHandler
	Comment      *CommentHandler
	Notification *NotificationHandler
	Dashboard    *DashboardHandler
}

func NewHandlers(services *service.Services, maxUploadBytes int64) *Handlers {
	return &Handlers{
		Project:      NewProjectHandler(services.Project, maxUploadBytes),
		Analysis:     NewAnalysisHandler(services.Project),
		Comment:      NewCommentHandler(services.Comment),
		Notification: NewNotificationHandler(services.Notification),
		Dashboard:    NewDashboardHandler(services.Dashboard),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}

func parseIDParam(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + label + " ID")
	}
	return id, nil
}
