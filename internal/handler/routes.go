package handler

import (
	"github.com/gofiber/fiber/v2"

	"permit-review/internal/middleware"
	"permit-review/internal/service/auth"
)

// Register mounts the route table. The analysis callback is registered before
// the authenticated group so user-token auth never runs for it.
func (h *Handlers) Register(app *fiber.App, authService auth.Service, callbackKey string) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	v1.Post("/analysis/results", middleware.CallbackKeyRequired(callbackKey), h.Analysis.Results)

	protected := v1.Group("", middleware.AuthRequired(authService))

	projects := protected.Group("/projects")
	projects.Post("/", h.Project.Create)
	projects.Get("/", h.Project.List)
	projects.Get("/:id", h.Project.Get)
	projects.Patch("/:id/status", h.Project.UpdateStatus)
	projects.Post("/:id/reopen", h.Project.Reopen)
	projects.Post("/:id/documents", h.Project.UploadDocuments)
	projects.Get("/:id/history", h.Project.History)

	comments := projects.Group("/:id/comments")
	comments.Post("/", h.Comment.Create)
	comments.Get("/", h.Comment.List)
	comments.Delete("/:commentId", h.Comment.Delete)

	analysis := protected.Group("/analysis")
	analysis.Post("/start", h.Analysis.Start)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)

	protected.Get("/dashboard", h.Dashboard.GetStats)
}
