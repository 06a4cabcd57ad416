package handler

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"permit-review/internal/domain"
	"permit-review/internal/middleware"
	"permit-review/internal/service/project"
)

type ProjectHandler struct {
	projectService project.Service
	maxUploadBytes int64
}

func NewProjectHandler(projectService project.Service, maxUploadBytes int64) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create accepts either {"metadata": {...}} or the metadata object itself.
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateProjectInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}
	if input.Metadata == (domain.ProjectMetadata{}) {
		if err := c.BodyParser(&input.Metadata); err != nil {
			return middleware.BadRequest("Invalid request body")
		}
	}

	p, err := h.projectService.Create(c.Context(), middleware.GetActor(c), input, nil)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id": p.ID,
	})
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	ownerID := ""
	if c.QueryBool("mine", false) {
		ownerID = middleware.GetCurrentUserID(c)
	}

	projects, err := h.projectService.List(c.Context(), ownerID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(projects)
}

func (h *ProjectHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id", "project")
	if err != nil {
		return err
	}

	p, err := h.projectService.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *ProjectHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id", "project")
	if err != nil {
		return err
	}

	var input domain.UpdateStatusInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	p, err := h.projectService.TransitionStatus(c.Context(), middleware.GetActor(c), id, input.Status)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *ProjectHandler) Reopen(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id", "project")
	if err != nil {
		return err
	}

	p, err := h.projectService.Reopen(c.Context(), middleware.GetActor(c), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(p)
}

func (h *ProjectHandler) UploadDocuments(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id", "project")
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return middleware.BadRequest("Multipart form with files is required")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return middleware.BadRequest("At least one file is required")
	}

	files := make([]domain.FileUpload, 0, len(headers))
	for _, fh := range headers {
		file, err := h.readFile(fh)
		if err != nil {
			return middleware.BadRequest("Failed to read file " + fh.Filename)
		}
		files = append(files, file)
	}

	p, err := h.projectService.AttachDocuments(c.Context(), middleware.GetActor(c), id, files)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(p)
}

// readFile loads a part into memory unless it is already known to be over
// the limit, in which case only its size is kept for the size check.
func (h *ProjectHandler) readFile(fh *multipart.FileHeader) (domain.FileUpload, error) {
	file := domain.FileUpload{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
	}
	if h.maxUploadBytes > 0 && fh.Size > h.maxUploadBytes {
		return file, nil
	}

	r, err := fh.Open()
	if err != nil {
		return file, err
	}
	defer r.Close()

	file.Content, err = io.ReadAll(r)
	return file, err
}

func (h *ProjectHandler) History(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id", "project")
	if err != nil {
		return err
	}

	events, err := h.projectService.History(c.Context(), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(events)
}
