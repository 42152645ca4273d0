package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/aquanet/water-service/internal/api/dto"
	"github.com/aquanet/water-service/internal/auth"
	"github.com/aquanet/water-service/internal/domain"
	"github.com/aquanet/water-service/internal/service"
	apperrors "github.com/aquanet/water-service/pkg/util"
)

// TasksHandler manages task endpoints.
type TasksHandler struct {
	service *service.TaskService
}

// NewTasksHandler constructs handler.
func NewTasksHandler(taskService *service.TaskService) *TasksHandler {
	return &TasksHandler{service: taskService}
}

// Create handles POST /tasks (supervisor/admin).
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	task, err := h.service.Create(c.UserContext(), principal.User, service.TaskCreateInput{
		Title:            req.Title,
		Description:      req.Description,
		AssignedTo:       req.AssignedTo,
		Priority:         req.Priority,
		Location:         req.Location,
		DueDate:          req.DueDate,
		RelatedComplaint: req.RelatedComplaint,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": taskResponse(task)})
}

// List handles GET /tasks (staff).
func (h *TasksHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	query := service.TaskListQuery{
		AssignedTo:  queryString(c, "assigned_to"),
		Location:    queryString(c, "location"),
		CreatedFrom: queryTime(c, "from"),
		CreatedTo:   queryTime(c, "to"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "limit", 20),
	}
	if s := queryString(c, "status"); s != nil {
		status := domain.TaskStatus(*s)
		query.Status = &status
	}
	if p := queryString(c, "priority"); p != nil {
		priority := domain.Priority(*p)
		query.Priority = &priority
	}

	tasks, total, err := h.service.List(c.UserContext(), principal.User, query)
	if err != nil {
		return err
	}

	items := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		items = append(items, taskResponse(&tasks[i]))
	}
	meta := dto.NewPageMeta(total, query.Page, query.PageSize)
	return c.JSON(fiber.Map{
		"data":  items,
		"total": meta.Total,
		"page":  meta.Page,
		"pages": meta.Pages,
	})
}

// Get handles GET /tasks/:id (staff).
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	task, err := h.service.Get(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// Update handles PUT /tasks/:id (assignee or supervisor/admin).
func (h *TasksHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	task, err := h.service.Update(c.UserContext(), principal.User, c.Params("id"), service.TaskUpdateInput{
		Status:          req.Status,
		Priority:        req.Priority,
		AssignedTo:      req.AssignedTo,
		DueDate:         req.DueDate,
		CompletionNotes: req.CompletionNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": taskResponse(task)})
}

// ReportSummary handles GET /tasks/report/summary (supervisor/admin).
func (h *TasksHandler) ReportSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": summary})
}

// ExportCSV handles GET /tasks/export/csv (supervisor/admin).
func (h *TasksHandler) ExportCSV(c *fiber.Ctx) error {
	tasks, err := h.service.ExportAll(c.UserContext())
	if err != nil {
		return err
	}

	header := []string{"Title", "Location", "AssignedBy", "AssignedTo", "Priority", "Status", "DueDate", "CompletedAt", "CompletionNotes", "CreatedAt"}
	rows := make([][]string, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		dueDate := ""
		if t.DueDate != nil {
			dueDate = t.DueDate.UTC().Format("2006-01-02")
		}
		completedAt := ""
		if t.CompletedAt != nil {
			completedAt = t.CompletedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		rows = append(rows, []string{
			t.Title,
			t.Location,
			t.AssignerName,
			t.AssigneeName,
			string(t.Priority),
			string(t.Status),
			dueDate,
			completedAt,
			t.CompletionNotes,
			t.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	return sendCSV(c, "tasks.csv", header, rows)
}

func taskResponse(task *domain.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:                  task.ID,
		Title:               task.Title,
		Description:         task.Description,
		AssignedBy:          task.AssignedBy,
		AssignerName:        task.AssignerName,
		AssignedTo:          task.AssignedTo,
		AssigneeName:        task.AssigneeName,
		Status:              task.Status,
		Priority:            task.Priority,
		Location:            task.Location,
		DueDate:             task.DueDate,
		CompletionNotes:     task.CompletionNotes,
		CompletedAt:         task.CompletedAt,
		RelatedComplaint:    task.RelatedComplaint,
		RelatedComplaintRef: task.RelatedComplaintRef,
		CreatedAt:           task.CreatedAt,
		UpdatedAt:           task.UpdatedAt,
	}
}
