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

// ComplaintsHandler manages complaint endpoints.
type ComplaintsHandler struct {
	service *service.ComplaintService
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaintService *service.ComplaintService) *ComplaintsHandler {
	return &ComplaintsHandler{service: complaintService}
}

// Create handles POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.service.Create(c.UserContext(), principal.User, service.ComplaintCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Location:    req.Location,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// List handles GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	query := service.ComplaintListQuery{
		Location:    queryString(c, "location"),
		CreatedFrom: queryTime(c, "from"),
		CreatedTo:   queryTime(c, "to"),
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "limit", 20),
	}
	if s := queryString(c, "status"); s != nil {
		status := domain.ComplaintStatus(*s)
		query.Status = &status
	}
	if cat := queryString(c, "category"); cat != nil {
		category := domain.ComplaintCategory(*cat)
		query.Category = &category
	}

	complaints, total, err := h.service.List(c.UserContext(), principal.User, query)
	if err != nil {
		return err
	}

	items := make([]dto.ComplaintResponse, 0, len(complaints))
	for i := range complaints {
		items = append(items, complaintResponse(&complaints[i]))
	}
	meta := dto.NewPageMeta(total, query.Page, query.PageSize)
	return c.JSON(fiber.Map{
		"data":  items,
		"total": meta.Total,
		"page":  meta.Page,
		"pages": meta.Pages,
	})
}

// Get handles GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	complaint, err := h.service.Get(c.UserContext(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// Update handles PUT /complaints/:id (staff only).
func (h *ComplaintsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateComplaintRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	complaint, err := h.service.Update(c.UserContext(), principal.User, c.Params("id"), service.ComplaintUpdateInput{
		Status:          req.Status,
		Priority:        req.Priority,
		AssignedTo:      req.AssignedTo,
		ResolutionNotes: req.ResolutionNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": complaintResponse(complaint)})
}

// ExportCSV handles GET /complaints/export/csv (supervisor/admin).
func (h *ComplaintsHandler) ExportCSV(c *fiber.Ctx) error {
	complaints, err := h.service.ExportAll(c.UserContext())
	if err != nil {
		return err
	}

	header := []string{"Reference", "Title", "Category", "Location", "Status", "Priority", "SubmittedBy", "AssignedTo", "ResolutionNotes", "CreatedAt", "ResolvedAt"}
	rows := make([][]string, 0, len(complaints))
	for i := range complaints {
		cm := &complaints[i]
		assignee := ""
		if cm.AssigneeName != nil {
			assignee = *cm.AssigneeName
		}
		resolvedAt := ""
		if cm.ResolvedAt != nil {
			resolvedAt = cm.ResolvedAt.UTC().Format("2006-01-02T15:04:05Z")
		}
		rows = append(rows, []string{
			cm.ReferenceNumber,
			cm.Title,
			string(cm.Category),
			cm.Location,
			string(cm.Status),
			string(cm.Priority),
			cm.SubmitterName,
			assignee,
			cm.ResolutionNotes,
			cm.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			resolvedAt,
		})
	}
	return sendCSV(c, "complaints.csv", header, rows)
}

func complaintResponse(complaint *domain.Complaint) dto.ComplaintResponse {
	return dto.ComplaintResponse{
		ID:              complaint.ID,
		ReferenceNumber: complaint.ReferenceNumber,
		Title:           complaint.Title,
		Description:     complaint.Description,
		Category:        complaint.Category,
		Location:        complaint.Location,
		Status:          complaint.Status,
		Priority:        complaint.Priority,
		SubmittedBy:     complaint.SubmittedBy,
		SubmitterName:   complaint.SubmitterName,
		AssignedTo:      complaint.AssignedTo,
		AssigneeName:    complaint.AssigneeName,
		ResolutionNotes: complaint.ResolutionNotes,
		ResolvedAt:      complaint.ResolvedAt,
		CreatedAt:       complaint.CreatedAt,
		UpdatedAt:       complaint.UpdatedAt,
	}
}
