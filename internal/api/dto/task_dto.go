package dto

import (
	"time"

	"github.com/aquanet/water-service/internal/domain"
)

// CreateTaskRequest payload (supervisor/admin).
type CreateTaskRequest struct {
	Title            string          `json:"title"`
	Description      string          `json:"description"`
	AssignedTo       string          `json:"assigned_to"`
	Priority         domain.Priority `json:"priority"`
	Location         string          `json:"location"`
	DueDate          *time.Time      `json:"due_date"`
	RelatedComplaint *string         `json:"related_complaint"`
}

// UpdateTaskRequest payload; absent fields are left untouched.
type UpdateTaskRequest struct {
	Status          *domain.TaskStatus `json:"status"`
	Priority        *domain.Priority   `json:"priority"`
	AssignedTo      *string            `json:"assigned_to"`
	DueDate         *time.Time         `json:"due_date"`
	CompletionNotes *string            `json:"completion_notes"`
}

// TaskResponse is the API view of a task.
type TaskResponse struct {
	ID                  string            `json:"id"`
	Title               string            `json:"title"`
	Description         string            `json:"description"`
	AssignedBy          string            `json:"assigned_by"`
	AssignerName        string            `json:"assigner_name"`
	AssignedTo          string            `json:"assigned_to"`
	AssigneeName        string            `json:"assignee_name"`
	Status              domain.TaskStatus `json:"status"`
	Priority            domain.Priority   `json:"priority"`
	Location            string            `json:"location,omitempty"`
	DueDate             *time.Time        `json:"due_date"`
	CompletionNotes     string            `json:"completion_notes,omitempty"`
	CompletedAt         *time.Time        `json:"completed_at"`
	RelatedComplaint    *string           `json:"related_complaint"`
	RelatedComplaintRef *string           `json:"related_complaint_ref"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}
