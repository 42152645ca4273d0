package dto

import (
	"time"

	"github.com/aquanet/water-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Category    domain.ComplaintCategory `json:"category"`
	Location    string                   `json:"location"`
	Priority    domain.Priority          `json:"priority"`
}

// UpdateComplaintRequest payload; absent fields are left untouched.
type UpdateComplaintRequest struct {
	Status          *domain.ComplaintStatus `json:"status"`
	Priority        *domain.Priority        `json:"priority"`
	AssignedTo      *string                 `json:"assigned_to"`
	ResolutionNotes *string                 `json:"resolution_notes"`
}

// ComplaintResponse is the API view of a complaint.
type ComplaintResponse struct {
	ID              string                   `json:"id"`
	ReferenceNumber string                   `json:"reference_number"`
	Title           string                   `json:"title"`
	Description     string                   `json:"description"`
	Category        domain.ComplaintCategory `json:"category"`
	Location        string                   `json:"location"`
	Status          domain.ComplaintStatus   `json:"status"`
	Priority        domain.Priority          `json:"priority"`
	SubmittedBy     string                   `json:"submitted_by"`
	SubmitterName   string                   `json:"submitter_name"`
	AssignedTo      *string                  `json:"assigned_to"`
	AssigneeName    *string                  `json:"assignee_name"`
	ResolutionNotes string                   `json:"resolution_notes,omitempty"`
	ResolvedAt      *time.Time               `json:"resolved_at"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// PageMeta is the pagination envelope shared by list responses.
type PageMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Pages int   `json:"pages"`
}

// NewPageMeta computes the envelope for a list response.
func NewPageMeta(total int64, page, pageSize int) PageMeta {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return PageMeta{Total: total, Page: page, Pages: pages}
}
