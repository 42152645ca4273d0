package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/aquanet/water-service/internal/domain"
	"github.com/aquanet/water-service/internal/events"
	"github.com/aquanet/water-service/internal/repository"
	apperrors "github.com/aquanet/water-service/pkg/util"
)

// ComplaintService coordinates the complaint lifecycle.
type ComplaintService struct {
	complaints repository.ComplaintRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// ComplaintCreateInput describes a customer submission.
type ComplaintCreateInput struct {
	Title       string
	Description string
	Category    domain.ComplaintCategory
	Location    string
	Priority    domain.Priority
}

// ComplaintUpdateInput describes a staff update. Nil fields are left untouched.
type ComplaintUpdateInput struct {
	Status          *domain.ComplaintStatus
	Priority        *domain.Priority
	AssignedTo      *string
	ResolutionNotes *string
}

// ComplaintListQuery describes list filters and paging.
type ComplaintListQuery struct {
	Status      *domain.ComplaintStatus
	Category    *domain.ComplaintCategory
	Location    *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// NewComplaintService constructs the service.
func NewComplaintService(complaints repository.ComplaintRepository, users repository.UserRepository, dispatcher events.Dispatcher) *ComplaintService {
	return &ComplaintService{complaints: complaints, users: users, dispatcher: dispatcher}
}

// Create files a complaint for the caller. Any authenticated user may submit.
func (s *ComplaintService) Create(ctx context.Context, submitter *domain.User, input ComplaintCreateInput) (*domain.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	location := strings.TrimSpace(input.Location)
	if title == "" || description == "" || location == "" {
		return nil, apperrors.NewValidationError("title, description, location required", nil)
	}
	if !domain.IsValidCategory(input.Category) {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": string(input.Category)})
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.IsValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(priority)})
	}

	complaint := &domain.Complaint{
		ReferenceNumber: generateReferenceNumber(),
		Title:           title,
		Description:     description,
		Category:        input.Category,
		Location:        location,
		Status:          domain.ComplaintStatusReceived,
		Priority:        priority,
		SubmittedBy:     submitter.ID,
		SubmitterName:   submitter.Name,
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventComplaintCreated,
		SubjectID: complaint.ID,
		ActorID:   submitter.ID,
		Payload: events.ComplaintCreatedPayload{
			ReferenceNumber: complaint.ReferenceNumber,
			Category:        complaint.Category,
			Location:        complaint.Location,
			Priority:        complaint.Priority,
		},
	})
	return complaint, nil
}

// List returns complaints visible to the caller: customers see their own,
// technicians see their assignments, supervisors and admins see everything.
func (s *ComplaintService) List(ctx context.Context, caller *domain.User, query ComplaintListQuery) ([]domain.Complaint, int64, error) {
	filter := repository.ComplaintFilter{
		Status:      query.Status,
		Category:    query.Category,
		Location:    query.Location,
		CreatedFrom: query.CreatedFrom,
		CreatedTo:   query.CreatedTo,
	}
	applyComplaintScope(&filter, caller)
	filter.Limit, filter.Offset = pageWindow(query.Page, query.PageSize)

	total, err := s.complaints.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.complaints.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get fetches one complaint, enforcing the same visibility rules as List.
func (s *ComplaintService) Get(ctx context.Context, caller *domain.User, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, err
	}
	if !canViewComplaint(caller, complaint) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return complaint, nil
}

// Update applies a staff mutation: status, priority, assignment, notes.
// Status moves are checked against the transition table; entering Resolved
// stamps resolvedAt.
func (s *ComplaintService) Update(ctx context.Context, caller *domain.User, id string, input ComplaintUpdateInput) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, err
	}

	oldStatus := complaint.Status
	assignmentChanged := false

	if input.Status != nil {
		newStatus := *input.Status
		if !domain.IsValidComplaintStatus(newStatus) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(newStatus)})
		}
		if !domain.CanTransitionComplaint(complaint.Status, newStatus) {
			return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
				"from": string(complaint.Status),
				"to":   string(newStatus),
			})
		}
		if newStatus == domain.ComplaintStatusResolved && complaint.Status != domain.ComplaintStatusResolved {
			now := time.Now()
			complaint.ResolvedAt = &now
		}
		complaint.Status = newStatus
	}
	if input.Priority != nil {
		if !domain.IsValidPriority(*input.Priority) {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(*input.Priority)})
		}
		complaint.Priority = *input.Priority
	}
	if input.AssignedTo != nil {
		assignee, err := s.users.GetByID(ctx, *input.AssignedTo)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("assignee not found", map[string]any{"assigned_to": *input.AssignedTo})
			}
			return nil, err
		}
		if !assignee.Role.IsStaff() {
			return nil, apperrors.NewValidationError("assignee must be staff", map[string]any{"assigned_to": assignee.ID})
		}
		complaint.AssignedTo = &assignee.ID
		complaint.AssigneeName = &assignee.Name
		assignmentChanged = true
	}
	if input.ResolutionNotes != nil {
		complaint.ResolutionNotes = strings.TrimSpace(*input.ResolutionNotes)
	}

	if err := s.complaints.Update(ctx, complaint); err != nil {
		return nil, err
	}

	if complaint.Status != oldStatus {
		s.publish(ctx, events.Event{
			Type:      events.EventComplaintStatusChanged,
			SubjectID: complaint.ID,
			ActorID:   caller.ID,
			Payload: events.ComplaintStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: complaint.Status,
			},
		})
	}
	if assignmentChanged && complaint.AssignedTo != nil {
		s.publish(ctx, events.Event{
			Type:      events.EventComplaintAssigned,
			SubjectID: complaint.ID,
			ActorID:   caller.ID,
			Payload:   events.ComplaintAssignedPayload{AssignedTo: *complaint.AssignedTo},
		})
	}
	return complaint, nil
}

// ExportAll returns every complaint for CSV export.
func (s *ComplaintService) ExportAll(ctx context.Context) ([]domain.Complaint, error) {
	return s.complaints.ListAll(ctx)
}

func applyComplaintScope(filter *repository.ComplaintFilter, caller *domain.User) {
	switch caller.Role {
	case domain.RoleCustomer:
		filter.SubmittedBy = &caller.ID
	case domain.RoleTechnician:
		filter.AssignedTo = &caller.ID
	}
}

func canViewComplaint(caller *domain.User, complaint *domain.Complaint) bool {
	switch caller.Role {
	case domain.RoleCustomer:
		return complaint.SubmittedBy == caller.ID
	case domain.RoleTechnician:
		return complaint.AssignedTo != nil && *complaint.AssignedTo == caller.ID
	default:
		return true
	}
}

func generateReferenceNumber() string {
	return "CMP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *ComplaintService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func pageWindow(page, size int) (limit, offset int) {
	if size <= 0 {
		size = 20
	}
	if page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}
