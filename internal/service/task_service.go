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

// TaskService coordinates the work-item lifecycle.
type TaskService struct {
	tasks      repository.TaskRepository
	users      repository.UserRepository
	complaints repository.ComplaintRepository
	dispatcher events.Dispatcher
}

// TaskCreateInput describes task creation by a supervisor or admin.
type TaskCreateInput struct {
	Title            string
	Description      string
	AssignedTo       string
	Priority         domain.Priority
	Location         string
	DueDate          *time.Time
	RelatedComplaint *string
}

// TaskUpdateInput describes a mutation. Nil fields are left untouched.
type TaskUpdateInput struct {
	Status          *domain.TaskStatus
	Priority        *domain.Priority
	AssignedTo      *string
	DueDate         *time.Time
	CompletionNotes *string
}

// TaskListQuery describes list filters and paging.
type TaskListQuery struct {
	Status      *domain.TaskStatus
	Priority    *domain.Priority
	AssignedTo  *string
	Location    *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// TaskSummary is the report payload for GET /tasks/report/summary.
type TaskSummary struct {
	Total      int64                   `json:"total"`
	ByStatus   []repository.GroupCount `json:"by_status"`
	ByPriority []repository.GroupCount `json:"by_priority"`
	Overdue    int64                   `json:"overdue"`
}

// NewTaskService constructs the service.
func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, complaints repository.ComplaintRepository, dispatcher events.Dispatcher) *TaskService {
	return &TaskService{tasks: tasks, users: users, complaints: complaints, dispatcher: dispatcher}
}

// Create registers a work item. The assignee must be an existing staff user.
func (s *TaskService) Create(ctx context.Context, creator *domain.User, input TaskCreateInput) (*domain.Task, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.AssignedTo == "" {
		return nil, apperrors.NewValidationError("title, description, assigned_to required", nil)
	}

	assignee, err := s.users.GetByID(ctx, input.AssignedTo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("assignee not found", map[string]any{"assigned_to": input.AssignedTo})
		}
		return nil, err
	}
	if !assignee.Role.IsStaff() {
		return nil, apperrors.NewValidationError("assignee must be staff", map[string]any{"assigned_to": assignee.ID})
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.IsValidPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(priority)})
	}

	if input.RelatedComplaint != nil {
		if _, err := s.complaints.GetByID(ctx, *input.RelatedComplaint); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewValidationError("related complaint not found", map[string]any{"related_complaint": *input.RelatedComplaint})
			}
			return nil, err
		}
	}

	task := &domain.Task{
		Title:            title,
		Description:      description,
		AssignedBy:       creator.ID,
		AssignerName:     creator.Name,
		AssignedTo:       assignee.ID,
		AssigneeName:     assignee.Name,
		Status:           domain.TaskStatusPending,
		Priority:         priority,
		Location:         strings.TrimSpace(input.Location),
		DueDate:          input.DueDate,
		RelatedComplaint: input.RelatedComplaint,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTaskCreated,
		SubjectID: task.ID,
		ActorID:   creator.ID,
		Payload: events.TaskCreatedPayload{
			AssignedTo: task.AssignedTo,
			Priority:   task.Priority,
			Title:      task.Title,
		},
	})
	return task, nil
}

// List returns tasks visible to the caller. Technicians are scoped to their
// own assignments regardless of any assigned_to filter they pass.
func (s *TaskService) List(ctx context.Context, caller *domain.User, query TaskListQuery) ([]domain.Task, int64, error) {
	filter := repository.TaskFilter{
		Status:      query.Status,
		Priority:    query.Priority,
		AssignedTo:  query.AssignedTo,
		Location:    query.Location,
		CreatedFrom: query.CreatedFrom,
		CreatedTo:   query.CreatedTo,
	}
	if caller.Role == domain.RoleTechnician {
		filter.AssignedTo = &caller.ID
	}
	filter.Limit, filter.Offset = pageWindow(query.Page, query.PageSize)

	total, err := s.tasks.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.tasks.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get fetches one task; technicians may only see their own assignments.
func (s *TaskService) Get(ctx context.Context, caller *domain.User, id string) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", map[string]any{"id": id})
		}
		return nil, err
	}
	if caller.Role == domain.RoleTechnician && task.AssignedTo != caller.ID {
		return nil, apperrors.NewForbidden("forbidden - not your assignment")
	}
	return task, nil
}

// Update applies a mutation. Technicians may only touch tasks assigned to
// them; supervisors and admins bypass the ownership check. Entering Completed
// stamps completedAt.
func (s *TaskService) Update(ctx context.Context, caller *domain.User, id string, input TaskUpdateInput) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", map[string]any{"id": id})
		}
		return nil, err
	}
	if caller.Role == domain.RoleTechnician && task.AssignedTo != caller.ID {
		return nil, apperrors.NewForbidden("forbidden - not your assignment")
	}

	oldStatus := task.Status

	if input.Status != nil {
		newStatus := *input.Status
		if !domain.IsValidTaskStatus(newStatus) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": string(newStatus)})
		}
		if !domain.CanTransitionTask(task.Status, newStatus) {
			return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
				"from": string(task.Status),
				"to":   string(newStatus),
			})
		}
		if newStatus == domain.TaskStatusCompleted && task.Status != domain.TaskStatusCompleted {
			now := time.Now()
			task.CompletedAt = &now
		}
		task.Status = newStatus
	}
	if input.Priority != nil {
		if !domain.IsValidPriority(*input.Priority) {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(*input.Priority)})
		}
		task.Priority = *input.Priority
	}
	if input.AssignedTo != nil {
		// reassignment is a supervisor/admin action
		if caller.Role == domain.RoleTechnician {
			return nil, apperrors.NewForbidden("technicians cannot reassign tasks")
		}
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
		task.AssignedTo = assignee.ID
		task.AssigneeName = assignee.Name
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.CompletionNotes != nil {
		task.CompletionNotes = strings.TrimSpace(*input.CompletionNotes)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}

	if task.Status != oldStatus {
		s.publish(ctx, events.Event{
			Type:      events.EventTaskStatusChanged,
			SubjectID: task.ID,
			ActorID:   caller.ID,
			Payload: events.TaskStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: task.Status,
			},
		})
		if task.Status == domain.TaskStatusCompleted && task.CompletedAt != nil {
			s.publish(ctx, events.Event{
				Type:      events.EventTaskCompleted,
				SubjectID: task.ID,
				ActorID:   caller.ID,
				Payload: events.TaskCompletedPayload{
					AssignedTo:  task.AssignedTo,
					CompletedAt: *task.CompletedAt,
				},
			})
		}
	}
	return task, nil
}

// Summary aggregates task counts for the report endpoint.
func (s *TaskService) Summary(ctx context.Context) (*TaskSummary, error) {
	total, err := s.tasks.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.tasks.GroupByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.tasks.GroupByPriority(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := s.tasks.CountOverdue(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	return &TaskSummary{
		Total:      total,
		ByStatus:   byStatus,
		ByPriority: byPriority,
		Overdue:    overdue,
	}, nil
}

// ExportAll returns every task for CSV export.
func (s *TaskService) ExportAll(ctx context.Context) ([]domain.Task, error) {
	return s.tasks.ListAll(ctx)
}

func (s *TaskService) publish(ctx context.Context, event events.Event) {
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
