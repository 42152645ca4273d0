package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aquanet/water-service/internal/domain"
)

// TaskFilter captures list query parameters.
type TaskFilter struct {
	AssignedTo  *string
	Status      *domain.TaskStatus
	Priority    *domain.Priority
	Location    *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TaskRepository encapsulates task persistence.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListWithFilter(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	CountWithFilter(ctx context.Context, filter TaskFilter) (int64, error)
	ListAll(ctx context.Context) ([]domain.Task, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatuses(ctx context.Context, statuses []domain.TaskStatus) (int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
	GroupByStatus(ctx context.Context) ([]GroupCount, error)
	GroupByPriority(ctx context.Context) ([]GroupCount, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

const taskColumns = `t.id, t.title, t.description, t.assigned_by, b.name, t.assigned_to, a.name,
               t.status, t.priority, t.location, t.due_date, t.completion_notes, t.completed_at,
               t.related_complaint, c.reference_number, t.created_at, t.updated_at`

const taskFrom = `FROM tasks t
        JOIN users b ON b.id = t.assigned_by
        JOIN users a ON a.id = t.assigned_to
        LEFT JOIN complaints c ON c.id = t.related_complaint`

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (title, description, assigned_by, assigned_to, status, priority, location, due_date, completion_notes, related_complaint)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		task.AssignedBy,
		task.AssignedTo,
		task.Status,
		task.Priority,
		task.Location,
		task.DueDate,
		task.CompletionNotes,
		task.RelatedComplaint,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET assigned_to=$1, status=$2, priority=$3, due_date=$4, completion_notes=$5,
            completed_at=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		task.AssignedTo,
		task.Status,
		task.Priority,
		task.DueDate,
		task.CompletionNotes,
		task.CompletedAt,
		task.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE t.id=$1`, taskColumns, taskFrom)
	var task domain.Task
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.AssignedBy,
		&task.AssignerName,
		&task.AssignedTo,
		&task.AssigneeName,
		&task.Status,
		&task.Priority,
		&task.Location,
		&task.DueDate,
		&task.CompletionNotes,
		&task.CompletedAt,
		&task.RelatedComplaint,
		&task.RelatedComplaintRef,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}

func taskWhere(filter TaskFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("t.priority=$%d", len(args)))
	}
	if filter.Location != nil && strings.TrimSpace(*filter.Location) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Location))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(t.location) LIKE $%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func (r *taskRepository) ListWithFilter(ctx context.Context, filter TaskFilter) ([]domain.Task, error) {
	where, args := taskWhere(filter)
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`,
		taskColumns, taskFrom, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *taskRepository) CountWithFilter(ctx context.Context, filter TaskFilter) (int64, error) {
	where, args := taskWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) %s WHERE %s`, taskFrom, where)

	var count int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *taskRepository) ListAll(ctx context.Context) ([]domain.Task, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY t.created_at DESC`, taskColumns, taskFrom)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTasks(rows)
}

func (r *taskRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&count)
	return count, err
}

func (r *taskRepository) CountByStatuses(ctx context.Context, statuses []domain.TaskStatus) (int64, error) {
	statusStrings := make([]string, 0, len(statuses))
	for _, status := range statuses {
		statusStrings = append(statusStrings, string(status))
	}
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE status = ANY($1)`, statusStrings).Scan(&count)
	return count, err
}

func (r *taskRepository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	const query = `SELECT COUNT(*) FROM tasks WHERE due_date IS NOT NULL AND due_date < $1 AND status NOT IN ('Completed','Cancelled')`
	var count int64
	err := r.pool.QueryRow(ctx, query, now).Scan(&count)
	return count, err
}

func (r *taskRepository) GroupByStatus(ctx context.Context) ([]GroupCount, error) {
	return r.groupBy(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status ORDER BY COUNT(*) DESC`)
}

func (r *taskRepository) GroupByPriority(ctx context.Context) ([]GroupCount, error) {
	return r.groupBy(ctx, `SELECT priority, COUNT(*) FROM tasks GROUP BY priority ORDER BY COUNT(*) DESC`)
}

func (r *taskRepository) groupBy(ctx context.Context, query string) ([]GroupCount, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []GroupCount
	for rows.Next() {
		var gc GroupCount
		if err := rows.Scan(&gc.Key, &gc.Count); err != nil {
			return nil, err
		}
		result = append(result, gc)
	}
	return result, rows.Err()
}

func scanTasks(rows pgx.Rows) ([]domain.Task, error) {
	var result []domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.Scan(
			&task.ID,
			&task.Title,
			&task.Description,
			&task.AssignedBy,
			&task.AssignerName,
			&task.AssignedTo,
			&task.AssigneeName,
			&task.Status,
			&task.Priority,
			&task.Location,
			&task.DueDate,
			&task.CompletionNotes,
			&task.CompletedAt,
			&task.RelatedComplaint,
			&task.RelatedComplaintRef,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, task)
	}
	return result, rows.Err()
}
