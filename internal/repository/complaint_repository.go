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

// ComplaintFilter captures list query parameters.
type ComplaintFilter struct {
	SubmittedBy *string
	AssignedTo  *string
	Status      *domain.ComplaintStatus
	Category    *domain.ComplaintCategory
	Location    *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	Update(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	CountWithFilter(ctx context.Context, filter ComplaintFilter) (int64, error)
	ListAll(ctx context.Context) ([]domain.Complaint, error)
	CountAll(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status domain.ComplaintStatus) (int64, error)
	CountByStatusNot(ctx context.Context, status domain.ComplaintStatus) (int64, error)
	GroupByCategory(ctx context.Context) ([]GroupCount, error)
	GroupByStatus(ctx context.Context) ([]GroupCount, error)
	TopLocations(ctx context.Context, limit int) ([]GroupCount, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `c.id, c.reference_number, c.title, c.description, c.category, c.location,
               c.status, c.priority, c.submitted_by, s.name, c.assigned_to, a.name,
               c.resolution_notes, c.resolved_at, c.created_at, c.updated_at`

const complaintFrom = `FROM complaints c
        JOIN users s ON s.id = c.submitted_by
        LEFT JOIN users a ON a.id = c.assigned_to`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (reference_number, title, description, category, location, status, priority, submitted_by, assigned_to, resolution_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		complaint.ReferenceNumber,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Location,
		complaint.Status,
		complaint.Priority,
		complaint.SubmittedBy,
		complaint.AssignedTo,
		complaint.ResolutionNotes,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt)
}

func (r *complaintRepository) Update(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        UPDATE complaints SET status=$1, priority=$2, assigned_to=$3, resolution_notes=$4,
            resolved_at=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		complaint.Status,
		complaint.Priority,
		complaint.AssignedTo,
		complaint.ResolutionNotes,
		complaint.ResolvedAt,
		complaint.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE c.id=$1`, complaintColumns, complaintFrom)
	var complaint domain.Complaint
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&complaint.ID,
		&complaint.ReferenceNumber,
		&complaint.Title,
		&complaint.Description,
		&complaint.Category,
		&complaint.Location,
		&complaint.Status,
		&complaint.Priority,
		&complaint.SubmittedBy,
		&complaint.SubmitterName,
		&complaint.AssignedTo,
		&complaint.AssigneeName,
		&complaint.ResolutionNotes,
		&complaint.ResolvedAt,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func complaintWhere(filter ComplaintFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.SubmittedBy != nil {
		args = append(args, *filter.SubmittedBy)
		clauses = append(clauses, fmt.Sprintf("c.submitted_by=$%d", len(args)))
	}
	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("c.assigned_to=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("c.status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("c.category=$%d", len(args)))
	}
	if filter.Location != nil && strings.TrimSpace(*filter.Location) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.Location))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(c.location) LIKE $%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("c.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("c.created_at <= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func (r *complaintRepository) ListWithFilter(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	where, args := complaintWhere(filter)
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY c.created_at DESC LIMIT %d OFFSET %d`,
		complaintColumns, complaintFrom, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) CountWithFilter(ctx context.Context, filter ComplaintFilter) (int64, error) {
	where, args := complaintWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) %s WHERE %s`, complaintFrom, where)

	var count int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *complaintRepository) ListAll(ctx context.Context) ([]domain.Complaint, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY c.created_at DESC`, complaintColumns, complaintFrom)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints`).Scan(&count)
	return count, err
}

func (r *complaintRepository) CountByStatus(ctx context.Context, status domain.ComplaintStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints WHERE status=$1`, status).Scan(&count)
	return count, err
}

func (r *complaintRepository) CountByStatusNot(ctx context.Context, status domain.ComplaintStatus) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM complaints WHERE status<>$1`, status).Scan(&count)
	return count, err
}

func (r *complaintRepository) GroupByCategory(ctx context.Context) ([]GroupCount, error) {
	return r.groupBy(ctx, `SELECT category, COUNT(*) FROM complaints GROUP BY category ORDER BY COUNT(*) DESC`)
}

func (r *complaintRepository) GroupByStatus(ctx context.Context) ([]GroupCount, error) {
	return r.groupBy(ctx, `SELECT status, COUNT(*) FROM complaints GROUP BY status ORDER BY COUNT(*) DESC`)
}

func (r *complaintRepository) TopLocations(ctx context.Context, limit int) ([]GroupCount, error) {
	if limit <= 0 {
		limit = 10
	}
	query := fmt.Sprintf(`SELECT location, COUNT(*) FROM complaints GROUP BY location ORDER BY COUNT(*) DESC LIMIT %d`, limit)
	return r.groupBy(ctx, query)
}

func (r *complaintRepository) groupBy(ctx context.Context, query string) ([]GroupCount, error) {
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

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.ReferenceNumber,
			&complaint.Title,
			&complaint.Description,
			&complaint.Category,
			&complaint.Location,
			&complaint.Status,
			&complaint.Priority,
			&complaint.SubmittedBy,
			&complaint.SubmitterName,
			&complaint.AssignedTo,
			&complaint.AssigneeName,
			&complaint.ResolutionNotes,
			&complaint.ResolvedAt,
			&complaint.CreatedAt,
			&complaint.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, complaint)
	}
	return result, rows.Err()
}
