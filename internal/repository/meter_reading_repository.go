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

// ReadingFilter captures list query parameters.
type ReadingFilter struct {
	MeterNumber *string
	Status      *domain.ReadingStatus
	DateFrom    *time.Time
	DateTo      *time.Time
	Limit       int
	Offset      int
}

// MeterReadingRepository encapsulates the consumption ledger.
type MeterReadingRepository interface {
	Create(ctx context.Context, reading *domain.MeterReading) error
	UpdateStatus(ctx context.Context, id string, status domain.ReadingStatus) (*domain.MeterReading, error)
	GetByID(ctx context.Context, id string) (*domain.MeterReading, error)
	LatestForMeter(ctx context.Context, meterNumber string) (*domain.MeterReading, error)
	ListWithFilter(ctx context.Context, filter ReadingFilter) ([]domain.MeterReading, error)
	CountWithFilter(ctx context.Context, filter ReadingFilter) (int64, error)
	ListByMeter(ctx context.Context, meterNumber string) ([]domain.MeterReading, error)
	ListAll(ctx context.Context) ([]domain.MeterReading, error)
	CountAll(ctx context.Context) (int64, error)
}

type meterReadingRepository struct {
	pool *pgxpool.Pool
}

// NewMeterReadingRepository instantiates repository.
func NewMeterReadingRepository(pool *pgxpool.Pool) MeterReadingRepository {
	return &meterReadingRepository{pool: pool}
}

const readingColumns = `r.id, r.meter_number, r.customer_name, r.customer_account, r.location,
               r.previous_reading, r.current_reading, r.consumption, r.reading_date,
               r.meter_reader, u.name, r.notes, r.unit, r.status, r.created_at, r.updated_at`

const readingFrom = `FROM meter_readings r
        JOIN users u ON u.id = r.meter_reader`

func (r *meterReadingRepository) Create(ctx context.Context, reading *domain.MeterReading) error {
	const query = `
        INSERT INTO meter_readings (meter_number, customer_name, customer_account, location, previous_reading, current_reading, consumption, reading_date, meter_reader, notes, unit, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		reading.MeterNumber,
		reading.CustomerName,
		reading.CustomerAccount,
		reading.Location,
		reading.PreviousReading,
		reading.CurrentReading,
		reading.Consumption,
		reading.ReadingDate,
		reading.MeterReader,
		reading.Notes,
		reading.Unit,
		reading.Status,
	).Scan(&reading.ID, &reading.CreatedAt, &reading.UpdatedAt)
}

func (r *meterReadingRepository) UpdateStatus(ctx context.Context, id string, status domain.ReadingStatus) (*domain.MeterReading, error) {
	const query = `UPDATE meter_readings SET status=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, status, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *meterReadingRepository) GetByID(ctx context.Context, id string) (*domain.MeterReading, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.id=$1`, readingColumns, readingFrom)
	return r.fetchSingle(ctx, query, id)
}

// LatestForMeter returns the most recent reading for a meter, by reading date
// then insertion order. Returns pgx.ErrNoRows when the meter has no history.
func (r *meterReadingRepository) LatestForMeter(ctx context.Context, meterNumber string) (*domain.MeterReading, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.meter_number=$1 ORDER BY r.reading_date DESC, r.created_at DESC LIMIT 1`,
		readingColumns, readingFrom)
	return r.fetchSingle(ctx, query, meterNumber)
}

func (r *meterReadingRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.MeterReading, error) {
	var reading domain.MeterReading
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&reading.ID,
		&reading.MeterNumber,
		&reading.CustomerName,
		&reading.CustomerAccount,
		&reading.Location,
		&reading.PreviousReading,
		&reading.CurrentReading,
		&reading.Consumption,
		&reading.ReadingDate,
		&reading.MeterReader,
		&reading.ReaderName,
		&reading.Notes,
		&reading.Unit,
		&reading.Status,
		&reading.CreatedAt,
		&reading.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &reading, nil
}

func readingWhere(filter ReadingFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.MeterNumber != nil && strings.TrimSpace(*filter.MeterNumber) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.MeterNumber))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(r.meter_number) LIKE $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("r.status=$%d", len(args)))
	}
	if filter.DateFrom != nil {
		args = append(args, *filter.DateFrom)
		clauses = append(clauses, fmt.Sprintf("r.reading_date >= $%d", len(args)))
	}
	if filter.DateTo != nil {
		args = append(args, *filter.DateTo)
		clauses = append(clauses, fmt.Sprintf("r.reading_date <= $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func (r *meterReadingRepository) ListWithFilter(ctx context.Context, filter ReadingFilter) ([]domain.MeterReading, error) {
	where, args := readingWhere(filter)
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	query := fmt.Sprintf(`SELECT %s %s WHERE %s ORDER BY r.reading_date DESC LIMIT %d OFFSET %d`,
		readingColumns, readingFrom, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

func (r *meterReadingRepository) CountWithFilter(ctx context.Context, filter ReadingFilter) (int64, error) {
	where, args := readingWhere(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) %s WHERE %s`, readingFrom, where)

	var count int64
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *meterReadingRepository) ListByMeter(ctx context.Context, meterNumber string) ([]domain.MeterReading, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE r.meter_number=$1 ORDER BY r.reading_date DESC`,
		readingColumns, readingFrom)
	rows, err := r.pool.Query(ctx, query, meterNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

func (r *meterReadingRepository) ListAll(ctx context.Context) ([]domain.MeterReading, error) {
	query := fmt.Sprintf(`SELECT %s %s ORDER BY r.reading_date DESC`, readingColumns, readingFrom)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReadings(rows)
}

func (r *meterReadingRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM meter_readings`).Scan(&count)
	return count, err
}

func scanReadings(rows pgx.Rows) ([]domain.MeterReading, error) {
	var result []domain.MeterReading
	for rows.Next() {
		var reading domain.MeterReading
		if err := rows.Scan(
			&reading.ID,
			&reading.MeterNumber,
			&reading.CustomerName,
			&reading.CustomerAccount,
			&reading.Location,
			&reading.PreviousReading,
			&reading.CurrentReading,
			&reading.Consumption,
			&reading.ReadingDate,
			&reading.MeterReader,
			&reading.ReaderName,
			&reading.Notes,
			&reading.Unit,
			&reading.Status,
			&reading.CreatedAt,
			&reading.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, reading)
	}
	return result, rows.Err()
}
