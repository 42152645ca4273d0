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

// MeterService maintains the consumption ledger.
type MeterService struct {
	readings   repository.MeterReadingRepository
	dispatcher events.Dispatcher
}

// ReadingCreateInput describes a technician's reading submission.
// previousReading is never supplied; it is looked up from the ledger.
type ReadingCreateInput struct {
	MeterNumber     string
	CustomerName    string
	CustomerAccount string
	Location        string
	CurrentReading  float64
	ReadingDate     *time.Time
	Notes           string
	Unit            string
}

// ReadingListQuery describes list filters and paging.
type ReadingListQuery struct {
	MeterNumber *string
	Status      *domain.ReadingStatus
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
}

// NewMeterService constructs the service.
func NewMeterService(readings repository.MeterReadingRepository, dispatcher events.Dispatcher) *MeterService {
	return &MeterService{readings: readings, dispatcher: dispatcher}
}

// Record appends a reading. The previous reading is the latest entry for the
// same meter (0 when none exists) and consumption is the delta. A current
// reading below the previous one yields negative consumption and is stored
// as-is. The lookup and insert are separate statements; concurrent
// submissions for one meter can observe a stale previous reading
// (last-write-wins, accepted).
func (s *MeterService) Record(ctx context.Context, reader *domain.User, input ReadingCreateInput) (*domain.MeterReading, error) {
	meterNumber := strings.TrimSpace(input.MeterNumber)
	customerName := strings.TrimSpace(input.CustomerName)
	if meterNumber == "" || customerName == "" {
		return nil, apperrors.NewValidationError("meter_number and customer_name required", nil)
	}

	previous := 0.0
	last, err := s.readings.LatestForMeter(ctx, meterNumber)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if last != nil {
		previous = last.CurrentReading
	}

	readingDate := time.Now()
	if input.ReadingDate != nil {
		readingDate = *input.ReadingDate
	}
	unit := strings.TrimSpace(input.Unit)
	if unit == "" {
		unit = domain.DefaultUnit
	}

	reading := &domain.MeterReading{
		MeterNumber:     meterNumber,
		CustomerName:    customerName,
		CustomerAccount: strings.TrimSpace(input.CustomerAccount),
		Location:        strings.TrimSpace(input.Location),
		PreviousReading: previous,
		CurrentReading:  input.CurrentReading,
		ReadingDate:     readingDate,
		MeterReader:     reader.ID,
		ReaderName:      reader.Name,
		Notes:           strings.TrimSpace(input.Notes),
		Unit:            unit,
		Status:          domain.ReadingStatusRecorded,
	}
	reading.ComputeConsumption()

	if err := s.readings.Create(ctx, reading); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventReadingRecorded,
		SubjectID: reading.ID,
		ActorID:   reader.ID,
		Payload: events.ReadingRecordedPayload{
			MeterNumber: reading.MeterNumber,
			Consumption: reading.Consumption,
			Unit:        reading.Unit,
		},
	})
	return reading, nil
}

// List returns readings matching the filter, paginated.
func (s *MeterService) List(ctx context.Context, query ReadingListQuery) ([]domain.MeterReading, int64, error) {
	filter := repository.ReadingFilter{
		MeterNumber: query.MeterNumber,
		Status:      query.Status,
		DateFrom:    query.DateFrom,
		DateTo:      query.DateTo,
	}
	filter.Limit, filter.Offset = pageWindow(query.Page, query.PageSize)

	total, err := s.readings.CountWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	items, err := s.readings.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Get fetches one reading.
func (s *MeterService) Get(ctx context.Context, id string) (*domain.MeterReading, error) {
	reading, err := s.readings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("meter reading", map[string]any{"id": id})
		}
		return nil, err
	}
	return reading, nil
}

// History returns the full ledger for one meter, most recent first.
func (s *MeterService) History(ctx context.Context, meterNumber string) ([]domain.MeterReading, error) {
	return s.readings.ListByMeter(ctx, meterNumber)
}

// UpdateStatus changes the review state of a reading.
func (s *MeterService) UpdateStatus(ctx context.Context, id string, status domain.ReadingStatus) (*domain.MeterReading, error) {
	if !domain.IsValidReadingStatus(status) {
		return nil, apperrors.NewValidationError("invalid reading status", map[string]any{"status": string(status)})
	}
	reading, err := s.readings.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("meter reading", map[string]any{"id": id})
		}
		return nil, err
	}
	return reading, nil
}

// ExportAll returns every reading for CSV export.
func (s *MeterService) ExportAll(ctx context.Context) ([]domain.MeterReading, error) {
	return s.readings.ListAll(ctx)
}

func (s *MeterService) publish(ctx context.Context, event events.Event) {
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
