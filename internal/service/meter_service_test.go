package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquanet/water-service/internal/domain"
	"github.com/aquanet/water-service/internal/events"
	apperrors "github.com/aquanet/water-service/pkg/util"
)

func newMeterFixture(t *testing.T) (*MeterService, *memReadingRepo, *domain.User, *recordingDispatcher) {
	t.Helper()
	readings := newMemReadingRepo()
	users := newMemUserRepo()
	dispatcher := &recordingDispatcher{}
	reader := seedUser(t, users, "tina", domain.RoleTechnician)
	return NewMeterService(readings, dispatcher), readings, reader, dispatcher
}

func TestRecordFirstReadingStartsAtZero(t *testing.T) {
	svc, _, reader, dispatcher := newMeterFixture(t)

	reading, err := svc.Record(context.Background(), reader, ReadingCreateInput{
		MeterNumber:    "MTR-001",
		CustomerName:   "Alice Brown",
		CurrentReading: 120,
	})
	require.NoError(t, err)

	assert.Equal(t, 0.0, reading.PreviousReading)
	assert.Equal(t, 120.0, reading.Consumption)
	assert.Equal(t, domain.DefaultUnit, reading.Unit)
	assert.Equal(t, domain.ReadingStatusRecorded, reading.Status)
	assert.Equal(t, reader.ID, reading.MeterReader)
	assert.Len(t, dispatcher.byType(events.EventReadingRecorded), 1)
}

func TestRecordChainsPreviousReading(t *testing.T) {
	svc, _, reader, _ := newMeterFixture(t)
	ctx := context.Background()

	day1 := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Record(ctx, reader, ReadingCreateInput{
		MeterNumber: "MTR-001", CustomerName: "Alice Brown", CurrentReading: 100, ReadingDate: &day1,
	})
	require.NoError(t, err)

	second, err := svc.Record(ctx, reader, ReadingCreateInput{
		MeterNumber: "MTR-001", CustomerName: "Alice Brown", CurrentReading: 135, ReadingDate: &day2,
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, second.PreviousReading)
	assert.Equal(t, 35.0, second.Consumption)
}

func TestRecordAllowsNegativeConsumption(t *testing.T) {
	svc, _, reader, _ := newMeterFixture(t)
	ctx := context.Background()

	day1 := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Record(ctx, reader, ReadingCreateInput{
		MeterNumber: "MTR-002", CustomerName: "Bob Green", CurrentReading: 100, ReadingDate: &day1,
	})
	require.NoError(t, err)

	// meter rollback or replacement: stored as-is, not rejected
	second, err := svc.Record(ctx, reader, ReadingCreateInput{
		MeterNumber: "MTR-002", CustomerName: "Bob Green", CurrentReading: 80, ReadingDate: &day2,
	})
	require.NoError(t, err)
	assert.Equal(t, -20.0, second.Consumption)
}

func TestRecordIsolatesMeters(t *testing.T) {
	svc, _, reader, _ := newMeterFixture(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, reader, ReadingCreateInput{
		MeterNumber: "MTR-001", CustomerName: "Alice Brown", CurrentReading: 500,
	})
	require.NoError(t, err)

	other, err := svc.Record(ctx, reader, ReadingCreateInput{
		MeterNumber: "MTR-002", CustomerName: "Bob Green", CurrentReading: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, other.PreviousReading)
	assert.Equal(t, 40.0, other.Consumption)
}

func TestRecordValidatesRequiredFields(t *testing.T) {
	svc, _, reader, _ := newMeterFixture(t)

	_, err := svc.Record(context.Background(), reader, ReadingCreateInput{
		MeterNumber: "  ", CustomerName: "Alice Brown", CurrentReading: 10,
	})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestHistoryReturnsMostRecentFirst(t *testing.T) {
	svc, _, reader, _ := newMeterFixture(t)
	ctx := context.Background()

	day1 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Record(ctx, reader, ReadingCreateInput{
		MeterNumber: "MTR-001", CustomerName: "Alice Brown", CurrentReading: 100, ReadingDate: &day1,
	})
	require.NoError(t, err)
	_, err = svc.Record(ctx, reader, ReadingCreateInput{
		MeterNumber: "MTR-001", CustomerName: "Alice Brown", CurrentReading: 130, ReadingDate: &day2,
	})
	require.NoError(t, err)

	history, err := svc.History(ctx, "MTR-001")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 130.0, history[0].CurrentReading)
	assert.Equal(t, 100.0, history[1].CurrentReading)
}

func TestUpdateStatusValidatesValue(t *testing.T) {
	svc, _, reader, _ := newMeterFixture(t)
	ctx := context.Background()

	reading, err := svc.Record(ctx, reader, ReadingCreateInput{
		MeterNumber: "MTR-001", CustomerName: "Alice Brown", CurrentReading: 100,
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, reading.ID, domain.ReadingStatus("Archived"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	verified, err := svc.UpdateStatus(ctx, reading.ID, domain.ReadingStatusVerified)
	require.NoError(t, err)
	assert.Equal(t, domain.ReadingStatusVerified, verified.Status)
}

func TestUpdateStatusUnknownID(t *testing.T) {
	svc, _, _, _ := newMeterFixture(t)

	_, err := svc.UpdateStatus(context.Background(), "missing", domain.ReadingStatusVerified)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
