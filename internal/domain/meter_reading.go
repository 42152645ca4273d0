package domain

import "time"

// ReadingStatus is the review state of a recorded meter reading.
type ReadingStatus string

const (
	ReadingStatusRecorded ReadingStatus = "Recorded"
	ReadingStatusVerified ReadingStatus = "Verified"
	ReadingStatusFlagged  ReadingStatus = "Flagged"
)

// IsValidReadingStatus reports whether the value is a known reading status.
func IsValidReadingStatus(s ReadingStatus) bool {
	return s == ReadingStatusRecorded || s == ReadingStatusVerified || s == ReadingStatusFlagged
}

// DefaultUnit is the billing unit for consumption (kilolitres).
const DefaultUnit = "KL"

// MeterReading is one entry in the append-mostly consumption ledger.
// Consumption is derived, never supplied by the caller.
type MeterReading struct {
	ID              string
	MeterNumber     string
	CustomerName    string
	CustomerAccount string
	Location        string
	PreviousReading float64
	CurrentReading  float64
	Consumption     float64
	ReadingDate     time.Time
	MeterReader     string
	ReaderName      string
	Notes           string
	Unit            string
	Status          ReadingStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ComputeConsumption recalculates the derived delta. Negative results are
// stored as-is; the server does not reject a current reading below the
// previous one.
func (r *MeterReading) ComputeConsumption() {
	r.Consumption = r.CurrentReading - r.PreviousReading
}
