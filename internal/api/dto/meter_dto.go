package dto

import (
	"time"

	"github.com/aquanet/water-service/internal/domain"
)

// CreateReadingRequest payload. Consumption is derived server-side; any
// previous_reading sent by the client is ignored.
type CreateReadingRequest struct {
	MeterNumber     string     `json:"meter_number"`
	CustomerName    string     `json:"customer_name"`
	CustomerAccount string     `json:"customer_account"`
	Location        string     `json:"location"`
	CurrentReading  float64    `json:"current_reading"`
	ReadingDate     *time.Time `json:"reading_date"`
	Notes           string     `json:"notes"`
	Unit            string     `json:"unit"`
}

// UpdateReadingStatusRequest payload.
type UpdateReadingStatusRequest struct {
	Status domain.ReadingStatus `json:"status"`
}

// ReadingResponse is the API view of a meter reading.
type ReadingResponse struct {
	ID              string               `json:"id"`
	MeterNumber     string               `json:"meter_number"`
	CustomerName    string               `json:"customer_name"`
	CustomerAccount string               `json:"customer_account,omitempty"`
	Location        string               `json:"location,omitempty"`
	PreviousReading float64              `json:"previous_reading"`
	CurrentReading  float64              `json:"current_reading"`
	Consumption     float64              `json:"consumption"`
	ReadingDate     time.Time            `json:"reading_date"`
	MeterReader     string               `json:"meter_reader"`
	ReaderName      string               `json:"reader_name"`
	Notes           string               `json:"notes,omitempty"`
	Unit            string               `json:"unit"`
	Status          domain.ReadingStatus `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
}
