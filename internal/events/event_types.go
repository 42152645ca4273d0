package events

import (
	"time"

	"github.com/aquanet/water-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated       EventType = "complaint_created"
	EventComplaintStatusChanged EventType = "complaint_status_changed"
	EventComplaintAssigned      EventType = "complaint_assigned"
	EventTaskCreated            EventType = "task_created"
	EventTaskStatusChanged      EventType = "task_status_changed"
	EventTaskCompleted          EventType = "task_completed"
	EventReadingRecorded        EventType = "reading_recorded"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	SubjectID string      `json:"subject_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	ReferenceNumber string                   `json:"reference_number"`
	Category        domain.ComplaintCategory `json:"category"`
	Location        string                   `json:"location"`
	Priority        domain.Priority          `json:"priority"`
}

// ComplaintStatusChangedPayload payload.
type ComplaintStatusChangedPayload struct {
	OldStatus domain.ComplaintStatus `json:"old_status"`
	NewStatus domain.ComplaintStatus `json:"new_status"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	AssignedTo string `json:"assigned_to"`
}

// TaskCreatedPayload payload.
type TaskCreatedPayload struct {
	AssignedTo string          `json:"assigned_to"`
	Priority   domain.Priority `json:"priority"`
	Title      string          `json:"title"`
}

// TaskStatusChangedPayload payload.
type TaskStatusChangedPayload struct {
	OldStatus domain.TaskStatus `json:"old_status"`
	NewStatus domain.TaskStatus `json:"new_status"`
}

// TaskCompletedPayload payload.
type TaskCompletedPayload struct {
	AssignedTo  string    `json:"assigned_to"`
	CompletedAt time.Time `json:"completed_at"`
}

// ReadingRecordedPayload payload.
type ReadingRecordedPayload struct {
	MeterNumber string  `json:"meter_number"`
	Consumption float64 `json:"consumption"`
	Unit        string  `json:"unit"`
}
