package domain

import "time"

// TaskStatus enumerates lifecycle states for work items.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
	TaskStatusCancelled  TaskStatus = "Cancelled"
)

// Task is a staff-assigned work item, optionally tied to a complaint.
type Task struct {
	ID                  string
	Title               string
	Description         string
	AssignedBy          string
	AssignerName        string
	AssignedTo          string
	AssigneeName        string
	Status              TaskStatus
	Priority            Priority
	Location            string
	DueDate             *time.Time
	CompletionNotes     string
	CompletedAt         *time.Time
	RelatedComplaint    *string
	RelatedComplaintRef *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPending:    {TaskStatusInProgress, TaskStatusCancelled},
	TaskStatusInProgress: {TaskStatusCompleted, TaskStatusCancelled},
	TaskStatusCompleted:  {},
	TaskStatusCancelled:  {},
}

// CanTransitionTask reports whether a task may move between statuses.
// Setting the current status again is treated as a no-op and allowed.
func CanTransitionTask(from, to TaskStatus) bool {
	if from == to {
		return true
	}
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidTaskStatus reports whether the value is a known status.
func IsValidTaskStatus(s TaskStatus) bool {
	_, ok := taskTransitions[s]
	return ok
}

// IsTerminal reports whether no further transitions are possible.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}
