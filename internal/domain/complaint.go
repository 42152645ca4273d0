package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusReceived   ComplaintStatus = "Received"
	ComplaintStatusInProgress ComplaintStatus = "In Progress"
	ComplaintStatusResolved   ComplaintStatus = "Resolved"
)

// ComplaintCategory is the closed set of complaint types.
type ComplaintCategory string

const (
	CategoryPipeLeak     ComplaintCategory = "Pipe Leak"
	CategoryNoWater      ComplaintCategory = "No Water"
	CategoryBillingIssue ComplaintCategory = "Billing Issue"
	CategoryWaterQuality ComplaintCategory = "Water Quality"
	CategoryMeterIssue   ComplaintCategory = "Meter Issue"
	CategoryOther        ComplaintCategory = "Other"
)

// ComplaintCategories lists every accepted category.
var ComplaintCategories = []ComplaintCategory{
	CategoryPipeLeak,
	CategoryNoWater,
	CategoryBillingIssue,
	CategoryWaterQuality,
	CategoryMeterIssue,
	CategoryOther,
}

// IsValidCategory reports whether the category is one of the accepted values.
func IsValidCategory(c ComplaintCategory) bool {
	for _, cat := range ComplaintCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// Priority enumerates urgency for complaints and tasks.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// IsValidPriority reports whether the priority is one of the accepted values.
func IsValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Complaint is the aggregate for customer-reported issues.
type Complaint struct {
	ID              string
	ReferenceNumber string
	Title           string
	Description     string
	Category        ComplaintCategory
	Location        string
	Status          ComplaintStatus
	Priority        Priority
	SubmittedBy     string
	SubmitterName   string
	AssignedTo      *string
	AssigneeName    *string
	ResolutionNotes string
	ResolvedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// complaintTransitions defines the allowed status moves. Resolved is terminal,
// so resolvedAt is stamped exactly once and never needs clearing.
var complaintTransitions = map[ComplaintStatus][]ComplaintStatus{
	ComplaintStatusReceived:   {ComplaintStatusInProgress, ComplaintStatusResolved},
	ComplaintStatusInProgress: {ComplaintStatusResolved},
	ComplaintStatusResolved:   {},
}

// CanTransitionComplaint reports whether a complaint may move between statuses.
// Setting the current status again is treated as a no-op and allowed.
func CanTransitionComplaint(from, to ComplaintStatus) bool {
	if from == to {
		return true
	}
	for _, next := range complaintTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsValidComplaintStatus reports whether the value is a known status.
func IsValidComplaintStatus(s ComplaintStatus) bool {
	_, ok := complaintTransitions[s]
	return ok
}
