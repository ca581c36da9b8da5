package escalation

import "time"

// Status tracks where an escalation is in its review lifecycle.
type Status string

const (
	// StatusPending means submitted, awaiting review
	StatusPending Status = "pending"

	// StatusReviewed means a clinician has looked at it
	StatusReviewed Status = "reviewed"

	// StatusApproved means the escalated action was accepted
	StatusApproved Status = "approved"

	// StatusOverridden means the escalated action was rejected
	StatusOverridden Status = "overridden"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReviewed, StatusApproved, StatusOverridden:
		return true
	}
	return false
}

// Priority orders escalations by urgency.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// rank gives the total order critical > high > medium > low.
// Unknown priorities sort last.
func (p Priority) rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.rank() > 0
}

// Item is one escalation awaiting (or past) review. Items are never
// deleted; disappearing from a view is a filter concern, not a state
// change.
type Item struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Confidence     float64   `json:"confidence"`
	Status         Status    `json:"status"`
	Priority       Priority  `json:"priority"`
	SubmittedBy    string    `json:"submitted_by"`
	SubmittedAt    time.Time `json:"submitted_at"`
	SLADeadline    time.Time `json:"sla_deadline"`
	Category       string    `json:"category"`
	PatientID      string    `json:"patient_id,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	EscalationType string    `json:"escalation_type"`
}

// SLABucket classifies an item against its deadline.
type SLABucket string

const (
	SLAOverdue SLABucket = "overdue"
	SLADueSoon SLABucket = "due-soon"
)

// dueSoonHorizon is how far ahead of the deadline an item counts as
// due-soon.
const dueSoonHorizon = 4 * time.Hour

// SortKey selects an ordering for item lists.
type SortKey string

const (
	// SortDeadline orders by SLA deadline ascending: most urgent first.
	SortDeadline SortKey = "deadline"

	// SortPriority orders by priority descending; ties keep input order.
	SortPriority SortKey = "priority"

	// SortSubmitted orders by submission time descending: newest first.
	SortSubmitted SortKey = "submitted"
)

// Transition is one recorded status change, including bulk members and
// explicit undo actions. Reverts are new transitions, never silent edits.
type Transition struct {
	ItemID string    `json:"item_id"`
	From   Status    `json:"from"`
	To     Status    `json:"to"`
	Actor  string    `json:"actor,omitempty"`
	At     time.Time `json:"at"`
}

// BulkAction summarizes one bulk transition, for notification.
type BulkAction struct {
	Status   Status    `json:"status"`
	Applied  int       `json:"applied"`
	NotFound int       `json:"not_found"`
	Actor    string    `json:"actor,omitempty"`
	At       time.Time `json:"at"`
}
