package escalation

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// SeedDemo loads a small inbox of demo escalations relative to now, for
// running the service without a real event producer upstream.
func (s *Store) SeedDemo() {
	now := s.now()

	s.Add(Item{
		ID:          ulid.Make().String(),
		Title:       "Unusual medication interaction detected",
		Description: "Patient prescribed conflicting medications - warfarin and aspirin combination exceeds safety threshold",
		Confidence:  0.94,
		Status:      StatusPending,
		Priority:    PriorityCritical,
		SubmittedBy: "Dr. Sarah Chen",
		SubmittedAt: now.Add(-30 * time.Minute),
		SLADeadline: now.Add(30 * time.Minute),
		Category:    "Drug Safety",
		PatientID:   "P2001",
		Tags:        []string{"medication", "interaction", "safety"},
		EscalationType: "clinical",
	})
	s.Add(Item{
		ID:          ulid.Make().String(),
		Title:       "Insurance authorization required",
		Description: "MRI scan requires pre-authorization - patient insurance plan change detected",
		Confidence:  0.87,
		Status:      StatusPending,
		Priority:    PriorityHigh,
		SubmittedBy: "Billing System",
		SubmittedAt: now.Add(-2 * time.Hour),
		SLADeadline: now.Add(24 * time.Hour),
		Category:    "Insurance",
		PatientID:   "P2002",
		Tags:        []string{"billing", "authorization", "mri"},
		EscalationType: "billing",
	})
	s.Add(Item{
		ID:          ulid.Make().String(),
		Title:       "Lab result critical value",
		Description: "Troponin level 15.2 ng/mL (critical high) - possible cardiac event",
		Confidence:  0.96,
		Status:      StatusReviewed,
		Priority:    PriorityCritical,
		SubmittedBy: "Lab System",
		SubmittedAt: now.Add(-4 * time.Hour),
		SLADeadline: now.Add(-1 * time.Hour),
		Category:    "Lab Results",
		PatientID:   "P2003",
		Tags:        []string{"lab", "cardiac", "critical"},
		EscalationType: "clinical",
	})
	s.Add(Item{
		ID:          ulid.Make().String(),
		Title:       "Appointment scheduling conflict",
		Description: "Double booking detected for OR-3 tomorrow at 2 PM - two surgeries scheduled",
		Confidence:  0.89,
		Status:      StatusPending,
		Priority:    PriorityMedium,
		SubmittedBy: "Scheduling System",
		SubmittedAt: now.Add(-6 * time.Hour),
		SLADeadline: now.Add(18 * time.Hour),
		Category:    "Scheduling",
		Tags:        []string{"scheduling", "conflict", "surgery"},
		EscalationType: "administrative",
	})
}
