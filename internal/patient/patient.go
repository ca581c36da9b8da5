// Package patient defines the read models for per-patient clinical data
// (chart record, coverage, evidence alerts, contact preferences) and the
// source interfaces the rest of ward consumes them through. Sources are
// external collaborators; a lookup miss is (nil, false, nil), never an
// error.
package patient

import (
	"context"

	"github.com/linnemanlabs/ward/internal/quiethours"
)

// RelevanceHigh is the only relevance tier that surfaces to patients.
const RelevanceHigh = "high"

// DrugAlert flags newly published evidence about a drug the patient takes.
type DrugAlert struct {
	Drug       string `json:"drug"`
	Relevance  string `json:"relevance"`
	PubMedLink string `json:"pubmed_link"`
}

// StudyAlert flags a newly published study matching one of the patient's
// conditions.
type StudyAlert struct {
	Condition  string `json:"condition"`
	PubMedLink string `json:"pubmed_link"`
}

// AlertRecord is the evidence row for one patient.
type AlertRecord struct {
	PatientID      string       `json:"patient_id"`
	PubMedIDs      []string     `json:"pubmed_ids"`
	StudySummaries []string     `json:"study_summaries"`
	DrugAlerts     []DrugAlert  `json:"new_drug_alerts"`
	StudyAlerts    []StudyAlert `json:"new_study_alerts"`
}

// Preferences holds a patient's contact preferences, including the daily
// quiet window during which alerts must not surface.
type Preferences struct {
	PatientID        string            `json:"patient_id"`
	PreferredContact string            `json:"pref_contact"`
	QuietHours       quiethours.Window `json:"alert_quiet_hours"`
	IntakeQuestions  []string          `json:"intake_questions"`
	IntakeResponses  []string          `json:"intake_responses"`
}

// Record is the EMR chart summary for one patient.
type Record struct {
	PatientID      string             `json:"patient_id"`
	Age            int                `json:"age"`
	Gender         string             `json:"gender"`
	Specialty      string             `json:"specialty"`
	ChiefComplaint string             `json:"chief_complaint"`
	Symptoms       []string           `json:"symptoms"`
	Diagnoses      []string           `json:"diagnoses"`
	Medications    []string           `json:"medications"`
	LabResults     map[string]float64 `json:"lab_results"`
	Allergies      []string           `json:"allergies"`
}

// Coverage is the payer row for one patient.
type Coverage struct {
	PatientID         string   `json:"patient_id"`
	Payer             string   `json:"payer"`
	PlanType          string   `json:"plan_type"`
	PriorAuthRequired []string `json:"prior_auth_required"`
	CoverageNotes     string   `json:"coverage_notes"`
}

// AlertSource yields the zero-or-one evidence record for a patient.
type AlertSource interface {
	Alerts(ctx context.Context, patientID string) (*AlertRecord, bool, error)
}

// PreferenceSource yields the zero-or-one preference record for a patient.
type PreferenceSource interface {
	Preferences(ctx context.Context, patientID string) (*Preferences, bool, error)
}

// RecordSource yields the zero-or-one EMR record for a patient.
type RecordSource interface {
	Record(ctx context.Context, patientID string) (*Record, bool, error)
}

// CoverageSource yields the zero-or-one payer record for a patient.
type CoverageSource interface {
	Coverage(ctx context.Context, patientID string) (*Coverage, bool, error)
}
