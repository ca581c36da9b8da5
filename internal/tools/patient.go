package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/linnemanlabs/ward/internal/patient"
)

// patientIDSchema is shared by every lookup tool: each one takes exactly
// one patient identifier.
const patientIDSchema = `{
        "type": "object",
        "properties": {
            "patient_id": {
                "type": "string",
                "description": "Patient identifier, e.g. P2001"
            }
        },
        "required": ["patient_id"]
    }`

func patientIDFrom(params json.RawMessage) (string, error) {
	var input struct {
		PatientID string `json:"patient_id"`
	}
	if err := json.Unmarshal(params, &input); err != nil {
		return "", fmt.Errorf("invalid params: %w", err)
	}
	if input.PatientID == "" {
		return "", fmt.Errorf("patient_id is required")
	}
	return input.PatientID, nil
}

// A lookup miss is reported to the model as data, not as a tool failure,
// so the conversation can continue.
func missResult(what, patientID string) (json.RawMessage, error) {
	return json.Marshal(map[string]any{
		"found":   false,
		"message": fmt.Sprintf("no %s on file for patient %s", what, patientID),
	})
}

// PatientRecordLookup exposes the EMR chart summary to the AI.
type PatientRecordLookup struct {
	records patient.RecordSource
}

func NewPatientRecordLookup(records patient.RecordSource) *PatientRecordLookup {
	return &PatientRecordLookup{records: records}
}

func (l *PatientRecordLookup) Name() string { return "get_patient_record" }

func (l *PatientRecordLookup) Description() string {
	return `Fetch the patient's chart summary from the EMR: demographics, chief complaint,
symptoms, diagnoses, current medications, latest lab results, and allergies.
Use this before answering any clinical question about a specific patient.`
}

func (l *PatientRecordLookup) Parameters() json.RawMessage {
	return json.RawMessage(patientIDSchema)
}

func (l *PatientRecordLookup) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	id, err := patientIDFrom(params)
	if err != nil {
		return nil, err
	}
	rec, ok, err := l.records.Record(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("record lookup failed: %w", err)
	}
	if !ok {
		return missResult("chart record", id)
	}
	return json.Marshal(rec)
}

// CoverageLookup exposes the payer row to the AI.
type CoverageLookup struct {
	coverage patient.CoverageSource
}

func NewCoverageLookup(coverage patient.CoverageSource) *CoverageLookup {
	return &CoverageLookup{coverage: coverage}
}

func (l *CoverageLookup) Name() string { return "get_coverage" }

func (l *CoverageLookup) Description() string {
	return `Fetch the patient's insurance coverage: payer, plan type, which medications or
procedures require prior authorization, and any coverage notes. Use this when a
question touches cost, formulary, or prior-auth status.`
}

func (l *CoverageLookup) Parameters() json.RawMessage {
	return json.RawMessage(patientIDSchema)
}

func (l *CoverageLookup) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	id, err := patientIDFrom(params)
	if err != nil {
		return nil, err
	}
	cov, ok, err := l.coverage.Coverage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("coverage lookup failed: %w", err)
	}
	if !ok {
		return missResult("coverage", id)
	}
	return json.Marshal(cov)
}

// EvidenceLookup exposes the per-patient literature alerts to the AI.
type EvidenceLookup struct {
	alerts patient.AlertSource
}

func NewEvidenceLookup(alerts patient.AlertSource) *EvidenceLookup {
	return &EvidenceLookup{alerts: alerts}
}

func (l *EvidenceLookup) Name() string { return "get_evidence" }

func (l *EvidenceLookup) Description() string {
	return `Fetch recently published evidence matched to this patient: study summaries,
PubMed identifiers, and alerts about the patient's medications or conditions.
Use this to ground recommendations in current literature.`
}

func (l *EvidenceLookup) Parameters() json.RawMessage {
	return json.RawMessage(patientIDSchema)
}

func (l *EvidenceLookup) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	id, err := patientIDFrom(params)
	if err != nil {
		return nil, err
	}
	rec, ok, err := l.alerts.Alerts(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("evidence lookup failed: %w", err)
	}
	if !ok {
		return missResult("evidence", id)
	}
	return json.Marshal(rec)
}

// PreferenceLookup exposes the patient's contact preferences to the AI.
type PreferenceLookup struct {
	prefs patient.PreferenceSource
}

func NewPreferenceLookup(prefs patient.PreferenceSource) *PreferenceLookup {
	return &PreferenceLookup{prefs: prefs}
}

func (l *PreferenceLookup) Name() string { return "get_patient_preferences" }

func (l *PreferenceLookup) Description() string {
	return `Fetch the patient's contact preferences, quiet hours, and intake questionnaire
answers. Use this before suggesting how or when to reach the patient.`
}

func (l *PreferenceLookup) Parameters() json.RawMessage {
	return json.RawMessage(patientIDSchema)
}

func (l *PreferenceLookup) Execute(ctx context.Context, params json.RawMessage) (json.RawMessage, error) {
	id, err := patientIDFrom(params)
	if err != nil {
		return nil, err
	}
	p, ok, err := l.prefs.Preferences(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("preferences lookup failed: %w", err)
	}
	if !ok {
		return missResult("preferences", id)
	}
	return json.Marshal(p)
}
