package tools

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/linnemanlabs/ward/internal/patient"
	"github.com/linnemanlabs/ward/internal/patient/memsource"
)

func seededSource(t *testing.T) *memsource.Source {
	t.Helper()
	src := memsource.New()
	src.SeedDemo()
	return src
}

func TestPatientRecordLookup_Found(t *testing.T) {
	t.Parallel()

	tool := NewPatientRecordLookup(seededSource(t))
	out, err := tool.Execute(context.Background(), json.RawMessage(`{"patient_id":"P2001"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var rec patient.Record
	if err := json.Unmarshal(out, &rec); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if rec.PatientID != "P2001" {
		t.Errorf("PatientID = %q, want P2001", rec.PatientID)
	}
	if len(rec.Medications) == 0 {
		t.Error("expected medications in seeded record")
	}
}

func TestPatientRecordLookup_MissIsDataNotError(t *testing.T) {
	t.Parallel()

	tool := NewPatientRecordLookup(seededSource(t))
	out, err := tool.Execute(context.Background(), json.RawMessage(`{"patient_id":"P9999"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var res struct {
		Found   bool   `json:"found"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(out, &res); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if res.Found {
		t.Error("found = true, want false")
	}
	if !strings.Contains(res.Message, "P9999") {
		t.Errorf("message %q should name the patient", res.Message)
	}
}

func TestPatientLookups_MissingPatientID(t *testing.T) {
	t.Parallel()

	src := seededSource(t)
	for _, tool := range []Tool{
		NewPatientRecordLookup(src),
		NewCoverageLookup(src),
		NewEvidenceLookup(src),
		NewPreferenceLookup(src),
	} {
		if _, err := tool.Execute(context.Background(), json.RawMessage(`{}`)); err == nil {
			t.Errorf("%s: expected error for missing patient_id", tool.Name())
		}
		if _, err := tool.Execute(context.Background(), json.RawMessage(`not json`)); err == nil {
			t.Errorf("%s: expected error for malformed params", tool.Name())
		}
	}
}

func TestCoverageLookup_Found(t *testing.T) {
	t.Parallel()

	tool := NewCoverageLookup(seededSource(t))
	out, err := tool.Execute(context.Background(), json.RawMessage(`{"patient_id":"P2001"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var cov patient.Coverage
	if err := json.Unmarshal(out, &cov); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if cov.Payer == "" {
		t.Error("expected a payer in seeded coverage")
	}
}

func TestEvidenceLookup_Found(t *testing.T) {
	t.Parallel()

	tool := NewEvidenceLookup(seededSource(t))
	out, err := tool.Execute(context.Background(), json.RawMessage(`{"patient_id":"P2001"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var rec patient.AlertRecord
	if err := json.Unmarshal(out, &rec); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if len(rec.DrugAlerts) == 0 {
		t.Error("expected drug alerts in seeded evidence")
	}
}

func TestPreferenceLookup_Found(t *testing.T) {
	t.Parallel()

	tool := NewPreferenceLookup(seededSource(t))
	out, err := tool.Execute(context.Background(), json.RawMessage(`{"patient_id":"P2001"}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var prefs patient.Preferences
	if err := json.Unmarshal(out, &prefs); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if prefs.PreferredContact == "" {
		t.Error("expected a preferred contact in seeded preferences")
	}
}

type errorSource struct{}

func (errorSource) Record(context.Context, string) (*patient.Record, bool, error) {
	return nil, false, errors.New("emr unavailable")
}

func TestPatientRecordLookup_SourceError(t *testing.T) {
	t.Parallel()

	tool := NewPatientRecordLookup(errorSource{})
	if _, err := tool.Execute(context.Background(), json.RawMessage(`{"patient_id":"P2001"}`)); err == nil {
		t.Fatal("expected source error to surface")
	}
}

func TestLookupTools_SchemasParse(t *testing.T) {
	t.Parallel()

	src := seededSource(t)
	for _, tool := range []Tool{
		NewPatientRecordLookup(src),
		NewCoverageLookup(src),
		NewEvidenceLookup(src),
		NewPreferenceLookup(src),
	} {
		var schema map[string]any
		if err := json.Unmarshal(tool.Parameters(), &schema); err != nil {
			t.Errorf("%s: schema is not valid JSON: %v", tool.Name(), err)
		}
	}
}
