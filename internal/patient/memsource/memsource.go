// Package memsource provides an in-memory implementation of the patient
// source interfaces, backed by seeded demo data. Suitable for dev/testing.
package memsource

import (
	"context"
	"fmt"
	"sync"

	"github.com/linnemanlabs/ward/internal/patient"
	"github.com/linnemanlabs/ward/internal/quiethours"
)

// Source holds patient data in memory, keyed by patient ID.
type Source struct {
	mu       sync.RWMutex
	alerts   map[string]*patient.AlertRecord
	prefs    map[string]*patient.Preferences
	records  map[string]*patient.Record
	coverage map[string]*patient.Coverage
}

// New initializes an empty in-memory Source.
func New() *Source {
	return &Source{
		alerts:   make(map[string]*patient.AlertRecord),
		prefs:    make(map[string]*patient.Preferences),
		records:  make(map[string]*patient.Record),
		coverage: make(map[string]*patient.Coverage),
	}
}

// Alerts retrieves the evidence record for a patient. Returns a copy.
func (s *Source) Alerts(_ context.Context, patientID string) (*patient.AlertRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.alerts[patientID]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

// Preferences retrieves the preference record for a patient. Returns a copy.
func (s *Source) Preferences(_ context.Context, patientID string) (*patient.Preferences, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prefs[patientID]
	if !ok {
		return nil, false, nil
	}
	cp := *p
	return &cp, true, nil
}

// Record retrieves the EMR record for a patient. Returns a copy.
func (s *Source) Record(_ context.Context, patientID string) (*patient.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[patientID]
	if !ok {
		return nil, false, nil
	}
	cp := *r
	return &cp, true, nil
}

// Coverage retrieves the payer record for a patient. Returns a copy.
func (s *Source) Coverage(_ context.Context, patientID string) (*patient.Coverage, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.coverage[patientID]
	if !ok {
		return nil, false, nil
	}
	cp := *c
	return &cp, true, nil
}

// PutAlerts stores a copy of the evidence record.
func (s *Source) PutAlerts(r *patient.AlertRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.alerts[r.PatientID] = &cp
}

// PutPreferences stores a copy of the preference record. The quiet window
// is expected to be already validated; use PutPreferencesRaw when the
// window arrives as an untrusted string.
func (s *Source) PutPreferences(p *patient.Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.prefs[p.PatientID] = &cp
}

// PutPreferencesRaw validates the quiet-hours string at the boundary and
// stores the record. Malformed windows are rejected here so downstream
// consumers only ever see a typed window.
func (s *Source) PutPreferencesRaw(p *patient.Preferences, rawQuietHours string) error {
	w, err := quiethours.Parse(rawQuietHours)
	if err != nil {
		return fmt.Errorf("preferences for %s: %w", p.PatientID, err)
	}
	cp := *p
	cp.QuietHours = w
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[cp.PatientID] = &cp
	return nil
}

// PutRecord stores a copy of the EMR record.
func (s *Source) PutRecord(r *patient.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.records[r.PatientID] = &cp
}

// PutCoverage stores a copy of the payer record.
func (s *Source) PutCoverage(c *patient.Coverage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.coverage[c.PatientID] = &cp
}

// Counts reports how many rows each dataset holds, for prompt seeding
// and startup logging.
func (s *Source) Counts() (alerts, prefs, records, coverage int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts), len(s.prefs), len(s.records), len(s.coverage)
}
