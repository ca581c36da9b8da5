// Package notifygate decides which patient alerts may surface right now,
// combining the patient's quiet-hours preference with the relevance tier
// of each alert. Suppressed alerts are not queued for later delivery;
// a suppressed alert simply does not surface.
package notifygate

import (
	"context"
	"time"

	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/ward/internal/patient"
)

// Gate evaluates alert surfacing for one patient at a time.
type Gate struct {
	alerts patient.AlertSource
	prefs  patient.PreferenceSource
	logger log.Logger
	now    func() time.Time
}

// Option customizes a Gate.
type Option func(*Gate)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) { g.now = now }
}

// New creates a Gate over the given sources.
func New(alerts patient.AlertSource, prefs patient.PreferenceSource, logger log.Logger, opts ...Option) *Gate {
	if logger == nil {
		logger = log.Nop()
	}
	g := &Gate{
		alerts: alerts,
		prefs:  prefs,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Surfaceable returns the alerts that may surface for the patient right
// now: high-relevance drug alerts, outside the patient's quiet window.
// A missing evidence or preference record yields an empty result, not an
// error; only source failures propagate.
func (g *Gate) Surfaceable(ctx context.Context, patientID string) ([]patient.DrugAlert, error) {
	rec, ok, err := g.alerts.Alerts(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	prefs, ok, err := g.prefs.Preferences(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	nowHour := g.now().Hour()
	if prefs.QuietHours.Contains(nowHour) {
		g.logger.Info(ctx, "alerts suppressed by quiet window",
			"patient_id", patientID,
			"window", prefs.QuietHours.String(),
			"now_hour", nowHour,
		)
		return nil, nil
	}

	var out []patient.DrugAlert
	for _, al := range rec.DrugAlerts {
		if al.Relevance == patient.RelevanceHigh {
			out = append(out, al)
		}
	}
	return out, nil
}
