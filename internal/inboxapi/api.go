// Package inboxapi exposes the escalation inbox over HTTP: filtered and
// sorted views, single and bulk status transitions, the selection set,
// and the per-patient notification feed.
package inboxapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-chi/chi/v5"
	"github.com/linnemanlabs/go-core/log"
	"github.com/linnemanlabs/go-core/xerrors"

	"github.com/linnemanlabs/ward/internal/escalation"
	"github.com/linnemanlabs/ward/internal/notifygate"
)

// API holds dependencies for HTTP handlers.
type API struct {
	logger   log.Logger
	store    *escalation.Store
	gate     *notifygate.Gate
	notifier escalation.Notifier
}

// Option attaches optional collaborators.
type Option func(*API)

// WithNotifier sets the sink for bulk action notifications. Delivery is
// asynchronous and never blocks or fails the HTTP response.
func WithNotifier(n escalation.Notifier) Option {
	return func(a *API) { a.notifier = n }
}

// New creates a new API handler.
func New(logger log.Logger, store *escalation.Store, gate *notifygate.Gate, opts ...Option) *API {
	if logger == nil {
		logger = log.Nop()
	}
	if store == nil {
		panic(xerrors.New("escalation store is required"))
	}
	a := &API{
		logger: logger,
		store:  store,
		gate:   gate,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// RegisterRoutes attaches API endpoints to the router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/escalations", func(r chi.Router) {
			r.Get("/", a.handleList)
			r.Post("/{id}/status", a.handleTransition)
			r.Post("/bulk", a.handleBulk)
			r.Post("/selection/toggle-all", a.handleToggleAll)
		})
		r.Get("/patients/{id}/notifications", a.handleNotifications)
	})
}

// view applies the request's filter and sort parameters to the store.
func (a *API) view(r *http.Request) ([]escalation.Item, error) {
	q := r.URL.Query()

	query := escalation.Query{
		Status:   escalation.Status(q.Get("status")),
		Priority: escalation.Priority(q.Get("priority")),
		SLA:      escalation.SLABucket(q.Get("sla")),
		Search:   q.Get("search"),
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, errors.New("unknown status")
	}
	if query.Priority != "" && !query.Priority.Valid() {
		return nil, errors.New("unknown priority")
	}
	switch query.SLA {
	case "", escalation.SLAOverdue, escalation.SLADueSoon:
	default:
		return nil, errors.New("unknown sla bucket")
	}
	if tags, ok := q["tag"]; ok {
		query.Tags = tags
	}

	sortKey := escalation.SortKey(q.Get("sort"))
	switch sortKey {
	case "":
		sortKey = escalation.SortDeadline
	case escalation.SortDeadline, escalation.SortPriority, escalation.SortSubmitted:
	default:
		return nil, errors.New("unknown sort key")
	}

	return escalation.SortBy(sortKey, a.store.Filter(query)), nil
}

func (a *API) handleList(w http.ResponseWriter, r *http.Request) {
	items, err := a.view(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(attribute.Int("ward.inbox.items", len(items)))

	writeJSON(w, http.StatusOK, map[string]any{
		"items":     items,
		"count":     len(items),
		"selection": a.store.Selection(),
	})
}

func (a *API) handleTransition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Status escalation.Status `json:"status"`
		Actor  string            `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid payload")
		return
	}
	if !req.Status.Valid() {
		badRequest(w, "unknown status")
		return
	}

	err := a.store.Transition(r.Context(), id, req.Status, req.Actor)
	if errors.Is(err, escalation.ErrNotFound) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		a.logger.Error(r.Context(), err, "transition failed", "id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	item, _ := a.store.Get(id)
	writeJSON(w, http.StatusOK, item)
}

func (a *API) handleBulk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs    []string          `json:"ids"`
		Status escalation.Status `json:"status"`
		Actor  string            `json:"actor"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid payload")
		return
	}
	if len(req.IDs) == 0 {
		// No explicit ids means act on the stored selection.
		req.IDs = a.store.Selection()
	}
	if len(req.IDs) == 0 {
		badRequest(w, "ids are required and nothing is selected")
		return
	}
	if !req.Status.Valid() {
		badRequest(w, "unknown status")
		return
	}

	applied, notFound := a.store.BulkTransition(r.Context(), req.IDs, req.Status, req.Actor)

	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(
		attribute.Int("ward.inbox.bulk_applied", applied),
		attribute.Int("ward.inbox.bulk_not_found", len(notFound)),
	)

	if a.notifier != nil && applied > 0 {
		action := &escalation.BulkAction{
			Status:   req.Status,
			Applied:  applied,
			NotFound: len(notFound),
			Actor:    req.Actor,
		}
		// Detached from the request lifecycle; the response does not
		// wait for the notification channel.
		go func(ctx context.Context) {
			if err := a.notifier.NotifyBulk(ctx, action); err != nil {
				a.logger.Warn(ctx, "bulk notification failed", "error", err.Error())
			}
		}(context.WithoutCancel(r.Context()))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"applied":   applied,
		"not_found": notFound,
	})
}

func (a *API) handleToggleAll(w http.ResponseWriter, r *http.Request) {
	items, err := a.view(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	a.store.ToggleSelectAll(items)
	writeJSON(w, http.StatusOK, map[string]any{
		"selection": a.store.Selection(),
	})
}

func (a *API) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if a.gate == nil {
		http.Error(w, `{"error":"notifications not configured"}`, http.StatusNotFound)
		return
	}

	id := chi.URLParam(r, "id")
	alerts, err := a.gate.Surfaceable(r.Context(), id)
	if err != nil {
		a.logger.Error(r.Context(), err, "notification lookup failed", "patient_id", id)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"patient_id":    id,
		"notifications": alerts,
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
