package escalation

import (
	"context"
	"errors"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/linnemanlabs/go-core/log"
)

// ErrNotFound reports a transition against an unknown item id. Callers
// treat it as a reportable condition, not a failure of the store.
var ErrNotFound = errors.New("escalation not found")

// Recorder receives every applied status transition. Recorder failures
// are logged and do not roll back the transition; the journal is an
// audit side-channel, not the source of truth.
type Recorder interface {
	Record(ctx context.Context, t Transition) error
}

// Query is a conjunction of independent filter predicates. Zero-valued
// fields are inactive; an empty Query passes every item.
type Query struct {
	Status   Status
	Priority Priority
	SLA      SLABucket
	Search   string
	Tags     []string
}

// Store owns the escalation items and the pending selection set. All
// reads and mutations take the single store mutex, so a bulk transition
// is one indivisible step relative to any concurrent filter or read.
type Store struct {
	mu        sync.Mutex
	items     []Item
	index     map[string]int
	selection map[string]struct{}

	recorder Recorder
	metrics  *Metrics
	logger   log.Logger
	now      func() time.Time
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithRecorder attaches a transition recorder.
func WithRecorder(r Recorder) StoreOption {
	return func(s *Store) { s.recorder = r }
}

// WithMetrics attaches store metrics.
func WithMetrics(m *Metrics) StoreOption {
	return func(s *Store) { s.metrics = m }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore initializes an empty Store.
func NewStore(logger log.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = log.Nop()
	}
	s := &Store{
		index:     make(map[string]int),
		selection: make(map[string]struct{}),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add inserts a new item, preserving insertion order. Items carrying an
// id that already exists are replaced in place.
func (s *Store) Add(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[item.ID]; ok {
		s.items[i] = item
		return
	}
	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)
}

// Get retrieves a single item by id.
func (s *Store) Get(id string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return s.items[i], true
}

// Len reports how many items the store holds, regardless of filters.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Filter returns the items passing every active predicate of q, in
// insertion order. The result is a copy; mutating it does not touch the
// store.
func (s *Store) Filter(q Query) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterLocked(q)
}

func (s *Store) filterLocked(q Query) []Item {
	now := s.now()
	search := strings.ToLower(q.Search)

	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if q.Status != "" && item.Status != q.Status {
			continue
		}
		if q.Priority != "" && item.Priority != q.Priority {
			continue
		}
		if q.SLA != "" && slaBucket(item.SLADeadline, now) != q.SLA {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Title), search) &&
			!strings.Contains(strings.ToLower(item.Description), search) {
			continue
		}
		if len(q.Tags) > 0 && !tagsIntersect(item.Tags, q.Tags) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// slaBucket classifies deadline against now: past deadlines are overdue,
// deadlines within the next four hours are due-soon.
func slaBucket(deadline, now time.Time) SLABucket {
	if deadline.Before(now) {
		return SLAOverdue
	}
	if deadline.Before(now.Add(dueSoonHorizon)) {
		return SLADueSoon
	}
	return ""
}

func tagsIntersect(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}

// SortBy orders items by the given key. The sort is stable: items that
// compare equal keep their relative input order. Unknown keys leave the
// input order untouched.
func SortBy(key SortKey, items []Item) []Item {
	switch key {
	case SortDeadline:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SLADeadline.Before(items[j].SLADeadline)
		})
	case SortPriority:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Priority.rank() > items[j].Priority.rank()
		})
	case SortSubmitted:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].SubmittedAt.After(items[j].SubmittedAt)
		})
	}
	return items
}

// Transition sets one item's status. Setting the status an item already
// has is a no-op that still succeeds. Unknown ids return ErrNotFound.
func (s *Store) Transition(ctx context.Context, id string, to Status, actor string) error {
	s.mu.Lock()
	t, err := s.transitionLocked(id, to, actor)
	s.mu.Unlock()

	if err != nil {
		if s.metrics != nil {
			s.metrics.NotFoundTotal.Inc()
		}
		return err
	}
	s.record(ctx, t)
	return nil
}

// transitionLocked applies one status change under the store lock and
// returns the resulting journal entry. Idempotent transitions produce an
// entry with From == To.
func (s *Store) transitionLocked(id string, to Status, actor string) (Transition, error) {
	i, ok := s.index[id]
	if !ok {
		return Transition{}, ErrNotFound
	}
	from := s.items[i].Status
	s.items[i].Status = to
	if s.metrics != nil {
		s.metrics.TransitionsTotal.WithLabelValues(string(to)).Inc()
	}
	return Transition{ItemID: id, From: from, To: to, Actor: actor, At: s.now()}, nil
}

// BulkTransition applies the status to every id, then clears the
// selection. The whole batch is applied under one lock acquisition, so a
// concurrent Filter sees either none or all of it. Unknown ids are
// reported back, not silently dropped.
func (s *Store) BulkTransition(ctx context.Context, ids []string, to Status, actor string) (applied int, notFound []string) {
	s.mu.Lock()
	var recorded []Transition
	for _, id := range ids {
		t, err := s.transitionLocked(id, to, actor)
		if err != nil {
			notFound = append(notFound, id)
			continue
		}
		recorded = append(recorded, t)
		applied++
	}
	s.selection = make(map[string]struct{})
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.BulkSize.Observe(float64(applied))
		s.metrics.NotFoundTotal.Add(float64(len(notFound)))
	}
	for _, t := range recorded {
		s.record(ctx, t)
	}
	return applied, notFound
}

func (s *Store) record(ctx context.Context, t Transition) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, t); err != nil {
		s.logger.Error(ctx, err, "transition journal write failed", "item_id", t.ItemID, "to", string(t.To))
	}
}

// ToggleSelect flips a single item's membership in the selection set.
func (s *Store) ToggleSelect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.selection[id]; ok {
		delete(s.selection, id)
		return
	}
	s.selection[id] = struct{}{}
}

// ToggleSelectAll models "select all of what's currently visible": if
// the selection already equals exactly the view's id set it is cleared,
// otherwise the selection becomes exactly that id set. Selections of
// items hidden by an earlier re-filter are reconciled here, not eagerly.
func (s *Store) ToggleSelectAll(view []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SelectionToggles.Inc()
	}

	if len(view) == len(s.selection) {
		match := true
		for _, item := range view {
			if _, ok := s.selection[item.ID]; !ok {
				match = false
				break
			}
		}
		if match {
			s.selection = make(map[string]struct{})
			return
		}
	}

	s.selection = make(map[string]struct{}, len(view))
	for _, item := range view {
		s.selection[item.ID] = struct{}{}
	}
}

// Selection returns the selected ids, sorted for determinism.
func (s *Store) Selection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.selection))
	for id := range s.selection {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
