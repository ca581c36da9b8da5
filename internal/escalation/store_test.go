package escalation

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, items ...Item) *Store {
	t.Helper()
	s := NewStore(nil, WithClock(func() time.Time { return testNow }))
	for _, item := range items {
		s.Add(item)
	}
	return s
}

func item(id string, mods ...func(*Item)) Item {
	it := Item{
		ID:          id,
		Title:       "escalation " + id,
		Description: "description for " + id,
		Status:      StatusPending,
		Priority:    PriorityMedium,
		SubmittedAt: testNow.Add(-time.Hour),
		SLADeadline: testNow.Add(12 * time.Hour),
	}
	for _, mod := range mods {
		mod(&it)
	}
	return it
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFilter_EmptyQueryPassesAll(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, item("a"), item("b"), item("c"))

	got := s.Filter(Query{})
	if len(got) != 3 {
		t.Errorf("len = %d, want 3", len(got))
	}
	if !slices.Equal(ids(got), []string{"a", "b", "c"}) {
		t.Errorf("order = %v, want insertion order", ids(got))
	}
}

func TestFilter_ConjunctionSemantics(t *testing.T) {
	t.Parallel()

	s := newTestStore(t,
		item("a", func(i *Item) { i.Status = StatusPending; i.Priority = PriorityCritical }),
		item("b", func(i *Item) { i.Status = StatusPending; i.Priority = PriorityLow }),
		item("c", func(i *Item) { i.Status = StatusApproved; i.Priority = PriorityCritical }),
	)

	got := s.Filter(Query{Status: StatusPending, Priority: PriorityCritical})
	if !slices.Equal(ids(got), []string{"a"}) {
		t.Errorf("got %v, want [a]: all active predicates must pass", ids(got))
	}
}

func TestFilter_SLABuckets(t *testing.T) {
	t.Parallel()

	s := newTestStore(t,
		item("overdue", func(i *Item) { i.SLADeadline = testNow.Add(-time.Hour) }),
		item("soon", func(i *Item) { i.SLADeadline = testNow.Add(2 * time.Hour) }),
		item("boundary", func(i *Item) { i.SLADeadline = testNow.Add(4 * time.Hour) }),
		item("later", func(i *Item) { i.SLADeadline = testNow.Add(20 * time.Hour) }),
	)

	if got := ids(s.Filter(Query{SLA: SLAOverdue})); !slices.Equal(got, []string{"overdue"}) {
		t.Errorf("overdue = %v, want [overdue]", got)
	}
	// now+4h is outside the half-open due-soon range.
	if got := ids(s.Filter(Query{SLA: SLADueSoon})); !slices.Equal(got, []string{"soon"}) {
		t.Errorf("due-soon = %v, want [soon]", got)
	}
}

func TestFilter_SearchCaseInsensitive(t *testing.T) {
	t.Parallel()

	s := newTestStore(t,
		item("a", func(i *Item) { i.Title = "Warfarin interaction" }),
		item("b", func(i *Item) { i.Description = "possible WARFARIN overdose" }),
		item("c", func(i *Item) { i.Title = "Scheduling conflict" }),
	)

	got := ids(s.Filter(Query{Search: "warfarin"}))
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("got %v, want [a b]: match over title and description", got)
	}
}

func TestFilter_TagIntersection(t *testing.T) {
	t.Parallel()

	s := newTestStore(t,
		item("a", func(i *Item) { i.Tags = []string{"lab", "cardiac"} }),
		item("b", func(i *Item) { i.Tags = []string{"billing"} }),
		item("c", func(i *Item) { i.Tags = nil }),
	)

	got := ids(s.Filter(Query{Tags: []string{"cardiac", "billing"}}))
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Errorf("got %v, want [a b]: non-empty tag intersection", got)
	}
}

func TestSortBy_PriorityStable(t *testing.T) {
	t.Parallel()

	items := []Item{
		item("low1", func(i *Item) { i.Priority = PriorityLow }),
		item("crit1", func(i *Item) { i.Priority = PriorityCritical }),
		item("med1", func(i *Item) { i.Priority = PriorityMedium }),
		item("crit2", func(i *Item) { i.Priority = PriorityCritical }),
		item("low2", func(i *Item) { i.Priority = PriorityLow }),
	}

	got := ids(SortBy(SortPriority, items))
	want := []string{"crit1", "crit2", "med1", "low1", "low2"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v: equal priorities keep input order", got, want)
	}
}

func TestSortBy_PriorityTotalOrder(t *testing.T) {
	t.Parallel()

	// low, critical, medium in -> critical, medium, low out.
	items := []Item{
		item("l", func(i *Item) { i.Priority = PriorityLow }),
		item("c", func(i *Item) { i.Priority = PriorityCritical }),
		item("m", func(i *Item) { i.Priority = PriorityMedium }),
	}

	got := ids(SortBy(SortPriority, items))
	if !slices.Equal(got, []string{"c", "m", "l"}) {
		t.Errorf("got %v, want [c m l]", got)
	}
}

func TestSortBy_DeadlineAscending(t *testing.T) {
	t.Parallel()

	items := []Item{
		item("late", func(i *Item) { i.SLADeadline = testNow.Add(10 * time.Hour) }),
		item("urgent", func(i *Item) { i.SLADeadline = testNow.Add(-time.Hour) }),
		item("mid", func(i *Item) { i.SLADeadline = testNow.Add(2 * time.Hour) }),
	}

	got := ids(SortBy(SortDeadline, items))
	if !slices.Equal(got, []string{"urgent", "mid", "late"}) {
		t.Errorf("got %v, want earliest deadline first", got)
	}
}

func TestSortBy_SubmittedDescending(t *testing.T) {
	t.Parallel()

	items := []Item{
		item("old", func(i *Item) { i.SubmittedAt = testNow.Add(-10 * time.Hour) }),
		item("new", func(i *Item) { i.SubmittedAt = testNow.Add(-time.Minute) }),
		item("mid", func(i *Item) { i.SubmittedAt = testNow.Add(-time.Hour) }),
	}

	got := ids(SortBy(SortSubmitted, items))
	if !slices.Equal(got, []string{"new", "mid", "old"}) {
		t.Errorf("got %v, want most recent first", got)
	}
}

func TestTransition(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, item("a"))
	ctx := context.Background()

	if err := s.Transition(ctx, "a", StatusApproved, "dr-chen"); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	got, _ := s.Get("a")
	if got.Status != StatusApproved {
		t.Errorf("status = %q, want approved", got.Status)
	}

	// Idempotent when already in the target status.
	if err := s.Transition(ctx, "a", StatusApproved, "dr-chen"); err != nil {
		t.Errorf("repeat Transition: %v", err)
	}
}

func TestTransition_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	if err := s.Transition(context.Background(), "ghost", StatusApproved, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestBulkTransition(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, item("a"), item("b"), item("c"))
	s.ToggleSelect("a")
	s.ToggleSelect("b")

	applied, notFound := s.BulkTransition(context.Background(), []string{"a", "b", "ghost"}, StatusOverridden, "dr-chen")

	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}
	if !slices.Equal(notFound, []string{"ghost"}) {
		t.Errorf("notFound = %v, want [ghost]: misses are reported, not dropped", notFound)
	}

	for _, id := range []string{"a", "b"} {
		got, _ := s.Get(id)
		if got.Status != StatusOverridden {
			t.Errorf("item %s status = %q, want overridden", id, got.Status)
		}
	}
	got, _ := s.Get("c")
	if got.Status != StatusPending {
		t.Errorf("item c status = %q, want untouched pending", got.Status)
	}

	if sel := s.Selection(); len(sel) != 0 {
		t.Errorf("selection = %v, want cleared after bulk transition", sel)
	}
}

func TestToggleSelectAll(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, item("a"), item("b"), item("c"))
	view := s.Filter(Query{})

	s.ToggleSelectAll(view)
	if sel := s.Selection(); !slices.Equal(sel, []string{"a", "b", "c"}) {
		t.Fatalf("selection = %v, want all visible ids", sel)
	}

	// Toggling again against the same view clears.
	s.ToggleSelectAll(view)
	if sel := s.Selection(); len(sel) != 0 {
		t.Fatalf("selection = %v, want empty after second toggle", sel)
	}

	// A stale selection is replaced by exactly the new view, not unioned.
	s.ToggleSelect("a")
	narrow := view[1:2] // just b
	s.ToggleSelectAll(narrow)
	if sel := s.Selection(); !slices.Equal(sel, []string{"b"}) {
		t.Errorf("selection = %v, want exactly [b]", sel)
	}
}

type captureRecorder struct {
	mu      sync.Mutex
	entries []Transition
}

func (c *captureRecorder) Record(_ context.Context, t Transition) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, t)
	return nil
}

func TestTransition_Journaled(t *testing.T) {
	t.Parallel()

	rec := &captureRecorder{}
	s := NewStore(nil, WithClock(func() time.Time { return testNow }), WithRecorder(rec))
	s.Add(item("a"))
	ctx := context.Background()

	_ = s.Transition(ctx, "a", StatusApproved, "dr-chen")
	// Undo is a new transition, not an erasure of the first.
	_ = s.Transition(ctx, "a", StatusPending, "dr-chen")

	if len(rec.entries) != 2 {
		t.Fatalf("journal entries = %d, want 2", len(rec.entries))
	}
	if rec.entries[0].From != StatusPending || rec.entries[0].To != StatusApproved {
		t.Errorf("first entry = %+v, want pending->approved", rec.entries[0])
	}
	if rec.entries[1].From != StatusApproved || rec.entries[1].To != StatusPending {
		t.Errorf("second entry = %+v, want approved->pending", rec.entries[1])
	}
}

func TestBulkTransition_NoPartialReads(t *testing.T) {
	t.Parallel()

	const n = 50
	s := newTestStore(t)
	batch := make([]string, n)
	for i := 0; i < n; i++ {
		id := string(rune('a'+i%26)) + string(rune('0'+i/26))
		batch[i] = id
		s.Add(item(id))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.BulkTransition(context.Background(), batch, StatusApproved, "")
	}()

	// A concurrent filter must observe zero or n approved items.
	for i := 0; i < 100; i++ {
		approved := len(s.Filter(Query{Status: StatusApproved}))
		if approved != 0 && approved != n {
			t.Fatalf("observed partially applied bulk transition: %d of %d", approved, n)
		}
	}
	<-done

	if got := len(s.Filter(Query{Status: StatusApproved})); got != n {
		t.Fatalf("approved = %d, want %d", got, n)
	}
}

func TestSeedDemo(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	s.SeedDemo()

	if s.Len() != 4 {
		t.Fatalf("Len = %d, want 4", s.Len())
	}
	if got := len(s.Filter(Query{SLA: SLAOverdue})); got != 1 {
		t.Errorf("overdue = %d, want 1", got)
	}
}
