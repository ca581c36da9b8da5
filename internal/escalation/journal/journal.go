// Package journal records escalation status transitions as an append-only
// audit trail. The memory recorder is the default; the postgres recorder
// is used when a database URL is configured.
package journal

import (
	"context"
	"sync"

	"github.com/linnemanlabs/ward/internal/escalation"
)

// Mem keeps transitions in memory. Suitable for dev/testing.
type Mem struct {
	mu      sync.Mutex
	entries []escalation.Transition
}

// NewMem initializes an empty in-memory journal.
func NewMem() *Mem {
	return &Mem{}
}

// Record appends one transition.
func (m *Mem) Record(_ context.Context, t escalation.Transition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, t)
	return nil
}

// Entries returns a copy of everything recorded so far, in order.
func (m *Mem) Entries() []escalation.Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]escalation.Transition, len(m.entries))
	copy(out, m.entries)
	return out
}

// ForItem returns the recorded transitions for one item, in order.
func (m *Mem) ForItem(itemID string) []escalation.Transition {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []escalation.Transition
	for _, e := range m.entries {
		if e.ItemID == itemID {
			out = append(out, e)
		}
	}
	return out
}
