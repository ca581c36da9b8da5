package escalation

import "context"

// Notifier delivers a bulk-action summary to an external channel.
type Notifier interface {
	NotifyBulk(ctx context.Context, a *BulkAction) error
}
