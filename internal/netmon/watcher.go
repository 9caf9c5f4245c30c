package netmon

import "context"

// Watcher nudges the poll loop when the platform reports an interface
// change, so a re-snapshot happens before the next scheduled tick.
// Polling remains the source of truth; a watcher only wakes it early.
type Watcher interface {
	// Start begins watching for interface changes.
	// Calls nudge for each detected change; nudge must not block.
	// Blocks until ctx is cancelled or an error occurs.
	Start(ctx context.Context, nudge func()) error
}
