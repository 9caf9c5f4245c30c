//go:build !linux

package netmon

// NewWatcher returns nil on platforms without an event-based interface
// monitor; the service then relies on polling alone.
func NewWatcher() Watcher {
	return nil
}
