package netmon

type EventType string

const (
	SnapshotChanged EventType = "SNAPSHOT_CHANGED"
	RestartFailed   EventType = "RESTART_FAILED"
)

// Event is published to subscribers whenever the held snapshot changes.
// Generation identifies the responder started for the snapshot; it is
// empty when the restart failed.
type Event struct {
	Type       EventType `json:"type"`
	Snapshot   Snapshot  `json:"snapshot"`
	Generation string    `json:"generation,omitempty"`
	Error      string    `json:"error,omitempty"`
}
