package netmon

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/mdnsd/internal/advertise"
	"github.com/dmdmdm-nz/mdnsd/internal/runtime"
)

// Service drives the change-detection loop: it holds the current
// interface snapshot, re-collects it on every tick, and replaces the
// running responder through the Manager when the snapshot changes. The
// loop goroutine is the only mutator of the held snapshot and the held
// responder handle.
type Service struct {
	name         string
	filter       Filter
	enum         Enumerator
	mgr          *advertise.Manager
	pollInterval time.Duration
	watcher      Watcher

	mu       sync.RWMutex
	snapshot Snapshot

	subsMu           sync.Mutex
	subs             map[int]*runtime.SubQueue[Event]
	nextSubscriberID int
	closed           bool
}

func NewService(name string, filter Filter, enum Enumerator, mgr *advertise.Manager, pollInterval time.Duration, watcher Watcher) *Service {
	return &Service{
		name:         name,
		filter:       filter,
		enum:         enum,
		mgr:          mgr,
		pollInterval: pollInterval,
		watcher:      watcher,
		subs:         make(map[int]*runtime.SubQueue[Event]),
	}
}

// Status is the observable daemon state served by the API. It carries a
// copy of the held snapshot and never exposes loop internals.
type Status struct {
	Hostname     string   `json:"hostname"`
	Filter       string   `json:"filter"`
	Snapshot     Snapshot `json:"snapshot"`
	Running      bool     `json:"running"`
	Generation   string   `json:"generation,omitempty"`
	PollInterval string   `json:"pollInterval"`
}

func (s *Service) Status() Status {
	return Status{
		Hostname:     advertise.FQDN(s.name),
		Filter:       s.filter.String(),
		Snapshot:     s.current(),
		Running:      s.mgr.Running(),
		Generation:   s.mgr.Generation(),
		PollInterval: s.pollInterval.String(),
	}
}

// Subscribe returns a channel of change events and an unsubscribe
// closure. The subscriber first receives one event carrying the current
// snapshot, then live events as changes are detected.
func (s *Service) Subscribe() (<-chan Event, func()) {
	snapshot := s.current()

	sub := runtime.NewSubQueue[Event](8)

	s.subsMu.Lock()
	id := s.nextSubscriberID
	s.nextSubscriberID++
	s.subs[id] = sub
	s.subsMu.Unlock()

	sub.OutOfBandSnapshotSend(Event{
		Type:       SnapshotChanged,
		Snapshot:   snapshot,
		Generation: s.mgr.Generation(),
	})
	sub.SetPaused(false)

	unsub := func() {
		s.subsMu.Lock()
		if q, ok := s.subs[id]; ok {
			delete(s.subs, id)
			q.Close()
		}
		s.subsMu.Unlock()
	}
	return sub.Chan(), unsub
}

// Start takes the initial snapshot, starts the responder, then runs the
// poll loop until ctx is cancelled. Startup failures are returned and
// abort the daemon; steady-state failures only degrade it.
func (s *Service) Start(ctx context.Context) error {
	if err := s.startup(); err != nil {
		return err
	}
	return s.run(ctx)
}

func (s *Service) startup() error {
	missing, err := MissingInterfaces(s.enum, s.filter)
	if err != nil {
		return fmt.Errorf("enumerate interfaces: %w", err)
	}
	if len(missing) > 0 {
		log.WithField("interfaces", strings.Join(missing, ",")).Warn("Requested interfaces not found")
	}

	snapshot, err := CollectSnapshot(s.enum, s.filter)
	if err != nil {
		return fmt.Errorf("collect initial interface snapshot: %w", err)
	}
	if len(snapshot) == 0 {
		log.Warn("No matching non-loopback interfaces at startup")
	}
	log.WithField("snapshot", snapshot).Debug("Initial interface snapshot")

	if err := s.startResponder(snapshot); err != nil {
		return fmt.Errorf("start mdns responder: %w", err)
	}
	s.setSnapshot(snapshot)
	return nil
}

func (s *Service) run(ctx context.Context) error {
	nudge := make(chan struct{}, 1)
	if s.watcher != nil {
		go func() {
			err := s.watcher.Start(ctx, func() {
				select {
				case nudge <- struct{}{}:
				default:
				}
			})
			if err != nil {
				log.WithError(err).Warn("Interface watcher stopped, falling back to polling only")
			}
		}()
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down mdns responder")
			s.mgr.Shutdown()
			return nil
		case <-ticker.C:
			s.pollOnce()
		case <-nudge:
			s.pollOnce()
		}
	}
}

// Close releases all subscriber queues. It does not stop the responder;
// that happens on the loop's shutdown path.
func (s *Service) Close() error {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, q := range s.subs {
		q.Close()
		delete(s.subs, id)
	}
	return nil
}

// pollOnce performs one tick: re-collect, diff, and restart the
// responder when the snapshot changed. A collection failure keeps the
// held snapshot so a transient error cannot flap the service.
func (s *Service) pollOnce() {
	current, err := CollectSnapshot(s.enum, s.filter)
	if err != nil {
		log.WithError(err).Warn("Failed to refresh interface list")
		return
	}

	held := s.current()
	if current.Equal(held) {
		return
	}

	log.Info("Network interface change detected, restarting mdns responder")
	log.WithField("snapshot", held).Debug("Old interface snapshot")
	log.WithField("snapshot", current).Debug("New interface snapshot")

	if len(current) == 0 {
		log.Warn("No matching non-loopback interfaces")
	}
	if !s.filter.IsAll() {
		if missing, err := MissingInterfaces(s.enum, s.filter); err == nil && len(missing) > 0 {
			log.WithField("interfaces", strings.Join(missing, ",")).Warn("Requested interfaces not found")
		}
	}

	// Hold the new snapshot even if the restart fails below, so an
	// identical next tick does not re-attempt the restart.
	s.setSnapshot(current)

	if err := s.startResponder(current); err != nil {
		log.WithError(err).Error("Failed to restart mdns responder")
		s.publish(Event{Type: RestartFailed, Snapshot: current, Error: err.Error()})
		return
	}

	log.Info("mdns responder restarted")
	s.publish(Event{Type: SnapshotChanged, Snapshot: current, Generation: s.mgr.Generation()})
}

// startResponder replaces the running responder with one bound to the
// given snapshot, stop-before-start.
func (s *Service) startResponder(snapshot Snapshot) error {
	log.WithFields(log.Fields{
		"hostname":   advertise.FQDN(s.name),
		"interfaces": s.filter.String(),
		"visibleIPs": snapshot.IPs(),
	}).Info("Starting mdns responder")

	return s.mgr.EnsureRunning(s.name, SelectedIPs(s.filter, snapshot))
}

func (s *Service) current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Service) setSnapshot(snapshot Snapshot) {
	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()
}

func (s *Service) publish(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, sub := range s.subs {
		sub.Enqueue(ev)
	}
}
