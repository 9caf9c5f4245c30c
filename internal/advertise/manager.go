package advertise

import (
	"net"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Manager owns at most one live responder handle. Replacement is always
// stop-before-start, so two responders never overlap on the same
// addresses.
type Manager struct {
	adv Advertiser

	mu         sync.Mutex
	handle     Handle
	generation string
}

func NewManager(adv Advertiser) *Manager {
	return &Manager{adv: adv}
}

// EnsureRunning stops the previous responder, if any, then starts a new
// one for name restricted to ips. On start failure the manager holds no
// handle and the error is returned; retry cadence belongs to the caller.
func (m *Manager) EnsureRunning(name string, ips []net.IP) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		m.handle.Stop()
		m.handle = nil
		m.generation = ""
	}

	handle, err := m.adv.Advertise(FQDN(name), ips)
	if err != nil {
		return err
	}

	m.handle = handle
	m.generation = uuid.NewString()

	log.WithFields(log.Fields{
		"hostname":   FQDN(name),
		"generation": m.generation,
	}).Debug("Responder handle replaced")
	return nil
}

// Shutdown stops the held responder, if any. Safe to call repeatedly.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return
	}
	m.handle.Stop()
	m.handle = nil
	m.generation = ""
}

// Running reports whether a responder handle is currently held.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle != nil
}

// Generation returns the ID of the live responder, or "" when degraded
// or stopped.
func (m *Manager) Generation() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}
