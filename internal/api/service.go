package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/mdnsd/internal/netmon"
)

// Monitor is the slice of the netmon service the API reads from. It is
// strictly observational; nothing here can influence the poll loop.
type Monitor interface {
	Status() netmon.Status
	Subscribe() (<-chan netmon.Event, func())
}

// Service serves the optional status API: /health, /status and a
// websocket event stream at /ws/events.
type Service struct {
	address string
	port    int

	mon Monitor

	mu     sync.Mutex
	srv    *http.Server
	closed bool
}

func NewService(host string, port int) *Service {
	return &Service{
		address: host,
		port:    port,
	}
}

func (s *Service) AttachMonitor(mon Monitor) {
	s.mon = mon
}

// Start runs the HTTP server until ctx is cancelled or the listener
// fails.
func (s *Service) Start(ctx context.Context) error {
	if s.mon == nil {
		return errors.New("AttachMonitor was not called before Start")
	}

	addr := fmt.Sprintf("%s:%d", s.address, s.port)
	srv := &http.Server{Addr: addr, Handler: s.handler()}

	s.mu.Lock()
	s.srv = srv
	s.mu.Unlock()

	log.Infof("Starting mdnsd status API at %s", addr)
	defer log.Info("Stopping mdnsd status API")

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if s.srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}
	return nil
}

func (s *Service) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Add("Content-Type", "application/json")
			enc := json.NewEncoder(w)
			if err := enc.Encode(s.mon.Status()); err != nil {
				http.Error(w, fmt.Sprintf("Failed to encode status: %v", err), http.StatusInternalServerError)
			}
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/ws/events", func(w http.ResponseWriter, r *http.Request) {
		StreamEvents(s.mon, w, r)
	})
	return mux
}
