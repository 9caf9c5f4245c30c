package runtime

import (
	"context"
	"fmt"
	"sync"
)

type worker struct {
	name   string
	run    func(context.Context) error
	closeF func() error
}

// Supervisor runs a fixed set of workers. It shuts everything down, in
// reverse registration order, as soon as the context is cancelled or
// any worker returns an error; the first error wins and is reported by
// Wait.
type Supervisor struct {
	mu      sync.Mutex
	workers []worker
	wg      sync.WaitGroup
	cancel  context.CancelFunc
	errOnce sync.Once
	err     error
	failed  chan struct{}
}

func NewSupervisor() *Supervisor {
	return &Supervisor{failed: make(chan struct{})}
}

func (s *Supervisor) Add(name string, run func(context.Context) error, closeF func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker{name: name, run: run, closeF: closeF})
}

func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)
	for _, w := range s.workers {
		w := w
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := w.run(ctx); err != nil {
				s.errOnce.Do(func() {
					s.err = fmt.Errorf("%s: %w", w.name, err)
					close(s.failed)
				})
			}
		}()
	}
	return nil
}

// Wait blocks until the context is cancelled or a worker fails, then
// cancels the remaining workers, closes them in reverse order and waits
// for all of them to exit.
func (s *Supervisor) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
	case <-s.failed:
	}

	s.cancel()
	for i := len(s.workers) - 1; i >= 0; i-- {
		if s.workers[i].closeF != nil {
			_ = s.workers[i].closeF()
		}
	}
	s.wg.Wait()
	return s.err
}
