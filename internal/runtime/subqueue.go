package runtime

import (
	"sync"
)

// SubQueue is a per-subscriber event queue. It starts paused so the
// owner can push an initial snapshot directly to the channel before any
// live events are dispatched.
type SubQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []T
	closed bool

	outCh  chan T // consumer reads from this
	paused bool   // gate dispatch until snapshot sent
}

func NewSubQueue[T any](outBuf int) *SubQueue[T] {
	sq := &SubQueue[T]{
		outCh:  make(chan T, outBuf),
		paused: true,
	}
	sq.cond = sync.NewCond(&sq.mu)
	go sq.dispatch()
	return sq
}

// Chan is the channel exposed to the subscriber.
func (sq *SubQueue[T]) Chan() <-chan T { return sq.outCh }

// Enqueue appends a live event and wakes the dispatcher. Events enqueued
// after Close are dropped.
func (sq *SubQueue[T]) Enqueue(ev T) {
	sq.mu.Lock()
	if !sq.closed {
		sq.queue = append(sq.queue, ev)
		sq.cond.Signal()
	}
	sq.mu.Unlock()
}

// OutOfBandSnapshotSend pushes an event directly to the subscriber
// channel, bypassing the queue. Use ONLY while the queue is still paused
// and the channel was created with enough buffer for the snapshot burst.
func (sq *SubQueue[T]) OutOfBandSnapshotSend(ev T) {
	sq.outCh <- ev
}

// SetPaused gates dispatching; unpausing flushes events queued while
// the snapshot was being sent.
func (sq *SubQueue[T]) SetPaused(v bool) {
	sq.mu.Lock()
	sq.paused = v
	sq.cond.Broadcast()
	sq.mu.Unlock()
}

// Close stops the dispatcher and closes the out channel.
func (sq *SubQueue[T]) Close() {
	sq.mu.Lock()
	sq.closed = true
	sq.cond.Broadcast()
	sq.mu.Unlock()
}

func (sq *SubQueue[T]) dispatch() {
	for {
		sq.mu.Lock()
		for !sq.closed && (sq.paused || len(sq.queue) == 0) {
			sq.cond.Wait()
		}
		if sq.closed {
			sq.mu.Unlock()
			close(sq.outCh)
			return
		}
		ev := sq.queue[0]
		copy(sq.queue, sq.queue[1:])
		sq.queue = sq.queue[:len(sq.queue)-1]
		sq.mu.Unlock()

		// Blocks only on the channel buffer / reader.
		sq.outCh <- ev
	}
}
