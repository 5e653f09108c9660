package coords

import (
	"sync"
	"time"
)

// Scheduler runs fn at some later point, outside the caller's stack.
type Scheduler func(fn func())

// DeferredScheduler runs fn on its own goroutine after a zero-length timer.
// Listeners scheduled this way must synchronize any state they share with the
// caller; single-threaded hosts should use a ManualScheduler instead.
func DeferredScheduler(fn func()) {
	time.AfterFunc(0, fn)
}

// ManualScheduler queues callbacks until Flush is called. Hosts with their own
// frame loop flush once per frame; tests flush explicitly.
type ManualScheduler struct {
	mu    sync.Mutex
	queue []func()
}

// Schedule queues fn. Pass the method value to System options.
func (m *ManualScheduler) Schedule(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	m.mu.Unlock()
}

// Pending returns the number of queued callbacks.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Flush runs every queued callback and returns how many ran. Callbacks queued
// while flushing run on the next Flush.
func (m *ManualScheduler) Flush() int {
	m.mu.Lock()
	queue := m.queue
	m.queue = nil
	m.mu.Unlock()

	for _, fn := range queue {
		fn()
	}
	return len(queue)
}

type listener struct {
	id int
	fn func()
}

// notifier collapses change signals into one deferred listener pass.
type notifier struct {
	mu        sync.Mutex
	schedule  Scheduler
	listeners []listener
	nextID    int
	pending   bool
	batching  bool
}

func (n *notifier) subscribe(fn func()) func() {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners = append(n.listeners, listener{id: id, fn: fn})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			for i, l := range n.listeners {
				if l.id == id {
					n.listeners = append(n.listeners[:i:i], n.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// changed schedules a notification unless one is pending or a batch is open.
func (n *notifier) changed() {
	n.mu.Lock()
	if n.batching || n.pending {
		n.mu.Unlock()
		return
	}
	n.pending = true
	schedule := n.schedule
	n.mu.Unlock()

	schedule(n.flush)
}

func (n *notifier) flush() {
	n.mu.Lock()
	n.pending = false
	fns := make([]func(), len(n.listeners))
	for i, l := range n.listeners {
		fns[i] = l.fn
	}
	n.mu.Unlock()

	// Listeners run unlocked so they may read or mutate the system
	for _, fn := range fns {
		fn()
	}
}

// batch runs fn with notifications held back, then signals once.
// A batch opened inside another runs inline.
func (n *notifier) batch(fn func()) {
	n.mu.Lock()
	if n.batching {
		n.mu.Unlock()
		fn()
		return
	}
	n.batching = true
	n.mu.Unlock()

	defer func() {
		n.mu.Lock()
		n.batching = false
		n.mu.Unlock()
		n.changed()
	}()
	fn()
}
