// Package asynchook moves hook calls off the store's critical section.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{StoredEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	p := ixcache.New(ixcache.Options{Hooks: hooks})
//
// Events are dropped when the queue is full; Dropped reports how many.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/ixcache"
)

type Hooks struct {
	inner   ixcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against sends on a closed q
	closed  bool
	dropped atomic.Uint64
}

var _ ixcache.Hooks = (*Hooks)(nil)

func New(inner ixcache.Hooks, workers, qlen int) *Hooks {
	if inner == nil {
		inner = ixcache.NopHooks{}
	}
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events after Close are
// dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) SentinelSkipped(slot uint64) { h.try(func() { h.inner.SentinelSkipped(slot) }) }
func (h *Hooks) Stored(k string, n int)      { h.try(func() { h.inner.Stored(k, n) }) }
func (h *Hooks) Connected()                  { h.try(func() { h.inner.Connected() }) }
func (h *Hooks) DialFailed(err error)        { h.try(func() { h.inner.DialFailed(err) }) }
func (h *Hooks) EncodeFailed(k string, err error) {
	h.try(func() { h.inner.EncodeFailed(k, err) })
}
func (h *Hooks) WriteFailed(k string, err error) {
	h.try(func() { h.inner.WriteFailed(k, err) })
}
