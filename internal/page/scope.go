package page

import (
	"sync"
	"sync/atomic"
	"time"
)

type attached struct {
	target *EventTarget
	typ    string
	id     int
}

// Scope owns the listeners and timers of one engine activation and releases
// them together.
type Scope struct {
	listeners []attached
	stop      chan struct{}
	wg        sync.WaitGroup
	timers    atomic.Int32
	once      sync.Once
}

func NewScope() *Scope {
	return &Scope{stop: make(chan struct{})}
}

// AddListener registers fn on target until Close.
func (s *Scope) AddListener(target *EventTarget, typ string, fn Listener) {
	id := target.Add(typ, fn)
	s.listeners = append(s.listeners, attached{target: target, typ: typ, id: id})
}

// Every calls fn every interval on its own goroutine until Close.
func (s *Scope) Every(interval time.Duration, fn func()) {
	if interval <= 0 {
		return
	}
	s.timers.Add(1)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.timers.Add(-1)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Timers returns the number of running timers.
func (s *Scope) Timers() int { return int(s.timers.Load()) }

// Listeners returns the number of attached listeners.
func (s *Scope) Listeners() int { return len(s.listeners) }

// Close detaches every listener, stops every timer and waits for the timer
// goroutines to exit. It is safe to call more than once.
func (s *Scope) Close() {
	s.once.Do(func() {
		for _, a := range s.listeners {
			a.target.Remove(a.typ, a.id)
		}
		s.listeners = nil
		close(s.stop)
		s.wg.Wait()
	})
}
