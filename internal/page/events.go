package page

// Event types delivered to a page.
const (
	EventPointerUp = "pointerup"
	EventKeyDown   = "keydown"
)

// Event is an input event dispatched to a page's listeners.
type Event struct {
	Type   string
	Key    string
	Target string // tag name of the focused element, if any

	defaultPrevented bool
}

// PreventDefault marks the event as consumed.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// DefaultPrevented reports whether a listener consumed the event.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Listener handles one event.
type Listener func(*Event)

type registration struct {
	id int
	fn Listener
}

// EventTarget holds listeners by event type. It is guarded by the owning
// page's mutex.
type EventTarget struct {
	nextID    int
	listeners map[string][]registration
}

// Add registers fn for typ and returns a handle for Remove.
func (t *EventTarget) Add(typ string, fn Listener) int {
	if t.listeners == nil {
		t.listeners = make(map[string][]registration)
	}
	t.nextID++
	t.listeners[typ] = append(t.listeners[typ], registration{id: t.nextID, fn: fn})
	return t.nextID
}

// Remove drops the listener registered under id.
func (t *EventTarget) Remove(typ string, id int) {
	regs := t.listeners[typ]
	for i, r := range regs {
		if r.id == id {
			t.listeners[typ] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// Dispatch calls the listeners for ev.Type in registration order.
func (t *EventTarget) Dispatch(ev *Event) {
	regs := append([]registration(nil), t.listeners[ev.Type]...)
	for _, r := range regs {
		r.fn(ev)
	}
}

// Count returns the number of registered listeners.
func (t *EventTarget) Count() int {
	n := 0
	for _, regs := range t.listeners {
		n += len(regs)
	}
	return n
}
