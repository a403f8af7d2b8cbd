package visibility

import "sync"

// Environment is the source of the process-wide visibility signal.
type Environment interface {
	// Visible reports the current state.
	Visible() bool

	// Subscribe registers fn for state changes and returns the function that
	// removes it. Implementations must not call fn from within Subscribe.
	Subscribe(fn func(visible bool)) (unsubscribe func())
}

// Flag is an in-memory Environment. Listeners are notified only when Set
// changes the state.
type Flag struct {
	listeners []listener
	next      uint64
	visible   bool
	mu        sync.Mutex
}

type listener struct {
	fn func(bool)
	id uint64
}

// NewFlag creates a flag with the given initial state.
func NewFlag(visible bool) *Flag {
	return &Flag{visible: visible}
}

// Visible reports the current state.
func (f *Flag) Visible() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visible
}

// Set updates the state and notifies listeners if it changed.
// Listeners run on the caller's goroutine, outside the flag lock.
func (f *Flag) Set(visible bool) {
	f.mu.Lock()
	if f.visible == visible {
		f.mu.Unlock()
		return
	}
	f.visible = visible
	snapshot := make([]listener, len(f.listeners))
	copy(snapshot, f.listeners)
	f.mu.Unlock()

	for _, l := range snapshot {
		l.fn(visible)
	}
}

// Subscribe registers fn for state changes.
func (f *Flag) Subscribe(fn func(visible bool)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	id := f.next
	f.listeners = append(f.listeners, listener{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { f.remove(id) })
	}
}

// Listeners returns the number of active subscriptions.
func (f *Flag) Listeners() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listeners)
}

func (f *Flag) remove(id uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, l := range f.listeners {
		if l.id == id {
			f.listeners = append(f.listeners[:i], f.listeners[i+1:]...)
			return
		}
	}
}
