package disposal

import (
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/lifecycle"
	"github.com/wippyai/lifecycle/errors"
)

// autoKeyPrefix starts every generated key. Generated keys skip any value a
// caller already uses.
const autoKeyPrefix = "auto:"

// Registry is the keyed store of active teardown callbacks for one owner.
//
// The registry lock is never held while setup or teardown callbacks run, so
// callbacks may call back into the registry.
type Registry struct {
	logger   *zap.Logger
	observer Observer
	entries  map[string]*entry
	owner    string
	order    []*entry
	paused   []pausedEntry
	seq      uint64
	mu       sync.Mutex
}

// NewRegistry creates an empty registry for the given owner.
func NewRegistry(ownerID string) *Registry {
	return NewRegistryWithConfig(&Config{OwnerID: ownerID})
}

// NewRegistryWithConfig creates an empty registry with custom configuration.
func NewRegistryWithConfig(cfg *Config) *Registry {
	r := &Registry{
		entries: make(map[string]*entry),
	}
	if cfg != nil {
		r.owner = cfg.OwnerID
		r.logger = cfg.Logger
		r.observer = cfg.Observer
	}
	if r.logger == nil {
		r.logger = Logger()
	}
	return r
}

// Owner returns the owner identity this registry belongs to.
func (r *Registry) Owner() string {
	return r.owner
}

// Add runs setup immediately and registers the returned teardown.
//
// With WithKey, an existing entry under the same key is torn down first,
// before setup runs. Without a key, a fresh generated key is used. The
// effective key is returned. A setup error is returned wrapped in an
// *errors.Error; a setup panic propagates to the caller.
func (r *Registry) Add(setup lifecycle.Setup, opts ...Option) (string, error) {
	if setup == nil {
		return "", errors.New(errors.PhaseSetup, errors.KindInvalidInput).
			Owner(r.owner).
			Detail("setup must not be nil").
			Build()
	}

	o := addOptions{pausable: true}
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	key := o.key
	if key == "" {
		key = r.nextKeyLocked()
	}
	old := r.removeLocked(key)
	r.unpauseLocked(key)
	r.mu.Unlock()

	if old != nil {
		r.teardown(old)
		r.notify(Event{Type: EventReplaced, Key: key})
	}

	teardown, err := setup()
	if err != nil {
		return "", errors.Wrap(errors.PhaseSetup, r.owner, key, err)
	}

	e := &entry{
		key:      key,
		teardown: teardown,
		pausable: o.pausable,
	}
	if o.pausable {
		e.setup = setup
	}

	r.mu.Lock()
	raced := r.removeLocked(key)
	r.insertLocked(e)
	r.mu.Unlock()

	// A concurrent Add under the same key finished first; it loses.
	if raced != nil {
		r.teardown(raced)
	}

	r.logger.Debug("entry added",
		zap.String("ownerId", r.owner),
		zap.String("key", key),
		zap.Bool("pausable", o.pausable))
	r.notify(Event{Type: EventAdded, Key: key})
	return key, nil
}

// Dispose tears down and removes the entry under key.
// It reports whether an entry existed, regardless of whether its teardown
// failed. An entry currently paused is forgotten without a second teardown.
func (r *Registry) Dispose(key string) bool {
	r.mu.Lock()
	e := r.removeLocked(key)
	wasPaused := e == nil && r.unpauseLocked(key)
	r.mu.Unlock()

	if e == nil && !wasPaused {
		return false
	}
	if e != nil {
		r.teardown(e)
	}
	r.notify(Event{Type: EventDisposed, Key: key})
	return true
}

// DrainAll tears down every live entry in insertion order and clears the
// registry, including any entries waiting to be resumed. Draining an empty
// registry is a no-op.
func (r *Registry) DrainAll() {
	r.mu.Lock()
	drained := r.order
	r.order = nil
	r.entries = make(map[string]*entry)
	r.paused = nil
	r.mu.Unlock()

	if len(drained) == 0 {
		return
	}

	for _, e := range drained {
		r.teardown(e)
	}

	r.logger.Debug("registry drained",
		zap.String("ownerId", r.owner),
		zap.Int("entries", len(drained)))
	r.notify(Event{Type: EventDrained})
}

// Pause tears down every pausable entry in insertion order, keeping its key
// and setup so Resume can replay it. Non-pausable entries are not touched.
func (r *Registry) Pause() {
	r.mu.Lock()
	var pausing []*entry
	kept := r.order[:0:0]
	for _, e := range r.order {
		if e.pausable {
			pausing = append(pausing, e)
			delete(r.entries, e.key)
			r.paused = append(r.paused, pausedEntry{key: e.key, setup: e.setup})
		} else {
			kept = append(kept, e)
		}
	}
	r.order = kept
	r.mu.Unlock()

	for _, e := range pausing {
		r.teardown(e)
		r.notify(Event{Type: EventPaused, Key: e.key})
	}

	if len(pausing) > 0 {
		r.logger.Debug("registry paused",
			zap.String("ownerId", r.owner),
			zap.Int("entries", len(pausing)))
	}
}

// Resume replays the setup of every paused entry in original order and
// reinstates each under its original key. A failing setup is logged and the
// entry is dropped. An entry whose key was registered again in the meantime
// is skipped.
func (r *Registry) Resume() {
	r.mu.Lock()
	resuming := r.paused
	r.paused = nil
	r.mu.Unlock()

	resumed := 0
	for _, p := range resuming {
		r.mu.Lock()
		_, live := r.entries[p.key]
		r.mu.Unlock()
		if live {
			continue
		}

		var teardown lifecycle.Teardown
		ok := r.invoke(errors.PhaseResume, p.key, func() error {
			var err error
			teardown, err = p.setup()
			return err
		})
		if !ok {
			continue
		}

		e := &entry{
			key:      p.key,
			setup:    p.setup,
			teardown: teardown,
			pausable: true,
		}

		r.mu.Lock()
		_, live = r.entries[p.key]
		if !live {
			r.insertLocked(e)
		}
		r.mu.Unlock()

		if live {
			// Re-added while this setup ran; the newer entry wins.
			r.teardown(e)
			continue
		}
		resumed++
		r.notify(Event{Type: EventResumed, Key: p.key})
	}

	if resumed > 0 {
		r.logger.Debug("registry resumed",
			zap.String("ownerId", r.owner),
			zap.Int("entries", resumed))
	}
}

// Has reports whether a live entry exists under key.
func (r *Registry) Has(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[key]
	return ok
}

// IsPausable reports whether the live entry under key is pausable.
func (r *Registry) IsPausable(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	return ok && e.pausable
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// Keys returns the live keys in insertion order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.order))
	for i, e := range r.order {
		keys[i] = e.key
	}
	return keys
}

// Paused returns the keys waiting for Resume, in original order.
func (r *Registry) Paused() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, len(r.paused))
	for i, p := range r.paused {
		keys[i] = p.key
	}
	return keys
}

func (r *Registry) nextKeyLocked() string {
	for {
		r.seq++
		key := autoKeyPrefix + strconv.FormatUint(r.seq, 10)
		if _, taken := r.entries[key]; taken {
			continue
		}
		if slices.ContainsFunc(r.paused, func(p pausedEntry) bool { return p.key == key }) {
			continue
		}
		return key
	}
}

func (r *Registry) insertLocked(e *entry) {
	r.entries[e.key] = e
	r.order = append(r.order, e)
}

func (r *Registry) removeLocked(key string) *entry {
	e, ok := r.entries[key]
	if !ok {
		return nil
	}
	delete(r.entries, key)
	r.order = slices.DeleteFunc(r.order, func(x *entry) bool { return x == e })
	return e
}

func (r *Registry) unpauseLocked(key string) bool {
	n := len(r.paused)
	r.paused = slices.DeleteFunc(r.paused, func(p pausedEntry) bool { return p.key == key })
	return len(r.paused) != n
}

func (r *Registry) teardown(e *entry) {
	if e.teardown == nil {
		return
	}
	td := e.teardown
	e.teardown = nil
	r.invoke(errors.PhaseTeardown, e.key, td)
}

func (r *Registry) invoke(phase errors.Phase, key string, fn func() error) bool {
	inv := Invocation{Phase: phase, Owner: r.owner, Key: key}
	err := capture(inv, fn)
	if err == nil {
		return true
	}
	logFailure(r.logger, inv, err)
	r.notify(Event{Type: EventFailed, Key: key, Err: err})
	return false
}

func (r *Registry) notify(e Event) {
	if r.observer == nil {
		return
	}
	e.Owner = r.owner
	r.observer.OnLifecycleEvent(e)
}
