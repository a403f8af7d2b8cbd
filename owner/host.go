package owner

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/lifecycle/disposal"
	"github.com/wippyai/lifecycle/visibility"
)

// Config holds host configuration.
type Config struct {
	// Logger receives failure records and debug traces. Nil uses the
	// disposal package Logger().
	Logger *zap.Logger

	// Coordinator receives owners that add pausable entries. Nil disables
	// visibility-driven pause and resume.
	Coordinator *visibility.Coordinator

	// Observer is notified of every registry lifecycle event. Optional.
	Observer disposal.Observer
}

// Host indexes live owners by identity. Each owner's mount counter finalizes
// it on the zero transition; the final drain runs outside the host lock.
type Host struct {
	owners map[string]*Owner
	cfg    Config
	mu     sync.Mutex
}

// NewHost creates an empty owner index.
func NewHost(cfg *Config) *Host {
	h := &Host{
		owners: make(map[string]*Owner),
	}
	if cfg != nil {
		h.cfg = *cfg
	}
	if h.cfg.Logger == nil {
		h.cfg.Logger = disposal.Logger()
	}
	return h
}

// Activate records one mount claim for id and returns its owner, creating a
// fresh owner with an empty registry if id is not currently active. An owner
// that is draining is never returned.
func (h *Host) Activate(id string) *Owner {
	for {
		o := h.lookupOrCreate(id)
		if _, ok := o.counter.TryIncrement(); ok {
			return o
		}
		// Lost the race with the last Deactivate; forget it and retry.
		h.remove(o)
	}
}

// Deactivate withdraws one mount claim for id. When the last claim goes, the
// owner is removed from the index and its registry drains before Deactivate
// returns. It reports whether the owner drained. Unknown ids are ignored.
func (h *Host) Deactivate(id string) bool {
	h.mu.Lock()
	o, ok := h.owners[id]
	h.mu.Unlock()
	if !ok {
		return false
	}
	return o.counter.Decrement()
}

// Active reports whether id has at least one outstanding mount claim.
func (h *Host) Active(id string) bool {
	_, ok := h.Lookup(id)
	return ok
}

// Lookup returns the live owner for id.
func (h *Host) Lookup(id string) (*Owner, bool) {
	h.mu.Lock()
	o, ok := h.owners[id]
	h.mu.Unlock()
	if !ok || o.counter.Retired() {
		return nil, false
	}
	return o, true
}

// Owners returns the identities of all live owners, sorted.
func (h *Host) Owners() []string {
	h.mu.Lock()
	owners := make([]*Owner, 0, len(h.owners))
	for _, o := range h.owners {
		owners = append(owners, o)
	}
	h.mu.Unlock()

	ids := make([]string, 0, len(owners))
	for _, o := range owners {
		if !o.counter.Retired() {
			ids = append(ids, o.id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Close drains every live owner regardless of its mount count, in identity
// order. It is meant for process shutdown.
func (h *Host) Close() {
	h.mu.Lock()
	owners := h.owners
	h.owners = make(map[string]*Owner)
	h.mu.Unlock()

	ids := make([]string, 0, len(owners))
	for id := range owners {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		owners[id].counter.Retire()
	}
}

func (h *Host) lookupOrCreate(id string) *Owner {
	h.mu.Lock()
	defer h.mu.Unlock()

	o, ok := h.owners[id]
	if !ok {
		o = newOwner(id, &h.cfg, h.remove)
		h.owners[id] = o
		h.cfg.Logger.Debug("owner created", zap.String("ownerId", id))
	}
	return o
}

// remove drops o from the index if it is still the owner recorded for its id.
func (h *Host) remove(o *Owner) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.owners[o.id] == o {
		delete(h.owners, o.id)
	}
}
