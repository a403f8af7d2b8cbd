package disposal

import (
	"go.uber.org/zap"

	"github.com/wippyai/lifecycle"
)

// EventType identifies a registry lifecycle notification.
type EventType uint8

const (
	EventAdded EventType = iota
	EventReplaced
	EventDisposed
	EventDrained
	EventPaused
	EventResumed
	EventFailed
)

var eventNames = [...]string{
	EventAdded:    "added",
	EventReplaced: "replaced",
	EventDisposed: "disposed",
	EventDrained:  "drained",
	EventPaused:   "paused",
	EventResumed:  "resumed",
	EventFailed:   "failed",
}

func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Event represents a registry lifecycle event.
type Event struct {
	Err   error
	Owner string
	Key   string
	Type  EventType
}

// Observer receives notifications about registry lifecycle events.
// Events are delivered synchronously, outside the registry lock.
type Observer interface {
	OnLifecycleEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnLifecycleEvent calls f(e).
func (f ObserverFunc) OnLifecycleEvent(e Event) {
	f(e)
}

// Config holds registry configuration.
type Config struct {
	// Logger receives failure records. Nil uses the package Logger().
	Logger *zap.Logger

	// Observer is notified of every lifecycle event. Optional.
	Observer Observer

	// OwnerID identifies the owner in logs, errors and events.
	OwnerID string
}

// Option configures a single Add call.
type Option func(*addOptions)

type addOptions struct {
	key      string
	pausable bool
}

// WithKey registers the entry under a stable identity. An existing entry with
// the same key is torn down before the new setup runs.
func WithKey(key string) Option {
	return func(o *addOptions) {
		o.key = key
	}
}

// Pausable controls whether visibility pauses tear the entry down.
// Entries are pausable unless this option says otherwise.
func Pausable(pausable bool) Option {
	return func(o *addOptions) {
		o.pausable = pausable
	}
}

// entry is one live resource. setup is retained only for pausable entries.
type entry struct {
	setup    lifecycle.Setup
	teardown lifecycle.Teardown
	key      string
	pausable bool
}

// pausedEntry is a pausable entry torn down by Pause, waiting for Resume.
type pausedEntry struct {
	setup lifecycle.Setup
	key   string
}
