package visibility

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// Pausable is implemented by per-owner registries whose resources follow
// application visibility.
type Pausable interface {
	// Pause tears down pausable resources, remembering how to recreate them.
	Pause()

	// Resume recreates the resources torn down by the last Pause.
	Resume()
}

// Config holds coordinator configuration.
type Config struct {
	// Logger receives broadcast diagnostics. Nil uses the package Logger().
	Logger *zap.Logger
}

// Coordinator broadcasts visibility transitions to every registered owner.
// The environment listener is attached while at least one owner is
// registered, at most once, and detached when the last owner leaves.
//
// Registrations are keyed by the Pausable itself, so an owner that is torn
// down and recreated under the same ID never evicts its successor. The
// Pausable must be comparable; pointers are.
type Coordinator struct {
	env         Environment
	logger      *zap.Logger
	owners      map[Pausable]string
	unsubscribe func()
	visible     bool
	mu          sync.Mutex
}

// NewCoordinator creates a coordinator over env. No subscription is made
// until the first Register.
func NewCoordinator(env Environment, cfg *Config) *Coordinator {
	c := &Coordinator{
		env:     env,
		owners:  make(map[Pausable]string),
		visible: true,
	}
	if cfg != nil {
		c.logger = cfg.Logger
	}
	if c.logger == nil {
		c.logger = Logger()
	}
	return c
}

// Register adds p to the broadcast set under ownerID. The first
// registration subscribes to the environment. Registering p twice is a no-op.
func (c *Coordinator) Register(ownerID string, p Pausable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.owners[p]; ok {
		return
	}
	c.owners[p] = ownerID

	if c.unsubscribe == nil {
		c.visible = c.env.Visible()
		c.unsubscribe = c.env.Subscribe(c.onChange)
		c.logger.Debug("visibility listener attached", zap.Bool("visible", c.visible))
	}
}

// Unregister removes p. Another pausable registered under the same ownerID
// stays in place. Removing the last owner unsubscribes from the environment.
// Unregistering an unknown pausable is a no-op.
func (c *Coordinator) Unregister(ownerID string, p Pausable) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.owners[p]; !ok {
		return
	}
	delete(c.owners, p)

	if len(c.owners) == 0 && c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
		c.logger.Debug("visibility listener detached", zap.String("ownerId", ownerID))
	}
}

// Visible reports the last state the coordinator observed.
func (c *Coordinator) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Len returns the number of registered owners.
func (c *Coordinator) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.owners)
}

// Subscribed reports whether the environment listener is attached.
func (c *Coordinator) Subscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribe != nil
}

// Registered reports whether any pausable is registered under ownerID.
func (c *Coordinator) Registered(ownerID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.owners {
		if id == ownerID {
			return true
		}
	}
	return false
}

type target struct {
	p  Pausable
	id string
}

func (c *Coordinator) onChange(visible bool) {
	c.mu.Lock()
	if c.unsubscribe == nil || c.visible == visible {
		c.mu.Unlock()
		return
	}
	c.visible = visible

	targets := make([]target, 0, len(c.owners))
	for p, id := range c.owners {
		targets = append(targets, target{id: id, p: p})
	}
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].id < targets[j].id })
	c.mu.Unlock()

	c.logger.Debug("visibility changed",
		zap.Bool("visible", visible),
		zap.Int("owners", len(targets)))

	for _, t := range targets {
		c.broadcast(t.id, t.p, visible)
	}
}

// broadcast delivers one transition to one owner. A panic is logged so the
// remaining owners still receive the transition.
func (c *Coordinator) broadcast(ownerID string, p Pausable, visible bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("visibility broadcast failed",
				zap.String("ownerId", ownerID),
				zap.Bool("visible", visible),
				zap.Any("panic", r))
		}
	}()
	if visible {
		p.Resume()
	} else {
		p.Pause()
	}
}
