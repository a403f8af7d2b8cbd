package owner

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/lifecycle"
	"github.com/wippyai/lifecycle/disposal"
	"github.com/wippyai/lifecycle/errors"
	"github.com/wippyai/lifecycle/mount"
	"github.com/wippyai/lifecycle/visibility"
)

// Owner is the facade handed to user setup and teardown code. It holds
// exactly one disposal registry and one mount counter.
type Owner struct {
	registry    *disposal.Registry
	counter     *mount.Counter
	coordinator *visibility.Coordinator
	logger      *zap.Logger
	release     func(*Owner)
	id          string
	mu          sync.Mutex
	enrolled    bool
	closed      bool
}

// newOwner creates an owner whose counter finalizes it on the zero
// transition. release is called first so the index forgets the owner before
// its registry drains.
func newOwner(id string, cfg *Config, release func(*Owner)) *Owner {
	o := &Owner{
		id: id,
		registry: disposal.NewRegistryWithConfig(&disposal.Config{
			OwnerID:  id,
			Logger:   cfg.Logger,
			Observer: cfg.Observer,
		}),
		coordinator: cfg.Coordinator,
		logger:      cfg.Logger,
		release:     release,
	}
	o.counter = mount.NewCounter(o.finalize)
	return o
}

// ID returns the owner identity.
func (o *Owner) ID() string {
	return o.id
}

// Registry returns the owner's disposal registry.
func (o *Owner) Registry() *disposal.Registry {
	return o.registry
}

// Mounts returns the number of outstanding activation claims.
func (o *Owner) Mounts() int {
	return o.counter.Count()
}

// Add runs setup and registers its teardown with the owner.
// See disposal.Registry.Add for key and replacement semantics.
// Adding to an owner that has already drained returns a closed error
// without running setup.
func (o *Owner) Add(setup lifecycle.Setup, opts ...disposal.Option) (string, error) {
	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if closed {
		return "", errors.Closed(errors.PhaseSetup, o.id)
	}

	key, err := o.registry.Add(setup, opts...)
	if err != nil {
		return "", err
	}

	// Drained while setup ran; release what it acquired.
	if o.Closed() {
		o.registry.Dispose(key)
		return "", errors.Closed(errors.PhaseSetup, o.id)
	}

	if o.registry.IsPausable(key) {
		o.enroll()
	}
	return key, nil
}

// Dispose tears down the entry under key and reports whether it existed.
func (o *Owner) Dispose(key string) bool {
	return o.registry.Dispose(key)
}

// Closed reports whether the owner has drained and left its host.
func (o *Owner) Closed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

func (o *Owner) enroll() {
	if o.coordinator == nil {
		return
	}
	o.mu.Lock()
	if o.enrolled || o.closed {
		o.mu.Unlock()
		return
	}
	o.enrolled = true
	o.mu.Unlock()

	o.coordinator.Register(o.id, o.registry)

	// finalize may have unregistered before the Register above landed.
	if o.Closed() {
		o.coordinator.Unregister(o.id, o.registry)
	}
}

// finalize runs once, on the counter's zero transition. The owner leaves the
// host index and the coordinator before the registry drains, so no pause
// pass races the final drain.
func (o *Owner) finalize() {
	if o.release != nil {
		o.release(o)
	}

	o.mu.Lock()
	o.closed = true
	enrolled := o.enrolled
	o.enrolled = false
	o.mu.Unlock()

	if enrolled {
		o.coordinator.Unregister(o.id, o.registry)
	}
	o.registry.DrainAll()

	o.logger.Debug("owner released", zap.String("ownerId", o.id))
}
