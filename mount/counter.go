// Package mount counts concurrent activation claims on one owner identity.
//
// An owner may be mounted by several independent callers. The Counter lets
// the owner release its resources only when the last claim is withdrawn:
//
//	c := mount.NewCounter(registry.DrainAll)
//	c.Increment()     // first mount
//	c.Increment()     // second mount
//	c.Decrement()     // still mounted, nothing drains
//	c.Decrement()     // reached zero, registry.DrainAll runs
//
// Reaching zero retires the counter. TryIncrement refuses a retired counter,
// which lets an index detect that the owner it looked up is already draining
// and must be replaced. Increment revives a retired counter.
package mount

import "sync"

// Counter is a mount reference count. The zero value is ready to use and
// has no zero-transition callback.
type Counter struct {
	onZero  func()
	count   int
	mu      sync.Mutex
	retired bool
}

// NewCounter creates a counter that calls onZero each time the count drops
// to exactly zero. onZero may be nil.
func NewCounter(onZero func()) *Counter {
	return &Counter{onZero: onZero}
}

// Increment records one more activation claim and returns the new count.
func (c *Counter) Increment() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retired = false
	c.count++
	return c.count
}

// TryIncrement records one more activation claim unless the counter has
// retired. It reports the new count and whether the claim was recorded.
func (c *Counter) TryIncrement() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.retired {
		return c.count, false
	}
	c.count++
	return c.count, true
}

// Decrement withdraws one activation claim. It reports whether the count
// reached zero, in which case onZero has run by the time it returns.
// Decrementing an already-zero counter is a no-op returning false.
func (c *Counter) Decrement() bool {
	c.mu.Lock()
	if c.count == 0 {
		c.mu.Unlock()
		return false
	}
	c.count--
	reached := c.count == 0
	if reached {
		c.retired = true
	}
	onZero := c.onZero
	c.mu.Unlock()

	if reached && onZero != nil {
		onZero()
	}
	return reached
}

// Retire drops every outstanding claim at once and runs onZero. It reports
// false, without running onZero, if the counter had already retired.
func (c *Counter) Retire() bool {
	c.mu.Lock()
	if c.retired {
		c.mu.Unlock()
		return false
	}
	c.count = 0
	c.retired = true
	onZero := c.onZero
	c.mu.Unlock()

	if onZero != nil {
		onZero()
	}
	return true
}

// Count returns the number of outstanding activation claims.
func (c *Counter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Active reports whether at least one claim is outstanding.
func (c *Counter) Active() bool {
	return c.Count() > 0
}

// Retired reports whether the count has reached zero since the last
// Increment.
func (c *Counter) Retired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retired
}
