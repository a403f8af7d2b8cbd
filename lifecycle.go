package lifecycle

// Teardown releases a resource. It is invoked at most once per successful Setup.
type Teardown func() error

// Setup acquires a resource and returns the Teardown that releases it.
// A nil Teardown is treated as a no-op.
type Setup func() (Teardown, error)

// Infallible adapts a callback pair that cannot fail into a Setup.
func Infallible(fn func() func()) Setup {
	return func() (Teardown, error) {
		release := fn()
		if release == nil {
			return nil, nil
		}
		return func() error {
			release()
			return nil
		}, nil
	}
}
