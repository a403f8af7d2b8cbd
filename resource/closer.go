package resource

import (
	"io"

	"github.com/wippyai/lifecycle"
)

// Dropper is implemented by values that release themselves without error.
type Dropper interface {
	Drop()
}

// Closer opens an io.Closer and closes it on teardown.
func Closer[T io.Closer](open func() (T, error)) lifecycle.Setup {
	return func() (lifecycle.Teardown, error) {
		c, err := open()
		if err != nil {
			return nil, err
		}
		return c.Close, nil
	}
}

// Drop acquires a Dropper and drops it on teardown.
func Drop[T Dropper](acquire func() (T, error)) lifecycle.Setup {
	return func() (lifecycle.Teardown, error) {
		d, err := acquire()
		if err != nil {
			return nil, err
		}
		return func() error {
			d.Drop()
			return nil
		}, nil
	}
}

// Subscription wraps a subscribe/unsubscribe pair, such as an event
// listener registration.
func Subscription(subscribe func() (unsubscribe func())) lifecycle.Setup {
	return lifecycle.Infallible(subscribe)
}
