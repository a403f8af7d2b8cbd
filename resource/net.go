package resource

import (
	"errors"
	"net"
	"sync"

	"github.com/wippyai/lifecycle"
)

// Listen opens a listener and hands it to serve on a new goroutine.
// Teardown closes the listener and waits for serve to return; serve is
// expected to return once Accept fails.
func Listen(network, address string, serve func(net.Listener)) lifecycle.Setup {
	return func() (lifecycle.Teardown, error) {
		ln, err := net.Listen(network, address)
		if err != nil {
			return nil, err
		}

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(ln)
		}()

		return func() error {
			err := ln.Close()
			wg.Wait()
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}, nil
	}
}
