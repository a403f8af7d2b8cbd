package resource

import (
	"sync"
	"time"

	"github.com/wippyai/lifecycle"
	"github.com/wippyai/lifecycle/errors"
)

// Ticker calls fn every interval on its own goroutine. Teardown stops the
// ticker and waits for an in-flight fn to return, so fn must not dispose its
// own entry synchronously.
func Ticker(interval time.Duration, fn func(time.Time)) lifecycle.Setup {
	return func() (lifecycle.Teardown, error) {
		if interval <= 0 {
			return nil, errors.InvalidInput(errors.PhaseSetup, "ticker interval must be positive")
		}

		t := time.NewTicker(interval)
		done := make(chan struct{})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				case now := <-t.C:
					fn(now)
				}
			}
		}()

		return func() error {
			t.Stop()
			close(done)
			wg.Wait()
			return nil
		}, nil
	}
}

// AfterFunc schedules fn once after delay. Teardown cancels it if it has not
// fired yet.
func AfterFunc(delay time.Duration, fn func()) lifecycle.Setup {
	return func() (lifecycle.Teardown, error) {
		t := time.AfterFunc(delay, fn)
		return func() error {
			t.Stop()
			return nil
		}, nil
	}
}
