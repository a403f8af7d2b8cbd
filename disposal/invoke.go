package disposal

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/lifecycle/errors"
)

// Invocation describes a guarded callback for logging purposes.
type Invocation struct {
	Phase errors.Phase
	Owner string
	Key   string
}

// Context returns the human-readable description used in failure records.
func (inv Invocation) Context() string {
	switch inv.Phase {
	case errors.PhaseResume:
		return fmt.Sprintf("resume failed for key %s in owner %s", inv.Key, inv.Owner)
	case errors.PhaseTeardown:
		return fmt.Sprintf("teardown failed for key %s in owner %s", inv.Key, inv.Owner)
	default:
		return fmt.Sprintf("%s failed for key %s in owner %s", inv.Phase, inv.Key, inv.Owner)
	}
}

// SafeInvoke runs fn and reports whether it completed without error or panic.
// A failure is logged once and swallowed; it never reaches the caller.
func SafeInvoke(log *zap.Logger, inv Invocation, fn func() error) bool {
	err := capture(inv, fn)
	if err == nil {
		return true
	}
	logFailure(log, inv, err)
	return false
}

func capture(inv Invocation, fn func() error) (err *errors.Error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Panicked(inv.Phase, inv.Owner, inv.Key, r)
		}
	}()
	if cause := fn(); cause != nil {
		return errors.Wrap(inv.Phase, inv.Owner, inv.Key, cause)
	}
	return nil
}

func logFailure(log *zap.Logger, inv Invocation, err error) {
	if log == nil {
		log = Logger()
	}
	log.Error("lifecycle callback failed",
		zap.String("context", inv.Context()),
		zap.String("ownerId", inv.Owner),
		zap.Error(err))
}
