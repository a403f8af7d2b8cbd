// Package lifecycle provides deterministic resource-lifecycle management for
// independently mountable owners.
//
// An owner acquires external resources (timers, subscriptions, sockets,
// listeners) while it is active and must release every one of them exactly
// once. The library is organized into several packages:
//
//	lifecycle/           Root package with the Setup and Teardown callback types
//	├── disposal/        Per-owner keyed registry of teardown callbacks
//	├── mount/           Mount reference counter gating the final drain
//	├── visibility/      Process-wide pause/resume coordinator and environments
//	├── owner/           Owner facade and the host's owner-identity index
//	├── resource/        Ready-made Setup constructors for common resources
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Activate an owner, register a resource, release it on the last unmount:
//
//	flag := visibility.NewFlag(true)
//	host := owner.NewHost(&owner.Config{
//	    Coordinator: visibility.NewCoordinator(flag, nil),
//	})
//
//	o := host.Activate("chat/42")
//	_, err := o.Add(resource.Ticker(time.Second, poll), disposal.WithKey("poll"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	flag.Set(false) // poll ticker is torn down
//	flag.Set(true)  // poll ticker is set up again under the same key
//
//	host.Deactivate("chat/42") // last claim: every entry drains in order
//
// # Failure Isolation
//
// Only the very first Setup of an entry may fail outward. Every teardown and
// every resumed setup runs through a safe invocation that recovers panics,
// logs one structured record and lets sibling entries proceed.
package lifecycle
