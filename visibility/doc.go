// Package visibility pauses and resumes owner resources when the application
// stops or starts being visible.
//
// A single Coordinator per process holds the set of owners that opted into
// visibility-reactive resources. It keeps exactly one subscription to the
// environment's visibility signal while at least one owner is registered, and
// none otherwise:
//
//	flag := visibility.NewFlag(true)
//	coord := visibility.NewCoordinator(flag, nil)
//
//	coord.Register("chat/42", registry)   // subscribes to flag
//	flag.Set(false)                       // registry.Pause()
//	flag.Set(true)                        // registry.Resume()
//	coord.Unregister("chat/42", registry) // unsubscribes from flag
//
// # Environments
//
// Flag is an in-memory environment driven by Set; hosts wire it to whatever
// tells them about visibility (terminal focus, window state). FileFlag reads
// the state from a file and follows changes through fsnotify.
//
// The coordinator reacts only to transitions it is notified of. An owner that
// registers while the application is hidden keeps its resources running until
// the next hidden transition.
package visibility
