// Package disposal provides the per-owner registry of active cleanup callbacks.
//
// Every resource an owner acquires is registered as an entry holding its
// teardown. Entries are keyed: registering under an existing key tears down
// the previous instance before the replacement is set up. Entries without a
// caller-supplied key get a sequential generated key and are purely additive.
//
//	reg := disposal.NewRegistry("chat/42")
//
//	// Replaces any earlier "poll" entry
//	key, err := reg.Add(setup, disposal.WithKey("poll"))
//
//	// Returns false when nothing is registered under the key
//	ok := reg.Dispose("poll")
//
//	// Final release, in insertion order
//	reg.DrainAll()
//
// # Pause and Resume
//
// Entries are pausable by default. Pause tears down pausable entries and
// remembers their setup; Resume replays those setups in their original order
// and reinstates each under its original key. Entries registered with
// Pausable(false) keep running across a pause.
//
// # Failure Isolation
//
// Teardowns and resumed setups run through SafeInvoke: a returned error or a
// panic becomes exactly one Error-level log record with the fields context,
// ownerId and error, and never stops sibling entries. Only the first setup
// passed to Add reports failure to its caller.
package disposal
