// Package owner exposes the per-owner facade used by setup code and the
// host-side index that activates and deactivates owners by identity.
//
// The host framework calls Activate once per independent mount claim and
// Deactivate once per unmount claim. An owner's resources drain only when its
// last claim is withdrawn; the next Activate for the same identity starts
// with an empty registry.
//
//	host := owner.NewHost(&owner.Config{Coordinator: coord})
//
//	o := host.Activate("list")
//	o.Add(resource.Ticker(5*time.Second, refresh), disposal.WithKey("refresh"))
//
//	host.Active("list")     // true
//	host.Deactivate("list") // drains every entry of "list"
//
// Owners enroll in the visibility coordinator when their first pausable entry
// is added and leave it when they drain.
package owner
