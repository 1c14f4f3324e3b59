// Package object provides the reference-counted base type shared by the
// filters and images of this module.
//
// An Object carries three pieces of state:
//
//   - a reference count, starting at 1 on creation. Acquire adds a holder,
//     Release drops one; the Release that brings the count to zero destroys
//     the object exactly once and runs its delete method, if any.
//   - a modification time drawn from a single process-wide TimeStamp source.
//     Modified advances it; dependent computations record the value they saw
//     and treat a cached result as stale once the value changes.
//   - a debug flag gating per-instance diagnostics.
//
// # Embedding
//
// Types compose the capabilities by embedding Object and calling Init from
// their constructor:
//
//	type Filter struct {
//	    object.Object
//	    // ...
//	}
//
//	func NewFilter() *Filter {
//	    f := &Filter{}
//	    f.Init("Filter")
//	    return f
//	}
//
// Objects must not be copied after Init.
//
// # Diagnostics
//
// Debugf and Warnf write through the zap global logger. Warnf is gated by the
// process-wide warning display flag (SetGlobalWarningDisplay); Debugf also
// requires the instance debug flag.
//
// # Errors
//
// Misuse of the reference count (releasing past zero, acquiring a destroyed
// object) is a programming error and panics with an error wrapping
// ErrLifecycle.
package object
