// Package title maintains a hierarchical page title for a tree of mounted views.
//
// Each mounted view contributes one Part at a level: 0 is the root shell and
// higher levels are more specific. The cascade joins every active part from the
// most specific to the least specific, so parts {0:"Root", 1:"Section",
// 2:"Page"} render as "Page • Section • Root". A part at OverrideLevel replaces
// the whole cascade.
//
// A Registry holds the parts, the separator and the auto-level counter for one
// independent execution (one browser session, one server render). Registries
// are not safe for concurrent use; callers that share one across goroutines
// must serialise access themselves.
//
// Views join the registry through a Binding. The binding registered at level 0
// subscribes to the registry and forwards every recomputed cascade to its Sink.
package title
