// Package proxy decides, per constructed object, whether to wrap it with a
// behavior chain, and produces the wrapper at most once per identity key.
//
// The Registry hooks into an external construction pipeline at three points:
//   - OnPreConstruction: short-circuits construction when a custom target
//     provider dictates eager proxy creation
//   - OnEarlyExposure: wraps an instance exposed prematurely because of a
//     dependency cycle
//   - OnPostInitialization: the normal wrap point after population and
//     initialization callbacks complete
//
// Classification decisions (needs-wrap / no-wrap) are memoized per identity
// Key in a lock-free Cache and are stable for the process lifetime.
// Infrastructure types, the pieces of the interception mechanism itself, are
// never wrapped.
//
// An object exposed early and wrapped during OnEarlyExposure is not wrapped
// again during OnPostInitialization for the same instance; instance identity,
// not equality, decides whether the early wrap result is reused.
package proxy
