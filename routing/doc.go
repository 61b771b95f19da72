// Package routing maps structured lookup keys to handler methods and
// resolves incoming call descriptors to the best-matching handler.
//
// The MappingRegistry is generic over the key type: any type satisfying
// RouteKey can drive it. PathKey is the built-in strategy, matching on path
// patterns with "{var}" and "*" segments plus an optional method condition.
//
// Lookup prefers literal path matches through the direct-path index and
// falls back to testing every registered key. Candidates are ranked by the
// key type's comparator; a tie between the best two is an ambiguity error,
// except for cross-origin pre-flight requests which resolve to a permissive
// sentinel handler.
//
// Registration and unregistration keep the direct-path index, name index,
// policy side table and authoritative mapping consistent as one atomic unit.
package routing
