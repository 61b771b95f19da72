package routing

// RouteKey is the capability surface a mapping key type must provide. The
// registry is generic over the key type; each routing strategy supplies a
// compile-time-checked implementation rather than being reflected over at
// runtime.
type RouteKey[T any] interface {
	comparable

	// DirectPaths returns the key's literal lookup paths: paths containing no
	// pattern syntax, usable in the direct-path index
	DirectPaths() []string

	// Match tests the key against a request, returning a possibly narrowed
	// form of the key and whether it matched
	Match(req *Request) (T, bool)

	// Compare ranks the key against another matching key for the given
	// request: negative when the receiver is the better match, positive when
	// other is, zero on a tie
	Compare(other T, req *Request) int

	// String returns a printable form of the key
	String() string
}
