package routing

import (
	"strings"
)

// PathKey maps requests by path pattern and optional method condition.
// Patterns are segment based: a literal segment matches itself, "{name}"
// matches any single segment, "*" matches any single segment. A key with an
// empty Verb matches every request method.
type PathKey struct {
	Verb    string
	Pattern string
}

// NewPathKey creates a path mapping key
func NewPathKey(verb, pattern string) PathKey {
	return PathKey{Verb: verb, Pattern: pattern}
}

// DirectPaths implements RouteKey: a literal pattern is its own direct path
func (k PathKey) DirectPaths() []string {
	if isPattern(k.Pattern) {
		return nil
	}
	return []string{k.Pattern}
}

// Match implements RouteKey
func (k PathKey) Match(req *Request) (PathKey, bool) {
	if req == nil {
		return PathKey{}, false
	}
	if k.Verb != "" && k.Verb != req.Method {
		return PathKey{}, false
	}
	if !matchPattern(k.Pattern, req.Path) {
		return PathKey{}, false
	}
	return k, true
}

// Compare implements RouteKey. A lower wildcard count is more specific; a
// method-conditioned key beats a method-agnostic one.
func (k PathKey) Compare(other PathKey, req *Request) int {
	if d := k.wildcards() - other.wildcards(); d != 0 {
		return d
	}
	// More literal characters wins among equally wild patterns
	if d := literalLength(other.Pattern) - literalLength(k.Pattern); d != 0 {
		return d
	}
	if k.Verb != other.Verb {
		if k.Verb != "" && other.Verb == "" {
			return -1
		}
		if k.Verb == "" && other.Verb != "" {
			return 1
		}
	}
	return 0
}

// String implements RouteKey
func (k PathKey) String() string {
	if k.Verb == "" {
		return k.Pattern
	}
	return k.Verb + " " + k.Pattern
}

func (k PathKey) wildcards() int {
	n := 0
	for _, seg := range strings.Split(k.Pattern, "/") {
		if seg == "*" || isVarSegment(seg) {
			n++
		}
	}
	return n
}

func isPattern(pattern string) bool {
	return strings.ContainsAny(pattern, "{*")
}

func isVarSegment(seg string) bool {
	return strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}")
}

func literalLength(pattern string) int {
	n := 0
	for _, seg := range strings.Split(pattern, "/") {
		if seg != "*" && !isVarSegment(seg) {
			n += len(seg)
		}
	}
	return n
}

func matchPattern(pattern, path string) bool {
	if !isPattern(pattern) {
		return pattern == path
	}

	patSegs := strings.Split(pattern, "/")
	pathSegs := strings.Split(path, "/")
	if len(patSegs) != len(pathSegs) {
		return false
	}

	for i, seg := range patSegs {
		if seg == "*" || isVarSegment(seg) {
			if pathSegs[i] == "" {
				return false
			}
			continue
		}
		if seg != pathSegs[i] {
			return false
		}
	}
	return true
}
