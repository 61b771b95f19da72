package routing

import (
	"net/http"
)

// Request is the call descriptor resolved against the mapping registry. It
// carries the structured fields keys match on; transport-level parsing
// happens elsewhere.
type Request struct {
	Method string
	Path   string
	Header http.Header
}

// NewRequest creates a request descriptor
func NewRequest(method, path string) *Request {
	return &Request{
		Method: method,
		Path:   path,
		Header: make(http.Header),
	}
}

// IsPreflight reports whether the request is a cross-origin pre-flight
// negotiation: an OPTIONS request carrying an Origin and a requested method
func (r *Request) IsPreflight() bool {
	if r.Method != http.MethodOptions {
		return false
	}
	if r.Header == nil {
		return false
	}
	return r.Header.Get("Origin") != "" && r.Header.Get("Access-Control-Request-Method") != ""
}
