package proxy

import (
	"reflect"

	"github.com/puzpuzpuz/xsync/v3"
)

// Classification is the tri-state wrapping decision recorded per identity key
type Classification int8

const (
	// ClassificationUnknown means no decision has been made yet
	ClassificationUnknown Classification = iota
	// ClassificationNeedsWrap means the object was wrapped
	ClassificationNeedsWrap
	// ClassificationNoWrap means the object is never wrapped
	ClassificationNoWrap
)

func (c Classification) String() string {
	switch c {
	case ClassificationNeedsWrap:
		return "needs-wrap"
	case ClassificationNoWrap:
		return "no-wrap"
	default:
		return "unknown"
	}
}

// Cache memoizes classification decisions and produced wrapper types per
// identity key. Decisions are terminal: the first write for a key wins and is
// stable for the process lifetime. Classification is deterministic for a
// given rule set, so concurrent first-classification races are benign.
type Cache struct {
	decisions    *xsync.MapOf[Key, Classification]
	wrapperTypes *xsync.MapOf[Key, reflect.Type]
}

// NewCache creates an empty classification cache
func NewCache() *Cache {
	return &Cache{
		decisions:    xsync.NewMapOf[Key, Classification](),
		wrapperTypes: xsync.NewMapOf[Key, reflect.Type](),
	}
}

// Classification returns the recorded decision for key, or
// ClassificationUnknown when none has been made
func (c *Cache) Classification(key Key) Classification {
	if cls, ok := c.decisions.Load(key); ok {
		return cls
	}
	return ClassificationUnknown
}

// SetClassification records a terminal decision for key. When a decision is
// already present it is kept; the effective decision is returned.
func (c *Cache) SetClassification(key Key, cls Classification) Classification {
	actual, _ := c.decisions.LoadOrStore(key, cls)
	return actual
}

// WrapperType returns the wrapper type produced for key, if any
func (c *Cache) WrapperType(key Key) (reflect.Type, bool) {
	return c.wrapperTypes.Load(key)
}

// SetWrapperType records the wrapper type produced for key
func (c *Cache) SetWrapperType(key Key, t reflect.Type) {
	c.wrapperTypes.Store(key, t)
}

// Size returns the number of recorded decisions
func (c *Cache) Size() int {
	return c.decisions.Size()
}
