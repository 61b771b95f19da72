package proxy

import (
	"reflect"
)

// FactoryPrefix marks identity keys derived from names of factory-role
// objects, keeping them distinct from keys of the objects they produce.
const FactoryPrefix = "&"

// Factory marks an object whose role is to produce other objects. Keys for
// named factories carry the FactoryPrefix.
type Factory interface {
	Produce() (any, error)
}

var factoryType = reflect.TypeOf((*Factory)(nil)).Elem()

// Key correlates a pre-construction object with its post-construction,
// possibly wrapped, counterpart. A key is name-derived when the object has a
// logical name and type-derived otherwise, so two objects sharing a logical
// name always resolve to the same key regardless of concrete runtime type.
type Key struct {
	name string
	typ  reflect.Type
}

// KeyFor derives the identity key for the given type and logical name
func KeyFor(t reflect.Type, name string) Key {
	if name != "" {
		if t != nil && implementsFactory(t) {
			return Key{name: FactoryPrefix + name}
		}
		return Key{name: name}
	}
	return Key{typ: t}
}

func implementsFactory(t reflect.Type) bool {
	if t.AssignableTo(factoryType) {
		return true
	}
	if t.Kind() != reflect.Ptr {
		return reflect.PointerTo(t).AssignableTo(factoryType)
	}
	return false
}

// Named reports whether the key is name-derived
func (k Key) Named() bool {
	return k.name != ""
}

// String returns a printable form of the key
func (k Key) String() string {
	if k.name != "" {
		return k.name
	}
	if k.typ != nil {
		return k.typ.String()
	}
	return "<zero key>"
}
