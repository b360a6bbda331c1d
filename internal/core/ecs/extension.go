package ecs

import (
	"errors"
	"fmt"
)

// Kind names an extension type. An entity carries at most one extension per kind.
type Kind string

// Extension is a capability module attached to exactly one owning entity.
// Serialize merges the extension's fields into the flat entity record;
// Deserialize reads them back from the same shape.
type Extension interface {
	Kind() Kind
	Serialize(rec Record)
	Deserialize(rec Record) error
}

// Updater is implemented by extensions that run every tick.
type Updater interface {
	Update(dt float64)
}

// ExtensionFactory builds an empty extension bound to its owner, used when
// reconstructing entities from records.
type ExtensionFactory func(owner *Entity) Extension

var ErrUnknownExtension = errors.New("unknown extension kind")

// extensionFactories is filled from package init functions only and read-only afterwards.
var extensionFactories = make(map[Kind]ExtensionFactory)

// RegisterExtension makes kind constructible by Deserialize. Intended for init().
func RegisterExtension(kind Kind, f ExtensionFactory) {
	if _, dup := extensionFactories[kind]; dup {
		panic(fmt.Sprintf("ecs: extension %q registered twice", kind))
	}
	extensionFactories[kind] = f
}

func newExtension(kind Kind, owner *Entity) (Extension, error) {
	f, ok := extensionFactories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, kind)
	}
	return f(owner), nil
}

// MissingExtensionError is the panic payload when a required capability is absent.
// It signals a caller contract violation: optional capabilities must be checked first.
type MissingExtensionError struct {
	EntityID string
	Type     Type
	Want     string
}

func (e *MissingExtensionError) Error() string {
	return fmt.Sprintf("entity %s (%s) is missing extension %s", e.EntityID, e.Type, e.Want)
}

// Find returns the attached extension of type T.
func Find[T Extension](e *Entity) (T, bool) {
	for _, x := range e.exts {
		if t, ok := x.(T); ok {
			return t, true
		}
	}
	var zero T
	return zero, false
}

// Has reports whether an extension of type T is attached.
func Has[T Extension](e *Entity) bool {
	_, ok := Find[T](e)
	return ok
}

// Get returns the extension of type T and panics with *MissingExtensionError
// when it is absent.
func Get[T Extension](e *Entity) T {
	t, ok := Find[T](e)
	if !ok {
		var zero T
		panic(&MissingExtensionError{EntityID: e.id, Type: e.typ, Want: fmt.Sprintf("%T", zero)})
	}
	return t
}
