package ecs

import (
	"fmt"
)

// Entity is a uniquely identified simulation object composed of extensions.
// Accessed only from the tick goroutine. Not safe for concurrent use.
type Entity struct {
	id       string
	typ      Type
	exts     []Extension
	managers Managers // non-owning; nil on clients
}

// New creates an entity with a fresh id from the managers' entity registry.
func New(m Managers, t Type) *Entity {
	return &Entity{
		id:       m.Entities().GenerateEntityID(),
		typ:      t,
		managers: m,
	}
}

// NewWithID creates an entity with a known id, e.g. when mirroring server state.
// m may be nil.
func NewWithID(id string, t Type, m Managers) *Entity {
	return &Entity{id: id, typ: t, managers: m}
}

func (e *Entity) ID() string { return e.id }
func (e *Entity) Type() Type { return e.typ }

// Managers returns the handle used to query the simulation. Panics when the
// entity was built without one.
func (e *Entity) Managers() Managers {
	if e.managers == nil {
		panic(fmt.Errorf("entity %s: %w", e.id, ErrManagersDetached))
	}
	return e.managers
}

// Extensions returns the attached extensions in attachment order.
func (e *Entity) Extensions() []Extension {
	return e.exts
}

// AddExtension attaches ext. An extension of the same kind is replaced in place.
func (e *Entity) AddExtension(ext Extension) {
	for i, x := range e.exts {
		if x.Kind() == ext.Kind() {
			e.exts[i] = ext
			return
		}
	}
	e.exts = append(e.exts, ext)
}

// RemoveExtension detaches the extension of the given kind, if any.
// The tick loop iterates a snapshot, so extensions may remove themselves
// from inside Update.
func (e *Entity) RemoveExtension(kind Kind) {
	for i, x := range e.exts {
		if x.Kind() == kind {
			next := make([]Extension, 0, len(e.exts)-1)
			next = append(next, e.exts[:i]...)
			e.exts = append(next, e.exts[i+1:]...)
			return
		}
	}
}

func (e *Entity) HasExtension(kind Kind) bool {
	for _, x := range e.exts {
		if x.Kind() == kind {
			return true
		}
	}
	return false
}

// Extension returns the extension of the given kind and panics with
// *MissingExtensionError when it is absent.
func (e *Entity) Extension(kind Kind) Extension {
	for _, x := range e.exts {
		if x.Kind() == kind {
			return x
		}
	}
	panic(&MissingExtensionError{EntityID: e.id, Type: e.typ, Want: string(kind)})
}

// Update runs the per-tick hook of every attached extension in attachment order.
func (e *Entity) Update(dt float64) {
	exts := e.exts
	for _, x := range exts {
		if u, ok := x.(Updater); ok {
			u.Update(dt)
		}
	}
}

// Serialize flattens the entity into a record for broadcast.
func (e *Entity) Serialize() Record {
	kinds := make([]string, len(e.exts))
	for i, x := range e.exts {
		kinds[i] = string(x.Kind())
	}
	rec := Record{
		"id":         e.id,
		"type":       string(e.typ),
		"extensions": kinds,
	}
	for _, x := range e.exts {
		x.Serialize(rec)
	}
	return rec
}

// Deserialize reconstructs an entity from a record produced by Serialize.
func Deserialize(rec Record, m Managers) (*Entity, error) {
	id, ok := rec.Text("id")
	if !ok {
		return nil, fmt.Errorf("deserialize entity: missing id")
	}
	typ, ok := rec.Text("type")
	if !ok {
		return nil, fmt.Errorf("deserialize entity %s: missing type", id)
	}
	e := NewWithID(id, Type(typ), m)
	if err := e.ApplyRecord(rec); err != nil {
		return nil, err
	}
	return e, nil
}

// ApplyRecord reconciles the entity with a newer record: extensions listed in
// the record are created or refreshed, extensions no longer listed are dropped.
func (e *Entity) ApplyRecord(rec Record) error {
	kinds, _ := rec.Strings("extensions")
	keep := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		kind := Kind(k)
		keep[kind] = struct{}{}

		var ext Extension
		for _, x := range e.exts {
			if x.Kind() == kind {
				ext = x
				break
			}
		}
		if ext == nil {
			created, err := newExtension(kind, e)
			if err != nil {
				return fmt.Errorf("entity %s: %w", e.id, err)
			}
			ext = created
			e.exts = append(e.exts, ext)
		}
		if err := ext.Deserialize(rec); err != nil {
			return fmt.Errorf("entity %s extension %s: %w", e.id, kind, err)
		}
	}
	for i := len(e.exts) - 1; i >= 0; i-- {
		if _, ok := keep[e.exts[i].Kind()]; !ok {
			e.RemoveExtension(e.exts[i].Kind())
		}
	}
	return nil
}
