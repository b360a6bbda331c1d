package ext

import (
	"github.com/survivethenight/server/internal/core/ecs"
	"github.com/survivethenight/server/internal/geom"
)

// Interactive carries the prompt clients show next to an entity.
type Interactive struct {
	self        *ecs.Entity
	displayName string
	offset      geom.Vector2
}

func NewInteractive(self *ecs.Entity, name string) *Interactive {
	return &Interactive{self: self, displayName: name}
}

func (i *Interactive) Kind() ecs.Kind       { return KindInteractive }
func (i *Interactive) DisplayName() string  { return i.displayName }
func (i *Interactive) Offset() geom.Vector2 { return i.offset }

func (i *Interactive) SetOffset(v geom.Vector2) *Interactive {
	i.offset = v
	return i
}

func (i *Interactive) Serialize(rec ecs.Record) {
	rec["displayName"] = i.displayName
	rec["interactOffset"] = i.offset
}

func (i *Interactive) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Text("displayName"); ok {
		i.displayName = v
	}
	if v, ok := rec.Vector("interactOffset"); ok {
		i.offset = v
	}
	return nil
}
