package ext

import "github.com/survivethenight/server/internal/core/ecs"

type Group string

const (
	GroupFriendly Group = "friendly"
	GroupEnemy    Group = "enemy"
)

// Groupable tags which side an entity fights for.
type Groupable struct {
	self  *ecs.Entity
	group Group
}

func NewGroupable(self *ecs.Entity, g Group) *Groupable {
	return &Groupable{self: self, group: g}
}

func (g *Groupable) Kind() ecs.Kind { return KindGroupable }
func (g *Groupable) Group() Group   { return g.group }

func (g *Groupable) Serialize(rec ecs.Record) {
	rec["group"] = string(g.group)
}

func (g *Groupable) Deserialize(rec ecs.Record) error {
	if v, ok := rec.Text("group"); ok {
		g.group = Group(v)
	}
	return nil
}
