package data

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/survivethenight/server/internal/core/ecs"
)

//go:embed entities.yaml
var defaultEntities []byte

// EntityTemplate holds the tunable numbers of one entity type.
// Zero values mean "not applicable" for that type.
type EntityTemplate struct {
	Type         ecs.Type `yaml:"type"`
	DisplayName  string   `yaml:"display_name"`
	Size         float64  `yaml:"size"`
	HitboxOffset float64  `yaml:"hitbox_offset"`
	Collidable   bool     `yaml:"collidable"`
	Group        string   `yaml:"group"` // friendly, enemy or empty
	Health       float64  `yaml:"health"`
	Speed        float64  `yaml:"speed"` // pixels per second

	Damage         float64 `yaml:"damage"`
	AttackCooldown float64 `yaml:"attack_cooldown"` // seconds
	AttackRange    float64 `yaml:"attack_range"`
	DeathRemovalMs int     `yaml:"death_removal_ms"`

	Lifetime     float64 `yaml:"lifetime"` // seconds, expirable entities
	Illumination float64 `yaml:"illumination"`
	Heal         float64 `yaml:"heal"`        // consumables
	Harvest      string  `yaml:"harvest"`     // item yielded when harvested
	Carry        string  `yaml:"carry"`       // item key when picked up
	Projectiles  int     `yaml:"projectiles"` // bullets per shot, weapons
	Spread       float64 `yaml:"spread"`      // radians between pellets
}

// ItemEntry maps an inventory item key to the entity type it becomes when dropped.
type ItemEntry struct {
	Key    string   `yaml:"key"`
	Entity ecs.Type `yaml:"entity"`
}

type entityListFile struct {
	Entities []EntityTemplate `yaml:"entities"`
	Items    []ItemEntry      `yaml:"items"`
	Starter  []string         `yaml:"starter_inventory"`
}

// EntityTable holds all entity templates indexed by type, and the item manifest
// in file order.
type EntityTable struct {
	templates map[ecs.Type]*EntityTemplate
	items     []ItemEntry
	starter   []string
}

// LoadEntityTable loads entity templates from a YAML file. An empty path
// selects the built-in table.
func LoadEntityTable(path string) (*EntityTable, error) {
	if path == "" {
		return DefaultEntityTable()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity_list: %w", err)
	}
	return parseEntityTable(raw)
}

// DefaultEntityTable returns the built-in table.
func DefaultEntityTable() (*EntityTable, error) {
	return parseEntityTable(defaultEntities)
}

func parseEntityTable(raw []byte) (*EntityTable, error) {
	var f entityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse entity_list: %w", err)
	}
	t := &EntityTable{
		templates: make(map[ecs.Type]*EntityTemplate, len(f.Entities)),
		items:     f.Items,
		starter:   f.Starter,
	}
	for i := range f.Entities {
		tpl := &f.Entities[i]
		if !tpl.Type.Valid() {
			return nil, fmt.Errorf("parse entity_list: unknown entity type %q", tpl.Type)
		}
		if _, dup := t.templates[tpl.Type]; dup {
			return nil, fmt.Errorf("parse entity_list: duplicate entity type %q", tpl.Type)
		}
		t.templates[tpl.Type] = tpl
	}
	for _, it := range f.Items {
		if _, ok := t.templates[it.Entity]; !ok {
			return nil, fmt.Errorf("parse entity_list: item %q maps to undefined entity %q", it.Key, it.Entity)
		}
	}
	return t, nil
}

// Get returns a template by type, or nil if not found.
func (t *EntityTable) Get(typ ecs.Type) *EntityTemplate {
	return t.templates[typ]
}

// MustGet is Get for types the server cannot run without.
func (t *EntityTable) MustGet(typ ecs.Type) *EntityTemplate {
	tpl := t.templates[typ]
	if tpl == nil {
		panic(fmt.Sprintf("data: no template for entity type %q", typ))
	}
	return tpl
}

// Items returns the item manifest in file order.
func (t *EntityTable) Items() []ItemEntry {
	return t.items
}

// StarterInventory returns the item keys every new player spawns with.
func (t *EntityTable) StarterInventory() []string {
	return t.starter
}

// Count returns the number of loaded templates.
func (t *EntityTable) Count() int {
	return len(t.templates)
}
