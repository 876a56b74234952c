package moduledb

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"snapmap/internal/geom"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

var (
	// ErrUnknownModule is returned when a module name is not in the catalog.
	ErrUnknownModule = errors.New("moduledb: unknown module")
	// ErrInvalidModule is returned for records that fail validation.
	ErrInvalidModule = errors.New("moduledb: invalid module")
)

// connectionNamespace seeds name-derived connection ids so that catalogs
// without explicit ids still produce stable ids.
var connectionNamespace = uuid.MustParse("6f1c2a4e-51d3-4bb0-9a58-0c4e0f7f3d11")

// ConnectionID derives the stable id of a named connection on a module.
func ConnectionID(module, connection string) uuid.UUID {
	return uuid.NewSHA1(connectionNamespace, []byte(module+"/"+connection))
}

// Database is the read-only module catalog. It is safe for concurrent reads.
type Database struct {
	modules  []*ModuleRecord
	byName   map[string]*ModuleRecord
	themes   map[string]ConnectionTheme
	registry *Registry
}

// New validates records and builds a catalog. Record order is preserved and
// is part of the determinism contract of the grower.
func New(records []ModuleRecord, themes []ConnectionTheme) (*Database, error) {
	db := &Database{
		byName:   make(map[string]*ModuleRecord, len(records)),
		themes:   make(map[string]ConnectionTheme, len(themes)),
		registry: newRegistry(),
	}
	for i := range records {
		rec := records[i]
		if rec.Name == "" {
			return nil, fmt.Errorf("%w: record %d has no name", ErrInvalidModule, i)
		}
		if _, dup := db.byName[rec.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate module %q", ErrInvalidModule, rec.Name)
		}
		if rec.Bounds.Empty() {
			return nil, fmt.Errorf("%w: module %q has empty bounds", ErrInvalidModule, rec.Name)
		}
		conns := make([]ConnectionDescriptor, len(rec.Connections))
		copy(conns, rec.Connections)
		for j := range conns {
			if conns[j].ID == uuid.Nil {
				conns[j].ID = ConnectionID(rec.Name, conns[j].Name)
			}
		}
		rec.Connections = conns
		if id, ok := db.registry.add(rec.Name, conns); !ok {
			return nil, fmt.Errorf("%w: module %q reuses connection id %s", ErrInvalidModule, rec.Name, id)
		}
		p := &rec
		db.modules = append(db.modules, p)
		db.byName[rec.Name] = p
	}
	for _, th := range themes {
		db.themes[th.Category] = th
	}
	return db, nil
}

// Modules returns every record in catalog order.
func (db *Database) Modules() []*ModuleRecord { return db.modules }

// Module looks up a record by name.
func (db *Database) Module(name string) (*ModuleRecord, error) {
	if m, ok := db.byName[name]; ok {
		return m, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModule, name)
}

// Registry returns the connection registry.
func (db *Database) Registry() *Registry { return db.registry }

// Theme returns the actor templates for a door category.
func (db *Database) Theme(category string) (ConnectionTheme, bool) {
	th, ok := db.themes[category]
	return th, ok
}

// ByCategory returns the records of one module category, in catalog order.
func (db *Database) ByCategory(category string) []*ModuleRecord {
	var out []*ModuleRecord
	for _, m := range db.modules {
		if m.Category == category {
			out = append(out, m)
		}
	}
	return out
}

// Candidates returns modules of the given category that have at least
// minDoors connections, and, when door is non-nil, at least one connection
// compatible with it.
func (db *Database) Candidates(category string, door *ConnectionDescriptor, minDoors int) []*ModuleRecord {
	var out []*ModuleRecord
	for _, m := range db.ByCategory(category) {
		if m.DoorCount() < minDoors {
			continue
		}
		if door != nil && !hasCompatible(m, *door) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func hasCompatible(m *ModuleRecord, door ConnectionDescriptor) bool {
	for _, c := range m.Connections {
		if Compatible(c, door) {
			return true
		}
	}
	return false
}

// ─── file format ────────────────────────────────────────────────────────────

type fileCatalog struct {
	Themes  []fileTheme  `json:"themes"`
	Modules []fileModule `json:"modules"`
}

type fileTheme struct {
	Category   string   `json:"category"`
	DoorActors []string `json:"door_actors"`
	WallActors []string `json:"wall_actors"`
}

type fileModule struct {
	Name        string           `json:"name"`
	Level       string           `json:"level"`
	Category    string           `json:"category"`
	Min         [3]float64       `json:"min"`
	Max         [3]float64       `json:"max"`
	Weight      float64          `json:"weight,omitempty"`
	Connections []fileConnection `json:"connections"`
}

type fileConnection struct {
	ID         string         `json:"id,omitempty"`
	Name       string         `json:"name"`
	Location   [3]float64     `json:"location"`
	Yaw        float64        `json:"yaw"`
	Category   string         `json:"category"`
	Constraint ConstraintKind `json:"constraint"`
}

// Load reads a JSON catalog from path.
func Load(path string) (*Database, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module database: %w", err)
	}
	return Parse(data)
}

// Parse decodes a JSON catalog.
func Parse(data []byte) (*Database, error) {
	var fc fileCatalog
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("decode module database: %w", err)
	}
	records := make([]ModuleRecord, 0, len(fc.Modules))
	for _, fm := range fc.Modules {
		rec := ModuleRecord{
			Name:     fm.Name,
			LevelRef: fm.Level,
			Category: fm.Category,
			Bounds:   geom.Box(mgl64.Vec3(fm.Min), mgl64.Vec3(fm.Max)),
			Weight:   fm.Weight,
		}
		for _, conn := range fm.Connections {
			c := ConnectionDescriptor{
				Name:       conn.Name,
				Local:      geom.At(conn.Location[0], conn.Location[1], conn.Location[2]).Yaw(conn.Yaw).Snapped(),
				Category:   conn.Category,
				Constraint: conn.Constraint,
			}
			if conn.ID != "" {
				id, err := uuid.Parse(conn.ID)
				if err != nil {
					return nil, fmt.Errorf("%w: module %q connection %q: %v", ErrInvalidModule, fm.Name, conn.Name, err)
				}
				c.ID = id
			}
			rec.Connections = append(rec.Connections, c)
		}
		records = append(records, rec)
	}
	themes := make([]ConnectionTheme, 0, len(fc.Themes))
	for _, ft := range fc.Themes {
		themes = append(themes, ConnectionTheme(ft))
	}
	return New(records, themes)
}
