package graph

import (
	"cmp"
	"slices"

	errs "github.com/matzehuels/metromap/pkg/errors"
)

// =============================================================================
// CareerMap - Domain Input
// =============================================================================

// CareerMap is the canonical serialization format for career data.
type CareerMap struct {
	Name        string       `json:"name,omitempty" bson:"name,omitempty" toml:"name" yaml:"name,omitempty"`
	Paths       []CareerPath `json:"paths" bson:"paths" toml:"paths" yaml:"paths"`
	Transitions []Transition `json:"transitions,omitempty" bson:"transitions,omitempty" toml:"transitions" yaml:"transitions,omitempty"`
}

// CareerPath is one career track with its roles.
type CareerPath struct {
	ID    string `json:"id" bson:"id" toml:"id" yaml:"id"`
	Name  string `json:"name,omitempty" bson:"name,omitempty" toml:"name" yaml:"name,omitempty"`
	Color string `json:"color,omitempty" bson:"color,omitempty" toml:"color" yaml:"color,omitempty"`
	Roles []Role `json:"roles" bson:"roles" toml:"roles" yaml:"roles"`
}

// Role is a position at a seniority level.
type Role struct {
	ID    string `json:"id" bson:"id" toml:"id" yaml:"id"`
	Name  string `json:"name,omitempty" bson:"name,omitempty" toml:"name" yaml:"name,omitempty"`
	Level int    `json:"level" bson:"level" toml:"level" yaml:"level"`
}

// Transition is a directed move between two roles.
type Transition struct {
	FromID      string `json:"from" bson:"from" toml:"from" yaml:"from"`
	ToID        string `json:"to" bson:"to" toml:"to" yaml:"to"`
	Recommended bool   `json:"recommended,omitempty" bson:"recommended,omitempty" toml:"recommended" yaml:"recommended,omitempty"`
}

// RoleCount returns the number of (path, role) entries in m.
func (m CareerMap) RoleCount() int {
	n := 0
	for _, p := range m.Paths {
		n += len(p.Roles)
	}
	return n
}

// Validate checks the structural requirements of a career map.
// Level conflicts and unknown transition endpoints are data-quality issues
// handled by the adapter, not validation failures.
func (m CareerMap) Validate() error {
	seen := make(map[string]bool, len(m.Paths))
	for i, p := range m.Paths {
		if p.ID == "" {
			return errs.New(errs.ErrCodeInvalidInput, "path has no id").At("paths[%d].id", i)
		}
		if seen[p.ID] {
			return errs.New(errs.ErrCodeInvalidInput, "duplicate path id %q", p.ID).At("paths[%d].id", i)
		}
		seen[p.ID] = true
		for j, r := range p.Roles {
			if r.ID == "" {
				return errs.New(errs.ErrCodeInvalidInput, "role on path %q has no id", p.ID).At("paths[%d].roles[%d].id", i, j)
			}
		}
	}
	for i, t := range m.Transitions {
		if t.FromID == "" || t.ToID == "" {
			return errs.New(errs.ErrCodeInvalidInput, "transition needs both from and to").At("transitions[%d]", i)
		}
	}
	return nil
}

// =============================================================================
// Relational Rows - Legacy Input Shape
// =============================================================================

// PathRow is a career path as stored in a relational table.
type PathRow struct {
	ID    string `json:"id" bson:"id"`
	Name  string `json:"name" bson:"name"`
	Color string `json:"color,omitempty" bson:"color,omitempty"`
	Order int    `json:"sort_order,omitempty" bson:"sort_order,omitempty"`
}

// PositionRow is a single position row referencing its career path.
type PositionRow struct {
	ID           string `json:"id" bson:"id"`
	CareerPathID string `json:"career_path_id" bson:"career_path_id"`
	Title        string `json:"title" bson:"title"`
	Level        int    `json:"level" bson:"level"`
}

// CareerMapFromRows groups relational rows into a CareerMap.
// Paths are ordered by Order, then by their position in paths; roles keep
// row order within a path. Rows for unknown paths are dropped.
func CareerMapFromRows(paths []PathRow, rows []PositionRow, transitions []Transition) CareerMap {
	ordered := slices.Clone(paths)
	slices.SortStableFunc(ordered, func(a, b PathRow) int { return cmp.Compare(a.Order, b.Order) })

	m := CareerMap{
		Paths:       make([]CareerPath, len(ordered)),
		Transitions: slices.Clone(transitions),
	}
	pos := make(map[string]int, len(ordered))
	for i, p := range ordered {
		m.Paths[i] = CareerPath{ID: p.ID, Name: p.Name, Color: p.Color}
		pos[p.ID] = i
	}
	for _, r := range rows {
		i, ok := pos[r.CareerPathID]
		if !ok {
			continue
		}
		m.Paths[i].Roles = append(m.Paths[i].Roles, Role{ID: r.ID, Name: r.Title, Level: r.Level})
	}
	return m
}
