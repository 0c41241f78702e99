// Package dag orders entities by their relationships. A principal entity is
// a parent of every entity holding a foreign key to it, so a topological
// order is a safe insert order and its reverse a safe delete order.
package dag

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/leapstack-labs/leaporm/pkg/mapping"
)

// CycleError reports entities that reference each other in a loop.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "relationship cycle: " + strings.Join(e.Path, " -> ")
}

// Graph is a directed graph of entity names. Edges run from principal to
// dependent.
type Graph struct {
	mappings map[string]*mapping.EntityMapping
	children map[string][]string
	parents  map[string][]string
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		mappings: make(map[string]*mapping.EntityMapping),
		children: make(map[string][]string),
		parents:  make(map[string][]string),
	}
}

// FromMappings builds the graph of ms. Relationships naming an entity
// outside ms are ignored, as are self references.
func FromMappings(ms []*mapping.EntityMapping) *Graph {
	g := NewGraph()
	for _, m := range ms {
		g.Add(m)
	}
	for _, m := range ms {
		for _, rel := range m.Relationships() {
			_ = g.AddEdge(rel.Principal, rel.Dependent)
		}
	}
	return g
}

// Add registers m, replacing any mapping already held under its name.
func (g *Graph) Add(m *mapping.EntityMapping) {
	name := m.Name()
	if _, ok := g.mappings[name]; !ok {
		g.children[name] = nil
		g.parents[name] = nil
	}
	g.mappings[name] = m
}

// AddEdge records that dependent references principal.
func (g *Graph) AddEdge(principal, dependent string) error {
	if _, ok := g.mappings[principal]; !ok {
		return fmt.Errorf("entity %q is not in the graph", principal)
	}
	if _, ok := g.mappings[dependent]; !ok {
		return fmt.Errorf("entity %q is not in the graph", dependent)
	}
	if principal == dependent {
		return nil
	}
	if !slices.Contains(g.children[principal], dependent) {
		g.children[principal] = append(g.children[principal], dependent)
		g.parents[dependent] = append(g.parents[dependent], principal)
	}
	return nil
}

// Mapping returns the mapping registered under name.
func (g *Graph) Mapping(name string) (*mapping.EntityMapping, bool) {
	m, ok := g.mappings[name]
	return m, ok
}

// Principals returns the entities name references.
func (g *Graph) Principals(name string) []string {
	return sorted(g.parents[name])
}

// Dependents returns the entities referencing name.
func (g *Graph) Dependents(name string) []string {
	return sorted(g.children[name])
}

// Len returns the number of entities.
func (g *Graph) Len() int { return len(g.mappings) }

func (g *Graph) names() []string {
	names := make([]string, 0, len(g.mappings))
	for name := range g.mappings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// findCycle returns one cycle, or nil. Traversal is in name order so the
// reported path is stable.
func (g *Graph) findCycle() []string {
	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(g.mappings))
	var stack []string
	var cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		state[name] = active
		stack = append(stack, name)
		for _, child := range sorted(g.children[name]) {
			switch state[child] {
			case active:
				start := slices.Index(stack, child)
				cycle = append(slices.Clone(stack[start:]), child)
				return true
			case unvisited:
				if visit(child) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
		return false
	}

	for _, name := range g.names() {
		if state[name] == unvisited && visit(name) {
			return cycle
		}
	}
	return nil
}

// InsertOrder returns entity names with every principal before its
// dependents. Ties are broken by name.
func (g *Graph) InsertOrder() ([]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	var out []string
	for _, level := range levels {
		out = append(out, level...)
	}
	return out, nil
}

// DeleteOrder is InsertOrder reversed.
func (g *Graph) DeleteOrder() ([]string, error) {
	order, err := g.InsertOrder()
	if err != nil {
		return nil, err
	}
	slices.Reverse(order)
	return order, nil
}

// Levels groups entities so that each level only references entities in
// earlier levels. Level 0 holds entities without principals.
func (g *Graph) Levels() ([][]string, error) {
	if cycle := g.findCycle(); cycle != nil {
		return nil, &CycleError{Path: cycle}
	}

	level := make(map[string]int, len(g.mappings))
	var depth func(name string) int
	depth = func(name string) int {
		if l, ok := level[name]; ok {
			return l
		}
		l := 0
		for _, p := range g.parents[name] {
			l = max(l, depth(p)+1)
		}
		level[name] = l
		return l
	}

	var levels [][]string
	for _, name := range g.names() {
		l := depth(name)
		for len(levels) <= l {
			levels = append(levels, nil)
		}
		levels[l] = append(levels[l], name)
	}
	return levels, nil
}

// Affected returns names plus every entity that transitively depends on
// them, sorted.
func (g *Graph) Affected(names ...string) []string {
	seen := make(map[string]bool)
	var mark func(name string)
	mark = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		for _, child := range g.children[name] {
			mark(child)
		}
	}
	for _, name := range names {
		if _, ok := g.mappings[name]; ok {
			mark(name)
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func sorted(in []string) []string {
	out := slices.Clone(in)
	sort.Strings(out)
	return out
}
