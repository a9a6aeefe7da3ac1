// Package hierarchy provides driven.TypeHierarchy implementations.
package hierarchy

import (
	"sort"

	"github.com/custodia-labs/searchsync/internal/core/ports/driven"
)

// Ensure Static implements the interface.
var _ driven.TypeHierarchy = (*Static)(nil)

// Static answers class lineage from a fixed child -> parent map, as
// declared in the [classes] table of the config file.
type Static struct {
	parents  map[string]string
	children map[string][]string
}

// NewStatic creates a hierarchy from a child -> parent map. Empty parents
// mark root classes.
func NewStatic(parents map[string]string) *Static {
	h := &Static{
		parents:  make(map[string]string, len(parents)),
		children: make(map[string][]string),
	}
	for child, parent := range parents {
		if parent == "" || parent == child {
			continue
		}
		h.parents[child] = parent
		h.children[parent] = append(h.children[parent], child)
	}
	for _, kids := range h.children {
		sort.Strings(kids)
	}
	return h
}

// Ancestry returns class followed by its ancestors, nearest first.
// A cycle in the map ends the walk.
func (h *Static) Ancestry(class string) []string {
	chain := []string{class}
	seen := map[string]bool{class: true}
	for parent, ok := h.parents[class]; ok; parent, ok = h.parents[parent] {
		if seen[parent] {
			break
		}
		seen[parent] = true
		chain = append(chain, parent)
	}
	return chain
}

// Subclasses returns every descendant of class, breadth first.
func (h *Static) Subclasses(class string) []string {
	var out []string
	seen := map[string]bool{class: true}
	queue := append([]string(nil), h.children[class]...)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if seen[next] {
			continue
		}
		seen[next] = true
		out = append(out, next)
		queue = append(queue, h.children[next]...)
	}
	return out
}
