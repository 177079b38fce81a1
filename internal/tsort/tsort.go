// Adapted from solidcoredata.org/src/databus/internal/tsort, the layered
// topological sort of the databus project. Copyright in the code carried
// over from that package remains with its authors.

// Package tsort implements a layered topological sort.
package tsort

import (
	"fmt"
	"slices"
	"strings"
)

// Node that may contain zero or more dependencies. Dependencies on IDs
// that are not part of the sorted set are ignored. A node that depends on
// itself is circular.
type Node struct {
	ID           string
	Dependencies []string
}

// ErrCircular is returned from Sort if the given nodes form a cyclic
// graph. It holds every node that could not be placed in a layer.
type ErrCircular struct {
	remaining namedSet
}

func (err ErrCircular) Error() string {
	return err.remaining.String()
}

// Remaining returns the IDs of all unplaced nodes, sorted. This includes
// nodes that only depend on a cycle without being part of one.
func (err ErrCircular) Remaining() []string {
	return err.remaining.keys()
}

// InCycle reports whether id can reach itself through the dependencies of
// unplaced nodes.
func (err ErrCircular) InCycle(id string) bool {
	seen := make(map[string]bool)
	stack := err.remaining[id].keys()
	for len(stack) > 0 {
		dep := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if dep == id {
			return true
		}
		if seen[dep] {
			continue
		}
		seen[dep] = true
		stack = append(stack, err.remaining[dep].keys()...)
	}
	return false
}

type set map[string]bool

func (s set) keys() []string {
	keys := make([]string, 0, len(s))
	for key := range s {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

type namedSet map[string]set

func (nset namedSet) keys() []string {
	keys := make([]string, 0, len(nset))
	for key := range nset {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func (nset namedSet) String() string {
	buf := &strings.Builder{}
	buf.WriteString("circular reference:\n")
	for _, key := range nset.keys() {
		buf.WriteString("- ")
		buf.WriteString(key)
		buf.WriteRune('\n')
		for _, dep := range nset[key].keys() {
			buf.WriteString("--- ")
			buf.WriteString(dep)
			buf.WriteRune('\n')
		}
	}
	return buf.String()
}

// Sort the given nodes into layers. Every node in a layer depends only on
// nodes of earlier layers. IDs within a layer are sorted.
func Sort(nodes []Node) (layers [][]string, err error) {
	IDDep := make(namedSet, len(nodes))
	DepID := make(namedSet)
	for _, n := range nodes {
		if _, ok := IDDep[n.ID]; ok {
			return nil, fmt.Errorf("Node %q is present more then once", n.ID)
		}
		IDDep[n.ID] = make(set)
	}
	for _, n := range nodes {
		for _, dep := range n.Dependencies {
			if _, ok := IDDep[dep]; !ok {
				continue
			}
			IDDep[n.ID][dep] = true
			if _, ok := DepID[dep]; !ok {
				DepID[dep] = make(set)
			}
			DepID[dep][n.ID] = true
		}
	}

	// Process nodes until all nodes have no dependencies.
	// If one or more node remains, then there is a circular reference.
	for len(IDDep) > 0 {
		loopID := make([]string, 0)
		for k, v := range IDDep {
			if len(v) == 0 {
				loopID = append(loopID, k)
			}
		}
		if len(loopID) == 0 {
			return layers, ErrCircular{IDDep}
		}

		// Move items from the lookup to the output layer.
		slices.Sort(loopID)
		for _, id := range loopID {
			delete(IDDep, id)
			for dependent := range DepID[id] {
				if deps, ok := IDDep[dependent]; ok {
					delete(deps, id)
				}
			}
		}
		layers = append(layers, loopID)
	}
	return layers, nil
}
