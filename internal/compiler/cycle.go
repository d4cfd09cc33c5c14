package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/danforbes/dots/internal/ir"
)

// CycleWarning reports a group of mutually recursive types.
//
// Recursion is legal in SCALE (a call enum that contains a batch of calls,
// for instance) but consumers that expand types eagerly need to know where
// to stop.
type CycleWarning struct {
	Path    []uint32 `json:"path"`    // Cycle path: [3, 5, 3]
	Message string   `json:"message"` // Human-readable description
	Level   string   `json:"level"`   // "warning" or "info"
}

// AnalyzeCycles finds recursive types in a normalized type index.
//
// The algorithm:
//  1. Build the id → referenced ids graph from store, fields and variants
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop
//
// Warnings are ordered by the smallest id in each cycle. An acyclic index
// returns an empty list.
func AnalyzeCycles(types ir.Types) []CycleWarning {
	if len(types) == 0 {
		return []CycleWarning{}
	}

	graph := buildTypeGraph(types)
	sccs := tarjanSCC(graph, types.IDs())

	warnings := []CycleWarning{}
	for _, scc := range sccs {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph, types))
		}
	}

	slices.SortFunc(warnings, func(a, b CycleWarning) int {
		return int(a.Path[0]) - int(b.Path[0])
	})
	return warnings
}

// typeGraph maps a type id to the ids it references, ascending.
type typeGraph map[uint32][]uint32

func buildTypeGraph(types ir.Types) typeGraph {
	graph := make(typeGraph, len(types))
	for id, st := range types {
		refs := typeRefs(st)
		slices.Sort(refs)
		graph[id] = slices.Compact(refs)
	}
	return graph
}

func hasSelfLoop(node uint32, graph typeGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in the given order so the result is deterministic.
func tarjanSCC(graph typeGraph, order []uint32) [][]uint32 {
	var (
		index   = 0
		stack   []uint32
		indices = make(map[uint32]int)
		lowlink = make(map[uint32]int)
		onStack = make(map[uint32]bool)
		sccs    [][]uint32
	)

	var strongConnect func(uint32)
	strongConnect = func(v uint32) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack into an SCC
		if lowlink[v] == indices[v] {
			var scc []uint32
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, node := range order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// cycleSCCToWarning converts an SCC to a CycleWarning. The path starts and
// ends at the smallest id in the SCC.
func cycleSCCToWarning(scc []uint32, graph typeGraph, types ir.Types) CycleWarning {
	path := reconstructCyclePath(scc, graph)

	parts := make([]string, len(path))
	for i, id := range path {
		parts[i] = describeType(id, types)
	}

	msg := fmt.Sprintf("Recursive type detected: %s", strings.Join(parts, " → "))
	if len(scc) == 1 {
		msg = fmt.Sprintf("Self-referencing type detected: %s", parts[0])
	}
	return CycleWarning{
		Path:    path,
		Message: msg,
		Level:   "info",
	}
}

// reconstructCyclePath follows edges inside the SCC from its first node
// until it returns there.
func reconstructCyclePath(scc []uint32, graph typeGraph) []uint32 {
	start := scc[0]
	if len(scc) == 1 {
		return []uint32{start, start}
	}

	path := []uint32{start}
	visited := map[uint32]bool{start: true}
	current := start

	for {
		next, found := uint32(0), false
		for _, neighbor := range graph[current] {
			if !slices.Contains(scc, neighbor) {
				continue
			}
			if neighbor == start {
				next, found = start, true
				break
			}
			if !found && !visited[neighbor] {
				next, found = neighbor, true
			}
		}
		if !found {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		visited[next] = true
		current = next
	}

	return path
}

func describeType(id uint32, types ir.Types) string {
	if st, ok := types[id]; ok && st.Name != nil && *st.Name != "" {
		return fmt.Sprintf("%d (%s)", id, *st.Name)
	}
	return fmt.Sprintf("%d", id)
}
