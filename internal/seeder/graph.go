package seeder

import (
	"slices"
	"sort"

	"github.com/Lumos-Labs-HQ/flashseed/internal/types"
)

// BuildGraph inverts dependency pairs into a graph whose edges point from a
// referenced table to the tables that depend on it. Every table becomes a
// node, even without dependents.
func BuildGraph(tables []types.TableID, pairs types.DependencyPairs) types.DependencyGraph {
	graph := make(types.DependencyGraph, len(tables))
	for _, table := range tables {
		graph[table] = types.NewTableSet()
	}

	for dependent, referenced := range pairs {
		if _, ok := graph[dependent]; !ok {
			graph[dependent] = types.NewTableSet()
		}
		for ref := range referenced {
			if ref == dependent { // self references need no ordering
				continue
			}
			if _, ok := graph[ref]; !ok {
				graph[ref] = types.NewTableSet()
			}
			graph[ref].Add(dependent)
		}
	}

	return graph
}

// SortResult is the outcome of a topological sort.
type SortResult struct {
	// Order lists tables so that a referenced table precedes its dependents.
	Order []types.TableID
	// Cycles holds each detected cycle as the path that closed it.
	Cycles [][]types.TableID
	// Excluded lists tables caught in a cycle, dropped from Order.
	Excluded []types.TableID
}

// TopologicalSort orders the graph depth first. Every table that belongs to a
// strongly connected component with a cycle is excluded from the order, and
// each such table appears on at least one reported cycle.
func TopologicalSort(graph types.DependencyGraph) SortResult {
	var result SortResult
	cyclic := make(map[types.TableID]bool)

	for _, component := range stronglyConnected(graph) {
		if len(component) == 1 && !graph[component[0]].Has(component[0]) {
			continue
		}
		for _, t := range component {
			cyclic[t] = true
		}
		result.Cycles = append(result.Cycles, cyclesThrough(graph, component)...)
	}

	visited := make(map[types.TableID]bool)
	var postOrder []types.TableID

	var visit func(types.TableID)
	visit = func(table types.TableID) {
		if cyclic[table] || visited[table] {
			return
		}
		visited[table] = true
		for _, dependent := range graph[table].Sorted() {
			visit(dependent)
		}
		postOrder = append(postOrder, table)
	}

	for _, table := range graph.Nodes() {
		visit(table)
	}

	result.Order = make([]types.TableID, 0, len(postOrder))
	for i := len(postOrder) - 1; i >= 0; i-- {
		result.Order = append(result.Order, postOrder[i])
	}

	for table := range cyclic {
		result.Excluded = append(result.Excluded, table)
	}
	types.SortTables(result.Excluded)

	return result
}

// stronglyConnected returns the graph's strongly connected components using
// Tarjan's algorithm. Members of each component are sorted, and components
// are ordered by their first member.
func stronglyConnected(graph types.DependencyGraph) [][]types.TableID {
	var (
		index      int
		stack      []types.TableID
		components [][]types.TableID
	)
	indices := make(map[types.TableID]int)
	lowlink := make(map[types.TableID]int)
	onStack := make(map[types.TableID]bool)

	var connect func(types.TableID)
	connect = func(table types.TableID) {
		indices[table] = index
		lowlink[table] = index
		index++
		stack = append(stack, table)
		onStack[table] = true

		for _, next := range graph[table].Sorted() {
			if _, seen := indices[next]; !seen {
				connect(next)
				lowlink[table] = min(lowlink[table], lowlink[next])
			} else if onStack[next] {
				lowlink[table] = min(lowlink[table], indices[next])
			}
		}

		if lowlink[table] != indices[table] {
			return
		}

		var component []types.TableID
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == table {
				break
			}
		}
		components = append(components, types.SortTables(component))
	}

	for _, table := range graph.Nodes() {
		if _, seen := indices[table]; !seen {
			connect(table)
		}
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i][0].String() < components[j][0].String()
	})
	return components
}

// cyclesThrough returns shortest cycles inside a cyclic component until every
// member lies on at least one of them.
func cyclesThrough(graph types.DependencyGraph, component []types.TableID) [][]types.TableID {
	members := types.NewTableSet(component...)
	covered := types.NewTableSet()

	var cycles [][]types.TableID
	for _, start := range component {
		if covered.Has(start) {
			continue
		}
		cycle := shortestCycle(graph, members, start)
		if cycle == nil {
			continue
		}
		for _, t := range cycle {
			covered.Add(t)
		}
		cycles = append(cycles, cycle)
	}
	return cycles
}

// shortestCycle walks breadth first from start, staying inside members, and
// returns the path back to start with start repeated at the end.
func shortestCycle(graph types.DependencyGraph, members types.TableSet, start types.TableID) []types.TableID {
	parent := map[types.TableID]types.TableID{}
	seen := types.NewTableSet(start)
	queue := []types.TableID{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, next := range graph[current].Sorted() {
			if !members.Has(next) {
				continue
			}
			if next == start {
				var path []types.TableID
				for t := current; ; t = parent[t] {
					path = append(path, t)
					if t == start {
						break
					}
				}
				slices.Reverse(path)
				return append(path, start)
			}
			if seen.Has(next) {
				continue
			}
			seen.Add(next)
			parent[next] = current
			queue = append(queue, next)
		}
	}
	return nil
}
