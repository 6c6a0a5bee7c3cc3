// Package jobgraph builds Counter-wired job dependency graphs on top of
// the core scheduler: dependency ordering falls entirely out of Counter
// thresholds at runtime, but callers that want to describe a whole DAG
// declaratively — validate it up front, reject cycles, enumerate levels —
// benefit from a small graph type to do that before anything is enqueued.
package jobgraph

import (
	"fmt"
	"sort"
	"strings"
)

// Node is one DAG vertex: an ID and the IDs it depends on. Counter/Entry
// wiring happens separately in wire.go — this file only validates shape.
type Node struct {
	ID        string
	DependsOn []string
}

// CycleError indicates a circular dependency was detected.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("jobgraph: circular dependency: %s", strings.Join(e.Cycle, " -> "))
}

// MissingDependencyError indicates a referenced dependency doesn't exist.
type MissingDependencyError struct {
	Node       string
	Dependency string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("jobgraph: node %q depends on non-existent node %q", e.Node, e.Dependency)
}

// Graph is a validated job dependency DAG.
type Graph struct {
	nodes map[string]bool
	edges map[string][]string
}

// NewGraph validates nodes (no missing dependencies, no cycles) and
// returns the resulting Graph.
func NewGraph(nodes []Node) (*Graph, error) {
	g := &Graph{
		nodes: make(map[string]bool),
		edges: make(map[string][]string),
	}

	for _, n := range nodes {
		g.nodes[n.ID] = true
	}

	for _, n := range nodes {
		g.edges[n.ID] = append([]string{}, n.DependsOn...)
		for _, dep := range n.DependsOn {
			if !g.nodes[dep] {
				return nil, &MissingDependencyError{Node: n.ID, Dependency: dep}
			}
		}
	}

	if _, err := g.TopologicalSort(); err != nil {
		return nil, err
	}
	return g, nil
}

// levels groups every node reachable by repeatedly peeling off nodes
// whose dependencies have all already been peeled, breaking ties by
// sorted ID within each round. Nodes that never get peeled, because they
// sit on or behind a cycle, come back separately as stuck.
func (g *Graph) levels() (levels [][]string, stuck map[string]bool) {
	visited := make(map[string]bool, len(g.nodes))

	for len(visited) < len(g.nodes) {
		var round []string
		for node := range g.nodes {
			if visited[node] {
				continue
			}
			ready := true
			for _, dep := range g.edges[node] {
				if !visited[dep] {
					ready = false
					break
				}
			}
			if ready {
				round = append(round, node)
			}
		}
		if len(round) == 0 {
			break
		}
		sort.Strings(round)
		for _, node := range round {
			visited[node] = true
		}
		levels = append(levels, round)
	}

	if len(visited) == len(g.nodes) {
		return levels, nil
	}
	stuck = make(map[string]bool, len(g.nodes)-len(visited))
	for node := range g.nodes {
		if !visited[node] {
			stuck[node] = true
		}
	}
	return levels, stuck
}

// TopologicalSort returns node IDs in valid execution order: the
// concatenation of GetLevels' rounds, which is already a valid
// topological order since every round depends only on earlier ones.
func (g *Graph) TopologicalSort() ([]string, error) {
	levels, stuck := g.levels()
	if stuck != nil {
		return nil, &CycleError{Cycle: g.findCycle(stuck)}
	}
	var result []string
	for _, round := range levels {
		result = append(result, round...)
	}
	return result, nil
}

// GetDependencies returns node's direct dependency IDs.
func (g *Graph) GetDependencies(node string) []string {
	return append([]string{}, g.edges[node]...)
}

// GetLevels groups node IDs by dependency depth; level 0 has no
// dependencies.
func (g *Graph) GetLevels() [][]string {
	levels, _ := g.levels()
	return levels
}

// findCycle walks forward along dependency edges from the
// lexicographically smallest stuck node, always stepping to the
// smallest stuck dependency, until a node repeats. Every stuck node has
// at least one dependency that is also stuck — otherwise levels would
// have peeled it off — so the walk is guaranteed to revisit.
func (g *Graph) findCycle(stuck map[string]bool) []string {
	var start string
	for node := range stuck {
		if start == "" || node < start {
			start = node
		}
	}

	path := []string{start}
	index := map[string]int{start: 0}
	current := start

	for {
		deps := append([]string{}, g.edges[current]...)
		sort.Strings(deps)

		var next string
		for _, dep := range deps {
			if stuck[dep] {
				next = dep
				break
			}
		}
		if next == "" {
			return path
		}
		if seenAt, ok := index[next]; ok {
			cycle := append([]string{}, path[seenAt:]...)
			return append(cycle, next)
		}
		index[next] = len(path)
		path = append(path, next)
		current = next
	}
}
