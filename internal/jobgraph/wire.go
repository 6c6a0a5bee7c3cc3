package jobgraph

import (
	"github.com/fibersched/fibersched/internal/counter"
	"github.com/fibersched/fibersched/internal/job"
)

// Spec describes one DAG node's executable work, keyed by ID, plus the
// IDs of the nodes that must complete before it may run.
type Spec struct {
	ID        string
	DependsOn []string
	Entry     job.Entry
	Data      any
}

// Wired is a validated graph plus one Job per node, with Dependencies
// already pointing at each dependency's completion counter at threshold
// 0. Every counter starts at zero and is raised only when its own job is
// enqueued, so each job must be enqueued after the jobs it depends on
// (for example in Graph.TopologicalSort order); a dependent enqueued
// first sees a zero counter and runs at once. Once that order is kept,
// all jobs may be submitted together: a job whose dependencies haven't
// completed yet parks until they have.
type Wired struct {
	Graph    *Graph
	Counters map[string]*counter.Counter
	Jobs     map[string]job.Job
}

// Wire validates the dependency shape described by specs (no missing
// deps, no cycles) and builds one completion Counter per node plus one
// Job per node with Dependencies wired to its predecessors' counters.
// The caller is expected to enqueue each Job via the Manager's
// counter-form intake, passing Wired.Counters[id] as the completion
// counter so it gets incremented at enqueue and decremented on return.
func Wire(specs []Spec) (*Wired, error) {
	nodes := make([]Node, 0, len(specs))
	for _, s := range specs {
		nodes = append(nodes, Node{ID: s.ID, DependsOn: s.DependsOn})
	}

	g, err := NewGraph(nodes)
	if err != nil {
		return nil, err
	}

	counters := make(map[string]*counter.Counter, len(specs))
	for _, s := range specs {
		counters[s.ID] = counter.New()
	}

	jobs := make(map[string]job.Job, len(specs))
	for _, s := range specs {
		j := job.New(s.Entry, s.Data)
		for _, dep := range g.GetDependencies(s.ID) {
			j = j.WithDependency(counters[dep], 0)
		}
		jobs[s.ID] = j
	}

	return &Wired{Graph: g, Counters: counters, Jobs: jobs}, nil
}
