package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fibersched/fibersched/internal/config"
	"github.com/fibersched/fibersched/internal/job"
	"github.com/fibersched/fibersched/internal/jobgraph"
	"github.com/fibersched/fibersched/internal/manager"
)

// dagWork is each node's simulated work duration: every entry sleeps its
// assigned weight before completing.
var dagWork = map[string]time.Duration{
	"A": 10 * time.Millisecond, "B": 10 * time.Millisecond, "C": 10 * time.Millisecond,
	"D": 15 * time.Millisecond, "E": 15 * time.Millisecond, "F": 15 * time.Millisecond,
	"G": 20 * time.Millisecond, "H": 20 * time.Millisecond, "I": 20 * time.Millisecond,
	"J": 10 * time.Millisecond, "K": 10 * time.Millisecond, "L": 10 * time.Millisecond,
	"M": 5 * time.Millisecond,
}

func newDAGCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dag",
		Short: "Run the 13-job DAG scenario (spec scenario 1)",
		RunE: func(cmd *cobra.Command, args []string) error {
			threads, _ := cmd.Flags().GetInt("threads")
			return runDAGScenario(threads)
		},
	}
}

type dagTiming struct {
	mu    sync.Mutex
	start map[string]time.Time
	end   map[string]time.Time
}

func newDAGTiming() *dagTiming {
	return &dagTiming{start: map[string]time.Time{}, end: map[string]time.Time{}}
}

func (t *dagTiming) record(id string, start, end time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start[id] = start
	t.end[id] = end
}

func (t *dagTiming) at(m map[string]time.Time, id string) time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return m[id]
}

func runDAGScenario(threads int) error {
	section("DAG of 13 jobs")

	m := manager.New(config.Default())
	if err := m.Initialize(threads); err != nil {
		return err
	}
	defer m.Shutdown()

	timing := newDAGTiming()

	specs := []jobgraph.Spec{
		{ID: "A"}, {ID: "B"}, {ID: "C"},
		{ID: "D", DependsOn: []string{"A"}},
		{ID: "E", DependsOn: []string{"A"}},
		{ID: "F", DependsOn: []string{"B"}},
		{ID: "G", DependsOn: []string{"D"}},
		{ID: "H", DependsOn: []string{"D"}},
		{ID: "I", DependsOn: []string{"D", "E"}},
		{ID: "K", DependsOn: []string{"E", "F"}},
		{ID: "J", DependsOn: []string{"G", "H", "I"}},
		{ID: "L", DependsOn: []string{"K", "C"}},
		{ID: "M", DependsOn: []string{"J", "L"}},
	}
	for i, s := range specs {
		id := s.ID
		specs[i].Entry = func(job.Handle, any) {
			start := time.Now()
			time.Sleep(dagWork[id])
			timing.record(id, start, time.Now())
		}
	}

	wired, err := jobgraph.Wire(specs)
	if err != nil {
		return fmt.Errorf("dag: %w", err)
	}

	order, err := wired.Graph.TopologicalSort()
	if err != nil {
		return fmt.Errorf("dag: %w", err)
	}
	for _, id := range order {
		m.EnqueueWithCounter(wired.Jobs[id], wired.Counters[id])
	}

	wired.Counters["M"].Wait(0)

	ok := !timing.at(timing.start, "J").Before(maxOf(timing.at(timing.end, "G"), timing.at(timing.end, "H"), timing.at(timing.end, "I"))) &&
		!timing.at(timing.start, "L").Before(maxOf(timing.at(timing.end, "K"), timing.at(timing.end, "C"))) &&
		!timing.at(timing.start, "M").Before(maxOf(timing.at(timing.end, "J"), timing.at(timing.end, "L")))

	summary(ok, fmt.Sprintf("dependency ordering respected across %s jobs", humanize.Comma(int64(len(specs)))))
	return nil
}

func maxOf(ts ...time.Time) time.Time {
	max := ts[0]
	for _, t := range ts[1:] {
		if t.After(max) {
			max = t
		}
	}
	return max
}
