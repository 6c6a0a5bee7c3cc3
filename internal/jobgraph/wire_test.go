package jobgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fibersched/fibersched/internal/job"
)

func TestWireAttachesDependencyCounters(t *testing.T) {
	specs := []Spec{
		{ID: "A", Entry: func(job.Handle, any) {}},
		{ID: "B", DependsOn: []string{"A"}, Entry: func(job.Handle, any) {}},
	}

	wired, err := Wire(specs)
	require.NoError(t, err)
	require.Len(t, wired.Jobs["B"].Dependencies, 1)
	require.Same(t, wired.Counters["A"], wired.Jobs["B"].Dependencies[0].Counter)
	require.EqualValues(t, 0, wired.Jobs["B"].Dependencies[0].Threshold)
}

func TestWirePropagatesGraphValidationErrors(t *testing.T) {
	specs := []Spec{
		{ID: "A", DependsOn: []string{"B"}, Entry: func(job.Handle, any) {}},
		{ID: "B", DependsOn: []string{"A"}, Entry: func(job.Handle, any) {}},
	}

	_, err := Wire(specs)
	require.Error(t, err)
}
