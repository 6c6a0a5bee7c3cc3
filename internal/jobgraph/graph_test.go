package jobgraph

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGraphDetectsCycle(t *testing.T) {
	_, err := NewGraph([]Node{
		{ID: "A", DependsOn: []string{"B"}},
		{ID: "B", DependsOn: []string{"A"}},
	})
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestNewGraphDetectsMissingDependency(t *testing.T) {
	_, err := NewGraph([]Node{
		{ID: "A", DependsOn: []string{"ghost"}},
	})
	require.Error(t, err)
	var missingErr *MissingDependencyError
	require.ErrorAs(t, err, &missingErr)
}

func TestTopologicalSortRespectsEdges(t *testing.T) {
	g, err := NewGraph([]Node{
		{ID: "A"},
		{ID: "B", DependsOn: []string{"A"}},
		{ID: "C", DependsOn: []string{"B"}},
	})
	require.NoError(t, err)

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	require.Equal(t, []string{"A", "B", "C"}, order)
}

func TestGetLevelsGroupsByDepth(t *testing.T) {
	g, err := NewGraph([]Node{
		{ID: "A"},
		{ID: "B"},
		{ID: "C", DependsOn: []string{"A", "B"}},
	})
	require.NoError(t, err)

	levels := g.GetLevels()
	require.Len(t, levels, 2)
	require.ElementsMatch(t, []string{"A", "B"}, levels[0])
	require.Equal(t, []string{"C"}, levels[1])
}
