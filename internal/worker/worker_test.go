package worker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAssignsIDAndAllocatesQueueAndDriver(t *testing.T) {
	w := New(3, 16)

	require.Equal(t, 3, w.ID)
	require.NotNil(t, w.Queue)
	require.NotNil(t, w.Driver)
	require.Equal(t, 0, w.Queue.SizeApprox())
	require.Equal(t, w.Driver, w.State.Driver)
	require.Equal(t, 3, w.State.ID)
}
