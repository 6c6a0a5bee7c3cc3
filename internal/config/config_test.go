package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesReferenceValues(t *testing.T) {
	cfg := Default()
	require.Equal(t, 64, cfg.FiberCount)
	require.Equal(t, 1<<20, cfg.FiberStackSizeHint)
	require.Equal(t, 0, cfg.ThreadCount)
	require.Equal(t, time.Millisecond, cfg.DependencyWaitTimeout)
	require.Equal(t, 64, cfg.QueueCapacityHint)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadOverlaysYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fiber_count: 16\nthread_count: 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 16, cfg.FiberCount)
	require.Equal(t, 4, cfg.ThreadCount)
	require.Equal(t, 1<<20, cfg.FiberStackSizeHint)
}

func TestResolvedThreadCountZeroMeansPerCore(t *testing.T) {
	cfg := Default()
	require.Greater(t, cfg.ResolvedThreadCount(), 0)

	cfg.ThreadCount = 7
	require.Equal(t, 7, cfg.ResolvedThreadCount())
}
