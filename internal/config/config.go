// Package config loads the Manager's tuning knobs: a small YAML struct
// with a Load(path) that falls back to documented defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds Manager construction parameters.
type Config struct {
	// FiberCount is the fixed fiber pool size.
	FiberCount int `yaml:"fiber_count"`

	// FiberStackSizeHint is advisory only — Go goroutine stacks grow
	// on demand — kept around for configuration parity with stack-based
	// fiber implementations.
	FiberStackSizeHint int `yaml:"fiber_stack_size_bytes"`

	// ThreadCount is the worker/OS-thread count. Zero means "one per
	// core".
	ThreadCount int `yaml:"thread_count"`

	// DependencyWaitTimeout is the bounded user-space wait budget spent
	// per dependency, per dispatch pass. Reference value: 1ms.
	DependencyWaitTimeout time.Duration `yaml:"dependency_wait_timeout"`

	// QueueCapacityHint preallocates each worker's job queue.
	QueueCapacityHint int `yaml:"queue_capacity_hint"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		FiberCount:            64,
		FiberStackSizeHint:    1 << 20,
		ThreadCount:           0,
		DependencyWaitTimeout: time.Millisecond,
		QueueCapacityHint:     64,
	}
}

// Load reads a YAML document at path and overlays it onto Default(). A
// missing file is not an error — it yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// ResolvedThreadCount applies the "zero means one per core" rule.
func (c Config) ResolvedThreadCount() int {
	if c.ThreadCount == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.ThreadCount
}
