package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/fibersched/fibersched/internal/config"
	"github.com/fibersched/fibersched/internal/counter"
	"github.com/fibersched/fibersched/internal/job"
	"github.com/fibersched/fibersched/internal/manager"
)

func newBenchCmd() *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the saturation throughput and main-thread wait scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			threads, _ := cmd.Flags().GetInt("threads")
			if err := runSaturation(threads, jobs); err != nil {
				return err
			}
			return runMainThreadWait(threads)
		},
	}
	cmd.Flags().IntVar(&jobs, "jobs", 64, "number of independent CPU-burn jobs")
	return cmd
}

// runSaturation: N independent 100ms jobs on a K-thread manager should
// finish in roughly (N/K)*110ms wall-clock.
func runSaturation(threads, n int) error {
	section("Parallel independent work saturates all cores")

	m := manager.New(config.Default())
	if err := m.Initialize(threads); err != nil {
		return err
	}
	defer m.Shutdown()

	k := m.ThreadCount()

	c := counter.New()
	started := time.Now()
	for i := 0; i < n; i++ {
		j := job.New(func(job.Handle, any) {
			burnCPU(100 * time.Millisecond)
		}, nil)
		m.EnqueueWithCounter(j, c)
	}
	c.Wait(0)
	elapsed := time.Since(started)

	budget := time.Duration(float64(n)/float64(k)*110) * time.Millisecond
	summary(elapsed <= budget, fmt.Sprintf("%s jobs across %d threads finished in %s (budget %s)",
		humanize.Comma(int64(n)), k, elapsed, budget))
	return nil
}

// runMainThreadWait: a 500ms job's counter should fail wait_for(0, 100ms)
// but succeed wait(0) within 600ms.
func runMainThreadWait(threads int) error {
	section("Counter wait from main thread")

	m := manager.New(config.Default())
	if err := m.Initialize(threads); err != nil {
		return err
	}
	defer m.Shutdown()

	j := job.New(func(job.Handle, any) {
		time.Sleep(500 * time.Millisecond)
	}, nil)
	c := m.EnqueueWithCounter(j, nil)

	gotFalse := !c.WaitFor(0, 100*time.Millisecond)

	start := time.Now()
	c.Wait(0)
	elapsed := time.Since(start)

	summary(gotFalse && elapsed < 600*time.Millisecond,
		fmt.Sprintf("wait_for(100ms) timed out as expected, wait() returned after %s", elapsed))
	return nil
}

// burnCPU spins for roughly d rather than sleeping, which would just
// yield the OS thread and understate contention.
func burnCPU(d time.Duration) {
	deadline := time.Now().Add(d)
	x := 0
	for time.Now().Before(deadline) {
		x++
	}
	_ = x
}
