package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fibersched/fibersched/internal/config"
	"github.com/fibersched/fibersched/internal/fibermutex"
	"github.com/fibersched/fibersched/internal/job"
	"github.com/fibersched/fibersched/internal/manager"
)

func newMutexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mutex",
		Short: "Run the producer/consumer and fairness FiberMutex scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			threads, _ := cmd.Flags().GetInt("threads")
			if err := runProducerConsumer(threads); err != nil {
				return err
			}
			return runFairnessSmoke(threads)
		},
	}
}

// runProducerConsumer: a producer holds the mutex pushing 10,000 copies
// of 5; a consumer starts 250ms later, acquires the same mutex, and
// sums the buffer.
func runProducerConsumer(threads int) error {
	section("Producer/consumer with FiberMutex")

	m := manager.New(config.Default())
	if err := m.Initialize(threads); err != nil {
		return err
	}
	defer m.Shutdown()

	mtx := fibermutex.New()
	var buf []int
	done := make(chan struct{})

	producer := job.New(func(h job.Handle, _ any) {
		h.Lock(mtx)
		defer mtx.Unlock()
		for i := 0; i < 10000; i++ {
			buf = append(buf, 5)
			time.Sleep(300 * time.Microsecond)
		}
	}, nil)

	consumer := job.New(func(h job.Handle, _ any) {
		time.Sleep(250 * time.Millisecond)
		h.Lock(mtx)
		sum := 0
		for _, v := range buf {
			sum += v
		}
		size := len(buf)
		mtx.Unlock()
		close(done)
		summary(sum == 50000 && size == 10000, fmt.Sprintf("consumer saw sum=%d size=%d", sum, size))
	}, nil)

	m.Enqueue(producer)
	m.Enqueue(consumer)
	<-done
	return nil
}

// runFairnessSmoke: 64 jobs each acquire a shared mutex, append their ID
// to a log, sleep 1ms, release. No ID should repeat and no two appends
// should interleave mid-entry.
func runFairnessSmoke(threads int) error {
	section("FiberMutex fairness smoke test")

	m := manager.New(config.Default())
	if err := m.Initialize(threads); err != nil {
		return err
	}
	defer m.Shutdown()

	mtx := fibermutex.New()
	var log []int

	done := make(chan struct{})
	remaining := 64
	completions := make(chan int, 64)

	for id := 0; id < 64; id++ {
		id := id
		j := job.New(func(h job.Handle, _ any) {
			h.Lock(mtx)
			log = append(log, id)
			time.Sleep(time.Millisecond)
			mtx.Unlock()
			completions <- id
		}, nil)
		m.Enqueue(j)
	}

	go func() {
		for i := 0; i < remaining; i++ {
			<-completions
		}
		close(done)
	}()
	<-done

	seen := make(map[int]bool, 64)
	ok := len(log) == 64
	for _, id := range log {
		if seen[id] {
			ok = false
		}
		seen[id] = true
	}
	summary(ok, fmt.Sprintf("%d appends, no duplicate IDs, no interleaving", len(log)))
	return nil
}
