package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/gowspdr/wspdr/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type poolStub struct {
	stats core.PoolStats
}

func (s poolStub) Status() core.PoolStats { return s.stats }

func TestSnapshotPoller_CollectsPoolAndWorkerStats(t *testing.T) {
	// Given a poller with one pool registered, carrying two worker snapshots
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddPool("pool-a", poolStub{stats: core.PoolStats{
		Workers: 2,
		Running: true,
		PerWorker: []core.WorkerStats{
			{ID: 0, DequeDepth: 4, StealableDepth: 3, Completed: 10, HasTasks: true, Alive: true},
			{ID: 1, DequeDepth: 0, StealableDepth: 0, Completed: 5, HasTasks: false, Alive: true},
		},
	}})

	// When the poller runs for a cycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	// Then pool- and worker-level gauges reflect the snapshot
	assertEventually(t, 2*time.Second, func() bool {
		workers := testutil.ToFloat64(poller.poolWorkers.WithLabelValues("pool-a"))
		depth := testutil.ToFloat64(poller.workerDequeDepth.WithLabelValues("pool-a", "0"))
		return workers == 2 && depth == 4
	})

	if got := testutil.ToFloat64(poller.poolRunning.WithLabelValues("pool-a")); got != 1 {
		t.Fatalf("pool running gauge = %v, want 1", got)
	}
	if got := testutil.ToFloat64(poller.workerCompleted.WithLabelValues("pool-a", "1")); got != 5 {
		t.Fatalf("worker 1 completed gauge = %v, want 5", got)
	}
	if got := testutil.ToFloat64(poller.workerHasTasks.WithLabelValues("pool-a", "1")); got != 0 {
		t.Fatalf("worker 1 hasTasks gauge = %v, want 0", got)
	}
}

func TestSnapshotPoller_StartStop_Idempotent(t *testing.T) {
	// Given a fresh poller
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller(reg, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// When Start/Stop are each called twice in a row
	// Then neither call panics or deadlocks
	poller.Start(ctx)
	poller.Start(ctx)
	poller.Stop()
	poller.Stop()
}

func assertEventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
