package prometheus

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gowspdr/wspdr/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PoolSnapshotProvider provides current pool stats snapshots, including
// every worker's per-worker snapshot.
type PoolSnapshotProvider interface {
	Status() core.PoolStats
}

// SnapshotPoller periodically exports Pool.Status() snapshots into
// Prometheus gauges. Unlike MetricsExporter, which records events as they
// happen on the worker hot path, this is a cold-path poll loop — useful for
// gauges that are cheap to recompute from scratch but awkward to keep
// continuously up to date from inside the scheduler.
type SnapshotPoller struct {
	interval time.Duration

	poolsMu sync.RWMutex
	pools   map[string]PoolSnapshotProvider

	poolWorkers *prom.GaugeVec
	poolRunning *prom.GaugeVec

	workerDequeDepth     *prom.GaugeVec
	workerStealableDepth *prom.GaugeVec
	workerCompleted      *prom.GaugeVec
	workerHasTasks       *prom.GaugeVec
	workerAlive          *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	poolWorkers := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wspdr",
		Name:      "pool_workers",
		Help:      "Worker count per pool.",
	}, []string{"pool"})
	poolRunning := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wspdr",
		Name:      "pool_running",
		Help:      "Pool running state (1=running, 0=stopped).",
	}, []string{"pool"})
	workerDequeDepth := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wspdr",
		Name:      "worker_deque_depth",
		Help:      "Private deque depth snapshot per worker.",
	}, []string{"pool", "worker"})
	workerStealableDepth := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wspdr",
		Name:      "worker_stealable_depth",
		Help:      "Non-anchored (stealable) deque depth snapshot per worker.",
	}, []string{"pool", "worker"})
	workerCompleted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wspdr",
		Name:      "worker_completed_total",
		Help:      "Completed task count snapshot per worker.",
	}, []string{"pool", "worker"})
	workerHasTasks := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wspdr",
		Name:      "worker_has_tasks",
		Help:      "Worker hasTasks advertisement snapshot (1=has tasks, 0=empty).",
	}, []string{"pool", "worker"})
	workerAlive := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: "wspdr",
		Name:      "worker_alive",
		Help:      "Worker alive state snapshot (1=running, 0=not running).",
	}, []string{"pool", "worker"})

	var err error
	if poolWorkers, err = registerCollector(reg, poolWorkers); err != nil {
		return nil, err
	}
	if poolRunning, err = registerCollector(reg, poolRunning); err != nil {
		return nil, err
	}
	if workerDequeDepth, err = registerCollector(reg, workerDequeDepth); err != nil {
		return nil, err
	}
	if workerStealableDepth, err = registerCollector(reg, workerStealableDepth); err != nil {
		return nil, err
	}
	if workerCompleted, err = registerCollector(reg, workerCompleted); err != nil {
		return nil, err
	}
	if workerHasTasks, err = registerCollector(reg, workerHasTasks); err != nil {
		return nil, err
	}
	if workerAlive, err = registerCollector(reg, workerAlive); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:             interval,
		pools:                make(map[string]PoolSnapshotProvider),
		poolWorkers:          poolWorkers,
		poolRunning:          poolRunning,
		workerDequeDepth:     workerDequeDepth,
		workerStealableDepth: workerStealableDepth,
		workerCompleted:      workerCompleted,
		workerHasTasks:       workerHasTasks,
		workerAlive:          workerAlive,
	}, nil
}

// AddPool adds or replaces a pool snapshot provider by name.
func (p *SnapshotPoller) AddPool(name string, provider PoolSnapshotProvider) {
	if p == nil || provider == nil {
		return
	}
	name = normalizeLabel(name, "pool")
	p.poolsMu.Lock()
	p.pools[name] = provider
	p.poolsMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.poolsMu.RLock()
	defer p.poolsMu.RUnlock()

	for name, provider := range p.pools {
		stats := provider.Status()
		p.poolWorkers.WithLabelValues(name).Set(float64(stats.Workers))
		if stats.Running {
			p.poolRunning.WithLabelValues(name).Set(1)
		} else {
			p.poolRunning.WithLabelValues(name).Set(0)
		}

		for _, ws := range stats.PerWorker {
			worker := strconv.Itoa(ws.ID)
			p.workerDequeDepth.WithLabelValues(name, worker).Set(float64(ws.DequeDepth))
			p.workerStealableDepth.WithLabelValues(name, worker).Set(float64(ws.StealableDepth))
			p.workerCompleted.WithLabelValues(name, worker).Set(float64(ws.Completed))
			if ws.HasTasks {
				p.workerHasTasks.WithLabelValues(name, worker).Set(1)
			} else {
				p.workerHasTasks.WithLabelValues(name, worker).Set(0)
			}
			if ws.Alive {
				p.workerAlive.WithLabelValues(name, worker).Set(1)
			} else {
				p.workerAlive.WithLabelValues(name, worker).Set(0)
			}
		}
	}
}
