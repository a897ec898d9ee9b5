package core

import (
	"fmt"
	"sync"
)

// Pool owns a fixed slice of workers, starts/stops their goroutines, and
// exposes a single blocking Execute entry point that submits a batch and
// returns once the batch — and everything transitively spawned from it — is
// complete.
type Pool struct {
	workers []*Worker
	wg      sync.WaitGroup

	execMu  sync.Mutex
	running bool

	cfg *PoolConfig
}

// NewPool constructs a Pool of numWorkers quiescent workers. Call Start
// before Execute.
func NewPool(numWorkers int, opts ...PoolOption) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}

	cfg := DefaultPoolConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	workers := make([]*Worker, numWorkers)
	for i := range workers {
		workers[i] = newWorker(cfg)
	}
	for i, w := range workers {
		w.Init(i, workers, cfg.StealPolicy)
	}

	return &Pool{
		workers: workers,
		cfg:     cfg,
	}
}

// NumWorkers returns the fixed worker count this pool was constructed with.
// Dynamic resizing after Start is out of scope.
func (p *Pool) NumWorkers() int {
	return len(p.workers)
}

// Start launches one goroutine per worker, each running Worker.Run. Safe to
// call once; calling it again on an already-running pool is a no-op.
func (p *Pool) Start() {
	p.execMu.Lock()
	defer p.execMu.Unlock()

	if p.running {
		return
	}
	p.running = true

	p.cfg.Logger.Info("pool starting", F("workers", len(p.workers)), F("policy", p.cfg.StealPolicy.String()))

	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Run()
		}(w)
	}
}

// Execute submits tasks as a single batch, seeded entirely onto worker 0,
// and blocks the calling goroutine until every submitted task — and
// everything transitively spawned from it via AddTask/Spawn — has
// completed. At most one Execute call may be active at a time; the pool
// must be quiescent when called (guaranteed by execMu, since the previous
// Execute only returns once quiescent).
func (p *Pool) Execute(tasks []RawTask) []*Task {
	handles := make([]*Task, len(tasks))
	for i, raw := range tasks {
		handles[i] = NewTask(raw)
	}
	return p.ExecuteTasks(handles)
}

// ExecuteTasks is Execute's generalization: it submits already-constructed
// Tasks — including WorkerTask-backed ones that need access to the Worker
// that ends up running them — as a single batch seeded onto worker 0, and
// blocks until every one of them, and everything transitively spawned from
// them, has completed.
func (p *Pool) ExecuteTasks(tasks []*Task) []*Task {
	p.execMu.Lock()
	defer p.execMu.Unlock()

	if len(tasks) == 0 {
		return nil
	}
	if !p.running {
		p.cfg.RejectedTaskHandler.HandleRejectedTask("pool_not_started")
		return nil
	}

	holders := make([]taskHolder, len(tasks))
	for i, t := range tasks {
		holders[i] = taskHolder{task: t, anchored: false}
	}

	p.workers[0].SendTask(holders...)

	for _, t := range tasks {
		t.Wait()
	}

	return tasks
}

// Terminate sets terminateNotify on every worker and joins their
// goroutines. Only safe to call after the last Execute call has returned
// (the pool must be quiescent); a Terminate that races an in-flight Execute
// is not reported by any debug assertion — it simply waits on execMu until
// that Execute returns.
func (p *Pool) Terminate() {
	p.execMu.Lock()
	defer p.execMu.Unlock()

	if !p.running {
		return
	}

	p.cfg.Logger.Info("pool terminating")
	for _, w := range p.workers {
		w.Terminate()
	}
	p.wg.Wait()
	p.running = false
}

// Status returns a point-in-time snapshot of the pool and every worker.
func (p *Pool) Status() PoolStats {
	stats := PoolStats{
		Workers:   len(p.workers),
		Running:   p.running,
		PerWorker: make([]WorkerStats, len(p.workers)),
	}
	for i, w := range p.workers {
		stats.PerWorker[i] = w.Status()
	}
	return stats
}

// Worker returns the worker at the given index, for tests and examples that
// need to seed anchored tasks directly onto a specific worker. Panics on an
// out-of-range index, mirroring the source's use of unchecked vector
// indexing for internal collaborators.
func (p *Pool) Worker(id int) *Worker {
	if id < 0 || id >= len(p.workers) {
		panic(fmt.Sprintf("worker index %d out of range [0, %d)", id, len(p.workers)))
	}
	return p.workers[id]
}
