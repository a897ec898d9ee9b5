package wspdr

import "github.com/gowspdr/wspdr/core"

// NewPool constructs a Pool of numWorkers quiescent workers. Call Start
// before Execute.
func NewPool(numWorkers int, opts ...PoolOption) *Pool {
	return core.NewPool(numWorkers, opts...)
}

// NewTask constructs a Task wrapping a plain, worker-agnostic body.
func NewTask(body RawTask) *Task {
	return core.NewTask(body)
}

// NewWorkerTask constructs a Task whose body receives the worker that ends
// up executing it, so it can fork further children via Worker.Spawn.
func NewWorkerTask(body WorkerTask) *Task {
	return core.NewWorkerTask(body)
}

// GenerateNTasks returns n RawTasks, each a closure binding fn(i) for i in
// [0, n). Used to build a shardable batch for Pool.Execute without
// hand-writing n closures.
func GenerateNTasks(n int, fn func(i int)) []RawTask {
	return core.GenerateNTasks(n, fn)
}

// Yield lets a long-running task body cooperate with the steal protocol by
// servicing any pending steal request on w mid-body.
func Yield(w *Worker) {
	core.Yield(w)
}

// DefaultPoolConfig returns a config with default handlers and policy,
// useful as a starting point before applying a handful of PoolOptions by
// hand instead of through With* functions.
func DefaultPoolConfig() *PoolConfig {
	return core.DefaultPoolConfig()
}

// WithLogger overrides the pool's Logger.
func WithLogger(logger Logger) PoolOption {
	return core.WithLogger(logger)
}

// WithPanicHandler overrides the pool's PanicHandler.
func WithPanicHandler(handler PanicHandler) PoolOption {
	return core.WithPanicHandler(handler)
}

// WithMetrics overrides the pool's Metrics sink.
func WithMetrics(metrics Metrics) PoolOption {
	return core.WithMetrics(metrics)
}

// WithRejectedTaskHandler overrides the pool's RejectedTaskHandler.
func WithRejectedTaskHandler(handler RejectedTaskHandler) PoolOption {
	return core.WithRejectedTaskHandler(handler)
}

// WithStealPolicy overrides the donation policy used by every worker.
func WithStealPolicy(policy StealPolicy) PoolOption {
	return core.WithStealPolicy(policy)
}

// WithHistoryCapacity overrides the per-worker execution history capacity.
func WithHistoryCapacity(capacity int) PoolOption {
	return core.WithHistoryCapacity(capacity)
}

// NewDefaultLogger creates a Logger that writes through the standard log
// package.
func NewDefaultLogger() Logger {
	return core.NewDefaultLogger()
}

// NewNoOpLogger creates a Logger that discards everything.
func NewNoOpLogger() Logger {
	return core.NewNoOpLogger()
}
