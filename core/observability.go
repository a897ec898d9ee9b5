package core

import "time"

// WorkerExecutionRecord captures one completed task body execution on a
// specific worker.
type WorkerExecutionRecord struct {
	TaskID     TaskID
	Name       string
	WorkerID   int
	Anchored   bool
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
}

// WorkerStats represents a point-in-time observability snapshot for a
// single worker. No ordering guarantees beyond what the individual atomic
// loads give — fields may be read at slightly different instants.
type WorkerStats struct {
	ID             int
	DequeDepth     int
	StealableDepth int
	Completed      uint64
	HasTasks       bool
	Alive          bool
	LastTaskName   string
	LastTaskAt     time.Time
}

// PoolStats represents a point-in-time observability snapshot for the pool.
type PoolStats struct {
	Workers   int
	Running   bool
	PerWorker []WorkerStats
}
