package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling contract-violation panics
// =============================================================================

// PanicHandler is called when a contract violation is detected by a debug
// assertion (see Worker.violate). It is NOT invoked for task-body panics —
// those are deliberately left to propagate and crash the process (see
// Worker.runHolder).
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandleContractViolation is called when a debug assertion fails.
	//
	// Parameters:
	// - workerID: the worker where the violation was detected, or -1 if pool-level
	// - kind: a short machine-readable violation category (e.g. "send_to_nonempty")
	// - detail: a human-readable description
	HandleContractViolation(workerID int, kind string, detail string)
}

// DefaultPanicHandler logs the violation to stdout before the assertion
// panics.
type DefaultPanicHandler struct{}

// HandleContractViolation prints violation information to stdout.
func (h *DefaultPanicHandler) HandleContractViolation(workerID int, kind string, detail string) {
	if workerID >= 0 {
		fmt.Printf("[Worker %d] contract violation (%s): %s\n", workerID, kind, detail)
		return
	}
	fmt.Printf("[Pool] contract violation (%s): %s\n", kind, detail)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting scheduler execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD,
// etc.).
//
// All methods are optional; implementations should handle nil receivers
// gracefully. Methods should be non-blocking and fast to avoid impacting the
// worker's hot path.
type Metrics interface {
	// RecordStealAttempt records the outcome of one tryAcquireOnce attempt.
	//
	// Parameters:
	// - workerID: the thief's worker id
	// - outcome: "success", "empty", or "race_lost"
	RecordStealAttempt(workerID int, outcome string)

	// RecordTaskExecuted records a completed task body execution.
	//
	// Parameters:
	// - workerID: the worker that ran the body
	// - anchored: whether the task was anchored to its creator
	// - duration: how long the body took to execute
	RecordTaskExecuted(workerID int, anchored bool, duration time.Duration)

	// RecordDequeDepth records the current private deque depth for a worker.
	// Called by the worker after every mutation of its deque.
	RecordDequeDepth(workerID int, depth int)

	// RecordContractViolation records a debug-assertion failure.
	//
	// Parameters:
	// - kind: the violation category
	RecordContractViolation(kind string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no Metrics implementation is configured.
type NilMetrics struct{}

// RecordStealAttempt is a no-op.
func (m *NilMetrics) RecordStealAttempt(workerID int, outcome string) {}

// RecordTaskExecuted is a no-op.
func (m *NilMetrics) RecordTaskExecuted(workerID int, anchored bool, duration time.Duration) {}

// RecordDequeDepth is a no-op.
func (m *NilMetrics) RecordDequeDepth(workerID int, depth int) {}

// RecordContractViolation is a no-op.
func (m *NilMetrics) RecordContractViolation(kind string) {}

// =============================================================================
// RejectedTaskHandler: Interface for handling tasks rejected before Execute runs
// =============================================================================

// RejectedTaskHandler is called when Execute or ExecuteTasks receives a
// non-empty batch on a pool that is not running (Start was never called, or
// Terminate has already run). The batch is dropped and Execute returns nil.
// Concurrent Execute calls are not rejected; Pool's mutex serializes them.
//
// Implementations should be thread-safe as they may be called concurrently.
type RejectedTaskHandler interface {
	// HandleRejectedTask is called when a task batch is rejected.
	//
	// Parameters:
	// - reason: why the batch was rejected (e.g. "pool_not_started")
	HandleRejectedTask(reason string)
}

// DefaultRejectedTaskHandler provides a basic handler that logs rejected
// batches.
type DefaultRejectedTaskHandler struct{}

// HandleRejectedTask logs the rejected batch.
func (h *DefaultRejectedTaskHandler) HandleRejectedTask(reason string) {
	fmt.Printf("[Pool] task batch rejected: %s\n", reason)
}

// =============================================================================
// PoolConfig: Configuration for Pool / PoolOption functional options
// =============================================================================

// PoolConfig holds configuration options for a Pool. All handlers are
// optional; if not provided, default implementations are used.
type PoolConfig struct {
	// Logger receives structured diagnostic events. Defaults to NoOpLogger —
	// the hot path must not allocate/format by default.
	Logger Logger

	// PanicHandler is called when a debug assertion detects a contract
	// violation. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics is called to record scheduler execution metrics. Defaults to
	// NilMetrics.
	Metrics Metrics

	// RejectedTaskHandler is called when a task batch is rejected. Defaults
	// to DefaultRejectedTaskHandler.
	RejectedTaskHandler RejectedTaskHandler

	// StealPolicy selects STEAL_ONE or STEAL_HALF donation. Defaults to
	// DefaultStealPolicy (STEAL_HALF).
	StealPolicy StealPolicy

	// HistoryCapacity bounds the per-worker execution history ring buffer.
	// Defaults to defaultTaskHistoryCapacity.
	HistoryCapacity int
}

// DefaultPoolConfig returns a config with default handlers and policy.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		Logger:              &NoOpLogger{},
		PanicHandler:        &DefaultPanicHandler{},
		Metrics:             &NilMetrics{},
		RejectedTaskHandler: &DefaultRejectedTaskHandler{},
		StealPolicy:         DefaultStealPolicy,
		HistoryCapacity:     defaultTaskHistoryCapacity,
	}
}

// PoolOption mutates a PoolConfig built on top of DefaultPoolConfig.
type PoolOption func(*PoolConfig)

// WithLogger overrides the pool's Logger.
func WithLogger(logger Logger) PoolOption {
	return func(c *PoolConfig) { c.Logger = logger }
}

// WithPanicHandler overrides the pool's PanicHandler.
func WithPanicHandler(handler PanicHandler) PoolOption {
	return func(c *PoolConfig) { c.PanicHandler = handler }
}

// WithMetrics overrides the pool's Metrics sink.
func WithMetrics(metrics Metrics) PoolOption {
	return func(c *PoolConfig) { c.Metrics = metrics }
}

// WithRejectedTaskHandler overrides the pool's RejectedTaskHandler.
func WithRejectedTaskHandler(handler RejectedTaskHandler) PoolOption {
	return func(c *PoolConfig) { c.RejectedTaskHandler = handler }
}

// WithStealPolicy overrides the donation policy used by every worker.
func WithStealPolicy(policy StealPolicy) PoolOption {
	return func(c *PoolConfig) { c.StealPolicy = policy }
}

// WithHistoryCapacity overrides the per-worker execution history capacity.
func WithHistoryCapacity(capacity int) PoolOption {
	return func(c *PoolConfig) { c.HistoryCapacity = capacity }
}
