package prometheus

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gowspdr/wspdr/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	stealAttemptsTotal   *prom.CounterVec
	tasksExecutedTotal   *prom.CounterVec
	taskDurationSeconds  *prom.HistogramVec
	dequeDepth           *prom.GaugeVec
	contractViolationTot *prom.CounterVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for
// core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "wspdr"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	stealAttemptsTotal := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "steal_attempts_total",
		Help:      "Total number of tryAcquireOnce steal attempts, by outcome.",
	}, []string{"worker", "outcome"})
	tasksExecutedTotal := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_executed_total",
		Help:      "Total number of task bodies executed, by worker and anchoring.",
	}, []string{"worker", "anchored"})
	taskDurationSeconds := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task body execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"worker"})
	dequeDepth := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "deque_depth",
		Help:      "Current private deque depth, sampled on every mutation.",
	}, []string{"worker"})
	contractViolationTotal := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "contract_violation_total",
		Help:      "Total number of debug-assertion contract violations, by kind.",
	}, []string{"kind"})

	var err error
	if stealAttemptsTotal, err = registerCollector(reg, stealAttemptsTotal); err != nil {
		return nil, err
	}
	if tasksExecutedTotal, err = registerCollector(reg, tasksExecutedTotal); err != nil {
		return nil, err
	}
	if taskDurationSeconds, err = registerCollector(reg, taskDurationSeconds); err != nil {
		return nil, err
	}
	if dequeDepth, err = registerCollector(reg, dequeDepth); err != nil {
		return nil, err
	}
	if contractViolationTotal, err = registerCollector(reg, contractViolationTotal); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		stealAttemptsTotal:   stealAttemptsTotal,
		tasksExecutedTotal:   tasksExecutedTotal,
		taskDurationSeconds:  taskDurationSeconds,
		dequeDepth:           dequeDepth,
		contractViolationTot: contractViolationTotal,
	}, nil
}

// RecordStealAttempt records the outcome of one steal attempt.
func (m *MetricsExporter) RecordStealAttempt(workerID int, outcome string) {
	if m == nil {
		return
	}
	m.stealAttemptsTotal.WithLabelValues(workerLabel(workerID), normalizeLabel(outcome, "unknown")).Inc()
}

// RecordTaskExecuted records a completed task body execution.
func (m *MetricsExporter) RecordTaskExecuted(workerID int, anchored bool, duration time.Duration) {
	if m == nil {
		return
	}
	worker := workerLabel(workerID)
	m.tasksExecutedTotal.WithLabelValues(worker, anchoredLabel(anchored)).Inc()
	m.taskDurationSeconds.WithLabelValues(worker).Observe(duration.Seconds())
}

// RecordDequeDepth records the current private deque depth for a worker.
func (m *MetricsExporter) RecordDequeDepth(workerID int, depth int) {
	if m == nil {
		return
	}
	m.dequeDepth.WithLabelValues(workerLabel(workerID)).Set(float64(depth))
}

// RecordContractViolation records a debug-assertion failure.
func (m *MetricsExporter) RecordContractViolation(kind string) {
	if m == nil {
		return
	}
	m.contractViolationTot.WithLabelValues(normalizeLabel(kind, "unknown")).Inc()
}

func workerLabel(workerID int) string {
	if workerID < 0 {
		return "pool"
	}
	return strconv.Itoa(workerID)
}

func anchoredLabel(anchored bool) string {
	if anchored {
		return "true"
	}
	return "false"
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
