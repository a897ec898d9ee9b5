package prometheus

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	// Given an exporter registered against a fresh registry
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("wspdr", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	// When each Record method is exercised once
	exporter.RecordStealAttempt(3, "success")
	exporter.RecordTaskExecuted(3, false, 250*time.Millisecond)
	exporter.RecordDequeDepth(3, 7)
	exporter.RecordContractViolation("send_to_nonempty")

	// Then each collector reflects the recorded value
	stealTotal := testutil.ToFloat64(exporter.stealAttemptsTotal.WithLabelValues("3", "success"))
	if stealTotal != 1 {
		t.Fatalf("steal attempts total = %v, want 1", stealTotal)
	}

	tasksTotal := testutil.ToFloat64(exporter.tasksExecutedTotal.WithLabelValues("3", "false"))
	if tasksTotal != 1 {
		t.Fatalf("tasks executed total = %v, want 1", tasksTotal)
	}

	depth := testutil.ToFloat64(exporter.dequeDepth.WithLabelValues("3"))
	if depth != 7 {
		t.Fatalf("deque depth = %v, want 7", depth)
	}

	violations := testutil.ToFloat64(exporter.contractViolationTot.WithLabelValues("send_to_nonempty"))
	if violations != 1 {
		t.Fatalf("contract violation total = %v, want 1", violations)
	}

	histCount, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues("3"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if histCount != 1 {
		t.Fatalf("duration sample count = %d, want 1", histCount)
	}
}

func TestMetricsExporter_PoolLevelWorkerLabel(t *testing.T) {
	// Given an exporter
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("wspdr", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	// When a negative workerID is recorded, as Pool-level callers do, and the
	// violation kind is left blank
	exporter.RecordContractViolation("")
	exporter.RecordDequeDepth(-1, 0)

	// Then the worker label falls back to "pool" and the kind label to "unknown"
	depth := testutil.ToFloat64(exporter.dequeDepth.WithLabelValues("pool"))
	if depth != 0 {
		t.Fatalf("pool deque depth = %v, want 0", depth)
	}
	unknown := testutil.ToFloat64(exporter.contractViolationTot.WithLabelValues("unknown"))
	if unknown != 1 {
		t.Fatalf("unknown contract violation total = %v, want 1", unknown)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	// Given two exporters sharing one registry and namespace
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("wspdr", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("wspdr", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	// When both record against the same series
	first.RecordContractViolation("race_lost")
	second.RecordContractViolation("race_lost")

	// Then they share the same underlying collector
	got := testutil.ToFloat64(first.contractViolationTot.WithLabelValues("race_lost"))
	if got != 2 {
		t.Fatalf("shared contract violation counter = %v, want 2", got)
	}
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
