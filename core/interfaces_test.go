package core

import "testing"

// TestDefaultPoolConfig_HasNonNilHandlers verifies every handler field is
// populated, since Worker/Pool code never nil-checks before calling them
// Given: DefaultPoolConfig's return value
// When: each handler field is inspected
// Then: none are nil
func TestDefaultPoolConfig_HasNonNilHandlers(t *testing.T) {
	// Act
	cfg := DefaultPoolConfig()

	// Assert
	if cfg.Logger == nil {
		t.Fatal("Logger is nil")
	}
	if cfg.PanicHandler == nil {
		t.Fatal("PanicHandler is nil")
	}
	if cfg.Metrics == nil {
		t.Fatal("Metrics is nil")
	}
	if cfg.RejectedTaskHandler == nil {
		t.Fatal("RejectedTaskHandler is nil")
	}
	if cfg.HistoryCapacity <= 0 {
		t.Fatalf("HistoryCapacity = %d, want > 0", cfg.HistoryCapacity)
	}
}

// TestPoolOptions_OverrideDefaults verifies every With* option mutates its
// corresponding field and nothing else
// Given: a fresh DefaultPoolConfig
// When: all With* options are applied
// Then: every field matches what was passed in
func TestPoolOptions_OverrideDefaults(t *testing.T) {
	// Arrange
	cfg := DefaultPoolConfig()
	logger := &NoOpLogger{}
	panicHandler := &DefaultPanicHandler{}
	metrics := &NilMetrics{}
	rejected := &DefaultRejectedTaskHandler{}

	// Act
	for _, opt := range []PoolOption{
		WithLogger(logger),
		WithPanicHandler(panicHandler),
		WithMetrics(metrics),
		WithRejectedTaskHandler(rejected),
		WithStealPolicy(StealOne),
		WithHistoryCapacity(16),
	} {
		opt(cfg)
	}

	// Assert
	if cfg.Logger != logger {
		t.Fatal("WithLogger did not take effect")
	}
	if cfg.PanicHandler != panicHandler {
		t.Fatal("WithPanicHandler did not take effect")
	}
	if cfg.Metrics != metrics {
		t.Fatal("WithMetrics did not take effect")
	}
	if cfg.RejectedTaskHandler != rejected {
		t.Fatal("WithRejectedTaskHandler did not take effect")
	}
	if cfg.StealPolicy != StealOne {
		t.Fatal("WithStealPolicy did not take effect")
	}
	if cfg.HistoryCapacity != 16 {
		t.Fatalf("HistoryCapacity = %d, want 16", cfg.HistoryCapacity)
	}
}
