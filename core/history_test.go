package core

import "testing"

// TestExecutionHistory_RingBufferWraps verifies Add overwrites the oldest
// entry once capacity is exceeded
// Given: a history with capacity 2
// When: three records are added
// Then: Recent(2) returns the last two, newest first
func TestExecutionHistory_RingBufferWraps(t *testing.T) {
	// Arrange
	h := newExecutionHistory(2)

	// Act
	h.Add(WorkerExecutionRecord{Name: "a"})
	h.Add(WorkerExecutionRecord{Name: "b"})
	h.Add(WorkerExecutionRecord{Name: "c"})

	// Assert
	recent := h.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("Recent(2) returned %d records, want 2", len(recent))
	}
	if recent[0].Name != "c" || recent[1].Name != "b" {
		t.Fatalf("Recent(2) = %v, want [c, b]", recent)
	}
}

// TestExecutionHistory_Last_EmptyReportsFalse verifies Last on an empty
// history reports ok == false
// Given: a freshly constructed history
// When: Last is called
// Then: ok is false
func TestExecutionHistory_Last_EmptyReportsFalse(t *testing.T) {
	// Arrange
	h := newExecutionHistory(4)

	// Act
	_, ok := h.Last()

	// Assert
	if ok {
		t.Fatal("Last() on an empty history should report ok == false")
	}
}

// TestResolveTaskName_NilFallsBackToAnonymous verifies the diagnostic name
// resolver never panics on a nil callable
// Given: a nil body
// When: resolveTaskName is called
// Then: it returns "anonymous"
func TestResolveTaskName_NilFallsBackToAnonymous(t *testing.T) {
	// Act and Assert
	if got := resolveTaskName(nil); got != "anonymous" {
		t.Fatalf("resolveTaskName(nil) = %q, want %q", got, "anonymous")
	}
}

// TestResolveTaskName_NamedFunc verifies a named package-level function
// resolves to a non-empty, non-"anonymous" name
// Given: a RawTask backed by this test's own helper function
// When: resolveTaskName is called
// Then: the result is neither empty nor "anonymous"
func TestResolveTaskName_NamedFunc(t *testing.T) {
	// Arrange
	var body RawTask = resolveTaskNameTestHelper

	// Act
	got := resolveTaskName(body)

	// Assert
	if got == "" || got == "anonymous" {
		t.Fatalf("resolveTaskName(named func) = %q, want a resolved name", got)
	}
}

func resolveTaskNameTestHelper() {}
