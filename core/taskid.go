package core

import (
	"strconv"
	"sync/atomic"
)

// TaskID identifies a Task for observability correlation (history, metrics,
// log fields). It carries no scheduling meaning.
type TaskID uint64

var taskIDCounter atomic.Uint64

// GenerateTaskID returns a fresh, process-unique, monotonically increasing
// TaskID. The zero value is reserved and never returned.
func GenerateTaskID() TaskID {
	return TaskID(taskIDCounter.Add(1))
}

// IsZero reports whether id is the reserved zero value (never produced by
// GenerateTaskID).
func (id TaskID) IsZero() bool {
	return id == 0
}

// String renders the id for logs and test failure messages.
func (id TaskID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
