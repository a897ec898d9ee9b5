package wspdr

import "github.com/gowspdr/wspdr/core"

// Type aliases re-exporting the core package's public surface, so callers
// depend only on the root package for the common case and reach into
// wspdr/core directly only when they need the lower-level Worker API.
type (
	Pool   = core.Pool
	Task   = core.Task
	Worker = core.Worker

	RawTask    = core.RawTask
	WorkerTask = core.WorkerTask

	StealPolicy = core.StealPolicy

	PoolConfig          = core.PoolConfig
	PoolOption          = core.PoolOption
	Logger              = core.Logger
	Field               = core.Field
	Metrics             = core.Metrics
	PanicHandler        = core.PanicHandler
	RejectedTaskHandler = core.RejectedTaskHandler

	WorkerStats           = core.WorkerStats
	PoolStats             = core.PoolStats
	WorkerExecutionRecord = core.WorkerExecutionRecord
)

// Donation policy constants, re-exported from core.
const (
	StealOne  = core.StealOne
	StealHalf = core.StealHalf
)

// F re-exports core.F for building structured log fields.
func F(key string, value any) Field {
	return core.F(key, value)
}
