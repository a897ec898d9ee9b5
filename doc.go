// Package wspdr provides a fork/join task-parallel runtime built on a
// work-stealing, receiver-initiated, private-deque scheduler (WSPDR).
//
// Unlike a shared work queue, every worker owns a private double-ended
// deque that only it ever reads or writes. Idle workers do not reach into a
// peer's deque directly; instead they post a single-slot steal request and
// wait for the peer to hand work over on its own terms, between its own
// task steps. This keeps the fast path — pop a task, run it, pop the next
// one — entirely lock-free.
//
// # Quick Start
//
//	pool := wspdr.NewPool(8)
//	pool.Start()
//	defer pool.Terminate()
//
//	tasks := wspdr.GenerateNTasks(50000, func(i int) {
//		// shard i of the work
//	})
//	pool.Execute(tasks)
//
// # Key Concepts
//
// Task: the handle returned for a unit of work, with a Wait() that blocks
// until the body has run. There is no separate promise/future type.
//
// Worker: a goroutine pinned for the pool's lifetime, executing tasks from
// its own private deque and, when idle, stealing from a peer.
//
// Fork/join: a task body that holds a reference to the Worker currently
// running it (a WorkerTask) can Spawn children onto that worker's own
// deque and WaitFor them — this is the composition primitive; there is no
// separate continuation or callback mechanism.
//
// Anchored tasks: a child spawned with anchored=true is pinned to its
// creator and never donated to a peer, even under steal pressure.
//
// # Thread Safety
//
// A worker's private deque has exactly one writer, the worker's own
// goroutine. Steal requests, donation notifications and termination are
// signalled through sync/atomic flags. The inbox slice that carries a
// donation or a seeded batch into a worker is guarded by a per-worker
// mutex, taken only when a batch is deposited or drained.
//
// # Example
//
//	import (
//		"sync/atomic"
//
//		"github.com/gowspdr/wspdr"
//	)
//
//	func main() {
//		pool := wspdr.NewPool(4)
//		pool.Start()
//		defer pool.Terminate()
//
//		var total atomic.Int64
//		tasks := wspdr.GenerateNTasks(1000, func(i int) {
//			total.Add(int64(i))
//		})
//		pool.Execute(tasks)
//
//		println(total.Load())
//	}
package wspdr
