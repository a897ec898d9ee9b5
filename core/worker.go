package core

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// noRequest is the sentinel value of Worker.request meaning "no peer is
// currently asking this worker for work".
const noRequest int32 = -1

// debugAssertionsEnabled toggles panics on contract violations. It is a
// package-level var (not a const) so tests can flip it off to exercise
// violation paths without crashing the test binary.
var debugAssertionsEnabled = true

// acquireOutcome classifies the result of one tryAcquireOnce attempt, for
// metrics (wspdr_steal_attempts_total{outcome=...}).
type acquireOutcome string

const (
	acquireSuccess  acquireOutcome = "success"
	acquireEmpty    acquireOutcome = "empty"
	acquireRaceLost acquireOutcome = "race_lost"
)

// Worker owns a goroutine, a private deque of task holders, an inbox for
// received stolen tasks, and the atomics backing the receiver-initiated
// steal-request protocol. A Worker must be Init'd before Run is called, and
// Run must be called on exactly one goroutine for the Worker's lifetime —
// that goroutine is, by convention, "the worker": nothing else ever reads
// or writes its private deque.
type Worker struct {
	id     int
	peers  []*Worker
	policy StealPolicy

	dq *deque

	// receivedMu guards received. The inbox is written by exactly one donor
	// per handshake cycle under the steal protocol, but Pool.ExecuteTasks
	// seeds worker 0 the same way from the caller's goroutine, outside that
	// handshake — so at seed time two goroutines (the seeder and a peer
	// servicing an outstanding steal request with an empty donation) can
	// call SendTask on worker 0 concurrently with drainReceived. The mutex
	// is what makes that safe; the request/notify handshake alone only
	// orders work, it doesn't synchronize memory access to the slice.
	receivedMu     sync.Mutex
	received       []taskHolder
	receivedNotify atomic.Bool

	request         atomic.Int32
	hasTasks        atomic.Bool
	terminateNotify atomic.Bool
	alive           atomic.Bool

	completed      atomic.Uint64
	depth          atomic.Int32
	stealableDepth atomic.Int32

	rng *rand.Rand

	logger       Logger
	metrics      Metrics
	panicHandler PanicHandler
	history      executionHistory
}

// newWorker constructs a quiescent, un-Init'd Worker. Init must be called
// before Run.
func newWorker(cfg *PoolConfig) *Worker {
	w := &Worker{
		dq:           newDeque(),
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		panicHandler: cfg.PanicHandler,
		history:      newExecutionHistory(cfg.HistoryCapacity),
		policy:       cfg.StealPolicy,
	}
	w.request.Store(noRequest)
	return w
}

// Init performs one-time setup before Run. Not safe to call concurrently
// with Run.
func (w *Worker) Init(id int, peers []*Worker, policy StealPolicy) {
	w.id = id
	w.peers = peers
	w.policy = policy

	seed1 := uint64(id)*0x9E3779B97F4A7C15 + 1
	seed2 := uint64(time.Now().UnixNano()) ^ seed1 ^ uint64(id)<<32
	w.rng = rand.New(rand.NewPCG(seed1, seed2))
}

// ID returns the worker's index within its pool.
func (w *Worker) ID() int {
	return w.id
}

// Run blocks until termination; must be called on exactly one goroutine,
// which becomes "the worker". Returns only once terminateNotify has been
// observed true AND the private deque has been drained to completion.
func (w *Worker) Run() {
	w.alive.Store(true)
	w.logger.Debug("worker starting", F("worker", w.id))
	defer func() {
		w.alive.Store(false)
		w.logger.Debug("worker stopped", F("worker", w.id))
	}()

	idleSpins := 0
	for {
		if w.schedulerStep() {
			idleSpins = 0
			continue
		}

		if w.terminateNotify.Load() {
			return
		}

		idleSpins++
		idleBackoff(idleSpins)
	}
}

// schedulerStep is one unit of the owning goroutine's scheduling loop:
// service a pending steal request, drain any donation that arrived,
// execute one locally-owned task if there is one, otherwise make one steal
// attempt. Reports whether it made progress (ran a task or received one via
// a successful steal) so callers can reset their idle backoff.
//
// This is shared between Run (the top-level loop) and WaitFor (the helping
// loop a blocked parent runs while joining its children): without WaitFor
// reusing it, a worker blocked waiting on an anchored child — which by
// definition only this worker can ever run — would deadlock, since nothing
// else would ever pop that child off the deque.
func (w *Worker) schedulerStep() bool {
	w.communicate()
	w.drainReceived()

	if h, ok := w.dq.popFront(); ok {
		// Refresh hasTasks/depth BEFORE running the body, not after: the
		// body may run long enough that a caller blocked on a sibling
		// task's done flag observes completion and immediately re-enters
		// Execute, which asserts hasTasks == false on worker 0.
		w.refreshDequeState()
		w.runHolder(h)
		return true
	}

	return w.tryAcquireOnce() == acquireSuccess
}

// WaitFor blocks until t is done, helping make progress in the meantime by
// running this worker's own scheduler loop rather than pure busy-spinning.
// Call this from within a WorkerTask body to join a child spawned via
// Spawn — never call Task.Wait() (which does not help) from inside a task
// body, or an anchored child can deadlock its creator forever.
func (w *Worker) WaitFor(t *Task) {
	for !t.done.Load() {
		if !w.schedulerStep() {
			runtime.Gosched()
		}
	}
}

// idleBackoff yields increasingly generously the longer a worker has found
// nothing to do, to avoid burning CPU spinning on a drained system while
// still reacting quickly to freshly-seeded work.
func idleBackoff(spins int) {
	if spins < 64 {
		runtime.Gosched()
		return
	}
	delay := min(spins, 1000)
	time.Sleep(time.Duration(delay) * time.Microsecond)
}

// runHolder executes one task body to completion. Deliberately has no
// recover(): a panicking body is fatal to the pool — a task graph's parent
// is blocked in Wait() and would deadlock forever if a child's panic were
// silently swallowed here instead of propagated up the worker's goroutine.
func (w *Worker) runHolder(h taskHolder) {
	task := h.task
	name := resolveTaskName(task.callable())
	start := time.Now()

	defer func() {
		finished := time.Now()
		w.history.Add(WorkerExecutionRecord{
			TaskID:     task.id,
			Name:       name,
			WorkerID:   w.id,
			Anchored:   h.anchored,
			StartedAt:  start,
			FinishedAt: finished,
			Duration:   finished.Sub(start),
		})
		w.metrics.RecordTaskExecuted(w.id, h.anchored, finished.Sub(start))
	}()

	task.run(w)
	w.completed.Add(1)
	w.refreshDequeState()
}

// AddTask pushes a newly created task to the FRONT of the private deque
// (LIFO for self). May be called ONLY by the owning goroutine — from
// within a task body currently executing on this worker, typically via
// Spawn. anchored tasks are never donated to a peer.
func (w *Worker) AddTask(t *Task, anchored bool) {
	w.dq.pushFront(taskHolder{task: t, anchored: anchored})
	w.refreshDequeState()
}

// Spawn is the fork half of fork/join: it wraps body into a Task, adds it
// to the calling worker's own deque, and returns the handle to join on.
// Must be called from within a task body currently executing on w.
func (w *Worker) Spawn(body WorkerTask, anchored bool) *Task {
	t := NewWorkerTask(body)
	w.AddTask(t, anchored)
	return t
}

// SendTask deposits a (possibly empty) batch of holders into this worker's
// inbox and flips receivedNotify. May be called from any goroutine, but
// ONLY when this worker's deque is empty — enforced by a debug assertion on
// the hasTasks advertisement. Used by Pool to seed initial work on worker 0,
// and by a victim's communicate to hand a donation (or an empty donation)
// to a waiting thief. Pool seeding and a peer's donation can race each
// other onto the same worker, so the inbox append is mutex-guarded rather
// than relying on the handshake alone.
func (w *Worker) SendTask(hs ...taskHolder) {
	if debugAssertionsEnabled && w.hasTasks.Load() {
		w.violate("send_to_nonempty", fmt.Sprintf("SendTask called on worker %d while hasTasks=true", w.id))
	}
	if len(hs) > 0 {
		w.receivedMu.Lock()
		w.received = append(w.received, hs...)
		w.receivedMu.Unlock()
	}
	w.receivedNotify.Store(true)
}

// Terminate sets terminateNotify. Safe from any goroutine. The worker exits
// its Run loop once its deque next drains empty.
func (w *Worker) Terminate() {
	w.terminateNotify.Store(true)
}

// Status returns a diagnostic snapshot. No ordering guarantees beyond what
// the individual atomic loads give.
func (w *Worker) Status() WorkerStats {
	stats := WorkerStats{
		ID:             w.id,
		DequeDepth:     int(w.depth.Load()),
		StealableDepth: int(w.stealableDepth.Load()),
		Completed:      w.completed.Load(),
		HasTasks:       w.hasTasks.Load(),
		Alive:          w.alive.Load(),
	}
	if last, ok := w.history.Last(); ok {
		stats.LastTaskName = last.Name
		stats.LastTaskAt = last.FinishedAt
	}
	return stats
}

// refreshDequeState recomputes the owner-observable deque summaries after a
// mutation. Must be called only by the owning goroutine, same as the deque
// mutations themselves.
func (w *Worker) refreshDequeState() {
	depth := w.dq.len()
	stealable := w.dq.stealableCount()
	w.depth.Store(int32(depth))
	w.stealableDepth.Store(int32(stealable))
	w.hasTasks.Store(depth > 0)
	w.metrics.RecordDequeDepth(w.id, depth)
}

// drainReceived moves any deposited inbox holders into the private deque.
// Returns true if at least one holder was drained. Must be called only by
// the owning goroutine; the inbox itself is mutex-guarded because SendTask
// can be called concurrently by both a peer's donation and a Pool seed.
func (w *Worker) drainReceived() bool {
	if !w.receivedNotify.Load() {
		return false
	}

	w.receivedMu.Lock()
	hs := w.received
	w.received = nil
	w.receivedMu.Unlock()
	w.receivedNotify.Store(false)

	if len(hs) == 0 {
		return false
	}

	w.dq.pushBackBatch(hs)
	w.refreshDequeState()
	return true
}

// communicate is the victim side of the steal protocol. Called by the
// owning goroutine between popping-and-executing steps (and, via Yield,
// from inside a long task body that cooperates): it checks whether a peer
// is asking this worker for work, and if so, donates per policy, leaving
// the actual deque mutation entirely on the owning goroutine.
func (w *Worker) communicate() {
	requester := w.request.Load()
	if requester == noRequest {
		return
	}

	var donation []taskHolder
	if stealable := w.dq.stealableCount(); stealable > 0 {
		donation = w.distributeTask(stealable)
	}

	peer := w.peers[requester]
	peer.SendTask(donation...)
	w.refreshDequeState()
	w.request.Store(noRequest)
}

// distributeTask decides the donation batch per StealPolicy, given the
// current count of stealable (non-anchored) holders.
func (w *Worker) distributeTask(stealableCount int) []taskHolder {
	n := 1
	if w.policy == StealHalf {
		n = (stealableCount + 1) / 2 // ceil(k/2)
	}
	return w.dq.takeBack(n)
}

// tryAcquireOnce is the thief side of the steal protocol: one attempt to
// claim a peer's donation rights, wait for the handshake to resolve, and
// drain whatever arrives. While it waits, it keeps servicing steal requests
// posted against itself (with an empty donation, since its deque is empty),
// so two idle workers that target each other cannot wait on each other
// forever.
func (w *Worker) tryAcquireOnce() acquireOutcome {
	victim := w.selectVictim()
	if victim == nil {
		return acquireRaceLost
	}

	if !victim.trySendStealRequest(w.id) {
		w.metrics.RecordStealAttempt(w.id, string(acquireRaceLost))
		return acquireRaceLost
	}

	for !w.receivedNotify.Load() {
		if w.terminateNotify.Load() {
			w.metrics.RecordStealAttempt(w.id, string(acquireEmpty))
			return acquireEmpty
		}
		w.communicate()
		runtime.Gosched()
	}

	outcome := acquireEmpty
	if w.drainReceived() {
		outcome = acquireSuccess
	}
	w.metrics.RecordStealAttempt(w.id, string(outcome))
	return outcome
}

// trySendStealRequest is called on the VICTIM by a thief: CAS the victim's
// request slot from noRequest to requesterID. Receiver-initiated, so at
// most one outstanding request per victim at a time.
func (w *Worker) trySendStealRequest(requesterID int) bool {
	return w.request.CompareAndSwap(noRequest, int32(requesterID))
}

// selectVictim picks a peer != self, biased toward one advertising
// hasTasks == true (which may be stale in either direction — worst case is
// one wasted steal attempt that returns empty).
func (w *Worker) selectVictim() *Worker {
	n := len(w.peers)
	if n <= 1 {
		return nil
	}

	start := w.rng.IntN(n)
	for i := range n {
		idx := (start + i) % n
		peer := w.peers[idx]
		if peer.id == w.id {
			continue
		}
		if peer.hasTasks.Load() {
			return peer
		}
	}

	idx := start
	if w.peers[idx].id == w.id {
		idx = (idx + 1) % n
	}
	return w.peers[idx]
}

// violate records and reports a contract violation, then panics — debug
// assertions are fatal by design.
func (w *Worker) violate(kind, detail string) {
	w.metrics.RecordContractViolation(kind)
	w.panicHandler.HandleContractViolation(w.id, kind, detail)
	panic(detail)
}

// Yield lets a long-running task body cooperate with the steal protocol by
// servicing any pending steal request on the calling goroutine's worker
// mid-body. Bodies that never call it are simply opaque to stealing until
// they return, same as the source.
func Yield(w *Worker) {
	if w == nil {
		return
	}
	w.communicate()
}
