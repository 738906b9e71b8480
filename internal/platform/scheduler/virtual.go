package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Virtual is a manually stepped scheduler with its own clock. Nothing runs
// until the owner calls Advance or AdvanceBy.
type Virtual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	queue []virtualTask
}

type virtualTask struct {
	due  time.Duration
	seq  uint64
	task func()
}

// NewVirtual returns a Virtual scheduler at time zero.
func NewVirtual() *Virtual {
	return &Virtual{}
}

// Schedule queues task to run once the virtual clock reaches now+delay.
func (v *Virtual) Schedule(delay time.Duration, task func()) {
	if task == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.queue = append(v.queue, virtualTask{due: v.now + delay, seq: v.seq, task: task})
}

// Advance runs every queued task, including tasks queued while advancing, in
// due-time then submission order. The clock ends at the last due time run.
func (v *Virtual) Advance() {
	for {
		next, ok := v.popNext(-1)
		if !ok {
			return
		}
		next.task()
	}
}

// AdvanceBy moves the clock forward by d, running every task due on the way.
func (v *Virtual) AdvanceBy(d time.Duration) {
	if d < 0 {
		d = 0
	}
	v.mu.Lock()
	target := v.now + d
	v.mu.Unlock()

	for {
		next, ok := v.popNext(target)
		if !ok {
			break
		}
		next.task()
	}

	v.mu.Lock()
	if v.now < target {
		v.now = target
	}
	v.mu.Unlock()
}

// Pending reports how many tasks are queued.
func (v *Virtual) Pending() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.queue)
}

// Now reports the virtual time elapsed since creation.
func (v *Virtual) Now() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.now
}

// popNext removes the earliest task due at or before limit. A negative limit
// accepts any due time.
func (v *Virtual) popNext(limit time.Duration) (virtualTask, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.queue) == 0 {
		return virtualTask{}, false
	}
	sort.SliceStable(v.queue, func(i, j int) bool {
		if v.queue[i].due != v.queue[j].due {
			return v.queue[i].due < v.queue[j].due
		}
		return v.queue[i].seq < v.queue[j].seq
	})
	next := v.queue[0]
	if limit >= 0 && next.due > limit {
		return virtualTask{}, false
	}
	v.queue = v.queue[1:]
	if next.due > v.now {
		v.now = next.due
	}
	return next, true
}
