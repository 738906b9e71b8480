// Package scheduler decides when deferred work runs.
//
// View-models never start goroutines or sleep themselves; they hand deferred
// work to a Scheduler. Production code uses Background, unit tests use
// Virtual and step it by hand, and simple callers use Immediate.
package scheduler

import (
	"sort"
	"sync"
	"time"
)

// Scheduler runs task once, no earlier than delay from now.
type Scheduler interface {
	Schedule(delay time.Duration, task func())
}

// Immediate runs every task inline, ignoring the delay.
type Immediate struct{}

// Schedule runs task on the calling goroutine.
func (Immediate) Schedule(_ time.Duration, task func()) {
	if task != nil {
		task()
	}
}

// Background runs tasks on a single worker goroutine once their delay has
// elapsed, in due-time then submission order. Task bodies never overlap, so
// anything they emit is observed in the order the tasks were scheduled.
type Background struct {
	mu      sync.Mutex
	seq     uint64
	queue   []backgroundTask
	running bool
	wake    chan struct{}
	pending sync.WaitGroup
}

type backgroundTask struct {
	due  time.Time
	seq  uint64
	task func()
}

// NewBackground returns a ready Background scheduler.
func NewBackground() *Background {
	return &Background{wake: make(chan struct{}, 1)}
}

// Schedule queues task to run once delay has elapsed.
func (b *Background) Schedule(delay time.Duration, task func()) {
	if task == nil {
		return
	}
	if delay < 0 {
		delay = 0
	}
	b.pending.Add(1)

	b.mu.Lock()
	b.seq++
	b.queue = append(b.queue, backgroundTask{due: time.Now().Add(delay), seq: b.seq, task: task})
	start := !b.running
	b.running = true
	b.mu.Unlock()

	if start {
		go b.work()
		return
	}
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

// work drains the queue and exits once it is empty.
func (b *Background) work() {
	for {
		next, wait, ok := b.next()
		if !ok {
			return
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-timer.C:
			case <-b.wake:
				timer.Stop()
			}
			continue
		}
		next.task()
		b.pending.Done()
	}
}

// next pops the earliest task when it is due. Otherwise it reports how long
// until that task is due and leaves the queue untouched.
func (b *Background) next() (backgroundTask, time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		b.running = false
		return backgroundTask{}, 0, false
	}
	sort.SliceStable(b.queue, func(i, j int) bool {
		if !b.queue[i].due.Equal(b.queue[j].due) {
			return b.queue[i].due.Before(b.queue[j].due)
		}
		return b.queue[i].seq < b.queue[j].seq
	})
	head := b.queue[0]
	if wait := time.Until(head.due); wait > 0 {
		return backgroundTask{}, wait, true
	}
	b.queue = b.queue[1:]
	return head, 0, true
}

// Wait blocks until every scheduled task, including tasks scheduled by
// running tasks, has finished.
func (b *Background) Wait() {
	b.pending.Wait()
}

var (
	_ Scheduler = Immediate{}
	_ Scheduler = (*Background)(nil)
	_ Scheduler = (*Virtual)(nil)
)
