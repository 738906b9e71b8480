// Package signaltest records signal emissions for assertions in tests.
package signaltest

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/louisbranch/backer.space/internal/signal"
)

// Recorder keeps every value it is handed, in order.
type Recorder[T any] struct {
	mu     sync.Mutex
	values []T
}

// Observe returns a Recorder subscribed to s.
func Observe[T any](s *signal.Signal[T]) *Recorder[T] {
	r := &Recorder[T]{}
	s.Observe(r.Record)
	return r
}

// Record appends value.
func (r *Recorder[T]) Record(value T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values = append(r.values, value)
}

// Values returns a copy of every recorded value.
func (r *Recorder[T]) Values() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, len(r.values))
	copy(out, r.values)
	return out
}

// Count reports how many values were recorded.
func (r *Recorder[T]) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.values)
}

// LastValue returns the most recent value.
func (r *Recorder[T]) LastValue() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		var zero T
		return zero, false
	}
	return r.values[len(r.values)-1], true
}

// AssertValues fails t unless the recorded values equal want, in order.
// Types with an Equal method are compared with it unless opts supply a
// comparer for them.
func (r *Recorder[T]) AssertValues(t testing.TB, want []T, msg string, opts ...cmp.Option) {
	t.Helper()
	opts = append([]cmp.Option{cmpopts.EquateEmpty()}, opts...)
	if diff := cmp.Diff(want, r.Values(), opts...); diff != "" {
		t.Fatalf("%s: recorded values mismatch (-want +got):\n%s", msg, diff)
	}
}

// AssertValueCount fails t unless exactly want values were recorded.
func (r *Recorder[T]) AssertValueCount(t testing.TB, want int, msg string) {
	t.Helper()
	if got := r.Count(); got != want {
		t.Fatalf("%s: value count = %d, want %d", msg, got, want)
	}
}

// AssertDidNotEmitValue fails t if anything was recorded.
func (r *Recorder[T]) AssertDidNotEmitValue(t testing.TB, msg string) {
	t.Helper()
	if got := r.Count(); got != 0 {
		t.Fatalf("%s: value count = %d, want 0", msg, got)
	}
}
