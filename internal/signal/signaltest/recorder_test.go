package signaltest

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/backer.space/internal/signal"
)

func TestRecorderKeepsEveryValueInOrder(t *testing.T) {
	t.Parallel()

	s, emit := signal.Pipe[string]()
	r := Observe(s)

	emit("a")
	emit("a")
	emit("b")

	r.AssertValues(t, []string{"a", "a", "b"}, "duplicates are kept")
	r.AssertValueCount(t, 3, "three emissions")
	if last, ok := r.LastValue(); !ok || last != "b" {
		t.Fatalf("LastValue() = %q, %v, want %q, true", last, ok, "b")
	}
}

func TestRecorderEmpty(t *testing.T) {
	t.Parallel()

	s, _ := signal.Pipe[struct{}]()
	r := Observe(s)

	r.AssertDidNotEmitValue(t, "nothing emitted")
	r.AssertValues(t, []struct{}{}, "empty equals nil")
	if _, ok := r.LastValue(); ok {
		t.Fatal("LastValue() ok = true, want false")
	}
}

func TestRecordIsTheOnlyCapabilityNeeded(t *testing.T) {
	t.Parallel()

	r := &Recorder[int]{}
	for i := range 3 {
		r.Record(i)
	}
	r.AssertValues(t, []int{0, 1, 2}, "direct record")
}

// byID is equal whenever IDs match, like api.Project.
type byID struct {
	ID   int
	Name string
}

func (b byID) Equal(other byID) bool { return b.ID == other.ID }

// failureTB records Fatalf instead of stopping the test.
type failureTB struct {
	testing.TB
	failures []string
}

func (f *failureTB) Helper() {}

func (f *failureTB) Fatalf(format string, args ...any) {
	f.failures = append(f.failures, fmt.Sprintf(format, args...))
}

func TestAssertValuesOptionsOverrideEqualMethod(t *testing.T) {
	t.Parallel()

	s, emit := signal.Pipe[byID]()
	r := Observe(s)
	emit(byID{ID: 1, Name: "emitted"})

	want := []byID{{ID: 1, Name: "expected"}}

	loose := &failureTB{TB: t}
	r.AssertValues(loose, want, "equal by id")
	if len(loose.failures) != 0 {
		t.Fatalf("Equal method comparison failed: %v", loose.failures)
	}

	exact := &failureTB{TB: t}
	r.AssertValues(exact, want, "equal by value", cmp.Comparer(func(a, b byID) bool { return reflect.DeepEqual(a, b) }))
	if len(exact.failures) != 1 {
		t.Fatalf("failures = %d, want 1 for differing names", len(exact.failures))
	}
}
