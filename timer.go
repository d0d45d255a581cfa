package striate

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"k8s.io/klog/v2"
)

// Recorder receives the elapsed time of every operation, keyed by the
// operation name. It is injected with WithRecorder; implementations must
// be safe for concurrent use.
type Recorder interface {
	Record(op string, elapsed time.Duration)
}

type discardRecorder struct{}

func (discardRecorder) Record(string, time.Duration) {}

// Timer is a Recorder accumulating total time and call count per
// operation.
type Timer struct {
	mu     sync.Mutex
	totals map[string]time.Duration
	counts map[string]int
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer {
	return &Timer{
		totals: make(map[string]time.Duration),
		counts: make(map[string]int),
	}
}

// Record implements Recorder.
func (t *Timer) Record(op string, elapsed time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.totals[op] += elapsed
	t.counts[op]++
}

// Total returns the cumulative time spent in op.
func (t *Timer) Total(op string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.totals[op]
}

// Count returns how many times op was recorded.
func (t *Timer) Count(op string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[op]
}

// Ops returns the recorded operation names, sorted.
func (t *Timer) Ops() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ops := make([]string, 0, len(t.totals))
	for op := range t.totals {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Reset drops everything recorded so far.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.totals)
	clear(t.counts)
}

// Report writes one line per operation: name, calls, total and mean time.
func (t *Timer) Report(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OP\tCALLS\tTOTAL\tMEAN")
	for _, op := range t.Ops() {
		total, calls := t.Total(op), t.Count(op)
		fmt.Fprintf(tw, "%s\t%d\t%v\t%v\n", op, calls, total, total/time.Duration(max(calls, 1)))
	}
	return tw.Flush()
}

// LogReport writes Report through klog.
func (t *Timer) LogReport() {
	var sb strings.Builder
	if err := t.Report(&sb); err != nil {
		klog.Errorf("striate: timer report: %v", err)
		return
	}
	klog.Infof("striate: operation timings\n%s", sb.String())
}
