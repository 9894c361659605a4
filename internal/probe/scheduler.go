package probe

import (
	"context"
	"sync"
	"time"
)

// DefaultCeiling caps batch concurrency regardless of the requested cap,
// so a large group cannot overwhelm the daemon.
const DefaultCeiling = 16

// DefaultResultBuffer sizes the outcome channel. Workers block briefly
// if the loop falls behind; nothing is ever dropped.
const DefaultResultBuffer = 256

// Prober measures one node's latency. Implemented by api.Client via a
// thin adapter; tests substitute instrumented fakes.
type Prober interface {
	Probe(ctx context.Context, node string, timeout time.Duration) (delayMs int, err error)
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, node string, timeout time.Duration) (int, error)

// Probe implements Prober.
func (f ProberFunc) Probe(ctx context.Context, node string, timeout time.Duration) (int, error) {
	return f(ctx, node, timeout)
}

// Scheduler launches latency-probe batches. Starting a batch allocates a
// fresh epoch for the group and returns immediately; the workers report
// through Results. A new batch logically supersedes the previous one for
// the same group — in-flight probes of the old epoch run to completion
// and are discarded by the aggregator's staleness check.
type Scheduler struct {
	prober  Prober
	ceiling int
	results chan Outcome

	mu     sync.Mutex
	epochs map[string]uint64
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithCeiling overrides the hard concurrency ceiling.
func WithCeiling(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.ceiling = n
		}
	}
}

// WithResultBuffer overrides the outcome channel capacity.
func WithResultBuffer(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.results = make(chan Outcome, n)
		}
	}
}

// NewScheduler creates a scheduler reporting into an internal channel,
// read via Results.
func NewScheduler(p Prober, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		prober:  p,
		ceiling: DefaultCeiling,
		results: make(chan Outcome, DefaultResultBuffer),
		epochs:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Results is the single channel every probe outcome arrives on,
// in completion order, not request order.
func (s *Scheduler) Results() <-chan Outcome { return s.results }

// StartBatch allocates the next epoch for the group and launches one
// probe task per node, at most cap in flight at once. cap <= 0 means
// one slot per node; either way the ceiling applies. The call never
// blocks on network work.
func (s *Scheduler) StartBatch(ctx context.Context, group string, nodes []string, cap int, timeout time.Duration) Batch {
	s.mu.Lock()
	s.epochs[group]++
	epoch := s.epochs[group]
	s.mu.Unlock()

	batch := Batch{
		Group:     group,
		Epoch:     epoch,
		Nodes:     append([]string(nil), nodes...),
		StartedAt: time.Now(),
	}

	if cap <= 0 || cap > len(nodes) {
		cap = len(nodes)
	}
	if cap > s.ceiling {
		cap = s.ceiling
	}
	if cap == 0 {
		return batch
	}

	sem := make(chan struct{}, cap)
	for _, node := range nodes {
		node := node
		go func() {
			sem <- struct{}{}
			defer func() { <-sem }()
			s.results <- s.probeOne(ctx, group, epoch, node, timeout)
		}()
	}
	return batch
}

// probeOne runs a single probe and maps its result onto a Measurement.
// A failing node never affects its siblings.
func (s *Scheduler) probeOne(ctx context.Context, group string, epoch uint64, node string, timeout time.Duration) Outcome {
	m := Measurement{Epoch: epoch}
	delay, err := s.prober.Probe(ctx, node, timeout)
	m.MeasuredAt = time.Now()
	switch {
	case err == nil:
		m.DelayMs = delay
	case isTimeout(err):
		m.Timeout = true
	default:
		m.Failure = err.Error()
	}
	return Outcome{Group: group, Node: node, Epoch: epoch, Measurement: m}
}
