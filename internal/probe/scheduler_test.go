package probe

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingProber tracks the number of simultaneously in-flight probes.
type countingProber struct {
	mu       sync.Mutex
	inflight int32
	peak     int32
	delay    time.Duration
	results  map[string]int
	errs     map[string]error
}

func (p *countingProber) Probe(ctx context.Context, node string, timeout time.Duration) (int, error) {
	cur := atomic.AddInt32(&p.inflight, 1)
	defer atomic.AddInt32(&p.inflight, -1)

	p.mu.Lock()
	if cur > p.peak {
		p.peak = cur
	}
	p.mu.Unlock()

	if p.delay > 0 {
		time.Sleep(p.delay)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.errs[node]; ok {
		return 0, err
	}
	if d, ok := p.results[node]; ok {
		return d, nil
	}
	return 100, nil
}

func (p *countingProber) peakInflight() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

// timeoutErr mimics a transport timeout (net.Error shape).
type timeoutErr struct{}

func (timeoutErr) Error() string   { return "probe deadline exceeded" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func collectOutcomes(t *testing.T, s *Scheduler, n int) []Outcome {
	t.Helper()
	out := make([]Outcome, 0, n)
	deadline := time.After(5 * time.Second)
	for len(out) < n {
		select {
		case o := <-s.Results():
			out = append(out, o)
		case <-deadline:
			t.Fatalf("timed out waiting for outcomes: got %d, want %d", len(out), n)
		}
	}
	return out
}

func TestStartBatchRespectsConcurrencyCap(t *testing.T) {
	prober := &countingProber{delay: 20 * time.Millisecond}
	s := NewScheduler(prober)

	nodes := make([]string, 12)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("node-%d", i)
	}

	const cap = 3
	s.StartBatch(context.Background(), "asia", nodes, cap, time.Second)
	collectOutcomes(t, s, len(nodes))

	if peak := prober.peakInflight(); peak > cap {
		t.Errorf("observed %d simultaneous probes, cap is %d", peak, cap)
	}
}

func TestStartBatchCapDefaultsAndCeiling(t *testing.T) {
	prober := &countingProber{delay: 10 * time.Millisecond}
	s := NewScheduler(prober, WithCeiling(4))

	nodes := make([]string, 20)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("node-%d", i)
	}

	// cap <= 0 means one slot per node, clamped to the ceiling.
	s.StartBatch(context.Background(), "asia", nodes, 0, time.Second)
	collectOutcomes(t, s, len(nodes))

	if peak := prober.peakInflight(); peak > 4 {
		t.Errorf("observed %d simultaneous probes, ceiling is 4", peak)
	}
}

func TestStartBatchDoesNotBlockCaller(t *testing.T) {
	// A prober that parks until released: if StartBatch waited on probes
	// the call below would hang well past the guard.
	release := make(chan struct{})
	prober := ProberFunc(func(ctx context.Context, node string, timeout time.Duration) (int, error) {
		<-release
		return 50, nil
	})
	s := NewScheduler(prober)

	done := make(chan Batch, 1)
	go func() {
		done <- s.StartBatch(context.Background(), "asia", []string{"a", "b", "c"}, 2, time.Second)
	}()

	select {
	case b := <-done:
		if b.Epoch != 1 {
			t.Errorf("first batch epoch = %d, want 1", b.Epoch)
		}
	case <-time.After(time.Second):
		t.Fatal("StartBatch blocked on in-flight probes")
	}
	close(release)
	collectOutcomes(t, s, 3)
}

func TestEpochsAreMonotonicPerGroup(t *testing.T) {
	s := NewScheduler(ProberFunc(func(context.Context, string, time.Duration) (int, error) {
		return 1, nil
	}))

	a1 := s.StartBatch(context.Background(), "asia", nil, 0, time.Second)
	e1 := s.StartBatch(context.Background(), "europe", nil, 0, time.Second)
	a2 := s.StartBatch(context.Background(), "asia", nil, 0, time.Second)

	if a1.Epoch != 1 || a2.Epoch != 2 {
		t.Errorf("asia epochs = %d, %d; want 1, 2", a1.Epoch, a2.Epoch)
	}
	if e1.Epoch != 1 {
		t.Errorf("europe epoch = %d, want independent counter starting at 1", e1.Epoch)
	}
}

func TestOutcomeMapping(t *testing.T) {
	prober := &countingProber{
		results: map[string]int{"fast": 150},
		errs: map[string]error{
			"late":   timeoutErr{},
			"broken": errors.New("daemon: node unreachable"),
		},
	}
	s := NewScheduler(prober)
	s.StartBatch(context.Background(), "asia", []string{"fast", "late", "broken"}, 0, time.Second)

	byNode := make(map[string]Measurement)
	for _, o := range collectOutcomes(t, s, 3) {
		if o.Group != "asia" || o.Epoch != 1 {
			t.Errorf("outcome %q tagged (%s, %d), want (asia, 1)", o.Node, o.Group, o.Epoch)
		}
		byNode[o.Node] = o.Measurement
	}

	if m := byNode["fast"]; !m.OK() || m.DelayMs != 150 {
		t.Errorf("fast = %+v, want 150ms success", m)
	}
	if m := byNode["late"]; !m.Timeout {
		t.Errorf("late = %+v, want timeout", m)
	}
	if m := byNode["broken"]; m.Failure == "" || m.Timeout {
		t.Errorf("broken = %+v, want error outcome", m)
	}
}

func TestSingleFailureIsLocalToItsNode(t *testing.T) {
	prober := &countingProber{
		errs: map[string]error{"broken": errors.New("boom")},
	}
	s := NewScheduler(prober)
	s.StartBatch(context.Background(), "asia", []string{"a", "broken", "b"}, 1, time.Second)

	ok := 0
	for _, o := range collectOutcomes(t, s, 3) {
		if o.Measurement.OK() {
			ok++
		}
	}
	if ok != 2 {
		t.Errorf("%d sibling probes succeeded, want 2: one failure must not abort the batch", ok)
	}
}
