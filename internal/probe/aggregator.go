package probe

import "time"

// NodeUpdate is one merged measurement the caller should reflect in its
// node table.
type NodeUpdate struct {
	Node        string
	Measurement Measurement
}

// Summary reports what one Drain call changed.
type Summary struct {
	Updates   []NodeUpdate
	Completed []Batch // batches whose pending count reached zero this drain
	Dropped   int     // stale outcomes discarded by the epoch check
}

// Changed reports whether the drain produced anything worth re-rendering.
func (s Summary) Changed() bool {
	return len(s.Updates) > 0 || len(s.Completed) > 0
}

// tracked is the aggregator's view of one in-flight batch.
type tracked struct {
	batch   Batch
	pending map[string]bool
}

// stored pairs a merged measurement with the group whose batch produced
// it. Epoch counters are per group, so the overwrite comparison is only
// meaningful against the same group's sequence; nodes shared by several
// groups carry measurements from whichever group probed them last.
type stored struct {
	group string
	m     Measurement
}

// Aggregator is the single ingestion point for probe outcomes. It is not
// safe for concurrent use: only the coordination loop may call it, which
// is exactly the single-writer discipline the rest of the app relies on.
type Aggregator struct {
	results <-chan Outcome
	epochs  map[string]uint64 // current epoch per group
	batches map[string]*tracked
	latest  map[string]stored // node -> last merged measurement
}

// NewAggregator builds an aggregator draining the given channel,
// normally Scheduler.Results().
func NewAggregator(results <-chan Outcome) *Aggregator {
	return &Aggregator{
		results: results,
		epochs:  make(map[string]uint64),
		batches: make(map[string]*tracked),
		latest:  make(map[string]stored),
	}
}

// Track registers a freshly started batch as the current one for its
// group. Any previous batch for the group is superseded: its pending
// probes keep running but their outcomes will fail the epoch check.
func (a *Aggregator) Track(b Batch) {
	a.epochs[b.Group] = b.Epoch
	pending := make(map[string]bool, len(b.Nodes))
	for _, n := range b.Nodes {
		pending[n] = true
	}
	a.batches[b.Group] = &tracked{batch: b, pending: pending}
}

// Drain consumes every outcome already sitting in the channel and merges
// it under the staleness rules. It returns immediately when the channel
// is empty — it never waits for the next event.
func (a *Aggregator) Drain() Summary {
	var sum Summary
	for {
		select {
		case o := <-a.results:
			a.merge(o, &sum)
		default:
			return sum
		}
	}
}

func (a *Aggregator) merge(o Outcome, sum *Summary) {
	if o.Epoch < a.epochs[o.Group] {
		sum.Dropped++
		return
	}

	// Epoch-wins within the producing group: only an equal-or-newer
	// epoch may overwrite. Across groups the epochs come from unrelated
	// counters, so the newer measurement wins instead.
	prev, ok := a.latest[o.Node]
	overwrite := !ok ||
		(prev.group == o.Group && o.Epoch >= prev.m.Epoch) ||
		(prev.group != o.Group && !o.Measurement.MeasuredAt.Before(prev.m.MeasuredAt))
	if overwrite {
		a.latest[o.Node] = stored{group: o.Group, m: o.Measurement}
		sum.Updates = append(sum.Updates, NodeUpdate{Node: o.Node, Measurement: o.Measurement})
	}

	t := a.batches[o.Group]
	if t == nil || t.batch.Epoch != o.Epoch || !t.pending[o.Node] {
		return
	}
	delete(t.pending, o.Node)
	if len(t.pending) == 0 {
		sum.Completed = append(sum.Completed, t.batch)
		delete(a.batches, o.Group)
	}
}

// Latest returns the last merged measurement for a node.
func (a *Aggregator) Latest(node string) (Measurement, bool) {
	s, ok := a.latest[node]
	return s.m, ok
}

// Testing reports whether a node has an unresolved probe in the current
// batch of any group — the "Testing…" indicator.
func (a *Aggregator) Testing(node string) bool {
	for _, t := range a.batches {
		if t.pending[node] {
			return true
		}
	}
	return false
}

// Pending returns how many probes of the group's current batch are still
// unresolved; zero when no batch is in flight.
func (a *Aggregator) Pending(group string) int {
	if t := a.batches[group]; t != nil {
		return len(t.pending)
	}
	return 0
}

// InFlight reports whether the group has a current batch with unresolved
// probes, used for the busy indicator.
func (a *Aggregator) InFlight(group string) bool { return a.Pending(group) > 0 }

// Forget drops cached measurements for nodes that vanished from the
// table after a full refresh.
func (a *Aggregator) Forget(keep func(node string) bool) {
	for node := range a.latest {
		if !keep(node) {
			delete(a.latest, node)
		}
	}
}

// Age returns how long ago the node was last measured, and false if it
// never was.
func (a *Aggregator) Age(node string, now time.Time) (time.Duration, bool) {
	s, ok := a.latest[node]
	if !ok {
		return 0, false
	}
	return now.Sub(s.m.MeasuredAt), true
}
