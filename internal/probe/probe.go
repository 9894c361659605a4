// Package probe implements the concurrent latency-probe engine: a
// scheduler that fans out one bounded goroutine per node for an
// epoch-tagged batch, and an aggregator that merges completions back
// into the node table without ever blocking the caller.
//
// Ownership model: the scheduler's workers are the only producers and
// the coordination loop is the only consumer. Epoch tags make the merge
// order-insensitive; superseded batches are never force-aborted, their
// results are simply dropped on arrival.
package probe

import (
	"context"
	"errors"
	"time"
)

// Rating buckets for a measured delay.
type Rating int

const (
	// RatingUnknown means the node has never been probed.
	RatingUnknown Rating = iota
	RatingFast
	RatingGood
	RatingSlow
	RatingTimeout
	RatingError
)

// Delay thresholds, in milliseconds.
const (
	FastBelowMs = 200
	SlowAboveMs = 500
)

func (r Rating) String() string {
	switch r {
	case RatingFast:
		return "Fast"
	case RatingGood:
		return "Good"
	case RatingSlow:
		return "Slow"
	case RatingTimeout:
		return "Timeout"
	case RatingError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Measurement is one probe outcome for one node, epoch-stamped at
// production time.
type Measurement struct {
	DelayMs    int
	Timeout    bool
	Failure    string // non-empty when the probe errored (and not a timeout)
	Epoch      uint64
	MeasuredAt time.Time
}

// OK reports whether the probe produced a usable delay value.
func (m Measurement) OK() bool { return !m.Timeout && m.Failure == "" }

// Rating classifies the measurement.
func (m Measurement) Rating() Rating {
	switch {
	case m.Timeout:
		return RatingTimeout
	case m.Failure != "":
		return RatingError
	case m.DelayMs < FastBelowMs:
		return RatingFast
	case m.DelayMs <= SlowAboveMs:
		return RatingGood
	default:
		return RatingSlow
	}
}

// Outcome is one completed probe, tagged with the batch that issued it.
type Outcome struct {
	Group       string
	Node        string
	Epoch       uint64
	Measurement Measurement
}

// Batch describes one in-flight probe run for a group.
type Batch struct {
	Group     string
	Epoch     uint64
	Nodes     []string
	StartedAt time.Time
}

// timeouter matches errors that self-identify as timeouts, including
// net.Error values and api.TransportError.
type timeouter interface {
	Timeout() bool
}

func isTimeout(err error) bool {
	var t timeouter
	if errors.As(err, &t) && t.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
