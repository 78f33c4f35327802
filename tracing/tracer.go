// Package tracing collects message lifecycle traces from the fabric.
package tracing

import "time"

// Trace outcomes.
const (
	// OutcomeDelivered marks a message handed to a receiver.
	OutcomeDelivered = "delivered"

	// OutcomeDropped marks a message consumed by the drop hook.
	OutcomeDropped = "dropped"
)

// A MsgTrace describes the lifecycle of one message through the fabric, from
// the moment the routing layer accepted it to its delivery or drop.
type MsgTrace struct {
	ID    string
	Src   uint64
	Dst   uint64
	Bytes int64

	Outcome   string
	StartTime float64
	EndTime   float64
}

// A Tracer can collect message traces.
type Tracer interface {
	// StartMsg marks that the fabric accepted a message.
	StartMsg(trace MsgTrace)

	// EndMsg marks the final outcome of a message. Traces that were never
	// started are ignored.
	EndMsg(trace MsgTrace)
}

// wallclock returns the current wall time in seconds.
func wallclock() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
