package tracing

import (
	"sync"

	"github.com/sarchlab/netsim/datarecording"
)

type msgTraceEntry struct {
	ID        string
	Src       uint64
	Dst       uint64
	Bytes     int64
	Outcome   string
	StartTime float64
	EndTime   float64
}

// DBTracer stores completed message traces through a DataRecorder backend.
// A trace is written once its outcome is known; in-flight messages live in
// memory until then.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder

	inflight map[string]MsgTrace
}

// NewDBTracer creates a DBTracer writing to the given backend.
func NewDBTracer(backend datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		backend:  backend,
		inflight: make(map[string]MsgTrace),
	}

	backend.CreateTable("msg_trace", msgTraceEntry{})

	return t
}

// StartMsg marks the start of a message trace.
func (t *DBTracer) StartMsg(trace MsgTrace) {
	t.startingTraceMustBeValid(trace)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.inflight[trace.ID] = trace
}

func (t *DBTracer) startingTraceMustBeValid(trace MsgTrace) {
	if trace.ID == "" {
		panic("trace ID must be set")
	}
}

// EndMsg completes a message trace and writes it out. Traces that were never
// started are ignored.
func (t *DBTracer) EndMsg(trace MsgTrace) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.inflight[trace.ID]
	if !ok {
		return
	}
	delete(t.inflight, trace.ID)

	original.Outcome = trace.Outcome
	original.EndTime = trace.EndTime

	t.backend.InsertData("msg_trace", msgTraceEntry{
		ID:        original.ID,
		Src:       original.Src,
		Dst:       original.Dst,
		Bytes:     original.Bytes,
		Outcome:   original.Outcome,
		StartTime: original.StartTime,
		EndTime:   original.EndTime,
	})
}

// InflightCount returns the number of messages whose outcome is still
// unknown.
func (t *DBTracer) InflightCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.inflight)
}
