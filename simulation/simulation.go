// Package simulation assembles a fabric with recording and monitoring.
package simulation

import (
	"sync/atomic"

	"github.com/sarchlab/netsim/datarecording"
	"github.com/sarchlab/netsim/monitoring"
	"github.com/sarchlab/netsim/sim"
	"github.com/sarchlab/netsim/tracing"
)

// A Simulation provides the services required to run message-exchange
// scenarios: one context, a data recorder for traces, and an optional
// monitoring server.
type Simulation struct {
	id string

	context      *sim.Context
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor
	msgTracer    *tracing.DBTracer

	dropCount uint64
}

// ID returns the unique id of the simulation run.
func (s *Simulation) ID() string {
	return s.id
}

// Context returns the fabric of the simulation.
func (s *Simulation) Context() *sim.Context {
	return s.context
}

// GetDataRecorder returns the data recorder used in the simulation.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor used in the simulation. It is nil when
// monitoring is disabled.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// GetMsgTracer returns the message tracer used in the simulation.
func (s *Simulation) GetMsgTracer() *tracing.DBTracer {
	return s.msgTracer
}

// DropCount returns the number of messages consumed by the drop hook so far.
func (s *Simulation) DropCount() uint64 {
	return atomic.LoadUint64(&s.dropCount)
}

// Terminate shuts the fabric down and closes the recorder. Queued messages
// go through the drop hook before this returns.
func (s *Simulation) Terminate() {
	_ = s.context.Shutdown()
	s.dataRecorder.Close()
}
