package simulation

import (
	"sync/atomic"

	"github.com/rs/xid"
	"github.com/sarchlab/netsim/datarecording"
	"github.com/sarchlab/netsim/monitoring"
	"github.com/sarchlab/netsim/sim"
	"github.com/sarchlab/netsim/tracing"
)

// Builder can be used to build a simulation.
type Builder struct {
	monitorOn      bool
	monitorPort    int
	outputFileName string
	dropHook       sim.DropHook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		monitorOn: true,
	}
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithDropHook sets the hook that reclaims undelivered message payloads. It
// runs after the simulation's own drop accounting.
func (b Builder) WithDropHook(hook sim.DropHook) Builder {
	b.dropHook = hook
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}
}

// Build builds the simulation.
func (b Builder) Build() *Simulation {
	b.parametersMustBeValid()

	s := &Simulation{}
	s.id = xid.New().String()

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "netsim_" + s.id
	}
	s.dataRecorder = datarecording.NewDataRecorder(outputPath)
	s.msgTracer = tracing.NewDBTracer(s.dataRecorder)

	userHook := b.dropHook
	s.context = sim.NewContext("Fabric", func(msg sim.Msg) {
		atomic.AddUint64(&s.dropCount, 1)
		if userHook != nil {
			userHook(msg)
		}
	})

	tracing.CollectMsgTrace(s.context, s.msgTracer)

	if b.monitorOn {
		s.monitor = monitoring.NewMonitor()
		if b.monitorPort > 0 {
			s.monitor.WithPortNumber(b.monitorPort)
		}
		s.monitor.RegisterContext(s.context)
		s.monitor.StartServer()
	}

	return s
}
