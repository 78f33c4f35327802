package simulation

import (
	"os"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/netsim/sim"
)

var _ = Describe("Simulation", func() {
	var (
		simulation *Simulation
	)

	BeforeEach(func() {
		simulation = MakeBuilder().WithoutMonitoring().Build()
	})

	AfterEach(func() {
		simulation.Terminate()

		os.Remove("netsim_" + simulation.ID() + ".sqlite3")
	})

	It("should provide a working fabric", func() {
		a, err := simulation.Context().Open()
		Expect(err).To(BeNil())
		b, err := simulation.Context().Open()
		Expect(err).To(BeNil())

		Expect(a.SendTo(b.ID(), []byte("Hello!"))).To(Succeed())

		from, payload, err := b.Recv()
		Expect(err).To(BeNil())
		Expect(from).To(Equal(a.ID()))
		Expect(payload).To(Equal([]byte("Hello!")))
	})

	It("should count dropped messages", func() {
		a, _ := simulation.Context().Open()

		Expect(a.SendTo(sim.SimId(404), []byte("lost"))).To(Succeed())

		Expect(simulation.DropCount()).To(Equal(uint64(1)))
	})

	It("should run the user drop hook after accounting", func() {
		var userDrops int64
		hookedSim := MakeBuilder().
			WithoutMonitoring().
			WithDropHook(func(sim.Msg) {
				atomic.AddInt64(&userDrops, 1)
			}).
			Build()
		defer func() {
			hookedSim.Terminate()
			os.Remove("netsim_" + hookedSim.ID() + ".sqlite3")
		}()

		a, _ := hookedSim.Context().Open()
		a.SendTo(sim.SimId(404), []byte("lost"))

		Expect(hookedSim.DropCount()).To(Equal(uint64(1)))
		Expect(atomic.LoadInt64(&userDrops)).To(Equal(int64(1)))
	})

	It("should panic when a monitor port is set without monitoring", func() {
		Expect(func() {
			MakeBuilder().WithoutMonitoring().WithMonitorPort(8080).Build()
		}).To(Panic())
	})

	Context("Builder with custom output file", func() {
		var customSim *Simulation

		AfterEach(func() {
			if customSim != nil {
				customSim.Terminate()
				os.Remove("test_custom_output.sqlite3")
				customSim = nil
			}
		})

		It("should allow custom output file to be set", func() {
			builder := MakeBuilder().
				WithoutMonitoring().
				WithOutputFileName("test_custom_output")
			customSim = builder.Build()

			Expect(customSim).ToNot(BeNil())
			Expect(customSim.GetDataRecorder()).ToNot(BeNil())
			Expect(customSim.GetMsgTracer()).ToNot(BeNil())
			Expect(customSim.GetMonitor()).To(BeNil())
		})
	})
})
