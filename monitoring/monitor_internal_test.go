package monitoring

import (
	"net/http/httptest"

	"github.com/sarchlab/netsim/sim"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = &Monitor{}
	})

	It("should register contexts", func() {
		c := sim.NewContext("Fabric", nil)
		m.RegisterContext(c)

		Expect(m.contexts).To(HaveLen(1))
	})

	It("should list registered contexts", func() {
		m.RegisterContext(sim.NewContext("A", nil))
		m.RegisterContext(sim.NewContext("B", nil))

		w := httptest.NewRecorder()
		r := httptest.NewRequest("GET", "/api/contexts", nil)
		m.listContexts(w, r)

		Expect(w.Body.String()).To(Equal(`["A","B"]`))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("flood", 100)
		bar.IncrementInProgress(10)
		bar.MoveInProgressToFinished(4)

		Expect(bar.InProgress).To(Equal(uint64(6)))
		Expect(bar.Finished).To(Equal(uint64(4)))
		Expect(m.progressBars).To(HaveLen(1))

		m.CompleteProgressBar(bar)
		Expect(m.progressBars).To(BeEmpty())
	})

	Context("mailbox sorting", func() {
		var stats []sim.MailboxStat

		BeforeEach(func() {
			stats = []sim.MailboxStat{
				{ID: 0, Queued: 1},
				{ID: 1, Queued: 5},
				{ID: 2, Queued: 3},
				{ID: 3, Queued: 5},
			}
		})

		It("should sort by depth, deepest first", func() {
			sorted := sortAndSelectMailboxes(stats, 0, 0)

			Expect(sorted).To(HaveLen(4))
			Expect(sorted[0].ID).To(Equal(sim.SimId(1)))
			Expect(sorted[1].ID).To(Equal(sim.SimId(3)))
			Expect(sorted[2].ID).To(Equal(sim.SimId(2)))
			Expect(sorted[3].ID).To(Equal(sim.SimId(0)))
		})

		It("should apply limit and offset", func() {
			sorted := sortAndSelectMailboxes(stats, 2, 1)

			Expect(sorted).To(HaveLen(2))
			Expect(sorted[0].ID).To(Equal(sim.SimId(3)))
			Expect(sorted[1].ID).To(Equal(sim.SimId(2)))
		})

		It("should return nothing past the end", func() {
			sorted := sortAndSelectMailboxes(stats, 2, 10)

			Expect(sorted).To(BeEmpty())
		})
	})
})
