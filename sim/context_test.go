package sim

import (
	"sync"
	"sync/atomic"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("Context", func() {

	var (
		mockController *gomock.Controller
		dropCount      int64
		ctx            *Context
	)

	ginkgo.BeforeEach(func() {
		mockController = gomock.NewController(ginkgo.GinkgoT())
		dropCount = 0
		ctx = NewContext("Fabric", func(Msg) {
			atomic.AddInt64(&dropCount, 1)
		})
	})

	ginkgo.AfterEach(func() {
		mockController.Finish()
	})

	ginkgo.It("should return its name", func() {
		Expect(ctx.Name()).To(Equal("Fabric"))
	})

	ginkgo.It("should allocate pairwise distinct ids", func() {
		seen := map[SimId]bool{}
		for i := 0; i < 100; i++ {
			s, err := ctx.Open()
			Expect(err).To(BeNil())
			Expect(seen[s.ID()]).To(BeFalse())
			seen[s.ID()] = true
		}

		Expect(ctx.SocketCount()).To(Equal(100))
	})

	ginkgo.It("should allocate distinct ids under concurrent Open", func() {
		var mu sync.Mutex
		seen := map[SimId]bool{}

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					s, err := ctx.Open()
					Expect(err).To(BeNil())

					mu.Lock()
					Expect(seen[s.ID()]).To(BeFalse())
					seen[s.ID()] = true
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		Expect(seen).To(HaveLen(800))
	})

	ginkgo.It("should drop a message routed to an id that never existed", func() {
		err := ctx.route(0, SimId(0xFFFFFFFFFFFFFFFF), []byte{0x2A})

		Expect(err).To(BeNil())
		Expect(atomic.LoadInt64(&dropCount)).To(Equal(int64(1)))
	})

	ginkgo.It("should invoke the drop hook position on drop", func() {
		hook := NewMockHook(mockController)
		ctx.AcceptHook(hook)

		var positions []*HookPos
		hook.EXPECT().Func(gomock.Any()).Do(func(hctx HookCtx) {
			positions = append(positions, hctx.Pos)
		}).Times(2)

		ctx.route(0, 999, []byte("lost"))

		Expect(positions).To(Equal([]*HookPos{HookPosMsgSend, HookPosMsgDrop}))
	})

	ginkgo.It("should route to a live mailbox", func() {
		s, _ := ctx.Open()

		err := ctx.route(s.ID(), s.ID(), []byte("hi"))

		Expect(err).To(BeNil())
		Expect(atomic.LoadInt64(&dropCount)).To(Equal(int64(0)))

		from, payload, err := s.Recv()
		Expect(err).To(BeNil())
		Expect(from).To(Equal(s.ID()))
		Expect(payload).To(Equal([]byte("hi")))
	})

	ginkgo.It("should drain every queued message on shutdown", func() {
		a, _ := ctx.Open()
		b, _ := ctx.Open()

		a.SendTo(b.ID(), []byte("one"))
		a.SendTo(b.ID(), []byte("two"))

		err := ctx.Shutdown()

		Expect(err).To(BeNil())
		Expect(atomic.LoadInt64(&dropCount)).To(Equal(int64(2)))
		Expect(ctx.SocketCount()).To(Equal(0))
	})

	ginkgo.It("should refuse Open after shutdown", func() {
		ctx.Shutdown()

		_, err := ctx.Open()

		Expect(CodeOf(err)).To(Equal(NullPointerArgument))
	})

	ginkgo.It("should refuse a second shutdown", func() {
		Expect(ctx.Shutdown()).To(BeNil())

		err := ctx.Shutdown()

		Expect(CodeOf(err)).To(Equal(NullPointerArgument))
	})

	ginkgo.It("should unblock receivers on shutdown", func() {
		s, _ := ctx.Open()

		done := make(chan ErrCode)
		go func() {
			_, _, err := s.Recv()
			done <- CodeOf(err)
		}()

		ctx.Shutdown()

		Eventually(done).Should(Receive(Equal(SocketDisconnected)))
	})

	ginkgo.It("should report mailbox stats", func() {
		a, _ := ctx.Open()
		b, _ := ctx.Open()
		a.SendTo(b.ID(), []byte("queued"))

		stats := ctx.MailboxStats()

		Expect(stats).To(HaveLen(2))
		Expect(stats[0].ID).To(Equal(a.ID()))
		Expect(stats[0].Queued).To(Equal(0))
		Expect(stats[1].ID).To(Equal(b.ID()))
		Expect(stats[1].Queued).To(Equal(1))
		Expect(stats[1].Closed).To(BeFalse())
	})
})
