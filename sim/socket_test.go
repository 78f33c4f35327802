package sim

import (
	"sync/atomic"

	"github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = ginkgo.Describe("Socket", func() {

	var (
		dropCount int64
		ctx       *Context
		socket    *Socket
	)

	ginkgo.BeforeEach(func() {
		dropCount = 0
		ctx = NewContext("Fabric", func(Msg) {
			atomic.AddInt64(&dropCount, 1)
		})

		var err error
		socket, err = ctx.Open()
		Expect(err).To(BeNil())
	})

	ginkgo.It("should return a stable id", func() {
		id := socket.ID()

		Expect(socket.ID()).To(Equal(id))
		Expect(socket.ID()).To(Equal(id))
	})

	ginkgo.It("should deliver a self-send", func() {
		err := socket.SendTo(socket.ID(), []byte{0x2A})
		Expect(err).To(BeNil())

		from, payload, err := socket.Recv()

		Expect(err).To(BeNil())
		Expect(from).To(Equal(socket.ID()))
		Expect(payload).To(Equal([]byte{0x2A}))
	})

	ginkgo.It("should drain queued messages on release", func() {
		peer, _ := ctx.Open()
		socket.SendTo(peer.ID(), []byte("1"))
		socket.SendTo(peer.ID(), []byte("2"))
		socket.SendTo(peer.ID(), []byte("3"))

		err := peer.Release()

		Expect(err).To(BeNil())
		Expect(atomic.LoadInt64(&dropCount)).To(Equal(int64(3)))
		Expect(ctx.SocketCount()).To(Equal(1))
	})

	ginkgo.It("should treat a send to a released peer as a silent drop", func() {
		peer, _ := ctx.Open()
		peer.Release()

		err := socket.SendTo(peer.ID(), []byte("late"))

		Expect(err).To(BeNil())
		Expect(atomic.LoadInt64(&dropCount)).To(Equal(int64(1)))
	})

	ginkgo.It("should fail operations after release", func() {
		Expect(socket.Release()).To(BeNil())

		err := socket.Release()
		Expect(CodeOf(err)).To(Equal(NullPointerArgument))

		err = socket.SendTo(socket.ID(), []byte("x"))
		Expect(CodeOf(err)).To(Equal(NullPointerArgument))

		_, _, err = socket.Recv()
		Expect(CodeOf(err)).To(Equal(NullPointerArgument))
	})

	ginkgo.It("should unblock a blocked Recv on release of its peer handle", func() {
		done := make(chan ErrCode)
		go func() {
			_, _, err := socket.Recv()
			done <- CodeOf(err)
		}()

		ctx.removeSocket(socket.ID())

		Eventually(done).Should(Receive(Equal(SocketDisconnected)))
	})

	ginkgo.It("should expose mailbox traffic to socket-level hooks", func() {
		mockController := gomock.NewController(ginkgo.GinkgoT())
		defer mockController.Finish()

		hook := NewMockHook(mockController)
		socket.AcceptHook(hook)

		var positions []*HookPos
		hook.EXPECT().Func(gomock.Any()).Do(func(hctx HookCtx) {
			positions = append(positions, hctx.Pos)
		}).Times(2)

		Expect(socket.SendTo(socket.ID(), []byte("ping"))).To(Succeed())

		_, _, err := socket.Recv()
		Expect(err).To(BeNil())

		Expect(positions).To(Equal([]*HookPos{
			HookPosMailboxPush, HookPosMailboxRetrieve,
		}))
		Expect(socket.NumHooks()).To(Equal(1))
	})

	ginkgo.It("should stay clean when released after shutdown", func() {
		ctx.Shutdown()

		err := socket.Release()

		Expect(err).To(BeNil())
		Expect(atomic.LoadInt64(&dropCount)).To(Equal(int64(0)))
	})
})
