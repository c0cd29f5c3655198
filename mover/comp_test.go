package mover

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/mm2s/mem/mem"
	"github.com/sarchlab/mm2s/sim"
	"github.com/sarchlab/mm2s/stream"
)

var _ = Describe("Mover", func() {
	var (
		mockCtrl   *gomock.Controller
		engine     *MockEngine
		ctrlPort   *MockPort
		memPort    *MockPort
		streamPort *MockPort
		c          *Comp
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)
		ctrlPort = NewMockPort(mockCtrl)
		memPort = NewMockPort(mockCtrl)
		streamPort = NewMockPort(mockCtrl)

		c = MakeBuilder().
			WithEngine(engine).
			WithWordSize(8).
			WithBufferDepth(2).
			WithMemPortMapper(&mem.SinglePortMapper{Port: "Mem.Top"}).
			WithStreamDst("Sink.In").
			Build("Mover")
		c.ctrlPort = ctrlPort
		c.memPort = memPort
		c.streamPort = streamPort
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	expectIdlePorts := func() {
		memPort.EXPECT().PeekIncoming().Return(nil)
		ctrlPort.EXPECT().PeekIncoming().Return(nil)
	}

	acceptRequest := func(req *MoveRequest) {
		memPort.EXPECT().PeekIncoming().Return(nil)
		ctrlPort.EXPECT().PeekIncoming().Return(req)
		ctrlPort.EXPECT().RetrieveIncoming().Return(req)

		madeProgress := c.Tick()

		Expect(madeProgress).To(BeTrue())
	}

	issueBurst := func() *mem.ReadBurstReq {
		var burstReq *mem.ReadBurstReq

		memPort.EXPECT().PeekIncoming().Return(nil)
		memPort.EXPECT().AsRemote().Return(sim.RemotePort("Mover.Mem"))
		memPort.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				burstReq = msg.(*mem.ReadBurstReq)
				return nil
			})

		madeProgress := c.Tick()

		Expect(madeProgress).To(BeTrue())
		Expect(burstReq).NotTo(BeNil())

		return burstReq
	}

	It("should do nothing when idle", func() {
		expectIdlePorts()

		madeProgress := c.Tick()

		Expect(madeProgress).To(BeFalse())
		Expect(c.Status().Busy).To(BeFalse())
	})

	It("should accept a move request and become busy", func() {
		req := MoveRequestBuilder{}.
			WithSrcAddress(0x40).
			WithLengthBytes(24).
			WithMaxBurstWords(4).
			Build()

		acceptRequest(req)

		Expect(c.Status().Busy).To(BeTrue())
		Expect(c.Status().TotalWords).To(Equal(uint64(3)))
	})

	It("should clamp the burst length to the word limit", func() {
		req := MoveRequestBuilder{}.
			WithSrcAddress(0x0).
			WithLengthBytes(300 * 8).
			WithMaxBurstWords(1000).
			Build()

		acceptRequest(req)
		burstReq := issueBurst()

		Expect(burstReq.WordCount).To(Equal(uint64(256)))
		Expect(burstReq.Address).To(Equal(uint64(0x0)))
		Expect(burstReq.Dst).To(Equal(sim.RemotePort("Mem.Top")))
	})

	It("should not request more words than the transfer needs", func() {
		req := MoveRequestBuilder{}.
			WithSrcAddress(0x40).
			WithLengthBytes(24).
			WithMaxBurstWords(16).
			Build()

		acceptRequest(req)
		burstReq := issueBurst()

		Expect(burstReq.WordCount).To(Equal(uint64(3)))
	})

	It("should treat a zero burst length as one", func() {
		req := MoveRequestBuilder{}.
			WithSrcAddress(0x40).
			WithLengthBytes(24).
			WithMaxBurstWords(0).
			Build()

		acceptRequest(req)
		burstReq := issueBurst()

		Expect(burstReq.WordCount).To(Equal(uint64(1)))
	})

	It("should complete a zero-length transfer without touching memory", func() {
		req := MoveRequestBuilder{}.
			WithSrc("Agent.Ctrl").
			WithSrcAddress(0x40).
			WithLengthBytes(0).
			WithMaxBurstWords(4).
			Build()

		acceptRequest(req)

		Expect(c.Status().Done).To(BeTrue())
		Expect(c.Status().Busy).To(BeFalse())
		Expect(c.Status().Err).To(Equal(ErrNone))

		var rsp *TransferDoneRsp
		ctrlPort.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				rsp = msg.(*TransferDoneRsp)
				return nil
			})
		expectIdlePorts()

		c.Tick()

		Expect(rsp.RespondTo).To(Equal(req.ID))
		Expect(rsp.Err).To(Equal(ErrNone))
		Expect(rsp.Dst).To(Equal(sim.RemotePort("Agent.Ctrl")))
		Expect(c.Status().Done).To(BeFalse())
	})

	It("should reject a misaligned transfer without touching memory", func() {
		req := MoveRequestBuilder{}.
			WithSrcAddress(0x41).
			WithLengthBytes(24).
			WithMaxBurstWords(4).
			Build()

		acceptRequest(req)

		// Kick the read engine. Validation fails before any request is
		// issued.
		memPort.EXPECT().PeekIncoming().Return(nil)
		c.Tick()

		// The orchestrator observes the failure and queues the response.
		memPort.EXPECT().PeekIncoming().Return(nil)
		ctrlPort.EXPECT().PeekIncoming().Return(nil)
		c.Tick()

		Expect(c.Status().Err).To(Equal(ErrAlignmentOrLength))
		Expect(c.Status().Busy).To(BeFalse())

		var rsp *TransferDoneRsp
		ctrlPort.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				rsp = msg.(*TransferDoneRsp)
				return nil
			})
		memPort.EXPECT().PeekIncoming().Return(nil)
		ctrlPort.EXPECT().PeekIncoming().Return(nil)
		c.Tick()

		Expect(rsp.Err).To(Equal(ErrAlignmentOrLength))
	})

	It("should reject a length that is not a whole number of words", func() {
		req := MoveRequestBuilder{}.
			WithSrcAddress(0x40).
			WithLengthBytes(20).
			WithMaxBurstWords(4).
			Build()

		acceptRequest(req)

		memPort.EXPECT().PeekIncoming().Return(nil)
		c.Tick()

		memPort.EXPECT().PeekIncoming().Return(nil)
		ctrlPort.EXPECT().PeekIncoming().Return(nil)
		c.Tick()

		Expect(c.Status().Err).To(Equal(ErrAlignmentOrLength))
	})

	It("should stall word intake when the elastic buffer is full", func() {
		req := MoveRequestBuilder{}.
			WithSrcAddress(0x0).
			WithLengthBytes(32).
			WithMaxBurstWords(4).
			Build()

		acceptRequest(req)
		burstReq := issueBurst()

		wordRsp := func(addr uint64) *mem.BurstWordRsp {
			return mem.BurstWordRspBuilder{}.
				WithRspTo(burstReq.ID).
				WithAddress(addr).
				WithData(make([]byte, 8)).
				Build()
		}

		// The consumer never accepts, so one word parks in the output
		// stage and two more fill the depth-2 buffer.
		streamPort.EXPECT().AsRemote().
			Return(sim.RemotePort("Mover.Stream")).AnyTimes()
		streamPort.EXPECT().Send(gomock.Any()).
			Return(sim.NewSendError()).AnyTimes()

		for i := uint64(0); i < 3; i++ {
			rsp := wordRsp(i * 8)
			memPort.EXPECT().PeekIncoming().Return(rsp)
			memPort.EXPECT().RetrieveIncoming().Return(rsp)
			c.Tick()
		}

		// Buffer full, the fourth word must stay in the port.
		memPort.EXPECT().PeekIncoming().Return(wordRsp(0x18))
		madeProgress := c.Tick()

		Expect(madeProgress).To(BeFalse())
		Expect(c.elastic.size()).To(Equal(2))
		Expect(c.stage.valid).To(BeTrue())
	})

	It("should leave a faulted word in the port while the buffer is full", func() {
		req := MoveRequestBuilder{}.
			WithSrcAddress(0x0).
			WithLengthBytes(32).
			WithMaxBurstWords(4).
			Build()

		acceptRequest(req)
		burstReq := issueBurst()

		wordRsp := func(addr uint64) *mem.BurstWordRsp {
			return mem.BurstWordRspBuilder{}.
				WithRspTo(burstReq.ID).
				WithAddress(addr).
				WithData(make([]byte, 8)).
				Build()
		}

		consumerReady := false
		streamPort.EXPECT().AsRemote().
			Return(sim.RemotePort("Mover.Stream")).AnyTimes()
		streamPort.EXPECT().Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				if consumerReady {
					return nil
				}
				return sim.NewSendError()
			}).AnyTimes()

		for i := uint64(0); i < 3; i++ {
			rsp := wordRsp(i * 8)
			memPort.EXPECT().PeekIncoming().Return(rsp)
			memPort.EXPECT().RetrieveIncoming().Return(rsp)
			c.Tick()
		}

		faultRsp := mem.BurstWordRspBuilder{}.
			WithRspTo(burstReq.ID).
			WithAddress(0x18).
			WithFault().
			Build()

		// Buffer full: the fault stays in the port and no error is
		// latched.
		memPort.EXPECT().PeekIncoming().Return(faultRsp)
		madeProgress := c.Tick()

		Expect(madeProgress).To(BeFalse())
		Expect(c.Status().Err).To(Equal(ErrNone))

		// The consumer drains a word, but the freed slot only becomes a
		// push credit at the next tick's latch.
		consumerReady = true
		memPort.EXPECT().PeekIncoming().Return(faultRsp)
		c.Tick()

		Expect(c.Status().Err).To(Equal(ErrNone))

		// With a credit available the fault is consumed.
		memPort.EXPECT().PeekIncoming().Return(faultRsp)
		memPort.EXPECT().RetrieveIncoming().Return(faultRsp)
		c.Tick()

		Expect(c.readEngine.finished()).To(BeTrue())
	})

	It("should abort on a faulted word and report the fault", func() {
		req := MoveRequestBuilder{}.
			WithSrcAddress(0x40).
			WithLengthBytes(24).
			WithMaxBurstWords(4).
			Build()

		acceptRequest(req)
		burstReq := issueBurst()

		goodRsp := mem.BurstWordRspBuilder{}.
			WithRspTo(burstReq.ID).
			WithAddress(0x40).
			WithData([]byte{1, 2, 3, 4, 5, 6, 7, 8}).
			Build()
		faultRsp := mem.BurstWordRspBuilder{}.
			WithRspTo(burstReq.ID).
			WithAddress(0x48).
			WithFault().
			Build()

		memPort.EXPECT().PeekIncoming().Return(goodRsp)
		memPort.EXPECT().RetrieveIncoming().Return(goodRsp)
		c.Tick()

		memPort.EXPECT().PeekIncoming().Return(faultRsp)
		memPort.EXPECT().RetrieveIncoming().Return(faultRsp)
		c.Tick()

		// The orchestrator latches the fault. The buffered word keeps
		// draining through the output stage.
		streamPort.EXPECT().AsRemote().
			Return(sim.RemotePort("Mover.Stream")).AnyTimes()
		streamPort.EXPECT().Send(gomock.Any()).Return(nil).AnyTimes()
		memPort.EXPECT().PeekIncoming().Return(nil).AnyTimes()
		ctrlPort.EXPECT().PeekIncoming().Return(nil).AnyTimes()

		var rsp *TransferDoneRsp
		ctrlPort.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				rsp = msg.(*TransferDoneRsp)
				return nil
			})

		for i := 0; i < 4; i++ {
			c.Tick()
		}

		Expect(c.Status().Err).To(Equal(ErrResponseFault))
		Expect(rsp).NotTo(BeNil())
		Expect(rsp.Err).To(Equal(ErrResponseFault))
		Expect(rsp.RespondTo).To(Equal(req.ID))
	})

	It("should discard responses of an abandoned burst", func() {
		staleRsp := mem.BurstWordRspBuilder{}.
			WithRspTo("some-old-request").
			WithData(make([]byte, 8)).
			Build()

		memPort.EXPECT().PeekIncoming().Return(staleRsp)
		memPort.EXPECT().RetrieveIncoming().Return(staleRsp)
		ctrlPort.EXPECT().PeekIncoming().Return(nil)

		madeProgress := c.Tick()

		Expect(madeProgress).To(BeTrue())
		Expect(c.elastic.empty()).To(BeTrue())
	})

	It("should hold the output word stable while the consumer stalls", func() {
		c.state = transferRunning
		c.totalWords = 1
		c.stage.valid = true
		c.stage.last = true
		c.stage.data = []byte{1, 2, 3, 4, 5, 6, 7, 8}

		var sent []*stream.WordMsg
		streamPort.EXPECT().AsRemote().Return(sim.RemotePort("Mover.Stream"))
		streamPort.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				sent = append(sent, msg.(*stream.WordMsg))
				return sim.NewSendError()
			}).
			Times(5)
		memPort.EXPECT().PeekIncoming().Return(nil).AnyTimes()

		for i := 0; i < 5; i++ {
			c.Tick()
		}

		Expect(sent).To(HaveLen(5))
		for i := 1; i < 5; i++ {
			Expect(sent[i]).To(BeIdenticalTo(sent[0]))
		}

		streamPort.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				sent = append(sent, msg.(*stream.WordMsg))
				return nil
			})
		memPort.EXPECT().PeekIncoming().Return(nil).AnyTimes()

		c.Tick()

		Expect(sent[5]).To(BeIdenticalTo(sent[0]))
		Expect(sent[5].Last).To(BeTrue())
		Expect(c.stage.valid).To(BeFalse())
	})

	It("should reset to power-on state", func() {
		req := MoveRequestBuilder{}.
			WithSrcAddress(0x40).
			WithLengthBytes(24).
			WithMaxBurstWords(4).
			Build()

		acceptRequest(req)
		issueBurst()

		c.Reset()

		Expect(c.Status().Busy).To(BeFalse())
		Expect(c.Status().Done).To(BeFalse())
		Expect(c.Status().Err).To(Equal(ErrNone))
		Expect(c.Status().WordsSent).To(Equal(uint64(0)))
		Expect(c.Status().TotalWords).To(Equal(uint64(0)))
		Expect(c.elastic.empty()).To(BeTrue())
		Expect(c.readEngine.busy()).To(BeFalse())
	})
})
