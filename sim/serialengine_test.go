package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordingHandler struct {
	engine Engine

	times     []VTimeInSec
	chainLeft int
}

func (h *recordingHandler) Handle(e Event) error {
	h.times = append(h.times, e.Time())

	if h.chainLeft > 0 {
		h.chainLeft--
		evt := queueTestEvent{NewEventBase(e.Time()+1e-9, h)}
		h.engine.Schedule(evt)
	}

	return nil
}

type eventOrderHook struct {
	order *[]bool
}

func (h eventOrderHook) Func(ctx HookCtx) {
	if ctx.Pos == HookPosBeforeEvent {
		*h.order = append(*h.order, ctx.Item.(Event).IsSecondary())
	}
}

type endHandler struct {
	called bool
	at     VTimeInSec
}

func (h *endHandler) Handle(now VTimeInSec) {
	h.called = true
	h.at = now
}

var _ = Describe("SerialEngine", func() {
	var (
		engine  *SerialEngine
		handler *recordingHandler
	)

	BeforeEach(func() {
		engine = NewSerialEngine()
		handler = &recordingHandler{engine: engine}
	})

	It("should run events in time order", func() {
		engine.Schedule(queueTestEvent{NewEventBase(3e-9, handler)})
		engine.Schedule(queueTestEvent{NewEventBase(1e-9, handler)})
		engine.Schedule(queueTestEvent{NewEventBase(2e-9, handler)})

		err := engine.Run()

		Expect(err).To(BeNil())
		Expect(handler.times).To(Equal(
			[]VTimeInSec{1e-9, 2e-9, 3e-9}))
		Expect(engine.CurrentTime()).To(BeNumerically("~", 3e-9, 1e-12))
	})

	It("should run events scheduled while running", func() {
		handler.chainLeft = 4
		engine.Schedule(queueTestEvent{NewEventBase(1e-9, handler)})

		err := engine.Run()

		Expect(err).To(BeNil())
		Expect(handler.times).To(HaveLen(5))
		Expect(engine.CurrentTime()).To(BeNumerically("~", 5e-9, 1e-12))
	})

	It("should run same-time primary events before secondary events", func() {
		secondaryBase := NewEventBase(1e-9, handler)
		secondaryBase.secondary = true
		secondary := queueTestEvent{secondaryBase}
		primary := queueTestEvent{NewEventBase(1e-9, handler)}

		engine.Schedule(secondary)
		engine.Schedule(primary)

		var order []bool
		engine.AcceptHook(eventOrderHook{order: &order})

		err := engine.Run()

		Expect(err).To(BeNil())
		Expect(order).To(Equal([]bool{false, true}))
	})

	It("should panic when scheduling an event in the past", func() {
		engine.Schedule(queueTestEvent{NewEventBase(1e-9, handler)})
		err := engine.Run()
		Expect(err).To(BeNil())

		Expect(func() {
			engine.Schedule(queueTestEvent{NewEventBase(0, handler)})
		}).To(Panic())
	})

	It("should call simulation end handlers on Finished", func() {
		h := &endHandler{}
		engine.RegisterSimulationEndHandler(h)

		engine.Schedule(queueTestEvent{NewEventBase(2e-9, handler)})
		err := engine.Run()
		Expect(err).To(BeNil())

		engine.Finished()

		Expect(h.called).To(BeTrue())
		Expect(h.at).To(BeNumerically("~", 2e-9, 1e-12))
	})
})
