package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type queueTestEvent struct {
	*EventBase
}

var _ = Describe("EventQueueImpl", func() {
	var (
		queue *EventQueueImpl
	)

	BeforeEach(func() {
		queue = NewEventQueue()
	})

	It("should pop events in time order", func() {
		evt1 := queueTestEvent{NewEventBase(3.0, nil)}
		evt2 := queueTestEvent{NewEventBase(1.0, nil)}
		evt3 := queueTestEvent{NewEventBase(2.0, nil)}

		queue.Push(evt1)
		queue.Push(evt2)
		queue.Push(evt3)

		Expect(queue.Len()).To(Equal(3))
		Expect(queue.Pop().Time()).To(BeNumerically("==", 1.0))
		Expect(queue.Pop().Time()).To(BeNumerically("==", 2.0))
		Expect(queue.Pop().Time()).To(BeNumerically("==", 3.0))
		Expect(queue.Len()).To(Equal(0))
	})

	It("should peek without removing", func() {
		evt := queueTestEvent{NewEventBase(1.0, nil)}

		queue.Push(evt)

		Expect(queue.Peek().Time()).To(BeNumerically("==", 1.0))
		Expect(queue.Len()).To(Equal(1))
	})
})
