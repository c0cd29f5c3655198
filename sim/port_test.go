package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type fakeConn struct {
	HookableBase

	name           string
	numNotifySend  int
	numNotifyAvail int
}

func (c *fakeConn) Name() string           { return c.name }
func (c *fakeConn) PlugIn(_ Port)          {}
func (c *fakeConn) Unplug(_ Port)          {}
func (c *fakeConn) NotifyAvailable(_ Port) { c.numNotifyAvail++ }
func (c *fakeConn) NotifySend()            { c.numNotifySend++ }

func newSampleMsg(src, dst RemotePort) *GeneralRsp {
	msg := &GeneralRsp{}
	msg.ID = GetIDGenerator().Generate()
	msg.Src = src
	msg.Dst = dst

	return msg
}

var _ = Describe("DefaultPort", func() {
	var (
		conn *fakeConn
		port Port
	)

	BeforeEach(func() {
		conn = &fakeConn{name: "Conn"}
		port = NewPort(nil, 1, 1, "Comp.Port")
		port.SetConnection(conn)
	})

	It("should buffer sent messages and wake the connection", func() {
		msg := newSampleMsg(port.AsRemote(), "Other.Port")

		Expect(port.CanSend()).To(BeTrue())

		err := port.Send(msg)

		Expect(err).To(BeNil())
		Expect(conn.numNotifySend).To(Equal(1))
		Expect(port.PeekOutgoing()).To(BeIdenticalTo(msg))
		Expect(port.RetrieveOutgoing()).To(BeIdenticalTo(msg))
		Expect(port.PeekOutgoing()).To(BeNil())
	})

	It("should refuse to send when the outgoing buffer is full", func() {
		msg1 := newSampleMsg(port.AsRemote(), "Other.Port")
		msg2 := newSampleMsg(port.AsRemote(), "Other.Port")

		Expect(port.Send(msg1)).To(BeNil())
		Expect(port.CanSend()).To(BeFalse())
		Expect(port.Send(msg2)).NotTo(BeNil())
	})

	It("should reject a message whose source is not this port", func() {
		msg := newSampleMsg("Other.Port", "Somewhere.Else")

		Expect(func() { port.Send(msg) }).To(Panic())
	})

	It("should refuse delivery when the incoming buffer is full", func() {
		msg1 := newSampleMsg("Other.Port", port.AsRemote())
		msg2 := newSampleMsg("Other.Port", port.AsRemote())

		Expect(port.Deliver(msg1)).To(BeNil())
		Expect(port.Deliver(msg2)).NotTo(BeNil())

		Expect(port.PeekIncoming()).To(BeIdenticalTo(msg1))
		Expect(port.RetrieveIncoming()).To(BeIdenticalTo(msg1))
		Expect(conn.numNotifyAvail).To(Equal(1))
		Expect(port.RetrieveIncoming()).To(BeNil())
	})
})
