package directconnection

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/mm2s/sim"
)

type ballMsg struct {
	sim.MsgMeta
}

func (m *ballMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

func (m *ballMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

func newBallMsg(src, dst sim.RemotePort) *ballMsg {
	m := &ballMsg{}
	m.ID = sim.GetIDGenerator().Generate()
	m.Src = src
	m.Dst = dst

	return m
}

type pitcher struct {
	*sim.TickingComponent

	port sim.Port
	dst  sim.RemotePort
	left int
}

func newPitcher(engine sim.Engine, name string) *pitcher {
	p := &pitcher{}
	p.TickingComponent = sim.NewTickingComponent(name, engine, 1*sim.GHz, p)
	p.port = sim.NewPort(p, 1, 1, name+".Out")
	p.AddPort("Out", p.port)

	return p
}

func (p *pitcher) Tick() bool {
	if p.left == 0 {
		return false
	}

	msg := newBallMsg(p.port.AsRemote(), p.dst)

	err := p.port.Send(msg)
	if err != nil {
		return false
	}

	p.left--

	return true
}

type catcher struct {
	*sim.TickingComponent

	port     sim.Port
	received []sim.Msg
}

func newCatcher(engine sim.Engine, name string) *catcher {
	c := &catcher{}
	c.TickingComponent = sim.NewTickingComponent(name, engine, 1*sim.GHz, c)
	c.port = sim.NewPort(c, 1, 1, name+".In")
	c.AddPort("In", c.port)

	return c
}

func (c *catcher) Tick() bool {
	msg := c.port.RetrieveIncoming()
	if msg == nil {
		return false
	}

	c.received = append(c.received, msg)

	return true
}

var _ = Describe("DirectConnection", func() {
	var (
		engine sim.Engine
		conn   *Comp
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		conn = MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			Build("Conn")
	})

	It("should deliver all messages to the destination port", func() {
		p := newPitcher(engine, "Pitcher")
		c := newCatcher(engine, "Catcher")
		conn.PlugIn(p.port)
		conn.PlugIn(c.port)

		p.dst = c.port.AsRemote()
		p.left = 10
		p.TickLater()

		err := engine.Run()

		Expect(err).To(BeNil())
		Expect(c.received).To(HaveLen(10))
	})

	It("should stall the sender until the receiver drains", func() {
		p := newPitcher(engine, "Pitcher")
		c := newCatcher(engine, "Catcher")
		conn.PlugIn(p.port)
		conn.PlugIn(c.port)

		p.dst = c.port.AsRemote()
		p.left = 100
		p.TickLater()

		err := engine.Run()

		Expect(err).To(BeNil())
		Expect(c.received).To(HaveLen(100))
		Expect(p.left).To(Equal(0))
	})

	It("should panic when the destination is not plugged in", func() {
		p := newPitcher(engine, "Pitcher")
		conn.PlugIn(p.port)

		p.dst = "Nowhere.In"
		p.left = 1
		p.TickLater()

		Expect(func() {
			_ = engine.Run()
		}).To(Panic())
	})
})
