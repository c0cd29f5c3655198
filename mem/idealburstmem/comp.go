// Package idealburstmem provides a memory controller model that serves read
// bursts one word per cycle after a fixed latency.
package idealburstmem

import (
	"log"
	"reflect"

	"github.com/sarchlab/mm2s/mem/mem"
	"github.com/sarchlab/mm2s/sim"
	"github.com/sarchlab/mm2s/tracing"
)

type burstTransaction struct {
	req        *mem.ReadBurstReq
	wordsSent  uint64
	cyclesLeft int
}

// Comp is an ideal memory controller that answers ReadBurstReqs from its
// storage. It serves one burst at a time and streams one word per cycle. A
// word whose address is marked as faulty is delivered with the fault flag
// set; the rest of the burst is still streamed, AXI-style.
type Comp struct {
	*sim.TickingComponent

	topPort sim.Port

	Storage    *mem.Storage
	Latency    int
	faultAddrs map[uint64]bool

	trans *burstTransaction
}

// InjectFaultAt marks the word at the given address as faulty. Every burst
// word read from that address is delivered with the fault flag set.
func (c *Comp) InjectFaultAt(addr uint64) {
	c.faultAddrs[addr] = true
}

// ClearFaults removes all injected faults.
func (c *Comp) ClearFaults() {
	c.faultAddrs = make(map[uint64]bool)
}

// Tick updates the state of the memory controller.
func (c *Comp) Tick() bool {
	madeProgress := false

	madeProgress = c.serveBurst() || madeProgress
	madeProgress = c.parseTop() || madeProgress

	return madeProgress
}

func (c *Comp) serveBurst() bool {
	if c.trans == nil {
		return false
	}

	if c.trans.cyclesLeft > 0 {
		c.trans.cyclesLeft--
		return true
	}

	rsp := c.nextWordRsp()

	err := c.topPort.Send(rsp)
	if err != nil {
		return false
	}

	c.trans.wordsSent++
	if c.trans.wordsSent == c.trans.req.WordCount {
		tracing.TraceReqComplete(c.trans.req, c)
		c.trans = nil
	}

	return true
}

func (c *Comp) nextWordRsp() *mem.BurstWordRsp {
	req := c.trans.req
	addr := req.Address + c.trans.wordsSent*req.WordSize

	builder := mem.BurstWordRspBuilder{}.
		WithSrc(c.topPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithAddress(addr)

	data, readErr := c.Storage.Read(addr, req.WordSize)
	if readErr != nil || c.faultAddrs[addr] {
		builder = builder.WithData(make([]byte, req.WordSize)).WithFault()
	} else {
		builder = builder.WithData(data)
	}

	if c.trans.wordsSent+1 == req.WordCount {
		builder = builder.WithLastInBurst()
	}

	return builder.Build()
}

func (c *Comp) parseTop() bool {
	if c.trans != nil {
		return false
	}

	msg := c.topPort.PeekIncoming()
	if msg == nil {
		return false
	}

	req, ok := msg.(*mem.ReadBurstReq)
	if !ok {
		log.Panicf("cannot process request of type %s", reflect.TypeOf(msg))
	}

	if req.WordCount == 0 {
		log.Panicf("burst %s must cover at least one word", req.ID)
	}

	c.topPort.RetrieveIncoming()
	c.trans = &burstTransaction{
		req:        req,
		cyclesLeft: c.Latency,
	}

	tracing.TraceReqReceive(req, c)

	return true
}
