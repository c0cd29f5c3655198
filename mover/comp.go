package mover

import (
	"log"
	"reflect"

	"github.com/sarchlab/mm2s/mem/mem"
	"github.com/sarchlab/mm2s/sim"
	"github.com/sarchlab/mm2s/tracing"
)

type transferState int

const (
	transferIdle transferState = iota
	transferKickRead
	transferRunning
	transferDone
	transferError
)

// Comp is a memory-to-stream mover. It accepts MoveRequests on its Ctrl
// port, fetches the payload from memory through its Mem port as burst
// reads, and emits the payload word by word on its Stream port.
type Comp struct {
	*sim.TickingComponent

	ctrlPort   sim.Port
	memPort    sim.Port
	streamPort sim.Port

	memPortMapper mem.AddressToPortMapper
	streamDst     sim.RemotePort

	wordSize uint64

	elastic    *elasticBuffer
	readEngine *burstReadEngine
	stage      *outputStage

	state      transferState
	req        *MoveRequest
	totalWords uint64
	wordsSent  uint64
	readDone   bool
	xferErr    TransferError
	donePulse  bool

	toCtrl []sim.Msg
}

// Tick advances the mover by one cycle. Sub-units run downstream first, so
// each observes the state its upstream neighbor committed in the previous
// tick. The elastic buffer occupancy is latched up front for the same
// reason.
func (c *Comp) Tick() bool {
	c.elastic.sync()

	madeProgress := false
	madeProgress = c.sendToCtrl() || madeProgress
	madeProgress = c.stage.tick() || madeProgress
	madeProgress = c.orchestrate() || madeProgress
	madeProgress = c.readEngine.tick() || madeProgress
	madeProgress = c.parseCtrl() || madeProgress

	return madeProgress
}

func (c *Comp) sendToCtrl() bool {
	if len(c.toCtrl) == 0 {
		return false
	}

	msg := c.toCtrl[0]
	err := c.ctrlPort.Send(msg)
	if err != nil {
		return false
	}

	c.toCtrl = c.toCtrl[1:]

	return true
}

func (c *Comp) orchestrate() bool {
	switch c.state {
	case transferKickRead:
		c.readEngine.start(
			c.req.SrcAddress, c.req.LengthBytes, c.req.MaxBurstWords)
		c.state = transferRunning
		return true
	case transferRunning:
		return c.trackTransfer()
	case transferDone:
		c.donePulse = false
		c.state = transferIdle
		return true
	default:
		return false
	}
}

func (c *Comp) trackTransfer() bool {
	madeProgress := false

	if c.readEngine.finished() {
		err := c.readEngine.err
		c.readEngine.ackCompletion()

		if err != ErrNone {
			c.xferErr = err
			c.state = transferError
			c.respondTransferDone(err)

			return true
		}

		c.readDone = true
		madeProgress = true
	}

	if c.readDone && c.wordsSent == c.totalWords && c.elastic.empty() {
		c.state = transferDone
		c.donePulse = true
		c.respondTransferDone(ErrNone)

		return true
	}

	return madeProgress
}

func (c *Comp) respondTransferDone(err TransferError) {
	rsp := c.req.GenerateRsp(err)
	c.toCtrl = append(c.toCtrl, rsp)

	tracing.TraceReqComplete(c.req, c)
}

func (c *Comp) parseCtrl() bool {
	if c.state != transferIdle && c.state != transferError {
		return false
	}

	msg := c.ctrlPort.PeekIncoming()
	if msg == nil {
		return false
	}

	req, ok := msg.(*MoveRequest)
	if !ok {
		log.Panicf("cannot process message of type %s", reflect.TypeOf(msg))
	}

	c.ctrlPort.RetrieveIncoming()
	tracing.TraceReqReceive(req, c)

	// A new request always begins from power-on values, even after an
	// errored transfer. Words of the faulted transfer that have not
	// drained by now are dropped.
	if c.state == transferError {
		c.elastic.clear()
		c.stage.reset()
	}

	c.req = req
	c.wordsSent = 0
	c.readDone = false
	c.xferErr = ErrNone
	c.donePulse = false
	c.totalWords = req.LengthBytes / c.wordSize

	if req.LengthBytes == 0 {
		c.state = transferDone
		c.donePulse = true
		c.respondTransferDone(ErrNone)

		return true
	}

	c.state = transferKickRead

	return true
}

// outputEnabled reports whether the output stage may pop words. It stays
// on in the error state so words buffered before a fault can drain.
func (c *Comp) outputEnabled() bool {
	return c.state == transferRunning || c.state == transferError
}

// Status returns a snapshot of the transfer-level status bits.
func (c *Comp) Status() TransferStatus {
	return TransferStatus{
		Busy:       c.state == transferKickRead || c.state == transferRunning,
		Done:       c.donePulse,
		Err:        c.xferErr,
		WordsSent:  c.wordsSent,
		TotalWords: c.totalWords,
	}
}

// Reset returns the mover to its power-on state, dropping any in-flight
// transfer and buffered words.
func (c *Comp) Reset() {
	c.state = transferIdle
	c.req = nil
	c.totalWords = 0
	c.wordsSent = 0
	c.readDone = false
	c.xferErr = ErrNone
	c.donePulse = false
	c.toCtrl = nil

	c.elastic.clear()
	c.readEngine.reset()
	c.stage.reset()
}
