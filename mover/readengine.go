package mover

import (
	"log"
	"reflect"

	"github.com/sarchlab/mm2s/mem/mem"
	"github.com/sarchlab/mm2s/tracing"
)

type readEngineState int

const (
	engineIdle readEngineState = iota
	engineIssuing
	engineReceiving
	engineFinished
)

// maxBurstWordLimit is the hard cap on the number of words a single burst
// read request may cover.
const maxBurstWordLimit = 256

// burstReadEngine fetches the transfer payload from memory as a sequence of
// burst read requests and pushes the returned words into the elastic buffer.
type burstReadEngine struct {
	comp *Comp

	state readEngineState

	addr           uint64
	wordsRemaining uint64
	maxBurstWords  uint64

	burstReq       *mem.ReadBurstReq
	burstWordsLeft uint64

	err TransferError
}

// start validates and latches the transfer parameters. A zero-length or
// misaligned transfer completes immediately without touching memory.
func (e *burstReadEngine) start(addr, lengthBytes, maxBurstWords uint64) {
	if e.state != engineIdle {
		log.Panic("starting a burst read engine that is not idle")
	}

	wordSize := e.comp.wordSize
	e.err = ErrNone
	e.burstReq = nil
	e.burstWordsLeft = 0

	if lengthBytes == 0 {
		e.state = engineFinished
		return
	}

	if addr%wordSize != 0 || lengthBytes%wordSize != 0 {
		e.err = ErrAlignmentOrLength
		e.state = engineFinished
		return
	}

	e.addr = addr
	e.wordsRemaining = lengthBytes / wordSize
	e.maxBurstWords = clampBurstWords(maxBurstWords)
	e.state = engineIssuing
}

func clampBurstWords(n uint64) uint64 {
	if n == 0 {
		return 1
	}

	if n > maxBurstWordLimit {
		return maxBurstWordLimit
	}

	return n
}

func (e *burstReadEngine) busy() bool {
	return e.state != engineIdle
}

// finished reports whether the engine is holding a completion for the
// orchestrator to acknowledge.
func (e *burstReadEngine) finished() bool {
	return e.state == engineFinished
}

// ackCompletion consumes the completion and returns the engine to idle.
func (e *burstReadEngine) ackCompletion() {
	if e.state != engineFinished {
		log.Panic("acknowledging a burst read engine that has not finished")
	}

	e.state = engineIdle
}

func (e *burstReadEngine) reset() {
	e.state = engineIdle
	e.err = ErrNone
	e.burstReq = nil
	e.burstWordsLeft = 0
	e.addr = 0
	e.wordsRemaining = 0
	e.maxBurstWords = 0
}

func (e *burstReadEngine) tick() bool {
	switch e.state {
	case engineIssuing:
		madeProgress := e.discardStaleRsp()
		madeProgress = e.issueBurst() || madeProgress
		return madeProgress
	case engineReceiving:
		return e.receiveWord()
	default:
		return e.discardStaleRsp()
	}
}

// discardStaleRsp drops responses that belong to an abandoned burst, such as
// the tail of a faulted burst that the memory keeps streaming.
func (e *burstReadEngine) discardStaleRsp() bool {
	msg := e.comp.memPort.PeekIncoming()
	if msg == nil {
		return false
	}

	rsp, ok := msg.(*mem.BurstWordRsp)
	if !ok {
		log.Panicf("cannot process message of type %s", reflect.TypeOf(msg))
	}

	if e.burstReq != nil && rsp.RespondTo == e.burstReq.ID {
		return false
	}

	e.comp.memPort.RetrieveIncoming()

	return true
}

func (e *burstReadEngine) issueBurst() bool {
	if e.burstReq == nil {
		wordCount := min(e.maxBurstWords, e.wordsRemaining)
		e.burstReq = mem.ReadBurstReqBuilder{}.
			WithSrc(e.comp.memPort.AsRemote()).
			WithDst(e.comp.memPortMapper.Find(e.addr)).
			WithAddress(e.addr).
			WithWordCount(wordCount).
			WithWordSize(e.comp.wordSize).
			Build()
	}

	// The same request is retried until the memory side accepts it.
	err := e.comp.memPort.Send(e.burstReq)
	if err != nil {
		return false
	}

	tracing.TraceReqInitiate(e.burstReq, e.comp,
		tracing.MsgIDAtReceiver(e.comp.req, e.comp))

	e.burstWordsLeft = e.burstReq.WordCount
	e.state = engineReceiving

	return true
}

func (e *burstReadEngine) receiveWord() bool {
	msg := e.comp.memPort.PeekIncoming()
	if msg == nil {
		return false
	}

	rsp, ok := msg.(*mem.BurstWordRsp)
	if !ok {
		log.Panicf("cannot process message of type %s", reflect.TypeOf(msg))
	}

	if rsp.RespondTo != e.burstReq.ID {
		e.comp.memPort.RetrieveIncoming()
		return true
	}

	// A response is only consumed when the buffer can accept a word,
	// faulted or not.
	if !e.comp.elastic.canPush() {
		return false
	}

	if rsp.Fault {
		e.comp.memPort.RetrieveIncoming()
		tracing.TraceReqFinalize(e.burstReq, e.comp)
		e.burstReq = nil
		e.err = ErrResponseFault
		e.state = engineFinished

		return true
	}

	e.comp.memPort.RetrieveIncoming()
	e.comp.elastic.push(rsp.Data)
	e.wordsRemaining--
	e.burstWordsLeft--

	if e.burstWordsLeft == 0 {
		e.addr += e.burstReq.WordCount * e.comp.wordSize
		tracing.TraceReqFinalize(e.burstReq, e.comp)
		e.burstReq = nil

		if e.wordsRemaining == 0 {
			e.state = engineFinished
		} else {
			e.state = engineIssuing
		}
	}

	return true
}
