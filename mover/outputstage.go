package mover

import (
	"github.com/sarchlab/mm2s/stream"
)

// outputStage is a single-entry holding register between the elastic buffer
// and the stream port.
type outputStage struct {
	comp *Comp

	valid bool
	last  bool
	data  []byte

	pendingMsg *stream.WordMsg
}

func (s *outputStage) reset() {
	s.valid = false
	s.last = false
	s.data = nil
	s.pendingMsg = nil
}

func (s *outputStage) tick() bool {
	madeProgress := s.emit()
	madeProgress = s.refill() || madeProgress

	return madeProgress
}

// emit tries to hand the held word to the stream port. While the consumer
// stalls, the identical message is retried so the held word stays stable.
func (s *outputStage) emit() bool {
	if !s.valid {
		return false
	}

	if s.pendingMsg == nil {
		s.pendingMsg = stream.WordMsgBuilder{}.
			WithSrc(s.comp.streamPort.AsRemote()).
			WithDst(s.comp.streamDst).
			WithData(s.data).
			WithLast(s.last).
			Build()
	}

	err := s.comp.streamPort.Send(s.pendingMsg)
	if err != nil {
		return false
	}

	s.valid = false
	s.pendingMsg = nil

	return true
}

// refill pops the next word from the elastic buffer into the holding
// register. The word that makes wordsSent equal totalWords carries the last
// marker, regardless of burst boundaries.
func (s *outputStage) refill() bool {
	if s.valid {
		return false
	}

	if !s.comp.outputEnabled() {
		return false
	}

	if !s.comp.elastic.hasData() {
		return false
	}

	s.data = s.comp.elastic.pop()
	s.comp.wordsSent++
	s.last = s.comp.wordsSent == s.comp.totalWords
	s.valid = true

	return true
}
