package stream

import (
	"log"
	"reflect"

	"github.com/sarchlab/mm2s/sim"
)

// Sink is a stream consumer that accepts one word every acceptEvery cycles
// and records everything it receives. With acceptEvery of 1 the sink is
// always ready.
type Sink struct {
	*sim.TickingComponent

	inPort sim.Port

	acceptEvery int
	cyclesLeft  int

	words [][]byte
	lasts []bool
}

// Tick updates the state of the sink.
func (s *Sink) Tick() bool {
	msg := s.inPort.PeekIncoming()
	if msg == nil {
		return false
	}

	if s.cyclesLeft > 0 {
		s.cyclesLeft--
		return true
	}

	word, ok := msg.(*WordMsg)
	if !ok {
		log.Panicf("cannot process message of type %s", reflect.TypeOf(msg))
	}

	s.inPort.RetrieveIncoming()
	s.words = append(s.words, word.Data)
	s.lasts = append(s.lasts, word.Last)
	s.cyclesLeft = s.acceptEvery - 1

	return true
}

// WordCount returns the number of words the sink has accepted.
func (s *Sink) WordCount() int {
	return len(s.words)
}

// Words returns the words the sink has accepted, in arrival order.
func (s *Sink) Words() [][]byte {
	return s.words
}

// LastFlags returns the last flag of each accepted word, in arrival order.
func (s *Sink) LastFlags() []bool {
	return s.lasts
}

// Reset discards everything the sink has recorded.
func (s *Sink) Reset() {
	s.words = nil
	s.lasts = nil
	s.cyclesLeft = 0
}

// SinkBuilder can build stream sinks.
type SinkBuilder struct {
	engine      sim.Engine
	freq        sim.Freq
	acceptEvery int
}

// MakeSinkBuilder returns a new SinkBuilder with default configurations.
func MakeSinkBuilder() SinkBuilder {
	return SinkBuilder{
		freq:        1 * sim.GHz,
		acceptEvery: 1,
	}
}

// WithEngine sets the engine that drives the sink.
func (b SinkBuilder) WithEngine(engine sim.Engine) SinkBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the sink.
func (b SinkBuilder) WithFreq(freq sim.Freq) SinkBuilder {
	b.freq = freq
	return b
}

// WithAcceptEvery makes the sink accept one word every n cycles. n must be
// at least 1.
func (b SinkBuilder) WithAcceptEvery(n int) SinkBuilder {
	b.acceptEvery = n
	return b
}

// Build creates a new Sink.
func (b SinkBuilder) Build(name string) *Sink {
	if b.acceptEvery < 1 {
		panic("sink must accept at least one word every cycle")
	}

	s := &Sink{
		acceptEvery: b.acceptEvery,
	}
	s.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, s)
	s.inPort = sim.NewPort(s, 1, 1, name+".In")
	s.AddPort("In", s.inPort)

	return s
}
