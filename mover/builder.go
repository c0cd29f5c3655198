package mover

import (
	"log"

	"github.com/sarchlab/mm2s/mem/mem"
	"github.com/sarchlab/mm2s/sim"
)

// A Builder can build memory-to-stream mover components.
type Builder struct {
	engine        sim.Engine
	freq          sim.Freq
	wordSize      uint64
	bufferDepth   int
	memPortMapper mem.AddressToPortMapper
	streamDst     sim.RemotePort
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		freq:        1 * sim.GHz,
		wordSize:    8,
		bufferDepth: 16,
	}
}

// WithEngine sets the engine that drives the mover.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency the mover ticks at.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithWordSize sets the word size in bytes.
func (b Builder) WithWordSize(wordSize uint64) Builder {
	b.wordSize = wordSize
	return b
}

// WithBufferDepth sets the capacity of the elastic buffer in words.
func (b Builder) WithBufferDepth(depth int) Builder {
	b.bufferDepth = depth
	return b
}

// WithMemPortMapper sets the mapper that locates the memory component that
// serves each address.
func (b Builder) WithMemPortMapper(mapper mem.AddressToPortMapper) Builder {
	b.memPortMapper = mapper
	return b
}

// WithStreamDst sets the port the stream words are sent to.
func (b Builder) WithStreamDst(dst sim.RemotePort) Builder {
	b.streamDst = dst
	return b
}

// Build creates a mover component with the given name.
func (b Builder) Build(name string) *Comp {
	if b.wordSize == 0 {
		log.Panic("mover word size must not be zero")
	}

	c := &Comp{
		memPortMapper: b.memPortMapper,
		streamDst:     b.streamDst,
		wordSize:      b.wordSize,
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.ctrlPort = sim.NewPort(c, 4, 4, name+".Ctrl")
	c.memPort = sim.NewPort(c, 1, 1, name+".Mem")
	c.streamPort = sim.NewPort(c, 1, 1, name+".Stream")
	c.AddPort("Ctrl", c.ctrlPort)
	c.AddPort("Mem", c.memPort)
	c.AddPort("Stream", c.streamPort)

	c.elastic = newElasticBuffer(b.bufferDepth)
	c.readEngine = &burstReadEngine{comp: c}
	c.stage = &outputStage{comp: c}

	return c
}
