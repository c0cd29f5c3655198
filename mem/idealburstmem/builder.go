package idealburstmem

import (
	"github.com/sarchlab/mm2s/mem/mem"
	"github.com/sarchlab/mm2s/sim"
)

// Builder can build ideal burst memory controllers.
type Builder struct {
	engine          sim.Engine
	freq            sim.Freq
	latency         int
	storage         *mem.Storage
	storageCapacity uint64
}

// MakeBuilder returns a new Builder with default configurations.
func MakeBuilder() Builder {
	return Builder{
		freq:            1 * sim.GHz,
		latency:         1,
		storageCapacity: 4 * mem.MB,
	}
}

// WithEngine sets the engine that drives the memory controller.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the memory controller.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithLatency sets the number of cycles between accepting a burst and
// delivering its first word.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// WithStorage sets the storage the memory controller serves data from.
func (b Builder) WithStorage(storage *mem.Storage) Builder {
	b.storage = storage
	return b
}

// WithNewStorage allocates a fresh storage of the given capacity for the
// memory controller to serve data from.
func (b Builder) WithNewStorage(capacity uint64) Builder {
	b.storageCapacity = capacity
	b.storage = nil
	return b
}

// Build creates a new ideal burst memory controller.
func (b Builder) Build(name string) *Comp {
	c := &Comp{
		Latency:    b.latency,
		Storage:    b.storage,
		faultAddrs: make(map[uint64]bool),
	}

	if c.Storage == nil {
		c.Storage = mem.NewStorage(b.storageCapacity)
	}

	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)
	c.topPort = sim.NewPort(c, 1, 1, name+".Top")
	c.AddPort("Top", c.topPort)

	return c
}
