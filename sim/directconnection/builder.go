package directconnection

import "github.com/sarchlab/mm2s/sim"

// Builder can build direct connections.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the engine that drives the connection.
func (b Builder) WithEngine(e sim.Engine) Builder {
	b.engine = e
	return b
}

// WithFreq sets the frequency at which the connection forwards messages.
func (b Builder) WithFreq(f sim.Freq) Builder {
	b.freq = f
	return b
}

// Build creates a new DirectConnection.
func (b Builder) Build(name string) *Comp {
	c := new(Comp)
	c.TickingComponent = sim.NewSecondaryTickingComponent(
		name, b.engine, b.freq, c)
	c.ends = make(map[sim.RemotePort]sim.Port)
	return c
}
