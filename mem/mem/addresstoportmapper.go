package mem

import "github.com/sarchlab/mm2s/sim"

// AddressToPortMapper helps a memory client find the port of the memory
// component that serves a certain address.
type AddressToPortMapper interface {
	Find(address uint64) sim.RemotePort
}

// SinglePortMapper always returns the same port, for systems with a single
// memory component.
type SinglePortMapper struct {
	Port sim.RemotePort
}

// Find returns the port of the only memory component.
func (m *SinglePortMapper) Find(address uint64) sim.RemotePort {
	return m.Port
}
