// Package stream defines the stream-side protocol of the data mover and a
// sink component that consumes the stream.
package stream

import "github.com/sarchlab/mm2s/sim"

// A WordMsg carries one word on the output stream. Last accompanies exactly
// the final word of a transfer.
type WordMsg struct {
	sim.MsgMeta

	Data []byte
	Last bool
}

// Meta returns the message meta.
func (m *WordMsg) Meta() *sim.MsgMeta {
	return &m.MsgMeta
}

// Clone creates a copy of the message with a new ID.
func (m *WordMsg) Clone() sim.Msg {
	cloneMsg := *m
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// WordMsgBuilder can build stream word messages.
type WordMsgBuilder struct {
	src, dst sim.RemotePort
	data     []byte
	last     bool
}

// WithSrc sets the source of the message to build.
func (b WordMsgBuilder) WithSrc(src sim.RemotePort) WordMsgBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the message to build.
func (b WordMsgBuilder) WithDst(dst sim.RemotePort) WordMsgBuilder {
	b.dst = dst
	return b
}

// WithData sets the word carried by the message to build.
func (b WordMsgBuilder) WithData(data []byte) WordMsgBuilder {
	b.data = data
	return b
}

// WithLast marks the message to build as the last word of the transfer.
func (b WordMsgBuilder) WithLast(last bool) WordMsgBuilder {
	b.last = last
	return b
}

// Build creates a new WordMsg.
func (b WordMsgBuilder) Build() *WordMsg {
	m := &WordMsg{}
	m.ID = sim.GetIDGenerator().Generate()
	m.Src = b.src
	m.Dst = b.dst
	m.TrafficBytes = len(b.data)
	m.Data = b.data
	m.Last = b.last
	return m
}
