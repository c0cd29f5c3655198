// Package mem defines the memory-side protocol of the data mover: bounded
// burst read requests and per-word responses.
package mem

import "github.com/sarchlab/mm2s/sim"

var accessReqByteOverhead = 12
var accessRspByteOverhead = 4

// A ReadBurstReq asks a memory controller to return a bounded sequence of
// words starting at Address. The requester holds the request until the
// memory controller accepts it.
type ReadBurstReq struct {
	sim.MsgMeta

	Address   uint64
	WordCount uint64
	WordSize  uint64
}

// Meta returns the message meta.
func (r *ReadBurstReq) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone creates a copy of the request with a new ID.
func (r *ReadBurstReq) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// ByteSize returns the total number of bytes the burst covers.
func (r *ReadBurstReq) ByteSize() uint64 {
	return r.WordCount * r.WordSize
}

// ReadBurstReqBuilder can build read burst requests.
type ReadBurstReqBuilder struct {
	src, dst  sim.RemotePort
	address   uint64
	wordCount uint64
	wordSize  uint64
}

// WithSrc sets the source of the request to build.
func (b ReadBurstReqBuilder) WithSrc(src sim.RemotePort) ReadBurstReqBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b ReadBurstReqBuilder) WithDst(dst sim.RemotePort) ReadBurstReqBuilder {
	b.dst = dst
	return b
}

// WithAddress sets the address of the request to build.
func (b ReadBurstReqBuilder) WithAddress(address uint64) ReadBurstReqBuilder {
	b.address = address
	return b
}

// WithWordCount sets the number of words the burst to build covers.
func (b ReadBurstReqBuilder) WithWordCount(count uint64) ReadBurstReqBuilder {
	b.wordCount = count
	return b
}

// WithWordSize sets the size of each word, in bytes.
func (b ReadBurstReqBuilder) WithWordSize(size uint64) ReadBurstReqBuilder {
	b.wordSize = size
	return b
}

// Build creates a new ReadBurstReq
func (b ReadBurstReqBuilder) Build() *ReadBurstReq {
	r := &ReadBurstReq{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = accessReqByteOverhead
	r.Address = b.address
	r.WordCount = b.wordCount
	r.WordSize = b.wordSize
	return r
}

// A BurstWordRsp carries one word of a burst back to the requester. Fault
// marks that the memory subsystem failed to serve this word. LastInBurst
// accompanies the final word of each burst.
type BurstWordRsp struct {
	sim.MsgMeta

	RespondTo   string // The ID of the request it replies
	Address     uint64
	Data        []byte
	Fault       bool
	LastInBurst bool
}

// Meta returns the meta data attached to each message.
func (r *BurstWordRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone creates a copy of the response with a new ID.
func (r *BurstWordRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the request that the response is responding to.
func (r *BurstWordRsp) GetRspTo() string {
	return r.RespondTo
}

// BurstWordRspBuilder can build burst word responses.
type BurstWordRspBuilder struct {
	src, dst    sim.RemotePort
	rspTo       string
	address     uint64
	data        []byte
	fault       bool
	lastInBurst bool
}

// WithSrc sets the source of the response to build.
func (b BurstWordRspBuilder) WithSrc(src sim.RemotePort) BurstWordRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b BurstWordRspBuilder) WithDst(dst sim.RemotePort) BurstWordRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the ID of the request that the response is replying to.
func (b BurstWordRspBuilder) WithRspTo(id string) BurstWordRspBuilder {
	b.rspTo = id
	return b
}

// WithAddress sets the address the word was read from.
func (b BurstWordRspBuilder) WithAddress(address uint64) BurstWordRspBuilder {
	b.address = address
	return b
}

// WithData sets the word carried by the response to build.
func (b BurstWordRspBuilder) WithData(data []byte) BurstWordRspBuilder {
	b.data = data
	return b
}

// WithFault marks the response to build as faulted.
func (b BurstWordRspBuilder) WithFault() BurstWordRspBuilder {
	b.fault = true
	return b
}

// WithLastInBurst marks the response to build as the last word of its burst.
func (b BurstWordRspBuilder) WithLastInBurst() BurstWordRspBuilder {
	b.lastInBurst = true
	return b
}

// Build creates a new BurstWordRsp
func (b BurstWordRspBuilder) Build() *BurstWordRsp {
	r := &BurstWordRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.TrafficBytes = len(b.data) + accessRspByteOverhead
	r.RespondTo = b.rspTo
	r.Address = b.address
	r.Data = b.data
	r.Fault = b.fault
	r.LastInBurst = b.lastInBurst
	return r
}
