package mover

import (
	"github.com/sarchlab/mm2s/sim"
)

// MoveRequest asks a mover to stream LengthBytes of data starting at
// SrcAddress out of its stream port.
type MoveRequest struct {
	sim.MsgMeta

	SrcAddress    uint64
	LengthBytes   uint64
	MaxBurstWords uint64
}

// Meta returns the meta data of the message.
func (r *MoveRequest) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone creates a copy of the request with a new ID.
func (r *MoveRequest) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GenerateRsp generates a TransferDoneRsp that answers this request.
func (r *MoveRequest) GenerateRsp(err TransferError) sim.Rsp {
	rsp := TransferDoneRspBuilder{}.
		WithSrc(r.Dst).
		WithDst(r.Src).
		WithRspTo(r.ID).
		WithError(err).
		Build()

	return rsp
}

// MoveRequestBuilder can build move requests.
type MoveRequestBuilder struct {
	src, dst      sim.RemotePort
	srcAddress    uint64
	lengthBytes   uint64
	maxBurstWords uint64
}

// WithSrc sets the source of the request to build.
func (b MoveRequestBuilder) WithSrc(src sim.RemotePort) MoveRequestBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the request to build.
func (b MoveRequestBuilder) WithDst(dst sim.RemotePort) MoveRequestBuilder {
	b.dst = dst
	return b
}

// WithSrcAddress sets the byte address the transfer reads from.
func (b MoveRequestBuilder) WithSrcAddress(addr uint64) MoveRequestBuilder {
	b.srcAddress = addr
	return b
}

// WithLengthBytes sets the number of bytes to move.
func (b MoveRequestBuilder) WithLengthBytes(n uint64) MoveRequestBuilder {
	b.lengthBytes = n
	return b
}

// WithMaxBurstWords sets the requested burst length cap in words.
func (b MoveRequestBuilder) WithMaxBurstWords(n uint64) MoveRequestBuilder {
	b.maxBurstWords = n
	return b
}

// Build creates a new MoveRequest.
func (b MoveRequestBuilder) Build() *MoveRequest {
	r := &MoveRequest{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.SrcAddress = b.srcAddress
	r.LengthBytes = b.lengthBytes
	r.MaxBurstWords = b.maxBurstWords

	return r
}

// TransferDoneRsp reports the completion of a MoveRequest.
type TransferDoneRsp struct {
	sim.MsgMeta

	RespondTo string
	Err       TransferError
}

// Meta returns the meta data of the message.
func (r *TransferDoneRsp) Meta() *sim.MsgMeta {
	return &r.MsgMeta
}

// Clone creates a copy of the response with a new ID.
func (r *TransferDoneRsp) Clone() sim.Msg {
	cloneMsg := *r
	cloneMsg.ID = sim.GetIDGenerator().Generate()

	return &cloneMsg
}

// GetRspTo returns the ID of the request the response belongs to.
func (r *TransferDoneRsp) GetRspTo() string {
	return r.RespondTo
}

// TransferDoneRspBuilder can build transfer-done responses.
type TransferDoneRspBuilder struct {
	src, dst sim.RemotePort
	rspTo    string
	err      TransferError
}

// WithSrc sets the source of the response to build.
func (b TransferDoneRspBuilder) WithSrc(src sim.RemotePort) TransferDoneRspBuilder {
	b.src = src
	return b
}

// WithDst sets the destination of the response to build.
func (b TransferDoneRspBuilder) WithDst(dst sim.RemotePort) TransferDoneRspBuilder {
	b.dst = dst
	return b
}

// WithRspTo sets the request ID the response answers.
func (b TransferDoneRspBuilder) WithRspTo(id string) TransferDoneRspBuilder {
	b.rspTo = id
	return b
}

// WithError sets the terminal error code carried by the response.
func (b TransferDoneRspBuilder) WithError(err TransferError) TransferDoneRspBuilder {
	b.err = err
	return b
}

// Build creates a new TransferDoneRsp.
func (b TransferDoneRspBuilder) Build() *TransferDoneRsp {
	r := &TransferDoneRsp{}
	r.ID = sim.GetIDGenerator().Generate()
	r.Src = b.src
	r.Dst = b.dst
	r.RespondTo = b.rspTo
	r.Err = b.err

	return r
}
