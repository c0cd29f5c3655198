package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("GeneralRsp", func() {
	It("should respond to the original request", func() {
		req := &GeneralRsp{}
		req.ID = GetIDGenerator().Generate()

		rsp := GeneralRspBuilder{}.
			WithSrc("Comp1.Port1").
			WithDst("Comp2.Port1").
			WithOriginalReq(req).
			Build()

		Expect(rsp.GetRspTo()).To(Equal(req.ID))
		Expect(rsp.Src).To(Equal(RemotePort("Comp1.Port1")))
		Expect(rsp.Dst).To(Equal(RemotePort("Comp2.Port1")))
	})

	It("should clone with a fresh ID", func() {
		req := &GeneralRsp{}
		req.ID = GetIDGenerator().Generate()

		rsp := GeneralRspBuilder{}.
			WithSrc("Comp1.Port1").
			WithDst("Comp2.Port1").
			WithOriginalReq(req).
			Build()

		clone := rsp.Clone().(*GeneralRsp)

		Expect(clone.ID).NotTo(Equal(rsp.ID))
		Expect(clone.Src).To(Equal(rsp.Src))
		Expect(clone.GetRspTo()).To(Equal(req.ID))
	})
})
