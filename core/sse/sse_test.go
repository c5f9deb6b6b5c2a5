package sse_test

import (
	"github.com/mudler/MCBridge/core/sse"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Manager", func() {
	It("renders messages in event-stream format", func() {
		Expect(sse.NewMessage("dispatch", "a\nb").String()).To(Equal("event: dispatch\ndata: a\ndata: b\n\n"))
		Expect(sse.NewMessage("", "x").String()).To(Equal("data: x\n\n"))

		m, err := sse.NewJSONMessage("state", map[string]int{"health": 20})
		Expect(err).ToNot(HaveOccurred())
		Expect(m.Data).To(Equal(`{"health":20}`))
	})

	It("broadcasts to every subscriber", func() {
		manager := sse.NewManager(0)
		a := manager.Subscribe("a")
		b := manager.Subscribe("b")
		Expect(manager.Clients()).To(ConsistOf("a", "b"))

		manager.Send(sse.NewMessage("dispatch", "hello"))

		Expect((<-a.Chan()).Data).To(Equal("hello"))
		Expect((<-b.Chan()).Data).To(Equal("hello"))
	})

	It("replays recent history to new subscribers", func() {
		manager := sse.NewManager(2)
		manager.Send(sse.NewMessage("", "one"))
		manager.Send(sse.NewMessage("", "two"))
		manager.Send(sse.NewMessage("", "three"))

		c := manager.Subscribe("late")
		Expect((<-c.Chan()).Data).To(Equal("two"))
		Expect((<-c.Chan()).Data).To(Equal("three"))
		Consistently(c.Chan()).ShouldNot(Receive())
	})

	It("drops messages for a full subscriber instead of blocking", func() {
		manager := sse.NewManager(0)
		manager.Subscribe("slow")
		for i := 0; i < 200; i++ {
			manager.Send(sse.NewMessage("", "spam"))
		}
	})

	It("unsubscribes idempotently", func() {
		manager := sse.NewManager(0)
		c := manager.Subscribe("x")
		manager.Unsubscribe("x")
		manager.Unsubscribe("x")

		Expect(manager.Clients()).To(BeEmpty())
		Eventually(c.Chan()).Should(BeClosed())
	})
})
