package state_test

import (
	"fmt"
	"sync"

	"github.com/mudler/MCBridge/core/state"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Store", func() {
	var store *state.Store

	BeforeEach(func() {
		store = state.NewStore()
	})

	Context("chat history", func() {
		It("starts empty", func() {
			Expect(store.History()).To(BeEmpty())
			Expect(store.Recent(3)).To(BeEmpty())
		})

		It("keeps messages in order, newest last", func() {
			store.RecordMessage("alice", "hi")
			store.RecordMessage("bob", "hello")

			history := store.History()
			Expect(history).To(HaveLen(2))
			Expect(history[0].Speaker).To(Equal("alice"))
			Expect(history[1].Message).To(Equal("hello"))
			Expect(history[1].Timestamp).ToNot(BeZero())
		})

		It("evicts the oldest message after 20 entries", func() {
			for i := 1; i <= 21; i++ {
				store.RecordMessage("alice", fmt.Sprintf("message %d", i))
			}

			history := store.History()
			Expect(history).To(HaveLen(state.DefaultHistorySize))
			Expect(history[0].Message).To(Equal("message 2"))
			Expect(history[19].Message).To(Equal("message 21"))
			for _, r := range history {
				Expect(r.Message).ToNot(Equal("message 1"))
			}
		})

		It("never grows past the bound", func() {
			for i := 0; i < 100; i++ {
				store.RecordMessage("bob", "spam")
				Expect(len(store.History())).To(BeNumerically("<=", 20))
			}
		})

		It("returns the last n records", func() {
			for i := 1; i <= 5; i++ {
				store.RecordMessage("alice", fmt.Sprintf("m%d", i))
			}
			recent := store.Recent(3)
			Expect(recent).To(HaveLen(3))
			Expect(recent[0].Message).To(Equal("m3"))
			Expect(recent[2].Message).To(Equal("m5"))
		})

		It("returns copies that do not alias the buffer", func() {
			store.RecordMessage("alice", "original")
			history := store.History()
			history[0].Message = "changed"
			Expect(store.History()[0].Message).To(Equal("original"))
		})
	})

	Context("agent state", func() {
		It("merges keys instead of replacing the map", func() {
			store.UpdateState(map[string]any{"health": 20.0, "food": 18.0})
			store.UpdateState(map[string]any{"health": 12.0})

			snapshot := store.Snapshot()
			Expect(snapshot).To(HaveKeyWithValue("health", 12.0))
			Expect(snapshot).To(HaveKeyWithValue("food", 18.0))
		})

		It("accepts any value type", func() {
			store.UpdateState(map[string]any{
				"position":  map[string]any{"x": 1.0, "y": 64.0, "z": -3.0},
				"connected": true,
			})
			Expect(store.Snapshot()).To(HaveKeyWithValue("connected", true))
			Expect(store.Snapshot()).To(HaveKey("position"))
		})

		It("hands out snapshots detached from the store", func() {
			store.UpdateState(map[string]any{"health": 20.0})
			snapshot := store.Snapshot()
			snapshot["health"] = 1.0
			Expect(store.Snapshot()).To(HaveKeyWithValue("health", 20.0))
		})

		It("summarizes the last three messages with the state", func() {
			for i := 1; i <= 4; i++ {
				store.RecordMessage("alice", fmt.Sprintf("m%d", i))
			}
			store.UpdateState(map[string]any{"food": 10.0})

			summary := store.Summary(3)
			Expect(summary.Recent).To(HaveLen(3))
			Expect(summary.Recent[0].Message).To(Equal("m2"))
			Expect(summary.State).To(HaveKeyWithValue("food", 10.0))
		})
	})

	It("is safe for concurrent writers", func() {
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				for j := 0; j < 50; j++ {
					store.RecordMessage("alice", "hi")
					store.UpdateState(map[string]any{fmt.Sprintf("k%d", i): j})
					_ = store.Summary(3)
				}
			}(i)
		}
		wg.Wait()

		Expect(store.History()).To(HaveLen(20))
		Expect(store.Snapshot()).To(HaveLen(10))
	})
})
