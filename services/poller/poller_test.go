package poller_test

import (
	"context"
	"net/http"
	"time"

	"github.com/mudler/MCBridge/core/state"
	"github.com/mudler/MCBridge/pkg/botapi"
	"github.com/mudler/MCBridge/pkg/botapi/botapitest"
	"github.com/mudler/MCBridge/services/poller"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Poller", func() {
	var (
		fake   *botapitest.Server
		client *botapi.Client
		store  *state.Store
	)

	BeforeEach(func() {
		fake = botapitest.NewServer()
		client = botapi.NewClient(fake.URL, 2*time.Second)
		store = state.NewStore()
		fake.Respond("status", http.StatusOK, `{"success":true,"data":{"health":19,"food":20,"gameMode":"survival"}}`)
	})

	AfterEach(func() {
		fake.Close()
	})

	It("rejects invalid schedules", func() {
		_, err := poller.New("every now and then", client, store)
		Expect(err).To(HaveOccurred())
	})

	It("merges the polled status into the state", func() {
		store.UpdateState(map[string]any{"goal": "wood"})
		p, err := poller.New("@every 30s", client, store)
		Expect(err).ToNot(HaveOccurred())

		Expect(p.Poll(context.Background())).To(Succeed())
		snap := store.Snapshot()
		Expect(snap).To(HaveKeyWithValue("health", 19.0))
		Expect(snap).To(HaveKeyWithValue("gameMode", "survival"))
		Expect(snap).To(HaveKeyWithValue("goal", "wood"))
	})

	It("leaves the state alone when the bot is unreachable", func() {
		fake.Respond("status", http.StatusServiceUnavailable, `{"success":false,"error":"Bot not connected"}`)
		p, err := poller.New("@every 30s", client, store)
		Expect(err).ToNot(HaveOccurred())

		Expect(p.Poll(context.Background())).To(MatchError(ContainSubstring("Bot not connected")))
		Expect(store.Snapshot()).To(BeEmpty())
	})

	It("polls on schedule until cancelled", func() {
		p, err := poller.New("@every 1s", client, store)
		Expect(err).ToNot(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- p.Start(ctx) }()

		Eventually(store.Snapshot, 5*time.Second).Should(HaveKey("health"))
		Expect(fake.CallsTo("status")).ToNot(BeEmpty())

		cancel()
		Eventually(done, 5*time.Second).Should(Receive(BeNil()))
	})
})
