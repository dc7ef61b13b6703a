package providers_test

import (
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/providers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Notifier", func() {
	var notifier *providers.Notifier

	snapshot := func(ids ...string) providers.Snapshot {
		var s providers.Snapshot
		for _, id := range ids {
			s = append(s, providers.StatusRecord{ProviderID: id, Status: providers.StatusConnected})
		}
		return s
	}

	BeforeEach(func() {
		notifier = providers.NewNotifier(nil)
	})

	It("delivers to all subscribers in subscription order", func() {
		var order []string
		notifier.Subscribe(func(providers.Snapshot) { order = append(order, "first") })
		notifier.Subscribe(func(providers.Snapshot) { order = append(order, "second") })
		notifier.Subscribe(func(providers.Snapshot) { order = append(order, "third") })

		notifier.Publish(snapshot("openai"))

		Expect(order).To(Equal([]string{"first", "second", "third"}))
	})

	It("replays the latest snapshot to a new subscriber immediately", func() {
		notifier.Publish(snapshot("openai", "ollama"))

		var got providers.Snapshot
		notifier.Subscribe(func(s providers.Snapshot) { got = s })

		Expect(got).To(HaveLen(2))
	})

	It("does not replay anything before the first publish", func() {
		called := false
		notifier.Subscribe(func(providers.Snapshot) { called = true })
		Expect(called).To(BeFalse())
	})

	It("isolates a panicking subscriber from the rest", func() {
		var delivered []string
		notifier.Subscribe(func(providers.Snapshot) { delivered = append(delivered, "a") })
		notifier.Subscribe(func(providers.Snapshot) { panic("boom") })
		notifier.Subscribe(func(providers.Snapshot) { delivered = append(delivered, "c") })

		Expect(func() { notifier.Publish(snapshot("openai")) }).ToNot(Panic())
		Expect(delivered).To(Equal([]string{"a", "c"}))
	})

	It("stops delivering after unsubscribe", func() {
		count := 0
		sub := notifier.Subscribe(func(providers.Snapshot) { count++ })

		notifier.Publish(snapshot("openai"))
		notifier.Unsubscribe(sub)
		notifier.Publish(snapshot("openai"))

		Expect(count).To(Equal(1))
		Expect(notifier.SubscriberCount()).To(BeZero())
	})

	It("tolerates unsubscribing an unknown handle", func() {
		Expect(func() { notifier.Unsubscribe(providers.Subscription{}) }).ToNot(Panic())
	})
})
