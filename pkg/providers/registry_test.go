package providers_test

import (
	"fmt"
	"sync"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/providers"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	var registry *providers.Registry

	BeforeEach(func() {
		registry = providers.NewRegistry(nil, nil)
	})

	Describe("RecordOutcome", func() {
		It("creates a record with the classified status", func() {
			record := registry.RecordOutcome("openai", "OpenAI", providers.Outcome{HTTPStatus: 401})

			Expect(record.Status).To(Equal(providers.StatusAuthError))
			Expect(record.ProviderID).To(Equal("openai"))
			Expect(record.ErrorCode).To(Equal(401))
			Expect(record.LastCheckedAt).ToNot(BeZero())
		})

		It("replaces the prior record for the same provider", func() {
			registry.RecordOutcome("openai", "OpenAI", providers.Outcome{HTTPStatus: 401})
			registry.RecordOutcome("openai", "OpenAI", providers.Outcome{OK: true, HTTPStatus: 200, LatencyMs: 42})

			record, ok := registry.Get("openai")
			Expect(ok).To(BeTrue())
			Expect(record.Status).To(Equal(providers.StatusConnected))
			Expect(record.ErrorCode).To(BeZero())
			Expect(record.LastLatencyMs).To(Equal(int64(42)))
		})

		It("keeps LastCheckedAt monotonically non-decreasing", func() {
			first := registry.RecordOutcome("openai", "OpenAI", providers.Outcome{OK: true})
			second := registry.RecordOutcome("openai", "OpenAI", providers.Outcome{OK: true})

			Expect(second.LastCheckedAt).To(BeTemporally(">=", first.LastCheckedAt))
		})

		It("is idempotent under retry except for timestamps", func() {
			outcome := providers.Outcome{HTTPStatus: 503, ErrorMessage: "upstream down"}
			first := registry.RecordOutcome("openai", "OpenAI", outcome)
			second := registry.RecordOutcome("openai", "OpenAI", outcome)

			Expect(second.Status).To(Equal(first.Status))
			Expect(second.ErrorMessage).To(Equal(first.ErrorMessage))
			Expect(second.Suggestions).To(Equal(first.Suggestions))
		})
	})

	Describe("Get", func() {
		It("returns false for unknown providers", func() {
			_, ok := registry.Get("nope")
			Expect(ok).To(BeFalse())
		})

		It("hands out copies, not live state", func() {
			registry.RecordOutcome("openai", "OpenAI", providers.Outcome{HTTPStatus: 401})

			record, _ := registry.Get("openai")
			record.Suggestions[0] = "tampered"

			fresh, _ := registry.Get("openai")
			Expect(fresh.Suggestions[0]).ToNot(Equal("tampered"))
		})
	})

	Describe("filters and health", func() {
		BeforeEach(func() {
			registry.RecordOutcome("openai", "OpenAI", providers.Outcome{OK: true})
			registry.RecordOutcome("anthropic", "Anthropic", providers.Outcome{HTTPStatus: 401})
			registry.RecordOutcome("ollama", "Ollama", providers.Outcome{Unconfigured: true})
		})

		It("lists connected providers", func() {
			connected := registry.AllConnected()
			Expect(connected).To(HaveLen(1))
			Expect(connected[0].ProviderID).To(Equal("openai"))
		})

		It("lists providers in error, excluding unconfigured and disabled", func() {
			inError := registry.AllInError()
			Expect(inError).To(HaveLen(1))
			Expect(inError[0].ProviderID).To(Equal("anthropic"))
		})

		It("computes aggregate health", func() {
			connected, total := registry.Health()
			Expect(connected).To(Equal(1))
			Expect(total).To(Equal(3))
		})

		It("keeps first-seen provider order in snapshots", func() {
			all := registry.All()
			Expect(all).To(HaveLen(3))
			Expect(all[0].ProviderID).To(Equal("openai"))
			Expect(all[1].ProviderID).To(Equal("anthropic"))
			Expect(all[2].ProviderID).To(Equal("ollama"))
		})
	})

	Describe("notification", func() {
		It("never delivers snapshots out of production order under concurrent records", func() {
			notifier := providers.NewNotifier(nil)
			registry = providers.NewRegistry(notifier, nil)

			// The subscriber runs under the notifier lock, so plain maps are
			// safe here. Each worker records strictly increasing latencies
			// for its own provider; an out-of-order delivery would show a
			// latency or snapshot length going backwards. Violations are
			// counted rather than asserted in place because the notifier
			// isolates subscriber panics.
			lastLen := 0
			violations := 0
			lastLatency := make(map[string]int64)
			notifier.Subscribe(func(s providers.Snapshot) {
				if len(s) < lastLen {
					violations++
				}
				lastLen = len(s)
				for _, rec := range s {
					if rec.LastLatencyMs < lastLatency[rec.ProviderID] {
						violations++
					}
					lastLatency[rec.ProviderID] = rec.LastLatencyMs
				}
			})

			const workers = 8
			const rounds = 200
			var wg sync.WaitGroup
			for w := 0; w < workers; w++ {
				wg.Add(1)
				go func(w int) {
					defer wg.Done()
					id := fmt.Sprintf("provider-%d", w)
					for i := 1; i <= rounds; i++ {
						registry.RecordOutcome(id, id, providers.Outcome{OK: true, LatencyMs: int64(i)})
					}
				}(w)
			}
			wg.Wait()

			Expect(violations).To(BeZero())
			Expect(lastLen).To(Equal(workers))
		})

		It("replays the newest produced snapshot to late subscribers", func() {
			notifier := providers.NewNotifier(nil)
			registry = providers.NewRegistry(notifier, nil)

			registry.RecordOutcome("openai", "OpenAI", providers.Outcome{HTTPStatus: 401})
			registry.RecordOutcome("openai", "OpenAI", providers.Outcome{OK: true})

			var got providers.Snapshot
			notifier.Subscribe(func(s providers.Snapshot) { got = s })

			Expect(got).To(HaveLen(1))
			Expect(got[0].Status).To(Equal(providers.StatusConnected))
		})

		It("publishes the full snapshot set after every record", func() {
			notifier := providers.NewNotifier(nil)
			registry = providers.NewRegistry(notifier, nil)

			var got providers.Snapshot
			notifier.Subscribe(func(s providers.Snapshot) { got = s })

			registry.RecordOutcome("openai", "OpenAI", providers.Outcome{OK: true})
			Expect(got).To(HaveLen(1))

			registry.RecordOutcome("ollama", "Ollama", providers.Outcome{OK: true})
			Expect(got).To(HaveLen(2))
		})
	})
})
