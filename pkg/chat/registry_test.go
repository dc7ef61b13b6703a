package chat_test

import (
	"sync"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SessionRegistry", func() {
	var registry *chat.SessionRegistry

	BeforeEach(func() {
		registry = chat.NewSessionRegistry(nil)
	})

	currentIDs := func() []string {
		var ids []string
		for _, s := range registry.Sessions() {
			if s.IsCurrent {
				ids = append(ids, s.ID)
			}
		}
		return ids
	}

	Describe("first use", func() {
		It("auto-creates a default session", func() {
			session := registry.Current()

			Expect(session.Name).To(Equal(chat.DefaultSessionName))
			Expect(session.IsCurrent).To(BeTrue())
			Expect(registry.Len()).To(Equal(1))
		})

		It("creates exactly one default session under concurrent first calls", func() {
			const callers = 16
			var wg sync.WaitGroup
			ids := make([]string, callers)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					ids[i] = registry.Current().ID
				}(i)
			}
			wg.Wait()

			Expect(registry.Len()).To(Equal(1))
			for _, id := range ids {
				Expect(id).To(Equal(ids[0]))
			}
		})
	})

	Describe("Create", func() {
		It("marks the new session current and demotes all others", func() {
			a := registry.Create("A")
			b := registry.Create("B")

			Expect(currentIDs()).To(Equal([]string{b.ID}))
			got, _ := registry.Get(a.ID)
			Expect(got.IsCurrent).To(BeFalse())
		})
	})

	Describe("SwitchTo", func() {
		It("moves the current flag to the target session", func() {
			a := registry.Create("A")
			registry.Create("B")

			registry.SwitchTo(a.ID)

			Expect(currentIDs()).To(Equal([]string{a.ID}))
		})

		It("is a no-op for unknown ids", func() {
			a := registry.Create("A")
			registry.SwitchTo("no-such-session")
			Expect(currentIDs()).To(Equal([]string{a.ID}))
		})
	})

	Describe("Close", func() {
		It("rejects closing the last remaining session", func() {
			a := registry.Create("A")

			err := registry.Close(a.ID)

			Expect(err).To(MatchError(chat.ErrCannotCloseLastSession))
			Expect(registry.Len()).To(Equal(1))
		})

		It("promotes the most recently created session when closing the current one", func() {
			a := registry.Create("A")
			b := registry.Create("B")

			Expect(registry.Close(b.ID)).To(Succeed())

			Expect(currentIDs()).To(Equal([]string{a.ID}))
		})

		It("keeps the current session when closing a non-current one", func() {
			a := registry.Create("A")
			b := registry.Create("B")

			Expect(registry.Close(a.ID)).To(Succeed())

			Expect(currentIDs()).To(Equal([]string{b.ID}))
		})

		It("returns ErrSessionNotFound for unknown ids", func() {
			registry.Create("A")
			Expect(registry.Close("nope")).To(MatchError(chat.ErrSessionNotFound))
		})

		It("holds the exactly-one-current invariant across interleaved operations", func() {
			a := registry.Create("A")
			b := registry.Create("B")
			c := registry.Create("C")

			registry.SwitchTo(a.ID)
			Expect(registry.Close(b.ID)).To(Succeed())
			registry.SwitchTo(c.ID)
			Expect(registry.Close(c.ID)).To(Succeed())

			Expect(currentIDs()).To(HaveLen(1))
			Expect(currentIDs()[0]).To(Equal(a.ID))
		})
	})

	Describe("Append", func() {
		It("appends in order", func() {
			session := registry.Create("A")

			Expect(registry.Append(session.ID, chat.NewUserMessage("one"))).To(Succeed())
			Expect(registry.Append(session.ID, chat.NewAssistantMessage("two"))).To(Succeed())

			got, _ := registry.Get(session.ID)
			Expect(got.Messages).To(HaveLen(2))
			Expect(got.Messages[0].Content).To(Equal("one"))
			Expect(got.Messages[1].Content).To(Equal("two"))
		})

		It("returns ErrSessionNotFound after the session was closed", func() {
			a := registry.Create("A")
			registry.Create("B")
			Expect(registry.Close(a.ID)).To(Succeed())

			err := registry.Append(a.ID, chat.NewUserMessage("late"))

			Expect(err).To(MatchError(chat.ErrSessionNotFound))
		})

		It("rolls message metadata up into session metrics", func() {
			session := registry.Create("A")

			msg := chat.NewAssistantMessage("hi").
				WithProvider("openai", "gpt-4o").
				WithMetadata(chat.MessageMetadata{Tokens: 10, CostUSD: 0.02, LatencyMs: 100})
			Expect(registry.Append(session.ID, msg)).To(Succeed())

			msg = chat.NewAssistantMessage("again").
				WithProvider("openai", "gpt-4o").
				WithMetadata(chat.MessageMetadata{Tokens: 5, CostUSD: 0.01, LatencyMs: 300})
			Expect(registry.Append(session.ID, msg)).To(Succeed())

			got, _ := registry.Get(session.ID)
			Expect(got.Metrics.TotalTokens).To(Equal(15))
			Expect(got.Metrics.TotalCostUSD).To(BeNumerically("~", 0.03, 1e-9))
			Expect(got.Metrics.TotalRequests).To(Equal(2))
			Expect(got.Metrics.AverageLatencyMs).To(BeNumerically("~", 200, 1e-9))
			Expect(got.Metrics.ProviderUsage["openai"]).To(Equal(2))
			Expect(got.Metrics.ModelUsage["gpt-4o"]).To(Equal(2))
		})
	})

	Describe("Clear and Rename", func() {
		It("drops messages and metrics but keeps the session", func() {
			session := registry.Create("A")
			Expect(registry.Append(session.ID, chat.NewUserMessage("hi"))).To(Succeed())

			Expect(registry.Clear(session.ID)).To(Succeed())

			got, _ := registry.Get(session.ID)
			Expect(got.Messages).To(BeEmpty())
			Expect(got.Metrics.TotalRequests).To(BeZero())
		})

		It("renames a session", func() {
			session := registry.Create("A")
			Expect(registry.Rename(session.ID, "Research")).To(Succeed())

			got, _ := registry.Get(session.ID)
			Expect(got.Name).To(Equal("Research"))
		})
	})

	Describe("snapshots", func() {
		It("hands out copies that cannot alias registry state", func() {
			session := registry.Create("A")
			Expect(registry.Append(session.ID, chat.NewUserMessage("hi"))).To(Succeed())

			got, _ := registry.Get(session.ID)
			got.Messages[0].Content = "tampered"
			got.Metrics.ProviderUsage["fake"] = 99

			fresh, _ := registry.Get(session.ID)
			Expect(fresh.Messages[0].Content).To(Equal("hi"))
			Expect(fresh.Metrics.ProviderUsage).ToNot(HaveKey("fake"))
		})
	})

	Describe("listeners", func() {
		It("notifies on session change and message append", func() {
			var changed []string
			var appended []string
			registry.OnSessionChanged(func(s chat.Session) { changed = append(changed, s.ID) })
			registry.OnMessageAppended(func(id string, m chat.Message) { appended = append(appended, m.Content) })

			a := registry.Create("A")
			b := registry.Create("B")
			registry.SwitchTo(a.ID)
			Expect(registry.Append(a.ID, chat.NewUserMessage("hi"))).To(Succeed())

			Expect(changed).To(Equal([]string{a.ID, b.ID, a.ID}))
			Expect(appended).To(Equal([]string{"hi"}))
		})
	})
})
