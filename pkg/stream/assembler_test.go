package stream_test

import (
	"errors"

	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/chat"
	"github.com/guthubrx/ai-developer-analytics-sub001/pkg/stream"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Assembler", func() {
	var (
		sessions  *chat.SessionRegistry
		assembler *stream.Assembler
		session   chat.Session
	)

	BeforeEach(func() {
		sessions = chat.NewSessionRegistry(nil)
		assembler = stream.NewAssembler(sessions, nil)
		session = sessions.Create("S1")
	})

	Describe("Begin", func() {
		It("opens an active buffer for the session", func() {
			buffer, err := assembler.Begin(session.ID, "openai", "gpt-4o")

			Expect(err).ToNot(HaveOccurred())
			Expect(buffer.State()).To(Equal(stream.StateActive))
			Expect(buffer.SessionID()).To(Equal(session.ID))
		})

		It("rejects a second begin for the same session", func() {
			_, err := assembler.Begin(session.ID, "openai", "gpt-4o")
			Expect(err).ToNot(HaveOccurred())

			_, err = assembler.Begin(session.ID, "openai", "gpt-4o")
			Expect(err).To(MatchError(stream.ErrDuplicateActiveStream))
		})

		It("allows concurrent streams in different sessions", func() {
			other := sessions.Create("S2")

			_, err := assembler.Begin(session.ID, "openai", "gpt-4o")
			Expect(err).ToNot(HaveOccurred())
			_, err = assembler.Begin(other.ID, "ollama", "llama3")
			Expect(err).ToNot(HaveOccurred())
		})

		It("allows a new stream after the previous one finished", func() {
			buffer, _ := assembler.Begin(session.ID, "openai", "gpt-4o")
			_, err := assembler.Complete(buffer, chat.MessageMetadata{})
			Expect(err).ToNot(HaveOccurred())

			_, err = assembler.Begin(session.ID, "openai", "gpt-4o")
			Expect(err).ToNot(HaveOccurred())
		})
	})

	Describe("AppendFragment", func() {
		It("accumulates fragments in arrival order", func() {
			buffer, _ := assembler.Begin(session.ID, "openai", "gpt-4o")

			assembler.AppendFragment(buffer, "Hel")
			assembler.AppendFragment(buffer, "lo **wor")
			assembler.AppendFragment(buffer, "ld**")

			Expect(buffer.Raw()).To(Equal("Hello **world**"))
			Expect(buffer.SafeRender()).To(Equal("Hello <strong>world</strong>"))
		})

		It("keeps the safe render free of dangling constructs", func() {
			buffer, _ := assembler.Begin(session.ID, "openai", "gpt-4o")

			assembler.AppendFragment(buffer, "Hello **wor")

			Expect(buffer.SafeRender()).ToNot(ContainSubstring("<strong>"))
		})
	})

	Describe("Complete", func() {
		It("appends the finalized assistant message to the session", func() {
			buffer, _ := assembler.Begin(session.ID, "openai", "gpt-4o")
			assembler.AppendFragment(buffer, "Hello **world**")

			msg, err := assembler.Complete(buffer, chat.MessageMetadata{Tokens: 7, LatencyMs: 150})

			Expect(err).ToNot(HaveOccurred())
			Expect(msg.Role).To(Equal(chat.RoleAssistant))
			Expect(msg.Content).To(Equal("Hello <strong>world</strong>"))
			Expect(msg.Provider).To(Equal("openai"))

			got, _ := sessions.Get(session.ID)
			Expect(got.Messages).To(HaveLen(1))
			Expect(got.Messages[0].Content).To(Equal("Hello <strong>world</strong>"))
			Expect(got.Metrics.TotalTokens).To(Equal(7))
		})

		It("drops fragments arriving after completion", func() {
			buffer, _ := assembler.Begin(session.ID, "openai", "gpt-4o")
			assembler.AppendFragment(buffer, "done")
			msg, err := assembler.Complete(buffer, chat.MessageMetadata{})
			Expect(err).ToNot(HaveOccurred())

			assembler.AppendFragment(buffer, " straggler")

			Expect(buffer.Raw()).To(Equal("done"))
			got, _ := sessions.Get(session.ID)
			Expect(got.Messages[0].Content).To(Equal(msg.Content))
		})

		It("reports a second terminal transition as misuse", func() {
			buffer, _ := assembler.Begin(session.ID, "openai", "gpt-4o")
			_, err := assembler.Complete(buffer, chat.MessageMetadata{})
			Expect(err).ToNot(HaveOccurred())

			_, err = assembler.Complete(buffer, chat.MessageMetadata{})
			Expect(err).To(MatchError(stream.ErrBufferAlreadyTerminal))
		})
	})

	Describe("Cancel", func() {
		It("discards the buffer without appending a message", func() {
			buffer, _ := assembler.Begin(session.ID, "openai", "gpt-4o")
			assembler.AppendFragment(buffer, "partial answer")

			Expect(assembler.Cancel(buffer, "user interrupt")).To(Succeed())

			Expect(buffer.State()).To(Equal(stream.StateCancelled))
			got, _ := sessions.Get(session.ID)
			Expect(got.Messages).To(BeEmpty())
		})

		It("drops fragments arriving after cancellation", func() {
			buffer, _ := assembler.Begin(session.ID, "openai", "gpt-4o")
			Expect(assembler.Cancel(buffer, "user interrupt")).To(Succeed())

			assembler.AppendFragment(buffer, "late fragment")

			Expect(buffer.Raw()).To(BeEmpty())
		})
	})

	Describe("Fail", func() {
		It("appends an error-role message carrying the error text", func() {
			buffer, _ := assembler.Begin(session.ID, "openai", "gpt-4o")
			assembler.AppendFragment(buffer, "partial")

			msg, err := assembler.Fail(buffer, errors.New("connection reset"))

			Expect(err).ToNot(HaveOccurred())
			Expect(msg.Role).To(Equal(chat.RoleError))
			Expect(msg.Content).To(ContainSubstring("connection reset"))

			got, _ := sessions.Get(session.ID)
			Expect(got.Messages).To(HaveLen(1))
			Expect(got.Messages[0].IsError()).To(BeTrue())
		})
	})

	Describe("orphaned buffers", func() {
		It("drops the finalized message when the session vanished mid-stream", func() {
			other := sessions.Create("S2")
			buffer, _ := assembler.Begin(other.ID, "openai", "gpt-4o")
			assembler.AppendFragment(buffer, "text")
			Expect(sessions.Close(other.ID)).To(Succeed())

			_, err := assembler.Complete(buffer, chat.MessageMetadata{})

			Expect(err).ToNot(HaveOccurred())
			Expect(sessions.Len()).To(Equal(1))
		})
	})
})
