package synthesis_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docqueryco/docquery/pkg/chat"
	"github.com/docqueryco/docquery/pkg/segment"
	"github.com/docqueryco/docquery/pkg/synthesis"
	testutils "github.com/docqueryco/docquery/pkg/utils/test"
)

var _ = Describe("BuildContext", func() {
	It("prefixes each passage with its one-based page number", func() {
		out := synthesis.BuildContext([]segment.Chunk{
			{Text: "First passage.", SourcePage: 0},
			{Text: "Second passage.", SourcePage: 4},
		})

		Expect(out).To(ContainSubstring("[From Page 1]\nFirst passage."))
		Expect(out).To(ContainSubstring("[From Page 5]\nSecond passage."))
	})

	It("separates passages with a visible delimiter", func() {
		out := synthesis.BuildContext([]segment.Chunk{
			{Text: "one", SourcePage: 0},
			{Text: "two", SourcePage: 0},
		})

		Expect(out).To(Equal("[From Page 1]\none\n\n---\n\n[From Page 1]\ntwo"))
	})

	It("is empty for no passages", func() {
		Expect(synthesis.BuildContext(nil)).To(BeEmpty())
	})
})

var _ = Describe("BuildPrompt", func() {
	var prompt string

	BeforeEach(func() {
		prompt = synthesis.BuildPrompt("What is the capital?", []segment.Chunk{
			{Text: "Paris is the capital of France.", SourcePage: 1},
		})
	})

	It("carries the question verbatim", func() {
		Expect(prompt).To(ContainSubstring("USER'S QUESTION: What is the capital?"))
	})

	It("embeds the passage context", func() {
		Expect(prompt).To(ContainSubstring("[From Page 2]\nParis is the capital of France."))
	})

	It("instructs the model to use the fixed fallback sentence", func() {
		Expect(prompt).To(ContainSubstring(synthesis.FallbackAnswer))
	})

	It("states the grounding rules", func() {
		Expect(prompt).To(ContainSubstring("CRITICAL RULES:"))
		Expect(prompt).To(ContainSubstring("Use ONLY the information from the context below"))
	})
})

var _ = Describe("CleanAnswer", func() {
	It("trims surrounding whitespace", func() {
		Expect(synthesis.CleanAnswer("  the answer \n")).To(Equal("the answer"))
	})

	It("strips a stray leading colon", func() {
		Expect(synthesis.CleanAnswer(": the answer")).To(Equal("the answer"))
	})

	It("keeps interior colons", func() {
		Expect(synthesis.CleanAnswer("note: the answer")).To(Equal("note: the answer"))
	})
})

var _ = Describe("Synthesize", func() {
	var (
		ctx      context.Context
		client   *testutils.MockChatClient
		passages []segment.Chunk
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = testutils.NewMockChatClient("Paris.")
		passages = []segment.Chunk{
			{Text: "Paris is the capital of France.", SourcePage: 0},
		}
	})

	It("returns the cleaned completion", func() {
		client.Response = " : Paris. "
		s := synthesis.NewSynthesizer(client, synthesis.Config{})
		Expect(s.Synthesize(ctx, "capital?", passages)).To(Equal("Paris."))
	})

	It("sends the default temperature and token bound", func() {
		s := synthesis.NewSynthesizer(client, synthesis.Config{})
		s.Synthesize(ctx, "capital?", passages)

		Expect(client.Requests).To(HaveLen(1))
		Expect(client.Requests[0].Temperature).To(Equal(synthesis.DefaultTemperature))
		Expect(client.Requests[0].MaxTokens).To(Equal(synthesis.DefaultMaxTokens))
	})

	It("honors configured overrides", func() {
		s := synthesis.NewSynthesizer(client, synthesis.Config{
			Temperature: 0.7,
			MaxTokens:   256,
		})
		s.Synthesize(ctx, "capital?", passages)

		Expect(client.Requests[0].Temperature).To(Equal(0.7))
		Expect(client.Requests[0].MaxTokens).To(Equal(256))
	})

	Context("when the provider is rate limited", func() {
		It("answers with the rate limit notice", func() {
			client.Err = &chat.ProviderError{
				Kind:     chat.KindRateLimited,
				Provider: "groq",
				Message:  "too many requests",
			}
			s := synthesis.NewSynthesizer(client, synthesis.Config{})
			Expect(s.Synthesize(ctx, "capital?", passages)).To(Equal(synthesis.RateLimitAnswer))
		})
	})

	Context("when the provider fails otherwise", func() {
		It("answers with a truncated error description", func() {
			client.Err = errors.New("connection refused")
			s := synthesis.NewSynthesizer(client, synthesis.Config{})
			Expect(s.Synthesize(ctx, "capital?", passages)).To(Equal("Error: connection refused"))
		})

		It("caps long error messages", func() {
			client.Err = errors.New(strings.Repeat("x", 500))
			s := synthesis.NewSynthesizer(client, synthesis.Config{})

			answer := s.Synthesize(ctx, "capital?", passages)
			Expect(answer).To(HavePrefix("Error: "))
			Expect(len(answer)).To(BeNumerically("<=", len("Error: ")+103))
		})
	})
})
