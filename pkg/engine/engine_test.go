package engine_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docqueryco/docquery/pkg/chat"
	"github.com/docqueryco/docquery/pkg/document"
	"github.com/docqueryco/docquery/pkg/engine"
	"github.com/docqueryco/docquery/pkg/segment"
	"github.com/docqueryco/docquery/pkg/synthesis"
	testutils "github.com/docqueryco/docquery/pkg/utils/test"
	"github.com/docqueryco/docquery/pkg/vector"
	"github.com/docqueryco/docquery/pkg/vector/memory"
)

// pagesExtractor serves a fixed page set regardless of path.
func pagesExtractor(pages []document.Page) document.Extractor {
	return document.ExtractFunc(func(string) ([]document.Page, error) {
		return pages, nil
	})
}

var _ = Describe("Engine", func() {
	var (
		ctx        context.Context
		chatClient *testutils.MockChatClient
	)

	newEngine := func(extractor document.Extractor) *engine.Engine {
		eng, err := engine.New(
			engine.Config{TopK: 2, FetchK: 3},
			engine.Deps{
				Extractor:   extractor,
				Segmenter:   segment.NewSegmenter(0, -1),
				Embedder:    testutils.NewWordEmbedder(),
				BuildIndex:  memory.Build,
				Synthesizer: synthesis.NewSynthesizer(chatClient, synthesis.Config{}),
			},
		)
		Expect(err).NotTo(HaveOccurred())
		return eng
	}

	BeforeEach(func() {
		ctx = context.Background()
		chatClient = testutils.NewMockChatClient("The capital of France is Paris.")
	})

	Describe("New", func() {
		It("requires every collaborator", func() {
			_, err := engine.New(engine.Config{}, engine.Deps{})
			Expect(err).To(HaveOccurred())
		})

		It("rejects top_k above fetch_k", func() {
			_, err := engine.New(
				engine.Config{TopK: 11, FetchK: 10},
				engine.Deps{
					Extractor:   pagesExtractor(nil),
					Segmenter:   segment.NewSegmenter(0, -1),
					Embedder:    testutils.NewWordEmbedder(),
					BuildIndex:  memory.Build,
					Synthesizer: synthesis.NewSynthesizer(chatClient, synthesis.Config{}),
				},
			)
			Expect(err).To(MatchError(vector.ErrInvalidK))
		})
	})

	Describe("Query before any document", func() {
		It("fails with ErrNoDocument", func() {
			eng := newEngine(pagesExtractor(nil))
			_, err := eng.Query(ctx, "anything")
			Expect(err).To(MatchError(engine.ErrNoDocument))
			Expect(eng.HasDocument()).To(BeFalse())
		})
	})

	Describe("ProcessDocument", func() {
		It("fails on a document with no extractable text", func() {
			eng := newEngine(pagesExtractor([]document.Page{{Text: "", Index: 0}}))
			_, err := eng.ProcessDocument(ctx, "empty.txt")
			Expect(err).To(MatchError(vector.ErrEmptyIndex))
			Expect(eng.HasDocument()).To(BeFalse())
		})

		It("surfaces extraction failures", func() {
			failing := document.ExtractFunc(func(string) ([]document.Page, error) {
				return nil, document.ErrUnreadable
			})
			eng := newEngine(failing)
			_, err := eng.ProcessDocument(ctx, "broken.pdf")
			Expect(err).To(MatchError(document.ErrUnreadable))
		})

		It("fails ingest when chunk embedding fails", func() {
			embedder := testutils.NewMockEmbedder()
			embedder.FailOn = "Paris is the capital of France."

			eng, err := engine.New(
				engine.Config{TopK: 2, FetchK: 3},
				engine.Deps{
					Extractor:   pagesExtractor([]document.Page{{Text: "Paris is the capital of France.", Index: 0}}),
					Segmenter:   segment.NewSegmenter(0, -1),
					Embedder:    embedder,
					BuildIndex:  memory.Build,
					Synthesizer: synthesis.NewSynthesizer(chatClient, synthesis.Config{}),
				},
			)
			Expect(err).NotTo(HaveOccurred())

			_, err = eng.ProcessDocument(ctx, "doc.txt")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("embedding chunks"))
			Expect(eng.HasDocument()).To(BeFalse())
		})

		It("returns the chunk count", func() {
			eng := newEngine(pagesExtractor([]document.Page{
				{Text: "Paris is the capital of France.", Index: 0},
				{Text: "It rained all week in Bergen.", Index: 1},
			}))

			chunks, err := eng.ProcessDocument(ctx, "doc.txt")
			Expect(err).NotTo(HaveOccurred())
			Expect(chunks).To(Equal(2))
			Expect(eng.HasDocument()).To(BeTrue())
		})
	})

	Describe("asking about a two-page document", func() {
		var eng *engine.Engine

		BeforeEach(func() {
			eng = newEngine(pagesExtractor([]document.Page{
				{Text: "Paris is the capital of France. France is in Europe.", Index: 0},
				{Text: "It rained all week in Bergen. The fjords were misty.", Index: 1},
			}))

			_, err := eng.ProcessDocument(ctx, "doc.txt")
			Expect(err).NotTo(HaveOccurred())
		})

		It("answers with retrieved sources attached", func() {
			resp, err := eng.Query(ctx, "What is the capital of France?")
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Answer).To(Equal("The capital of France is Paris."))
			Expect(resp.Sources).NotTo(BeEmpty())
		})

		It("ranks the on-topic page first", func() {
			resp, err := eng.Query(ctx, "What is the capital of France?")
			Expect(err).NotTo(HaveOccurred())

			Expect(resp.Sources[0].SourcePage).To(Equal(0))
			Expect(resp.Sources[0].Text).To(ContainSubstring("Paris"))
		})

		It("grounds the prompt in the retrieved passages", func() {
			_, err := eng.Query(ctx, "What is the capital of France?")
			Expect(err).NotTo(HaveOccurred())

			Expect(chatClient.Requests).To(HaveLen(1))
			Expect(chatClient.Requests[0].Prompt).To(ContainSubstring("Paris is the capital of France."))
			Expect(chatClient.Requests[0].Prompt).To(ContainSubstring("What is the capital of France?"))
		})

		It("rejects an empty question", func() {
			_, err := eng.Query(ctx, "")
			Expect(err).To(MatchError(engine.ErrEmptyQuestion))
		})

		It("keeps sources when the provider is rate limited", func() {
			chatClient.Err = &chat.ProviderError{
				Kind:     chat.KindRateLimited,
				Provider: "groq",
				Message:  "too many requests",
			}

			resp, err := eng.Query(ctx, "What is the capital of France?")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Answer).To(Equal(synthesis.RateLimitAnswer))
			Expect(resp.Sources).NotTo(BeEmpty())
		})
	})

	Describe("build-then-swap", func() {
		It("leaves the previous index live after a failed ingest", func() {
			pages := []document.Page{
				{Text: "Paris is the capital of France.", Index: 0},
			}
			calls := 0
			flaky := document.ExtractFunc(func(string) ([]document.Page, error) {
				calls++
				if calls > 1 {
					return nil, document.ErrUnreadable
				}
				return pages, nil
			})

			eng := newEngine(flaky)
			_, err := eng.ProcessDocument(ctx, "good.txt")
			Expect(err).NotTo(HaveOccurred())

			_, err = eng.ProcessDocument(ctx, "bad.txt")
			Expect(err).To(MatchError(document.ErrUnreadable))

			// The first document still answers.
			resp, err := eng.Query(ctx, "What is the capital of France?")
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Sources).NotTo(BeEmpty())
		})
	})

	Describe("Close", func() {
		It("releases the index and is safe before any ingest", func() {
			eng := newEngine(pagesExtractor(nil))
			Expect(eng.Close()).To(Succeed())
		})

		It("drops the live document", func() {
			eng := newEngine(pagesExtractor([]document.Page{
				{Text: "some text", Index: 0},
			}))
			_, err := eng.ProcessDocument(ctx, "doc.txt")
			Expect(err).NotTo(HaveOccurred())

			Expect(eng.Close()).To(Succeed())
			Expect(eng.HasDocument()).To(BeFalse())
		})
	})
})
