package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docqueryco/docquery/pkg/embeddings/ollama"
	"github.com/docqueryco/docquery/pkg/vector"
)

var _ = Describe("Embedder", func() {
	var (
		ctx     context.Context
		server  *httptest.Server
		handler http.HandlerFunc
	)

	newEmbedder := func() *ollama.Embedder {
		embedder, err := ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: server.URL,
			Model:   "nomic-embed-text",
		})
		Expect(err).NotTo(HaveOccurred())
		return embedder
	}

	// embedText is a fixed pure function of the input, the way a real
	// embedding model maps identical texts to identical vectors.
	embedText := func(text string) []float32 {
		vec := make([]float32, 4)
		for i, r := range text {
			vec[i%4] += float32(r)
		}
		return vec
	}

	BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler(w, r)
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	Context("on success", func() {
		var received map[string]any

		BeforeEach(func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/embed"))
				Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())

				var out [][]float32
				for _, input := range received["input"].([]any) {
					out = append(out, embedText(input.(string)))
				}
				w.Header().Set("Content-Type", "application/json")
				Expect(json.NewEncoder(w).Encode(map[string]any{"embeddings": out})).To(Succeed())
			}
		})

		It("sends the model and the text batch", func() {
			_, err := newEmbedder().EmbedBatch(ctx, []string{"alpha", "beta"})
			Expect(err).NotTo(HaveOccurred())

			Expect(received["model"]).To(Equal("nomic-embed-text"))
			Expect(received["input"]).To(Equal([]any{"alpha", "beta"}))
		})

		It("preserves batch order", func() {
			vectors, err := newEmbedder().EmbedBatch(ctx, []string{"alpha", "beta"})
			Expect(err).NotTo(HaveOccurred())
			Expect(vectors).To(HaveLen(2))
			Expect(vectors[0]).To(Equal(embedText("alpha")))
			Expect(vectors[1]).To(Equal(embedText("beta")))
		})

		It("returns identical vectors for repeated calls on the same text", func() {
			embedder := newEmbedder()

			first, err := embedder.Embed(ctx, "the capital of France")
			Expect(err).NotTo(HaveOccurred())
			second, err := embedder.Embed(ctx, "the capital of France")
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(Equal(first))
		})

		It("embeds nothing without a request", func() {
			vectors, err := newEmbedder().EmbedBatch(ctx, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(vectors).To(BeNil())
		})
	})

	Context("on a server error", func() {
		BeforeEach(func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`model not found`))
			}
		})

		It("returns an embedding error", func() {
			_, err := newEmbedder().Embed(ctx, "alpha")
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, vector.ErrEmbedding)).To(BeTrue())
		})
	})

	Context("when the response count does not match", func() {
		BeforeEach(func() {
			handler = func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2]]}`))
			}
		})

		It("fails rather than misaligning texts and vectors", func() {
			_, err := newEmbedder().EmbedBatch(ctx, []string{"alpha", "beta"})
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, vector.ErrEmbedding)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("expected 2 embeddings"))
		})
	})
})
