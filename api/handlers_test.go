package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docqueryco/docquery/pkg/document"
	"github.com/docqueryco/docquery/pkg/engine"
	"github.com/docqueryco/docquery/pkg/logger"
	"github.com/docqueryco/docquery/pkg/segment"
	"github.com/docqueryco/docquery/pkg/vector"
)

// fakeEngine is a scripted engine for handler tests.
type fakeEngine struct {
	chunks     int
	processErr error

	resp     *engine.Response
	queryErr error

	lastPath     string
	lastQuestion string
}

func (f *fakeEngine) ProcessDocument(_ context.Context, path string) (int, error) {
	f.lastPath = path
	if f.processErr != nil {
		return 0, f.processErr
	}
	return f.chunks, nil
}

func (f *fakeEngine) Query(_ context.Context, question string) (*engine.Response, error) {
	f.lastQuestion = question
	if question == "" {
		return nil, engine.ErrEmptyQuestion
	}
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.resp, nil
}

func (f *fakeEngine) HasDocument() bool {
	return f.resp != nil
}

func postJSON(server *Server, path string, body any) *http.Response {
	GinkgoHelper()

	payload, err := json.Marshal(body)
	Expect(err).NotTo(HaveOccurred())

	req, err := http.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.app.Test(req)
	Expect(err).NotTo(HaveOccurred())
	return resp
}

var _ = Describe("API handlers", func() {
	var (
		server *Server
		eng    *fakeEngine
	)

	BeforeEach(func() {
		eng = &fakeEngine{}

		var err error
		server, err = NewServer(Config{ListenAddr: ":0"}, eng, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			req, err := http.NewRequest(http.MethodGet, "/ping", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("pong"))
		})
	})

	Describe("POST /v1/documents", func() {
		It("ingests a document and reports the chunk count", func() {
			eng.chunks = 12

			resp := postJSON(server, "/v1/documents", ProcessDocumentRequest{Path: "report.pdf"})
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var out ProcessDocumentResponse
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out.Path).To(Equal("report.pdf"))
			Expect(out.Chunks).To(Equal(12))
			Expect(eng.lastPath).To(Equal("report.pdf"))
		})

		It("returns 400 for a malformed body", func() {
			req, err := http.NewRequest(http.MethodPost, "/v1/documents", bytes.NewReader([]byte("{not json")))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("returns 400 when path is missing", func() {
			resp := postJSON(server, "/v1/documents", ProcessDocumentRequest{})
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("path is required"))
		})

		It("returns 422 for an unreadable document", func() {
			eng.processErr = fmt.Errorf("extracting: %w", document.ErrUnreadable)

			resp := postJSON(server, "/v1/documents", ProcessDocumentRequest{Path: "broken.pdf"})
			Expect(resp.StatusCode).To(Equal(fiber.StatusUnprocessableEntity))
		})

		It("returns 422 for a document with no extractable text", func() {
			eng.processErr = fmt.Errorf("%w: document has no extractable text", vector.ErrEmptyIndex)

			resp := postJSON(server, "/v1/documents", ProcessDocumentRequest{Path: "blank.pdf"})
			Expect(resp.StatusCode).To(Equal(fiber.StatusUnprocessableEntity))
		})

		It("returns 502 when embedding fails", func() {
			eng.processErr = fmt.Errorf("embedding chunks: %w", vector.ErrEmbedding)

			resp := postJSON(server, "/v1/documents", ProcessDocumentRequest{Path: "doc.txt"})
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadGateway))
		})

		It("returns 502 when the vector backend is unreachable", func() {
			eng.processErr = fmt.Errorf("building index: %w", vector.ErrConnection)

			resp := postJSON(server, "/v1/documents", ProcessDocumentRequest{Path: "doc.txt"})
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadGateway))
		})
	})

	Describe("POST /v1/query", func() {
		BeforeEach(func() {
			eng.resp = &engine.Response{
				Answer: "Paris.",
				Sources: []segment.Chunk{
					{Text: "Paris is the capital of France.", SourcePage: 0, Ordinal: 0},
					{Text: "France is in Europe.", SourcePage: 2, Ordinal: 5},
				},
			}
		})

		It("answers with cited sources", func() {
			resp := postJSON(server, "/v1/query", QueryRequest{Question: "What is the capital of France?"})
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var out QueryResponse
			Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
			Expect(out.Question).To(Equal("What is the capital of France?"))
			Expect(out.Answer).To(Equal("Paris."))
			Expect(out.Sources).To(HaveLen(2))
			Expect(out.Sources[0].Page).To(Equal(1))
			Expect(out.Sources[1].Page).To(Equal(3))
			Expect(out.Sources[1].Ordinal).To(Equal(5))
		})

		It("returns 400 for an empty question", func() {
			resp := postJSON(server, "/v1/query", QueryRequest{Question: ""})
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("returns 409 before any document is loaded", func() {
			eng.queryErr = engine.ErrNoDocument

			resp := postJSON(server, "/v1/query", QueryRequest{Question: "anything"})
			Expect(resp.StatusCode).To(Equal(fiber.StatusConflict))
		})

		It("returns 502 when embedding the question fails", func() {
			eng.queryErr = fmt.Errorf("embedding question: %w", vector.ErrEmbedding)

			resp := postJSON(server, "/v1/query", QueryRequest{Question: "anything"})
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadGateway))
		})

		It("returns 500 for unclassified failures", func() {
			eng.queryErr = fmt.Errorf("index corrupted")

			resp := postJSON(server, "/v1/query", QueryRequest{Question: "anything"})
			Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))
		})
	})
})
