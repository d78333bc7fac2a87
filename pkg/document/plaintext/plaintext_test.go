package plaintext_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docqueryco/docquery/pkg/document"
	"github.com/docqueryco/docquery/pkg/document/plaintext"
)

var _ = Describe("Extract", func() {
	var (
		extractor *plaintext.Extractor
		tmpDir    string
	)

	BeforeEach(func() {
		extractor = plaintext.NewExtractor()

		var err error
		tmpDir, err = os.MkdirTemp("", "plaintext-test-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("returns the file content as a single zero-indexed page", func() {
		path := filepath.Join(tmpDir, "notes.txt")
		Expect(os.WriteFile(path, []byte("line one\nline two\n"), 0o644)).To(Succeed())

		pages, err := extractor.Extract(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(HaveLen(1))
		Expect(pages[0].Index).To(Equal(0))
		Expect(pages[0].Text).To(Equal("line one\nline two\n"))
	})

	It("returns one empty page for an empty file", func() {
		path := filepath.Join(tmpDir, "empty.md")
		Expect(os.WriteFile(path, nil, 0o644)).To(Succeed())

		pages, err := extractor.Extract(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(pages).To(HaveLen(1))
		Expect(pages[0].Text).To(BeEmpty())
	})

	It("fails with ErrUnreadable for a missing file", func() {
		_, err := extractor.Extract(filepath.Join(tmpDir, "missing.txt"))
		Expect(err).To(MatchError(document.ErrUnreadable))
	})
})
