package document_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docqueryco/docquery/pkg/document"
)

var _ = Describe("Supported", func() {
	It("recognizes pdf, txt, and md files", func() {
		Expect(document.Supported("report.pdf")).To(BeTrue())
		Expect(document.Supported("notes.txt")).To(BeTrue())
		Expect(document.Supported("README.md")).To(BeTrue())
	})

	It("ignores extension case", func() {
		Expect(document.Supported("REPORT.PDF")).To(BeTrue())
	})

	It("rejects unknown extensions", func() {
		Expect(document.Supported("image.png")).To(BeFalse())
		Expect(document.Supported("archive")).To(BeFalse())
	})
})

var _ = Describe("UnsupportedError", func() {
	It("wraps ErrUnreadable", func() {
		err := document.UnsupportedError("image.png")
		Expect(err).To(MatchError(document.ErrUnreadable))
		Expect(err.Error()).To(ContainSubstring(".png"))
	})
})
