package utils_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/docqueryco/docquery/pkg/utils"
)

var _ = Describe("Truncate", func() {
	It("leaves short strings alone", func() {
		Expect(utils.Truncate("short", 10)).To(Equal("short"))
	})

	It("leaves strings at the limit alone", func() {
		Expect(utils.Truncate("exact", 5)).To(Equal("exact"))
	})

	It("truncates long strings with an ellipsis", func() {
		Expect(utils.Truncate(strings.Repeat("a", 20), 5)).To(Equal("aaaaa..."))
	})
})
