package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/textstream/pkg/dotdir"
)

var _ = Describe("dotdir.Manager last completion", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-last-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadLast", func() {
		It("returns nil when nothing was saved", func() {
			last, err := m.LoadLast(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(last).To(BeNil())
		})

		It("returns an error for a corrupt file", func() {
			err := os.WriteFile(filepath.Join(tmpDir, "last.json"), []byte("{not json"), 0o600)
			Expect(err).NotTo(HaveOccurred())

			_, err = m.LoadLast(tmpDir)
			Expect(err).To(MatchError(ContainSubstring("parsing last completion")))
		})
	})

	Describe("SaveLast", func() {
		It("round-trips a completion", func() {
			completedAt := time.Unix(1735689600, 0).UTC()
			saved := &dotdir.LastCompletion{
				Prompt:      "Once upon a time",
				Text:        " there was a stream.",
				Model:       "gpt-3.5-turbo-instruct",
				CompletedAt: completedAt,
			}
			Expect(m.SaveLast(saved, tmpDir)).To(Succeed())

			last, err := m.LoadLast(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(last.Prompt).To(Equal(saved.Prompt))
			Expect(last.Text).To(Equal(saved.Text))
			Expect(last.Model).To(Equal(saved.Model))
			Expect(last.CompletedAt.Equal(completedAt)).To(BeTrue())
		})

		It("rejects a nil completion", func() {
			Expect(m.SaveLast(nil, tmpDir)).To(HaveOccurred())
		})
	})

	It("builds a continuation prompt", func() {
		last := &dotdir.LastCompletion{Prompt: "A", Text: "B"}
		Expect(last.Continuation("C")).To(Equal("ABC"))
	})
})
