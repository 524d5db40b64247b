package decodecmder_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	decodecmder "github.com/papercomputeco/textstream/cmd/textstream/decode"
	"github.com/papercomputeco/textstream/pkg/decoder"
	testutils "github.com/papercomputeco/textstream/pkg/utils/test"
)

func newDecodeCmd(out, errOut io.Writer) *cobra.Command {
	cmd := decodecmder.NewDecodeCmd()
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .textstream/ config directory")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd
}

var _ = Describe("Decode command", func() {
	var (
		configDir string
		out       *bytes.Buffer
		errOut    *bytes.Buffer
		recording string
	)

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
		errOut = &bytes.Buffer{}
		recording = testutils.StreamBody(
			`{"content":"Grüße, "}`,
			`{"content":"Welt"}`,
			`[DONE]`,
		)
	})

	It("accepts at most one argument", func() {
		cmd := decodecmder.NewDecodeCmd()
		Expect(cmd.Args(cmd, []string{"a", "b"})).To(HaveOccurred())
	})

	It("decodes a recording file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "greeting.sse")
		Expect(os.WriteFile(path, []byte(recording), 0o600)).To(Succeed())

		cmd := newDecodeCmd(out, errOut)
		cmd.SetArgs([]string{"--config-dir", configDir, path})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(Equal("Grüße, Welt\n"))
	})

	It("decodes stdin in tiny chunks", func() {
		cmd := newDecodeCmd(out, errOut)
		cmd.SetIn(strings.NewReader(recording))
		cmd.SetArgs([]string{"--config-dir", configDir, "--chunk-size", "3", "--stats", "-"})
		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(Equal("Grüße, Welt\n"))
		Expect(errOut.String()).To(ContainSubstring("chunks"))
		Expect(errOut.String()).To(ContainSubstring("callbacks"))
	})

	It("reports protocol violations", func() {
		cmd := newDecodeCmd(out, errOut)
		cmd.SetIn(strings.NewReader("foo: bar\n"))
		cmd.SetArgs([]string{"--config-dir", configDir})

		err := cmd.Execute()
		Expect(err).To(MatchError(decoder.ErrProtocol))
		Expect(err).To(MatchError(ContainSubstring("decoding -")))
	})

	It("fails for a missing file", func() {
		cmd := newDecodeCmd(out, errOut)
		cmd.SetArgs([]string{"--config-dir", configDir, filepath.Join(configDir, "missing.sse")})
		Expect(cmd.Execute()).To(MatchError(ContainSubstring("opening recording")))
	})
})
