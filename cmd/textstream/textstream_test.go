package textstreamcmder_test

import (
	"bytes"
	"io"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	textstreamcmder "github.com/papercomputeco/textstream/cmd/textstream"
	"github.com/papercomputeco/textstream/pkg/replay"
	testutils "github.com/papercomputeco/textstream/pkg/utils/test"
)

var _ = Describe("NewTextstreamCmd", func() {
	It("registers every subcommand", func() {
		cmd := textstreamcmder.NewTextstreamCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("complete", "decode", "replay", "config", "init", "version"))
	})

	It("has the global persistent flags", func() {
		cmd := textstreamcmder.NewTextstreamCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("log-file")).NotTo(BeNil())
	})

	It("streams a completion from a replay server end to end", func() {
		server := replay.NewServer(replay.Config{ChunkSize: 5}, []byte(testutils.StreamBody(
			`{"choices":[{"text":"Hello"}]}`,
			`{"choices":[{"text":", world"}]}`,
			`[DONE]`,
		)), nil)
		srv := httptest.NewServer(server.Handler())
		defer srv.Close()

		var out bytes.Buffer
		cmd := textstreamcmder.NewTextstreamCmd()
		cmd.SetOut(&out)
		cmd.SetErr(io.Discard)
		cmd.SetArgs([]string{
			"complete",
			"--config-dir", GinkgoT().TempDir(),
			"--host", srv.URL,
			"Say hello",
		})

		Expect(cmd.Execute()).To(Succeed())
		Expect(out.String()).To(Equal("Hello, world\n"))
	})
})
