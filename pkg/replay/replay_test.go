package replay_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/textstream/pkg/completion"
	"github.com/papercomputeco/textstream/pkg/replay"
	testutils "github.com/papercomputeco/textstream/pkg/utils/test"
)

var recording = "data: {\"choices\":[{\"text\":\"Hé\"}]}\n\n" +
	"data: {\"choices\":[{\"text\":\"llo\"}]}\n\n" +
	"data: [DONE]\n\n"

var _ = Describe("Server", func() {
	Describe("with app.Test", func() {
		It("replays the recording as an event stream", func() {
			s := replay.NewServer(replay.Config{ChunkSize: 5}, []byte(recording), nil)

			req := httptest.NewRequest(http.MethodPost, replay.DefaultPath, strings.NewReader(`{"stream":true}`))
			resp, err := s.App().Test(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(Equal(recording))
		})

		It("answers ping", func() {
			s := replay.NewServer(replay.Config{}, nil, nil)

			resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(Equal("pong"))
		})

		It("returns 404 for unknown paths", func() {
			s := replay.NewServer(replay.Config{}, []byte(recording), nil)

			resp, err := s.App().Test(httptest.NewRequest(http.MethodPost, "/v1/other", nil))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})

		It("rejects a wrong bearer token", func() {
			s := replay.NewServer(replay.Config{APIKey: "secret"}, []byte(recording), nil)

			req := httptest.NewRequest(http.MethodPost, replay.DefaultPath, nil)
			req.Header.Set("Authorization", "Bearer wrong")
			resp, err := s.App().Test(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		})

		It("accepts the configured bearer token", func() {
			s := replay.NewServer(replay.Config{APIKey: "secret"}, []byte(recording), nil)

			req := httptest.NewRequest(http.MethodPost, replay.DefaultPath, nil)
			req.Header.Set("Authorization", "Bearer secret")
			resp, err := s.App().Test(req)
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})

		It("serves on a custom path", func() {
			s := replay.NewServer(replay.Config{Path: "/v1/chat/completions"}, []byte(recording), nil)

			resp, err := s.App().Test(httptest.NewRequest(http.MethodPost, "/v1/chat/completions", nil))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("with the completion client", func() {
		It("decodes the replayed stream through an http.Handler", func() {
			s := replay.NewServer(replay.Config{ChunkSize: 3, APIKey: "secret"}, []byte(recording), nil)
			srv := httptest.NewServer(s.Handler())
			defer srv.Close()

			rec := testutils.NewTextRecorder()
			text, err := completion.NewClient().Stream(context.Background(), completion.Request{
				APIKey: "secret",
				Host:   srv.URL,
			}, rec.OnText)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("Héllo"))

			texts := rec.Texts()
			Expect(texts[len(texts)-1]).To(Equal("Héllo"))
		})

		It("surfaces the setup error for a rejected token", func() {
			s := replay.NewServer(replay.Config{APIKey: "secret"}, []byte(recording), nil)
			srv := httptest.NewServer(s.Handler())
			defer srv.Close()

			_, err := completion.NewClient().Stream(context.Background(), completion.Request{Host: srv.URL}, nil)
			Expect(err).To(MatchError(completion.ErrSetup))
		})
	})
})
