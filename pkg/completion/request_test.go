package completion_test

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/tidwall/gjson"

	"github.com/papercomputeco/textstream/pkg/completion"
)

var _ = Describe("Request", func() {
	Describe("URL", func() {
		It("defaults to the OpenAI completions endpoint", func() {
			u, err := completion.Request{}.URL()
			Expect(err).NotTo(HaveOccurred())
			Expect(u.String()).To(Equal("https://api.openai.com/v1/completions"))
		})

		It("resolves the path against the host", func() {
			u, err := completion.Request{Host: "http://localhost:8080/ignored", Path: "/v1/chat"}.URL()
			Expect(err).NotTo(HaveOccurred())
			Expect(u.String()).To(Equal("http://localhost:8080/v1/chat"))
		})

		It("rejects a relative host", func() {
			_, err := completion.Request{Host: "localhost"}.URL()
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Body", func() {
		It("merges stream into struct args", func() {
			args := struct {
				Model  string `json:"model"`
				Prompt string `json:"prompt"`
			}{Model: "m", Prompt: "p"}

			body, err := completion.Request{Args: args}.Body()
			Expect(err).NotTo(HaveOccurred())
			Expect(gjson.GetBytes(body, "model").String()).To(Equal("m"))
			Expect(gjson.GetBytes(body, "prompt").String()).To(Equal("p"))
			Expect(gjson.GetBytes(body, "stream").Bool()).To(BeTrue())
		})

		It("overrides a caller supplied stream flag", func() {
			body, err := completion.Request{Args: map[string]any{"stream": false}}.Body()
			Expect(err).NotTo(HaveOccurred())
			Expect(gjson.GetBytes(body, "stream").Bool()).To(BeTrue())
		})

		It("uses raw JSON as is", func() {
			body, err := completion.Request{Args: json.RawMessage(`{"max_tokens":5}`)}.Body()
			Expect(err).NotTo(HaveOccurred())
			Expect(gjson.GetBytes(body, "max_tokens").Int()).To(BeEquivalentTo(5))
			Expect(gjson.GetBytes(body, "stream").Bool()).To(BeTrue())
		})

		It("sends only the stream flag for nil args", func() {
			body, err := completion.Request{}.Body()
			Expect(err).NotTo(HaveOccurred())
			Expect(body).To(MatchJSON(`{"stream":true}`))
		})

		It("rejects args that are not an object", func() {
			_, err := completion.Request{Args: []string{"a"}}.Body()
			Expect(errors.Is(err, completion.ErrInvalidArgs)).To(BeTrue())

			_, err = completion.Request{Args: json.RawMessage(`{"broken"`)}.Body()
			Expect(errors.Is(err, completion.ErrInvalidArgs)).To(BeTrue())
		})
	})

	It("reads the model from args", func() {
		Expect(completion.Request{Args: map[string]any{"model": "gpt"}}.Model()).To(Equal("gpt"))
		Expect(completion.Request{}.Model()).To(BeEmpty())
	})
})
