package completion

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/papercomputeco/textstream/pkg/utils"
)

const (
	// DefaultHost is the API host used when Request.Host is empty.
	DefaultHost = "https://api.openai.com"

	// DefaultPath is the endpoint path used when Request.Path is empty.
	DefaultPath = "/v1/completions"
)

// Request describes one streamed completion.
type Request struct {
	// APIKey is sent as a bearer token. Empty omits the header.
	APIKey string

	// Args is the request body. It must marshal to a JSON object; a
	// json.RawMessage or []byte is used as is. "stream": true is always
	// set.
	Args any

	Host string
	Path string

	// Throttle limits text callbacks to one per interval. Zero disables
	// throttling.
	Throttle time.Duration
}

func (r Request) host() string {
	if r.Host == "" {
		return DefaultHost
	}
	return r.Host
}

func (r Request) path() string {
	if r.Path == "" {
		return DefaultPath
	}
	return r.Path
}

// URL resolves the request path against its host.
func (r Request) URL() (*url.URL, error) {
	base, err := url.Parse(r.host())
	if err != nil {
		return nil, fmt.Errorf("parsing host %q: %w", r.host(), err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("host %q must be an absolute URL", r.host())
	}

	ref, err := url.Parse(r.path())
	if err != nil {
		return nil, fmt.Errorf("parsing path %q: %w", r.path(), err)
	}

	return base.ResolveReference(ref), nil
}

// Body returns the JSON request body with "stream": true merged into Args.
func (r Request) Body() ([]byte, error) {
	var raw []byte
	switch args := r.Args.(type) {
	case nil:
		raw = []byte("{}")
	case json.RawMessage:
		raw = args
	case []byte:
		raw = args
	case string:
		raw = []byte(args)
	default:
		b, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("marshaling completion args: %w", err)
		}
		raw = b
	}

	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsObject() {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidArgs, utils.Truncate(strings.TrimSpace(string(raw)), 40))
	}

	body, err := sjson.SetBytes(raw, "stream", true)
	if err != nil {
		return nil, fmt.Errorf("setting stream flag: %w", err)
	}
	return body, nil
}

// Model returns the "model" field of Args, if any.
func (r Request) Model() string {
	body, err := r.Body()
	if err != nil {
		return ""
	}
	return gjson.GetBytes(body, "model").String()
}
