// Package gateway implements a single-shot chat-completion client for an
// OpenAI-compatible inference gateway (GitHub Models). The gateway has
// historically exposed two path conventions for the completions route, so
// every call tries the versioned path first and falls back to the unversioned
// one when the server reports an unknown route. Authorization and
// malformed-body failures are terminal and never retried against the other
// endpoint.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// Headers the gateway recommends on every request.
const (
	acceptHeader     = "application/vnd.github+json"
	apiVersionValue  = "2022-11-28"
	apiVersionHeader = "X-GitHub-Api-Version"
)

// Client issues chat completions against the gateway. The underlying HTTP
// client is reused across calls for connection pooling only; a Client assumes
// at most one Complete call in flight at a time.
type Client struct {
	cfg  Config
	http *http.Client
}

// New creates a Client from cfg. The HTTP client applies cfg.Timeout to each
// endpoint attempt independently and honors proxy environment variables only
// when cfg.TrustEnv is set.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, http: newHTTPClient(cfg)}
}

func newHTTPClient(cfg Config) *http.Client {
	transport := &http.Transport{}
	if cfg.TrustEnv {
		transport.Proxy = http.ProxyFromEnvironment
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{Timeout: timeout, Transport: transport}
}

// Config returns the resolved configuration the client was built with.
func (c *Client) Config() Config { return c.cfg }

type wireRequest struct {
	Model       string        `json:"model"`
	Messages    []wireMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Complete sends prompt as a single user message and returns the assistant's
// reply text. It makes at most two HTTP calls: the primary endpoint, then the
// fallback with the identical payload when the primary looks like a wrong
// path shape or an unknown route. Failures are reported as *Error with the
// offending URL, status, and a bounded body excerpt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Token == "" {
		return "", &Error{Kind: KindConfig}
	}

	payload, err := json.Marshal(wireRequest{
		Model:       c.cfg.Model,
		Messages:    []wireMessage{{Role: "user", Content: prompt}},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	})
	if err != nil {
		return "", &Error{Kind: KindTransport, Excerpt: "marshal payload: " + err.Error()}
	}

	endpoints := c.cfg.Endpoints()
	last := len(endpoints) - 1

	for i, url := range endpoints {
		out := c.attempt(ctx, url, payload)
		if out.err != nil {
			return "", out.err
		}

		if !out.retry {
			return out.content, nil
		}

		if i == last {
			// The fallback itself looked retry-eligible; no further
			// endpoint exists.
			return "", &Error{
				Kind:    KindUnavailable,
				URL:     url,
				Status:  out.status,
				Excerpt: out.excerpt,
			}
		}
	}

	return "", &Error{Kind: KindUnavailable}
}

// outcome is the classification of one endpoint attempt.
type outcome struct {
	content string
	retry   bool // this endpoint looks like the wrong path convention
	status  int
	excerpt string
	err     *Error
}

func (c *Client) attempt(ctx context.Context, url string, payload []byte) outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return outcome{err: &Error{Kind: KindTransport, URL: url, Excerpt: err.Error()}}
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set(apiVersionHeader, apiVersionValue)

	resp, err := c.http.Do(req)
	if err != nil {
		return outcome{err: &Error{Kind: KindTransport, URL: url, Excerpt: err.Error()}}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcome{err: &Error{Kind: KindTransport, URL: url, Status: resp.StatusCode, Excerpt: err.Error()}}
	}

	return classify(url, resp.StatusCode, body)
}

// classify applies the fallback state machine's transition rules to one
// response. Rule order is significant: the wrong-path-shape case (non-JSON
// 404/405) and the unknown-route case (structured error with 404/422) stay
// separate because they have distinct root causes, even though both advance
// to the next endpoint.
func classify(url string, status int, body []byte) outcome {
	env := parseBody(body)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		// Changing the path cannot fix a credential problem.
		return outcome{err: &Error{
			Kind:    KindUnauthorized,
			URL:     url,
			Status:  status,
			Excerpt: excerpt(string(body), shortExcerptLen),
		}}

	case !env.parsed && (status == http.StatusNotFound || status == http.StatusMethodNotAllowed):
		// Wrong path shape on this server; the other convention may work.
		return outcome{retry: true, status: status, excerpt: excerpt(string(body), longExcerptLen)}

	case !env.parsed:
		return outcome{err: &Error{
			Kind:    KindTransport,
			URL:     url,
			Status:  status,
			Excerpt: excerpt(string(body), longExcerptLen),
		}}

	case status >= 300 || env.hasError:
		if status == http.StatusNotFound || status == http.StatusUnprocessableEntity {
			// Unknown route or unknown model on this path convention.
			return outcome{retry: true, status: status, excerpt: excerpt(env.errMessage, shortExcerptLen)}
		}

		return outcome{err: &Error{
			Kind:    KindModel,
			URL:     url,
			Status:  status,
			Code:    env.errCode,
			Excerpt: excerpt(env.errMessage, shortExcerptLen),
		}}

	case !env.hasContent:
		// Success status but no choices[0].message.content. Treated as a
		// malformed response rather than silently returning nothing.
		return outcome{err: &Error{
			Kind:    KindTransport,
			URL:     url,
			Status:  status,
			Excerpt: excerpt(string(body), longExcerptLen),
		}}

	default:
		return outcome{content: env.content}
	}
}
