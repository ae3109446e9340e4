package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/scenedeck/scenedeck/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingServer tracks the path of every request it serves.
type recordingServer struct {
	srv   *httptest.Server
	paths []string
}

func newRecordingServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, call int)) *recordingServer {
	t.Helper()

	rs := &recordingServer{}
	rs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.paths = append(rs.paths, r.URL.Path)
		handler(w, r, len(rs.paths))
	}))
	t.Cleanup(rs.srv.Close)

	return rs
}

func newClient(baseURL, token string) *gateway.Client {
	return gateway.New(gateway.Config{
		Token:       token,
		BaseURL:     baseURL,
		Model:       "openai/gpt-4o-mini",
		MaxTokens:   256,
		Temperature: 0.2,
		Timeout:     5 * time.Second,
	})
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func successBody(content string) map[string]any {
	return map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
}

func errorBody(code, msg string) map[string]any {
	return map[string]any{"error": map[string]any{"code": code, "message": msg}}
}

func TestComplete_PrimarySuccess(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, r *http.Request, _ int) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req map[string]any
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "openai/gpt-4o-mini", req["model"])
		assert.EqualValues(t, 256, req["max_tokens"])
		assert.EqualValues(t, 0.2, req["temperature"])

		msgs, ok := req["messages"].([]any)
		require.True(t, ok)
		require.Len(t, msgs, 1)
		first, _ := msgs[0].(map[string]any)
		assert.Equal(t, "user", first["role"])
		assert.Equal(t, "describe a chair", first["content"])

		writeJSON(t, w, http.StatusOK, successBody("A wooden chair."))
	})

	c := newClient(rs.srv.URL, "test-token")

	content, err := c.Complete(context.Background(), "describe a chair")
	require.NoError(t, err)
	assert.Equal(t, "A wooden chair.", content)
	assert.Equal(t, []string{"/v1/chat/completions"}, rs.paths)
}

func TestComplete_FallbackOnNonJSON404(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request, call int) {
		if call == 1 {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("<html>not found</html>"))
			return
		}

		writeJSON(t, w, http.StatusOK, successBody("hello"))
	})

	c := newClient(rs.srv.URL, "tok")

	content, err := c.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", content)
	assert.Equal(t, []string{"/v1/chat/completions", "/chat/completions"}, rs.paths)
}

func TestComplete_FallbackOnUnknownModel422(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request, call int) {
		if call == 1 {
			writeJSON(t, w, http.StatusUnprocessableEntity, errorBody("unknown_model", "no such model on this route"))
			return
		}

		writeJSON(t, w, http.StatusOK, successBody("ok"))
	})

	c := newClient(rs.srv.URL, "tok")

	content, err := c.Complete(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", content)
	assert.Len(t, rs.paths, 2)
}

func TestComplete_UnauthorizedIsTerminal(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad credentials"))
	})

	c := newClient(rs.srv.URL, "tok")

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, gateway.KindUnauthorized, gateway.KindOf(err))
	assert.Len(t, rs.paths, 1, "authorization failures must not be retried")

	var ge *gateway.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusUnauthorized, ge.Status)
	assert.Contains(t, ge.URL, "/v1/chat/completions")
	assert.Contains(t, ge.Excerpt, "bad credentials")
}

func TestComplete_BothEndpointsExhausted(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		writeJSON(t, w, http.StatusUnprocessableEntity, errorBody("unknown_model", "nope"))
	})

	c := newClient(rs.srv.URL, "tok")

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, gateway.KindUnavailable, gateway.KindOf(err), "exhaustion wins over the model error")
	assert.Len(t, rs.paths, 2)

	var ge *gateway.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, http.StatusUnprocessableEntity, ge.Status)
	assert.Contains(t, ge.URL, "/chat/completions")
}

func TestComplete_EmptyTokenMakesNoCalls(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		writeJSON(t, w, http.StatusOK, successBody("never"))
	})

	c := newClient(rs.srv.URL, "")

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, gateway.KindConfig, gateway.KindOf(err))
	assert.Empty(t, rs.paths)
}

func TestComplete_ModelErrorCarriesCodeAndExcerpt(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		writeJSON(t, w, http.StatusBadRequest, errorBody("content_filter", "prompt rejected"))
	})

	c := newClient(rs.srv.URL, "tok")

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, gateway.KindModel, gateway.KindOf(err))
	assert.Len(t, rs.paths, 1, "400 with a structured error is not retryable")

	var ge *gateway.Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "content_filter", ge.Code)
	assert.Contains(t, ge.Excerpt, "prompt rejected")
	assert.Equal(t, http.StatusBadRequest, ge.Status)
}

func TestComplete_StructuredErrorOnFallbackIsModelError(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request, call int) {
		if call == 1 {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("plain 404"))
			return
		}

		writeJSON(t, w, http.StatusBadRequest, errorBody("bad_request", "malformed payload"))
	})

	c := newClient(rs.srv.URL, "tok")

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, gateway.KindModel, gateway.KindOf(err))
	assert.Len(t, rs.paths, 2)
}

func TestComplete_NonJSONBodyIsTransportError(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream proxy exploded"))
	})

	c := newClient(rs.srv.URL, "tok")

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, gateway.KindTransport, gateway.KindOf(err))
	assert.Len(t, rs.paths, 1, "malformed bodies outside 404/405 are never retried")

	var ge *gateway.Error
	require.ErrorAs(t, err, &ge)
	assert.Contains(t, ge.Excerpt, "upstream proxy exploded")
}

func TestComplete_SuccessStatusWithoutContentPath(t *testing.T) {
	rs := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		writeJSON(t, w, http.StatusOK, map[string]any{"choices": []any{}})
	})

	c := newClient(rs.srv.URL, "tok")

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, gateway.KindTransport, gateway.KindOf(err))
	assert.Len(t, rs.paths, 1)
}

func TestComplete_ExcerptIsBounded(t *testing.T) {
	huge := strings.Repeat("x", 10_000)
	rs := newRecordingServer(t, func(w http.ResponseWriter, _ *http.Request, _ int) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(huge))
	})

	c := newClient(rs.srv.URL, "tok")

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)

	var ge *gateway.Error
	require.ErrorAs(t, err, &ge)
	assert.LessOrEqual(t, len(ge.Excerpt), 500)
}

func TestComplete_ConnectionRefusedIsTransportError(t *testing.T) {
	// Grab a port that nothing is listening on.
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(url, "tok")

	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
	assert.Equal(t, gateway.KindTransport, gateway.KindOf(err))
}
