package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jakoblorz/go-codebuilder/internal/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, options ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	options = append([]Option{WithURL(srv.URL), WithRateLimit(rate.Inf, 1)}, options...)
	return New("sk-test", options...)
}

func reply(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]string{"role": "assistant", "content": content}}},
		})
	}
}

func TestChat_Request(t *testing.T) {
	var got chatRequest
	var headers http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		reply("hello")(w, r)
	}, WithReferer("http://127.0.0.1:7777"))

	out, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	require.NoError(t, err)
	require.Equal(t, "hello", out)

	require.Equal(t, DefaultModel, got.Model)
	require.Equal(t, []Message{{Role: "user", Content: "hi"}}, got.Messages)
	require.Equal(t, "Bearer sk-test", headers.Get("Authorization"))
	require.Equal(t, "http://127.0.0.1:7777", headers.Get("HTTP-Referer"))
	require.Equal(t, "CodeBuilder Pro", headers.Get("X-Title"))
	require.Equal(t, "application/json", headers.Get("Content-Type"))
}

func TestChat_Model(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		reply("ok")(w, r)
	}, WithModel("openai/gpt-4o"))

	_, err := c.Chat(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, "openai/gpt-4o", got.Model)
}

func TestChat_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"nope"}`, http.StatusUnauthorized)
	})

	_, err := c.Chat(context.Background(), nil)
	require.ErrorIs(t, err, models.ErrExternalCallFailed)
	require.EqualError(t, err, "OpenRouter API error: Unauthorized")
}

func TestChat_NoChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	out, err := c.Chat(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, NoResponse, out)
}

func TestChat_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := c.Chat(context.Background(), nil)
	require.ErrorIs(t, err, models.ErrExternalCallFailed)
}

func TestChat_NotConfigured(t *testing.T) {
	_, err := New("").Chat(context.Background(), nil)
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestChat_Cancelled(t *testing.T) {
	c := newTestClient(t, reply("late"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Chat(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestDo_Preconditions(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		reply("x")(w, r)
	})

	_, err := New("").Do(context.Background(), Request{Action: ActionSuggest})
	require.ErrorIs(t, err, models.ErrMissingCredential)
	require.EqualError(t, err, "Please set your OpenRouter API key in settings")

	_, err = c.Do(context.Background(), Request{Action: ActionSuggest, Prompt: "x"})
	require.ErrorIs(t, err, models.ErrNoActiveFile)
	require.EqualError(t, err, "Please select a file first")

	_, err = c.Do(context.Background(), Request{Action: ActionSuggest, Path: "a.js", Prompt: "  "})
	require.EqualError(t, err, "Please enter a prompt")

	require.Zero(t, calls)
}

func TestDo_Explain(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		reply("it logs")(w, r)
	})

	out, err := c.Do(context.Background(), Request{Action: ActionExplain, Path: "main.py", Code: "print(1)"})
	require.NoError(t, err)
	require.Equal(t, "it logs", out)
	require.Equal(t, ExplainMessages("print(1)", "python"), got.Messages)
}

func TestDo_FixDefaultsErrorText(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		reply("fixed")(w, r)
	})

	_, err := c.Do(context.Background(), Request{Action: ActionFix, Path: "a.ts", Code: "let x"})
	require.NoError(t, err)
	require.Equal(t, FixMessages("let x", "Unknown error", "typescript"), got.Messages)
}
