package notegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractContent(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"message content", `{"choices":[{"message":{"content":"note A"}}]}`, "note A"},
		{"delta content", `{"choices":[{"delta":{"content":"note B"}}]}`, "note B"},
		{"output text", `{"output_text":"note C"}`, "note C"},
		{"text", `{"text":"note D"}`, "note D"},
		{"plain string", `"note E"`, "note E"},
		{"unknown shape", `{"foo":1}`, `{"foo":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractContent([]byte(tc.raw))
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	_, ok := ExtractContent([]byte(`null`))
	assert.False(t, ok)
}

func TestExtractContent_TruncatesRawFallback(t *testing.T) {
	raw, err := json.Marshal(map[string]string{"blob": strings.Repeat("x", 5000)})
	require.NoError(t, err)

	got, ok := ExtractContent(raw)
	require.True(t, ok)
	assert.Len(t, got, 2000)
}

func TestGenerate_MissingKeyMakesNoRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL, Model: "m", Timeout: time.Second}).Generate(context.Background(), "photosynthesis")
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, int32(0), calls.Load())
}

func TestGenerate_SendsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3-8b-8192", req.Model)
		assert.Equal(t, 600, req.MaxTokens)
		assert.InDelta(t, 0.2, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Contains(t, req.Messages[1].Content, "photosynthesis")

		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Plants make food."}}]}`))
	}))
	defer srv.Close()

	c := New(Config{APIKey: "secret-key", BaseURL: srv.URL + "/", Model: "llama3-8b-8192", Timeout: time.Second})
	note, err := c.Generate(context.Background(), "  photosynthesis ")
	require.NoError(t, err)
	assert.Equal(t, "Plants make food.", note)
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	_, err := New(Config{APIKey: "bad", BaseURL: srv.URL, Timeout: time.Second}).Generate(context.Background(), "x")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid api key", apiErr.Message)
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "MISSING", MaskKey(""))
	assert.Equal(t, "****", MaskKey("short"))
	assert.Equal(t, "gsk_...wxyz", MaskKey("gsk_abcdefwxyz"))
}

func TestTruncate_KeepsRunesWhole(t *testing.T) {
	s := strings.Repeat("a", rawLimit-1) + "ගණිතය"
	got := truncate(s, rawLimit)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", rawLimit-1), got)

	assert.Equal(t, "ab", truncate("ab", 5))
	assert.Equal(t, "", truncate("ග", 2))
}
