package exa

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestSearcher_Search(t *testing.T) {
	var gotRequest searchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		_, _ = w.Write([]byte(`{
			"results": [
				{"title": "Attention Is All You Need", "url": "https://arxiv.org/abs/1706.03762", "text": "The transformer paper."},
				{"title": "", "url": "https://wikipedia.org/wiki/Transformer", "text": "An encyclopedia entry."}
			]
		}`))
	}))
	defer server.Close()

	searcher, err := New(Config{
		APIKey:         "test-key",
		BaseURL:        server.URL,
		IncludeDomains: []string{"arxiv.org", "wikipedia.org"},
	})
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "transformer architecture")

	require.NoError(t, err)
	assert.Equal(t, "transformer architecture", gotRequest.Query)
	assert.Equal(t, []string{"arxiv.org", "wikipedia.org"}, gotRequest.IncludeDomains)
	assert.True(t, gotRequest.Contents.Text)

	assert.Contains(t, results, "Attention Is All You Need")
	assert.Contains(t, results, "https://arxiv.org/abs/1706.03762")
	assert.Contains(t, results, "The transformer paper.")
	assert.Contains(t, results, "An encyclopedia entry.")
}

func TestSearcher_Search_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer server.Close()

	searcher, err := New(Config{APIKey: "bad-key", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "query")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api key")
}

func TestSearcher_Search_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	searcher, err := New(Config{APIKey: "key", BaseURL: server.URL})
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "query")

	require.NoError(t, err)
	assert.Empty(t, results)
}
