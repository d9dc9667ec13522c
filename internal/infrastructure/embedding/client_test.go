package embedding

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casewise/backend/internal/infrastructure/config"
)

func TestBuildEmbeddingURL(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		want    string
	}{
		{"裸主机", "http://localhost:11434", "http://localhost:11434/v1/embeddings"},
		{"带 /v1", "http://localhost:11434/v1", "http://localhost:11434/v1/embeddings"},
		{"完整路径", "http://localhost:11434/v1/embeddings", "http://localhost:11434/v1/embeddings"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, buildEmbeddingURL(tc.baseURL))
		})
	}
}

func TestClient_EmbedText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3],"index":0}],"model":"all-minilm"}`))
	}))
	defer server.Close()

	client := NewClient(&config.EmbeddingConfig{
		BaseURL: server.URL,
		Model:   "all-minilm",
	})

	vector, err := client.EmbedText(context.Background(), "how to fix login crash")
	require.NoError(t, err)
	assert.Len(t, vector, 3)
	assert.InDelta(t, 0.1, vector[0], 1e-6)
}

func TestClient_EmbedText_EmptyInput(t *testing.T) {
	client := NewClient(&config.EmbeddingConfig{BaseURL: "http://localhost:1", Model: "m"})
	_, err := client.EmbedText(context.Background(), "")
	assert.Error(t, err)
}
