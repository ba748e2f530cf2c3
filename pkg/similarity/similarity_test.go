package similarity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{"identical vectors", []float64{1, 2, 3}, []float64{1, 2, 3}, 1.0},
		{"orthogonal vectors", []float64{1, 0}, []float64{0, 1}, 0.0},
		{"opposite vectors", []float64{1, 0}, []float64{-1, 0}, -1.0},
		{"length mismatch", []float64{1, 2}, []float64{1, 2, 3}, 0.0},
		{"zero vector", []float64{0, 0}, []float64{1, 2}, 0.0},
		{"empty vectors", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func newEmbedServer(t *testing.T, vectors map[string][]float64, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/embed", r.URL.Path)
		if calls != nil {
			atomic.AddInt32(calls, 1)
		}

		var req struct {
			Texts []string `json:"texts"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		resp := struct {
			Embeddings [][]float64 `json:"embeddings"`
		}{}
		for _, text := range req.Texts {
			vector, ok := vectors[text]
			require.True(t, ok, "unexpected text %q", text)
			resp.Embeddings = append(resp.Embeddings, vector)
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestEmbeddingClient_Embed(t *testing.T) {
	server := newEmbedServer(t, map[string][]float64{
		"hello": {1, 0},
		"world": {0, 1},
	}, nil)
	defer server.Close()

	client := NewEmbeddingClient(EmbeddingConfig{BaseURL: server.URL, Timeout: time.Second})

	vectors, err := client.Embed(context.Background(), []string{"hello", "world"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{1, 0}, vectors[0])
	assert.Equal(t, []float64{0, 1}, vectors[1])
}

func TestEmbeddingClient_EmptyInput(t *testing.T) {
	client := NewEmbeddingClient(EmbeddingConfig{BaseURL: "http://localhost:1"})

	vectors, err := client.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestEmbeddingClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewEmbeddingClient(EmbeddingConfig{BaseURL: server.URL, Timeout: time.Second})

	_, err := client.Embed(context.Background(), []string{"x"})
	assert.Error(t, err)
}

func TestNERClient_ExtractEntities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ner", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"entities": []map[string]interface{}{
				{"word": "chorea", "entity_group": "SYMPTOM", "score": 0.98},
				{"word": "huntington", "entity_group": "DISEASE", "score": 0.95},
			},
		})
	}))
	defer server.Close()

	client := NewNERClient(NERConfig{BaseURL: server.URL, Timeout: time.Second})

	entities, err := client.ExtractEntities(context.Background(), "patient with chorea, suspect huntington")
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "chorea", entities[0].SurfaceForm)
	assert.Equal(t, "SYMPTOM", entities[0].Label)
	assert.InDelta(t, 0.98, entities[0].Score, 1e-9)
	assert.Equal(t, "DISEASE", entities[1].Label)
}

func TestNERClient_EmptyText(t *testing.T) {
	client := NewNERClient(NERConfig{BaseURL: "http://localhost:1"})

	entities, err := client.ExtractEntities(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestResilientProvider_Similarity(t *testing.T) {
	server := newEmbedServer(t, map[string][]float64{
		"patient text": {1, 0},
		"disease text": {1, 0},
	}, nil)
	defer server.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	client := NewEmbeddingClient(EmbeddingConfig{BaseURL: server.URL, Timeout: time.Second})
	provider, err := NewResilientProvider(logger, client, nil, 16)
	require.NoError(t, err)

	similarity, err := provider.Similarity(context.Background(), "patient text", "disease text")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, similarity, 1e-9)
}

func TestResilientProvider_LRUAbsorbsRepeatLookups(t *testing.T) {
	var calls int32
	server := newEmbedServer(t, map[string][]float64{
		"a": {1, 0},
		"b": {0, 1},
	}, &calls)
	defer server.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	client := NewEmbeddingClient(EmbeddingConfig{BaseURL: server.URL, Timeout: time.Second})
	provider, err := NewResilientProvider(logger, client, nil, 16)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := provider.Similarity(context.Background(), "a", "b")
		require.NoError(t, err)
	}

	// One call per distinct text; repeats hit the LRU.
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResilientProvider_BreakerOpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	client := NewEmbeddingClient(EmbeddingConfig{BaseURL: server.URL, Timeout: time.Second})
	provider, err := NewResilientProvider(logger, client, nil, 16)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := provider.Similarity(context.Background(), "a", "b")
		assert.Error(t, err)
	}
}
