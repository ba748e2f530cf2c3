package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/raredx-server/internal/domain"
)

// NERConfig contains configuration for the named-entity recognition client
type NERConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NERClient extracts clinical entities from free text via a model-serving
// endpoint. It implements domain.EntityExtractor; callers are expected to
// fall back to keyword extraction when it errors.
type NERClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewNERClient creates a new NER API client
func NewNERClient(config NERConfig) *NERClient {
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:8002"
	}
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}

	return &NERClient{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type nerRequest struct {
	Text string `json:"text"`
}

type nerEntity struct {
	Word        string  `json:"word"`
	EntityGroup string  `json:"entity_group"`
	Score       float64 `json:"score"`
}

type nerResponse struct {
	Entities []nerEntity `json:"entities"`
}

// ExtractEntities sends the text to the NER service and maps the response
// to domain entities
func (c *NERClient) ExtractEntities(ctx context.Context, text string) ([]domain.ExtractedEntity, error) {
	if text == "" {
		return []domain.ExtractedEntity{}, nil
	}

	body, err := json.Marshal(nerRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal NER request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ner", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create NER request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("NER request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("NER service returned status %d", resp.StatusCode)
	}

	var parsed nerResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode NER response: %w", err)
	}

	entities := make([]domain.ExtractedEntity, 0, len(parsed.Entities))
	for _, entity := range parsed.Entities {
		entities = append(entities, domain.ExtractedEntity{
			SurfaceForm: entity.Word,
			Label:       entity.EntityGroup,
			Score:       entity.Score,
		})
	}
	return entities, nil
}
