package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// EmbeddingService turns recipe text into fixed-dimension vectors through
// an OpenAI-compatible embeddings endpoint.
type EmbeddingService struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewEmbeddingService creates a new EmbeddingService instance. The API key
// comes from EMBEDDINGS_API_KEY or an EMBEDDINGS_API_KEY_FILE secret file.
func NewEmbeddingService() (*EmbeddingService, error) {
	apiKey := os.Getenv("EMBEDDINGS_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("EMBEDDINGS_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("EMBEDDINGS_API_KEY or EMBEDDINGS_API_KEY_FILE must be set")
		}

		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}

		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	apiURL := os.Getenv("EMBEDDINGS_API_URL")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1/embeddings"
	}

	embeddingModel := os.Getenv("EMBEDDINGS_MODEL")
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}

	return &EmbeddingService{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  embeddingModel,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Model returns the embedding model identifier stored alongside vectors,
// so stored embeddings are never compared across model versions.
func (s *EmbeddingService) Model() string {
	return s.model
}

// Embed returns the embedding vector for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}{
		Model: s.model,
		Input: []string{text},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Data) == 0 || len(result.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding in API response")
	}
	return result.Data[0].Embedding, nil
}
