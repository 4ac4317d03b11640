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

	"go.uber.org/zap"

	"github.com/plateful/backend/internal/model"
)

// LLMService generates recipe drafts through the DeepSeek API.
type LLMService struct {
	apiKey string
	apiURL string
	client *http.Client
	logger *zap.Logger
}

// NewLLMService creates a new LLMService instance. The API key comes from
// DEEPSEEK_API_KEY or a DEEPSEEK_API_KEY_FILE secret file.
func NewLLMService(logger *zap.Logger) (*LLMService, error) {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("DEEPSEEK_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY or DEEPSEEK_API_KEY_FILE must be set")
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

	apiURL := os.Getenv("DEEPSEEK_API_URL")
	if apiURL == "" {
		apiURL = "https://api.deepseek.com/v1/chat/completions"
	}

	return &LLMService{
		apiKey: apiKey,
		apiURL: apiURL,
		client: &http.Client{Timeout: 120 * time.Second},
		logger: logger,
	}, nil
}

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a request to the DeepSeek API
type Request struct {
	Model            string            `json:"model"`
	Messages         []Message         `json:"messages"`
	ResponseFormat   map[string]string `json:"response_format"`
	Temperature      float64           `json:"temperature"`
	TopP             float64           `json:"top_p"`
	FrequencyPenalty float64           `json:"frequency_penalty"`
	PresencePenalty  float64           `json:"presence_penalty"`
}

const recipeSystemPrompt = `You are a professional chef and nutritionist. Please provide your response in JSON format with the following structure:
{
    "name": "Recipe name",
    "notes": "Brief description of the recipe",
    "ingredients": [
        {"item": "flour", "quantity": "2 cups"},
        {"item": "eggs", "quantity": "3"}
    ],
    "instructions": [
        "Step 1: Mix the dry ingredients",
        "Step 2: Add the wet ingredients"
    ],
    "servings": 4,
    "prep_time_min": 15,
    "cook_time_min": 30,
    "calories": 350,
    "protein": 15,
    "carbs": 45,
    "fat": 12,
    "metadata": {
        "cuisine": "Italian",
        "primary_protein": "chicken",
        "cooking_method": "baking",
        "meal_type": "dinner",
        "dietary_tags": ["gluten-free"],
        "difficulty": "Easy"
    }
}

Note: servings, times and the nutrition fields must be numbers, not strings.
Always populate metadata.cuisine, metadata.primary_protein and metadata.cooking_method.`

// GenerateRecipe asks the model for a draft steered by the diversity
// constraints, at the temperature chosen by the orchestrator's retry loop.
func (s *LLMService) GenerateRecipe(ctx context.Context, mealType, styleType string, constraints *DiversityConstraints, temperature float64) (*model.RecipeDraft, error) {
	prompt := fmt.Sprintf("Generate a %s recipe in a %s style.", mealType, styleType)
	if constraints != nil {
		if len(constraints.AvoidProteins) > 0 {
			prompt += " Avoid these proteins, they were used recently: " + strings.Join(constraints.AvoidProteins, ", ") + "."
		}
		if len(constraints.AvoidMethods) > 0 {
			prompt += " Avoid these cooking methods: " + strings.Join(constraints.AvoidMethods, ", ") + "."
		}
		if len(constraints.AvoidCuisines) > 0 {
			prompt += " Avoid these cuisines: " + strings.Join(constraints.AvoidCuisines, ", ") + "."
		}
		if len(constraints.SuggestProteins) > 0 {
			prompt += " Consider using one of: " + strings.Join(constraints.SuggestProteins, ", ") + "."
		}
		if len(constraints.SuggestMethods) > 0 {
			prompt += " Consider these cooking methods: " + strings.Join(constraints.SuggestMethods, ", ") + "."
		}
	}

	reqBody := Request{
		Model: "deepseek-chat",
		Messages: []Message{
			{Role: "system", Content: recipeSystemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: map[string]string{
			"type": "json_object",
		},
		Temperature:      temperature,
		TopP:             0.9, // Higher top_p for more diverse outputs
		FrequencyPenalty: 0.5, // Penalize repeated tokens
		PresencePenalty:  0.5, // Encourage new topics
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
		s.logger.Error("generation API request failed",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body))
		return nil, fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no response from API")
	}

	var draft model.RecipeDraft
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), &draft); err != nil {
		return nil, fmt.Errorf("failed to parse recipe draft: %w", err)
	}
	if draft.Name == "" || len(draft.Ingredients) == 0 || len(draft.Instructions) == 0 {
		return nil, fmt.Errorf("generator returned an incomplete draft")
	}
	return &draft, nil
}
