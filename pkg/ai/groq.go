package ai

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

	"github.com/johnquangdev/monitor-agent/pkg/config"
)

const defaultGroqModel = "llama-3.1-8b-instant"

// GroqClient is a minimal client for Groq chat completions used for segment summaries
type GroqClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGroqClient creates a Groq client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewGroqClient(cfg *config.GroqConfig) *GroqClient {
	var apiKey, base, model string
	if cfg != nil {
		apiKey = cfg.APIKey
		base = cfg.BaseURL
		model = cfg.Model
	}
	if apiKey == "" {
		apiKey = os.Getenv("GROQ_API_KEY")
	}
	if base == "" {
		base = os.Getenv("GROQ_API_URL")
		if base == "" {
			base = "https://api.groq.com"
		}
	}
	if model == "" {
		model = defaultGroqModel
	}

	return &GroqClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(base, "/"),
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// ChatMessage is a single chat completion message
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the shape for chat completion requests
type ChatRequest struct {
	Model       string        `json:"model,omitempty"`
	Messages    []ChatMessage `json:"messages,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse is a minimal response shape
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Summarize asks the model for a summary of roughly targetWords words
func (g *GroqClient) Summarize(ctx context.Context, transcript string, targetWords int) (string, error) {
	reqBody := ChatRequest{
		Model: g.model,
		Messages: []ChatMessage{
			{
				Role:    "system",
				Content: fmt.Sprintf("You are a concise summarizer. Create summaries in %d words or less. Capture the key point only.", targetWords),
			},
			{
				Role:    "user",
				Content: fmt.Sprintf("Summarize this transcript in %d words or less:\n\n%s", targetWords, transcript),
			},
		},
		Temperature: 0.3,
		MaxTokens:   targetWords * 8,
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	endpoint := g.baseURL + "/openai/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("groq returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var cr ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", err
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("empty response from groq")
	}

	summary := strings.TrimSpace(cr.Choices[0].Message.Content)
	if summary == "" {
		return "", fmt.Errorf("empty summary from groq")
	}
	return summary, nil
}
