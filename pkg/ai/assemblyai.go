package ai

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/johnquangdev/monitor-agent/pkg/config"
)

// AssemblyAIClient transcribes audio with the AssemblyAI SDK
type AssemblyAIClient struct {
	client   *aai.Client
	language string
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) *AssemblyAIClient {
	var apiKey, language string
	if cfg != nil {
		apiKey = cfg.APIKey
		language = cfg.Language
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	if language == "" {
		language = "en"
	}
	return &AssemblyAIClient{
		client:   aai.NewClient(apiKey),
		language: language,
	}
}

// Transcribe uploads the audio and waits for the finished transcript
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audio []byte) (string, error) {
	params := &aai.TranscriptOptionalParams{
		LanguageCode: aai.TranscriptLanguageCode(c.language),
	}

	transcript, err := c.client.Transcripts.TranscribeFromReader(ctx, bytes.NewReader(audio), params)
	if err != nil {
		return "", fmt.Errorf("assemblyai transcribe: %w", err)
	}

	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return "", fmt.Errorf("assemblyai returned error status: %s", msg)
	}

	if transcript.Text == nil {
		return "", nil
	}
	return strings.TrimSpace(*transcript.Text), nil
}
