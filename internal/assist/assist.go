// Package assist backs the in-app support chat with a hosted LLM. The
// backend only relays messages; prompt curation and intent handling live in
// the client.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const systemPrompt = "You are the WattHome support assistant. Answer questions about " +
	"managing smart-home devices, energy usage, and automations in the WattHome app. " +
	"Keep answers short and practical."

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Service is a thin client for an OpenAI-compatible chat-completions
// endpoint.
type Service struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
	logger     *zap.Logger
}

func NewService(url, apiKey, model string, logger *zap.Logger) *Service {
	return &Service{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

// Enabled reports whether an upstream endpoint is configured.
func (s *Service) Enabled() bool {
	return s.url != ""
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat sends the conversation upstream and returns the assistant's reply.
func (s *Service) Chat(ctx context.Context, messages []Message) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("assist service is not configured")
	}

	payload, err := json.Marshal(chatRequest{
		Model:    s.model,
		Messages: append([]Message{{Role: "system", Content: systemPrompt}}, messages...),
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assist upstream request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read assist response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode assist response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("assist upstream: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("assist upstream returned status %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("assist upstream returned no choices")
	}

	s.logger.Debug("assist reply", zap.Int("turns", len(messages)))
	return parsed.Choices[0].Message.Content, nil
}
