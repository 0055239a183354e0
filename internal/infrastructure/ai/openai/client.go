// Package openai provides a model client for OpenAI compatible chat
// completion APIs, including a local Ollama server
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/ports/outbound"
)

// Provider defaults
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"

	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOllamaBaseURL = "http://localhost:11434/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOllamaModel   = "llama3.2:3b"
)

// ErrNoChoices is returned when the API answers without a message
var ErrNoChoices = errors.New("no response choices returned")

// Config holds the client settings
type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client implements outbound.ModelClient over /chat/completions
type Client struct {
	provider    string
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
	logger      *zap.Logger
}

// NewClient creates a client. The OpenAI provider requires an API key; the
// Ollama provider runs without one.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.Provider == "" {
		cfg.Provider = ProviderOpenAI
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("openai api key is required")
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultOpenAIBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = DefaultOpenAIModel
		}
	case ProviderOllama:
		if cfg.APIKey == "" {
			cfg.APIKey = "ollama" // placeholder, ignored by ollama
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultOllamaBaseURL
		}
		if cfg.Model == "" {
			cfg.Model = DefaultOllamaModel
		}
	default:
		return nil, fmt.Errorf("unsupported provider %q", cfg.Provider)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}

	logger.Info("Chat completion client initialized",
		zap.String("provider", cfg.Provider),
		zap.String("base_url", cfg.BaseURL),
		zap.String("model", cfg.Model),
	)

	return &Client{
		provider:    cfg.Provider,
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named(cfg.Provider),
	}, nil
}

// Chat completion API structures
type chatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider returns the provider name
func (c *Client) Provider() string { return c.provider }

// Model returns the configured model name
func (c *Client) Model() string { return c.model }

// Generate performs a single completion. Grounded search is not offered by
// these APIs and is ignored.
func (c *Client) Generate(ctx context.Context, req outbound.GenerateRequest) (*outbound.Completion, error) {
	messages := make([]message, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, message{Role: "system", Content: req.SystemInstruction})
	}
	messages = append(messages, message{Role: "user", Content: req.Prompt})

	text, err := c.complete(ctx, messages, req.JSONResponse)
	if err != nil {
		return nil, err
	}
	return &outbound.Completion{Text: text}, nil
}

// NewChatSession starts a conversation whose history is kept client side
// and resent with every message
func (c *Client) NewChatSession(_ context.Context, cfg outbound.ChatSessionConfig) (outbound.ChatSession, error) {
	messages := make([]message, 0, len(cfg.History)+1)
	if cfg.SystemInstruction != "" {
		messages = append(messages, message{Role: "system", Content: cfg.SystemInstruction})
	}
	for _, turn := range cfg.History {
		role := "assistant"
		if turn.Role == outbound.RoleUser {
			role = "user"
		}
		messages = append(messages, message{Role: role, Content: turn.Text})
	}
	return &chatSession{client: c, messages: messages}, nil
}

// HealthCheck lists the models the endpoint serves
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", c.provider, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s health check returned status %d", c.provider, resp.StatusCode)
	}
	return nil
}

// complete makes the actual API call
func (c *Client) complete(ctx context.Context, messages []message, jsonResponse bool) (string, error) {
	reqBody := chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if jsonResponse {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", ErrNoChoices
	}

	c.logger.Debug("Chat completion succeeded",
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
		zap.Int("total_tokens", chatResp.Usage.TotalTokens),
	)
	return chatResp.Choices[0].Message.Content, nil
}

type chatSession struct {
	client *Client

	mu       sync.Mutex
	messages []message
}

// Send appends the message, and on success the reply, to the history.
// A failed call leaves the history unchanged.
func (s *chatSession) Send(ctx context.Context, text string) (*outbound.Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := append(s.messages[:len(s.messages):len(s.messages)], message{Role: "user", Content: text})
	reply, err := s.client.complete(ctx, pending, false)
	if err != nil {
		return nil, err
	}
	s.messages = append(pending, message{Role: "assistant", Content: reply})
	return &outbound.Completion{Text: reply}, nil
}
