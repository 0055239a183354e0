// Package gemini provides the Google Gemini model client
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/ports/outbound"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-2.5-flash-preview-04-17"

// ProviderName identifies this client in logs and metrics
const ProviderName = "gemini"

// ErrEmptyResponse is returned when the model produced no candidate
var ErrEmptyResponse = errors.New("gemini returned no candidates")

// Config holds the client settings
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client implements outbound.ModelClient on the Gemini API
type Client struct {
	genAI  *genai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a Gemini client. The API key is required.
func NewClient(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	genAI, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Info("Gemini client initialized", zap.String("model", cfg.Model))
	return &Client{
		genAI:  genAI,
		model:  cfg.Model,
		logger: logger.Named("gemini"),
	}, nil
}

// Provider returns the provider name
func (c *Client) Provider() string { return ProviderName }

// Model returns the configured model name
func (c *Client) Model() string { return c.model }

// Generate performs a single completion
func (c *Client) Generate(ctx context.Context, req outbound.GenerateRequest) (*outbound.Completion, error) {
	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleModel)
	}
	if req.JSONResponse {
		config.ResponseMIMEType = "application/json"
	}
	if req.GroundedSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	res, err := c.genAI.Models.GenerateContent(ctx, c.model, []*genai.Content{
		genai.NewContentFromText(req.Prompt, genai.RoleUser),
	}, config)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	return completionFrom(res)
}

// NewChatSession opens a conversation seeded with prior turns
func (c *Client) NewChatSession(ctx context.Context, cfg outbound.ChatSessionConfig) (outbound.ChatSession, error) {
	config := &genai.GenerateContentConfig{}
	if cfg.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(cfg.SystemInstruction, genai.RoleModel)
	}
	if cfg.GroundedSearch {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	history := make([]*genai.Content, 0, len(cfg.History))
	for _, turn := range cfg.History {
		var role genai.Role = genai.RoleModel
		if turn.Role == outbound.RoleUser {
			role = genai.RoleUser
		}
		history = append(history, genai.NewContentFromText(turn.Text, role))
	}

	chat, err := c.genAI.Chats.Create(ctx, c.model, config, history)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &chatSession{chat: chat}, nil
}

// HealthCheck verifies the model is reachable with the configured key
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.genAI.Models.Get(ctx, c.model, nil); err != nil {
		return fmt.Errorf("gemini model %s unavailable: %w", c.model, err)
	}
	return nil
}

type chatSession struct {
	chat *genai.Chat
}

func (s *chatSession) Send(ctx context.Context, message string) (*outbound.Completion, error) {
	res, err := s.chat.SendMessage(ctx, genai.Part{Text: message})
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return completionFrom(res)
}

// completionFrom joins the text parts of the first candidate and collects
// its web grounding citations
func completionFrom(res *genai.GenerateContentResponse) (*outbound.Completion, error) {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0] == nil {
		return nil, ErrEmptyResponse
	}
	candidate := res.Candidates[0]

	var text strings.Builder
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part != nil && !part.Thought {
				text.WriteString(part.Text)
			}
		}
	}

	completion := &outbound.Completion{Text: text.String()}
	if meta := candidate.GroundingMetadata; meta != nil {
		for _, chunk := range meta.GroundingChunks {
			if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
				continue
			}
			completion.Sources = append(completion.Sources, nutrition.GroundingSource{
				URI:   chunk.Web.URI,
				Title: chunk.Web.Title,
			})
		}
	}
	return completion, nil
}
