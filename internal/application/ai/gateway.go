// Package ai provides the application layer for AI operations: prompt
// builders, reply normalization and the gateway that owns the model client.
package ai

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/ports/outbound"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// Fixed texts returned instead of model output
const (
	ChatUnavailableText        = "AI service is currently unavailable. API Key not configured or AI client failed to initialize."
	ChatErrorText              = "Sorry, I encountered an error trying to respond. Please try again."
	IngredientsUnavailableText = "AI service is unavailable. Please check API key configuration."
	IngredientsEmptyText       = "Please provide some ingredients."
	IngredientsErrorText       = "Sorry, I couldn't come up with suggestions right now."
)

// ChatHistoryLimit is how many prior messages seed a new chat session
const ChatHistoryLimit = 10

// Operation names used in logs, spans and metrics
const (
	OpMealPlan       = "meal_plan"
	OpProteinSources = "protein_sources"
	OpBabyFood       = "baby_food"
	OpChat           = "chat"
	OpIngredients    = "ingredient_suggestion"
)

// Request outcomes reported to the Recorder
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusMalformed   = "malformed"
	StatusUnavailable = "unavailable"
)

// Recorder receives one observation per gateway call
type Recorder interface {
	ObserveAIRequest(provider, model, operation, status string, duration time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveAIRequest(string, string, string, string, time.Duration) {}

// ChatReply is what the coach answers. Text is always populated.
type ChatReply struct {
	Text    string                      `json:"text"`
	Sources []nutrition.GroundingSource `json:"sources,omitempty"`
}

// Gateway is the single point of contact with the remote model. It holds the
// client handle and at most one chat session. A gateway built without a
// client answers every call with its fallback value and never goes remote.
// Calls are never retried.
type Gateway struct {
	client   outbound.ModelClient
	logger   *zap.Logger
	recorder Recorder
	tracer   trace.Tracer
	now      func() time.Time

	mu      sync.Mutex
	session outbound.ChatSession
}

// Option configures a Gateway
type Option func(*Gateway)

// WithRecorder reports call outcomes to r
func WithRecorder(r Recorder) Option {
	return func(g *Gateway) {
		if r != nil {
			g.recorder = r
		}
	}
}

// WithClock overrides the time source used to stamp plans
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// NewGateway creates a gateway. client may be nil when no credential is
// configured.
func NewGateway(client outbound.ModelClient, logger *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		client:   client,
		logger:   logger.Named("ai-gateway"),
		recorder: nopRecorder{},
		tracer:   otel.Tracer("github.com/nutrismart/planner/internal/application/ai"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	if client == nil {
		g.logger.Error("AI client not configured, AI features will return fallback values")
	} else {
		g.logger.Info("AI gateway initialized",
			zap.String("provider", client.Provider()),
			zap.String("model", client.Model()),
		)
	}
	return g
}

// Configured reports whether a model client is available
func (g *Gateway) Configured() bool {
	return g.client != nil
}

// HealthCheck probes the model provider
func (g *Gateway) HealthCheck(ctx context.Context) error {
	if g.client == nil {
		return errUnavailable()
	}
	return g.client.HealthCheck(ctx)
}

// GenerateWeeklyMealPlan asks the model for a seven day plan. The result
// always holds Monday to Sunday exactly once and carries the profile's id.
func (g *Gateway) GenerateWeeklyMealPlan(ctx context.Context, profile nutrition.UserProfile, mode nutrition.PlanMode) (*nutrition.WeeklyPlan, error) {
	if !g.Configured() {
		g.logUnavailable(OpMealPlan)
		return nil, errUnavailable()
	}
	if mode == "" {
		mode = nutrition.PlanModeBalanced
	}

	completion, err := g.generate(ctx, OpMealPlan, outbound.GenerateRequest{
		Prompt:       BuildMealPlanPrompt(profile, mode),
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}

	plan, ok := ParseJSON[nutrition.WeeklyPlan](g.logger, completion.Text)
	if ok && plan.Days == nil {
		// an object without a days array is not a plan; do not backfill it
		g.logger.Warn("Generated plan has no days", zap.String("raw_response", completion.Text))
		ok = false
	}
	if !ok {
		g.observe(OpMealPlan, StatusMalformed, 0)
		return nil, apperrors.NewAIResponseMalformedError(OpMealPlan)
	}

	if missing := plan.MissingDays(); len(missing) > 0 {
		g.logger.Info("Backfilling weekdays missing from generated plan",
			zap.String("profile_id", profile.ID),
			zap.Strings("days", missing),
		)
	}
	plan.CompleteWeek()
	plan.Stamp(profile.ID, g.now())

	return plan, nil
}

// GetProteinRichFoodSuggestions asks for protein sources. An empty slice is
// a valid answer; nil means nothing usable was produced.
func (g *Gateway) GetProteinRichFoodSuggestions(ctx context.Context, profile nutrition.UserProfile) ([]nutrition.ProteinSource, error) {
	if !g.Configured() {
		g.logUnavailable(OpProteinSources)
		return nil, errUnavailable()
	}

	completion, err := g.generate(ctx, OpProteinSources, outbound.GenerateRequest{
		Prompt:       BuildProteinSourcesPrompt(profile),
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}

	sources, ok := ParseJSON[[]nutrition.ProteinSource](g.logger, completion.Text)
	if !ok {
		g.observe(OpProteinSources, StatusMalformed, 0)
		return nil, apperrors.NewAIResponseMalformedError(OpProteinSources)
	}
	return *sources, nil
}

// GetBabyFoodSuggestions classifies the age locally and only asks the model
// for ages between 6 and 24 months. Other ages get a fixed answer.
func (g *Gateway) GetBabyFoodSuggestions(ctx context.Context, ageMonths int) (*nutrition.BabyFoodSuggestion, error) {
	bracket, ok := nutrition.LookupBabyAgeBracket(ageMonths)
	if !ok {
		fallback := nutrition.OutOfRangeBabyFood()
		return &fallback, nil
	}
	if !g.Configured() {
		g.logUnavailable(OpBabyFood)
		return nil, errUnavailable()
	}

	completion, err := g.generate(ctx, OpBabyFood, outbound.GenerateRequest{
		Prompt:       BuildBabyFoodPrompt(bracket),
		JSONResponse: true,
	})
	if err != nil {
		return nil, err
	}

	suggestion, ok := ParseJSON[nutrition.BabyFoodSuggestion](g.logger, completion.Text)
	if !ok {
		g.observe(OpBabyFood, StatusMalformed, 0)
		return nil, apperrors.NewAIResponseMalformedError(OpBabyFood)
	}
	return suggestion, nil
}

// GetAIChatResponse sends message on the gateway's chat session, creating
// and seeding it on first use. The reply text is always usable; a non-nil
// error only explains why it is a fallback. A failed send discards the
// session so the next call starts a fresh one.
func (g *Gateway) GetAIChatResponse(ctx context.Context, message string, profile *nutrition.UserProfile, history []nutrition.ChatMessage) (ChatReply, error) {
	if !g.Configured() {
		g.logUnavailable(OpChat)
		return ChatReply{Text: ChatUnavailableText}, errUnavailable()
	}

	ctx, span := g.tracer.Start(ctx, "ai.chat", trace.WithAttributes(g.spanAttributes(OpChat)...))
	defer span.End()
	start := time.Now()

	session, err := g.chatSession(ctx, profile, history)
	if err != nil {
		g.failSpan(span, err)
		g.observe(OpChat, StatusError, time.Since(start))
		g.logger.Error("Failed to create chat session", zap.Error(err))
		return ChatReply{Text: ChatErrorText}, apperrors.NewExternalServiceError(g.client.Provider(), err)
	}

	completion, err := session.Send(ctx, message)
	if err != nil {
		g.discardSession(session)
		g.failSpan(span, err)
		g.observe(OpChat, StatusError, time.Since(start))
		g.logger.Error("Error getting AI chat response, chat session reset", zap.Error(err))
		return ChatReply{Text: ChatErrorText}, apperrors.NewExternalServiceError(g.client.Provider(), err)
	}

	g.observe(OpChat, StatusSuccess, time.Since(start))
	span.SetAttributes(attribute.Int("ai.sources", len(completion.Sources)))
	return ChatReply{Text: completion.Text, Sources: completion.Sources}, nil
}

// ResetChatSession drops the current chat session, if any
func (g *Gateway) ResetChatSession() {
	g.mu.Lock()
	g.session = nil
	g.mu.Unlock()
}

// SuggestMealFromIngredients asks for meal ideas limited to the given
// ingredients. The returned text is always displayable.
func (g *Gateway) SuggestMealFromIngredients(ctx context.Context, ingredients []string, profile *nutrition.UserProfile) (string, error) {
	if !g.Configured() {
		g.logUnavailable(OpIngredients)
		return IngredientsUnavailableText, errUnavailable()
	}

	cleaned := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			cleaned = append(cleaned, ing)
		}
	}
	if len(cleaned) == 0 {
		return IngredientsEmptyText, nil
	}

	completion, err := g.generate(ctx, OpIngredients, outbound.GenerateRequest{
		Prompt: BuildIngredientSuggestionPrompt(cleaned, profile),
	})
	if err != nil {
		return IngredientsErrorText, err
	}
	return completion.Text, nil
}

// chatSession returns the live session or seeds a new one. Construction
// happens outside the lock, so two concurrent first calls may each build a
// session; the last one stored wins.
func (g *Gateway) chatSession(ctx context.Context, profile *nutrition.UserProfile, history []nutrition.ChatMessage) (outbound.ChatSession, error) {
	g.mu.Lock()
	current := g.session
	g.mu.Unlock()
	if current != nil {
		return current, nil
	}

	recent := nutrition.LastMessages(history, ChatHistoryLimit)
	turns := make([]outbound.ChatTurn, 0, len(recent))
	for _, msg := range recent {
		role := outbound.RoleModel
		if msg.Sender == nutrition.SenderUser {
			role = outbound.RoleUser
		}
		turns = append(turns, outbound.ChatTurn{Role: role, Text: msg.Text})
	}

	session, err := g.client.NewChatSession(ctx, outbound.ChatSessionConfig{
		SystemInstruction: BuildChatSystemInstruction(profile),
		History:           turns,
		GroundedSearch:    true,
	})
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.session = session
	g.mu.Unlock()
	g.logger.Debug("Chat session created", zap.Int("seeded_turns", len(turns)))
	return session, nil
}

// discardSession clears the session only if it is still the broken one
func (g *Gateway) discardSession(broken outbound.ChatSession) {
	g.mu.Lock()
	if g.session == broken {
		g.session = nil
	}
	g.mu.Unlock()
}

// generate performs one traced, measured completion call
func (g *Gateway) generate(ctx context.Context, operation string, req outbound.GenerateRequest) (*outbound.Completion, error) {
	ctx, span := g.tracer.Start(ctx, "ai."+operation, trace.WithAttributes(g.spanAttributes(operation)...))
	defer span.End()

	start := time.Now()
	completion, err := g.client.Generate(ctx, req)
	duration := time.Since(start)
	if err != nil {
		g.failSpan(span, err)
		g.observe(operation, StatusError, duration)
		g.logger.Error("AI request failed",
			zap.String("operation", operation),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, apperrors.NewExternalServiceError(g.client.Provider(), err).WithMetadata("operation", operation)
	}

	g.observe(operation, StatusSuccess, duration)
	g.logger.Debug("AI request completed",
		zap.String("operation", operation),
		zap.Duration("duration", duration),
		zap.Int("response_length", len(completion.Text)),
	)
	return completion, nil
}

func (g *Gateway) spanAttributes(operation string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("ai.operation", operation),
		attribute.String("ai.provider", g.client.Provider()),
		attribute.String("ai.model", g.client.Model()),
	}
}

func (g *Gateway) failSpan(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func (g *Gateway) observe(operation, status string, duration time.Duration) {
	provider, model := "none", "none"
	if g.client != nil {
		provider, model = g.client.Provider(), g.client.Model()
	}
	g.recorder.ObserveAIRequest(provider, model, operation, status, duration)
}

func (g *Gateway) logUnavailable(operation string) {
	g.observe(operation, StatusUnavailable, 0)
	g.logger.Warn("AI client not initialized, API key might be missing", zap.String("operation", operation))
}

func errUnavailable() *apperrors.AppError {
	return apperrors.NewServiceUnavailableError("AI service unavailable").
		WithMetadata("reason", "no model credential configured")
}
