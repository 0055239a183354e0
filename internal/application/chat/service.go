// Package chat runs the diet coach conversation and keeps its message log
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nutrismart/planner/internal/application/ai"
	"github.com/nutrismart/planner/internal/application/storage"
	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/ports/inbound"
	apperrors "github.com/nutrismart/planner/pkg/errors"
)

// MaxMessageLength bounds a single user message, in runes
const MaxMessageLength = 4000

// Gateway is the subset of the AI gateway the chat needs
type Gateway interface {
	GetAIChatResponse(ctx context.Context, message string, profile *nutrition.UserProfile, history []nutrition.ChatMessage) (ai.ChatReply, error)
	ResetChatSession()
}

// Sanitizer cleans free text typed by the user
type Sanitizer interface {
	SanitizeText(input string, maxLength int) string
}

// Service appends both sides of every exchange to a single log
type Service struct {
	docs      *storage.Documents
	profiles  inbound.ProfileService
	gateway   Gateway
	sanitizer Sanitizer
	logger    *zap.Logger
	now       func() time.Time

	mu sync.Mutex
}

// NewService creates a chat service
func NewService(docs *storage.Documents, profiles inbound.ProfileService, gateway Gateway, sanitizer Sanitizer, logger *zap.Logger) *Service {
	return &Service{
		docs:      docs,
		profiles:  profiles,
		gateway:   gateway,
		sanitizer: sanitizer,
		logger:    logger.Named("chat-service"),
		now:       time.Now,
	}
}

// Messages returns the log, oldest first
func (s *Service) Messages(ctx context.Context) ([]nutrition.ChatMessage, error) {
	return s.load(ctx)
}

// Send records the user's message and the coach's answer. A failed model
// call still yields an answer holding the fallback text, which is stored
// like any other reply.
func (s *Service) Send(ctx context.Context, text, profileID string) (*inbound.ChatExchange, error) {
	text = s.sanitizer.SanitizeText(text, MaxMessageLength)
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.NewValidationError(nutrition.ErrEmptyMessage.Error())
	}

	profile, err := s.profiles.ResolveProfile(ctx, profileID)
	if err != nil {
		if profileID != "" {
			return nil, err
		}
		profile = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	question := nutrition.NewChatMessage(nutrition.SenderUser, text, nil, s.now())
	reply, replyErr := s.gateway.GetAIChatResponse(ctx, text, profile, history)
	if replyErr != nil {
		s.logger.Warn("Coach answered with fallback text", zap.Error(replyErr))
	}
	answer := nutrition.NewChatMessage(nutrition.SenderAI, reply.Text, reply.Sources, s.now())

	history = append(history, question, answer)
	if err := s.docs.Save(ctx, storage.KeyChatMessages, history); err != nil {
		return nil, err
	}
	return &inbound.ChatExchange{Question: question, Answer: answer, Fallback: replyErr != nil}, nil
}

// Clear empties the log and drops the live chat session
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.docs.Save(ctx, storage.KeyChatMessages, []nutrition.ChatMessage{}); err != nil {
		return err
	}
	s.gateway.ResetChatSession()
	s.logger.Info("Chat history cleared")
	return nil
}

func (s *Service) load(ctx context.Context) ([]nutrition.ChatMessage, error) {
	var history []nutrition.ChatMessage
	found, err := s.docs.Load(ctx, storage.KeyChatMessages, &history)
	if err != nil {
		return nil, err
	}
	if !found || history == nil {
		return []nutrition.ChatMessage{}, nil
	}
	return history, nil
}
