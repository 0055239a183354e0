// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces the application needs from infrastructure
package outbound

import (
	"context"
	"errors"

	"github.com/nutrismart/planner/internal/domain/nutrition"
	"github.com/nutrismart/planner/internal/domain/user"
)

// ErrKeyNotFound is returned by a KeyValueStore for an absent key
var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore persists whole JSON documents under string keys.
// Writes overwrite the previous value; there are no transactions.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// Chat turn roles understood by model providers
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// GenerateRequest is a single-shot completion request
type GenerateRequest struct {
	Prompt            string
	SystemInstruction string
	// JSONResponse asks the provider for JSON output when it supports it
	JSONResponse   bool
	GroundedSearch bool
}

// Completion is the text a model produced plus any web citations
type Completion struct {
	Text    string
	Sources []nutrition.GroundingSource
}

// ChatTurn is one prior message seeded into a chat session
type ChatTurn struct {
	Role string
	Text string
}

// ChatSessionConfig seeds a new conversational session
type ChatSessionConfig struct {
	SystemInstruction string
	History           []ChatTurn
	GroundedSearch    bool
}

// ChatSession is a stateful conversation; only new messages are sent
type ChatSession interface {
	Send(ctx context.Context, message string) (*Completion, error)
}

// ModelClient is a handle on a remote generative model
type ModelClient interface {
	Generate(ctx context.Context, req GenerateRequest) (*Completion, error)
	NewChatSession(ctx context.Context, cfg ChatSessionConfig) (ChatSession, error)
	Provider() string
	Model() string
	HealthCheck(ctx context.Context) error
}

// IdentityProvider exchanges OAuth access tokens for user details
type IdentityProvider interface {
	UserInfo(ctx context.Context, accessToken string) (*user.Info, error)
	Revoke(ctx context.Context, accessToken string) error
}
