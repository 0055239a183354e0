package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/genai"

	"github.com/nutrismart/planner/internal/domain/nutrition"
)

func TestCompletionFrom(t *testing.T) {
	t.Run("joins text parts and skips thoughts", func(t *testing.T) {
		res := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "Eat more "},
				{Text: "dal."},
			}},
		}}}

		completion, err := completionFrom(res)

		require.NoError(t, err)
		assert.Equal(t, "Eat more dal.", completion.Text)
		assert.Empty(t, completion.Sources)
	})

	t.Run("collects web grounding sources", func(t *testing.T) {
		res := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText("Cited answer", genai.RoleModel),
			GroundingMetadata: &genai.GroundingMetadata{GroundingChunks: []*genai.GroundingChunk{
				{Web: &genai.GroundingChunkWeb{URI: "https://who.int/a", Title: "WHO"}},
				{Web: &genai.GroundingChunkWeb{URI: ""}},
				{},
			}},
		}}}

		completion, err := completionFrom(res)

		require.NoError(t, err)
		assert.Equal(t, []nutrition.GroundingSource{{URI: "https://who.int/a", Title: "WHO"}}, completion.Sources)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := completionFrom(&genai.GenerateContentResponse{})
		assert.ErrorIs(t, err, ErrEmptyResponse)

		_, err = completionFrom(nil)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), Config{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	client, err := NewClient(context.Background(), Config{APIKey: "test-key"}, zaptest.NewLogger(t))

	require.NoError(t, err)
	assert.Equal(t, DefaultModel, client.Model())
	assert.Equal(t, ProviderName, client.Provider())
}
