package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tasteal/internal/shared"
)

type fakeGenerator struct {
	resp ContentResponse
	err  error
}

func (f fakeGenerator) GenerateContent(context.Context, string) (ContentResponse, error) {
	return f.resp, f.err
}

type memoryRecorder struct {
	metas []shared.AgentMeta
	err   error
}

func (m *memoryRecorder) RecordMeta(_ context.Context, meta shared.AgentMeta) error {
	m.metas = append(m.metas, meta)
	return m.err
}

func TestRecordedGenerator(t *testing.T) {
	ctx := context.Background()
	usage := shared.TokenUsage{PromptTokens: 12, CompletionTokens: 30, Model: "gemini-1.5-flash"}

	t.Run("records usage", func(t *testing.T) {
		rec := &memoryRecorder{}
		gen := NewRecordedGenerator(fakeGenerator{resp: ContentResponse{Content: "{}", Usage: usage}}, "clipper", rec, zap.NewNop())

		resp, err := gen.GenerateContent(ctx, "prompt")
		require.NoError(t, err)
		assert.Equal(t, "{}", resp.Content)
		require.Len(t, rec.metas, 1)
		assert.Equal(t, "clipper", rec.metas[0].AgentName)
		assert.Equal(t, usage, rec.metas[0].Usage)
	})

	t.Run("recorder failure is not fatal", func(t *testing.T) {
		rec := &memoryRecorder{err: errors.New("db locked")}
		gen := NewRecordedGenerator(fakeGenerator{resp: ContentResponse{Content: "ok", Usage: usage}}, "clipper", rec, zap.NewNop())

		resp, err := gen.GenerateContent(ctx, "prompt")
		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Content)
	})

	t.Run("generator failure skips recording", func(t *testing.T) {
		rec := &memoryRecorder{}
		gen := NewRecordedGenerator(fakeGenerator{err: errors.New("quota")}, "clipper", rec, zap.NewNop())

		_, err := gen.GenerateContent(ctx, "prompt")
		assert.EqualError(t, err, "quota")
		assert.Empty(t, rec.metas)
	})
}
