package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tasteal/internal/shared"
)

// UsageRecorder persists the metadata of one execution.
type UsageRecorder interface {
	RecordMeta(ctx context.Context, meta shared.AgentMeta) error
}

// RecordedGenerator wraps a TextGenerator and records the token usage and
// latency of every successful call under an agent name.
type RecordedGenerator struct {
	gen      TextGenerator
	agent    string
	recorder UsageRecorder
	logger   *zap.Logger
}

// NewRecordedGenerator creates a new RecordedGenerator.
func NewRecordedGenerator(gen TextGenerator, agent string, recorder UsageRecorder, logger *zap.Logger) *RecordedGenerator {
	return &RecordedGenerator{gen: gen, agent: agent, recorder: recorder, logger: logger.Named("llm")}
}

// GenerateContent calls the wrapped generator. A failure to record usage is
// logged and does not fail the call.
func (g *RecordedGenerator) GenerateContent(ctx context.Context, prompt string) (ContentResponse, error) {
	start := time.Now()
	resp, err := g.gen.GenerateContent(ctx, prompt)
	if err != nil {
		return resp, err
	}

	meta := shared.AgentMeta{AgentName: g.agent, Usage: resp.Usage, Latency: time.Since(start)}
	if err := g.recorder.RecordMeta(ctx, meta); err != nil {
		g.logger.Warn("failed to record llm usage", zap.String("agent", g.agent), zap.Error(err))
	}
	g.logger.Debug("llm call finished",
		zap.String("agent", g.agent),
		zap.String("model", resp.Usage.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("latency", meta.Latency))
	return resp, nil
}
