package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasteal/internal/shared"
	"tasteal/internal/testutil"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore(testutil.OpenDB(t))
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Record(ctx, ExecutionMetric{AgentName: "clipper", PromptTokens: 100, CompletionTokens: 20, Timestamp: now.Add(-time.Hour)}))
	require.NoError(t, store.Record(ctx, ExecutionMetric{AgentName: "clipper", PromptTokens: 50, CompletionTokens: 5, Timestamp: now.Add(-2 * time.Hour)}))
	require.NoError(t, store.Record(ctx, ExecutionMetric{AgentName: "clipper", PromptTokens: 10, CompletionTokens: 1, Timestamp: now.AddDate(0, 0, -1)}))
	require.NoError(t, store.Record(ctx, ExecutionMetric{AgentName: "clipper", PromptTokens: 999, Timestamp: now.AddDate(0, 0, -40)}))

	require.NoError(t, store.RecordMeta(ctx, shared.AgentMeta{
		AgentName: "clipper",
		Usage:     shared.TokenUsage{PromptTokens: 1, CompletionTokens: 1, Model: "gemini"},
		Latency:   1500 * time.Millisecond,
	}))
	// no usage, nothing recorded
	require.NoError(t, store.RecordMeta(ctx, shared.AgentMeta{AgentName: "clipper"}))

	usage, err := store.GetDailyUsage(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []DailyUsage{
		{Date: "2024-05-10", TotalPrompt: 151, TotalCompletion: 26, TotalExecution: 3},
		{Date: "2024-05-09", TotalPrompt: 10, TotalCompletion: 1, TotalExecution: 1},
	}, usage)

	deleted, err := store.Cleanup(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestMapUsage(t *testing.T) {
	m := MapUsage("clipper", shared.TokenUsage{PromptTokens: 3, CompletionTokens: 4, Model: "gemini-1.5-flash"}, 250*time.Millisecond)
	assert.Equal(t, ExecutionMetric{AgentName: "clipper", Model: "gemini-1.5-flash", PromptTokens: 3, CompletionTokens: 4, LatencyMS: 250}, m)
}

func TestGetSysHealth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.jpg"), make([]byte, 2048), 0o644))

	h := GetSysHealth(filepath.Join(dir, "missing.db"), dir)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "2.0 KB", h.ImagesSize)
	assert.Equal(t, "0 B", h.DatabaseSize)
	assert.Positive(t, h.Goroutines)
}
