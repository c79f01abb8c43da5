package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubComplete(t *testing.T, fn func(system, prompt string) (string, error)) {
	t.Helper()
	orig := completeFn
	completeFn = func(_ context.Context, system, prompt string, _ float64, _ int) (string, error) {
		return fn(system, prompt)
	}
	t.Cleanup(func() { completeFn = orig })
}

func TestChunkRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		size int
		want []string
	}{
		{"fits", "abc", 5, []string{"abc"}},
		{"exact", "abcd", 2, []string{"ab", "cd"}},
		{"remainder", "abcde", 2, []string{"ab", "cd", "e"}},
		{"multibyte", "привет", 4, []string{"прив", "ет"}},
		{"zero size", "abc", 0, []string{"abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChunkRunes(tt.in, tt.size))
		})
	}
}

func TestStripFences(t *testing.T) {
	assert.Equal(t, "## Summary", stripFences("```markdown\n## Summary\n```"))
	assert.Equal(t, "plain", stripFences("  plain  "))
}

func TestSummarizeTranscript_Empty(t *testing.T) {
	_, err := SummarizeTranscript(context.Background(), "t", "   ")
	require.Error(t, err)
	assert.Equal(t, KindInvalidInput, KindOf(err))
}

func TestSummarizeTranscript_SinglePass(t *testing.T) {
	var calls int
	stubComplete(t, func(system, prompt string) (string, error) {
		calls++
		assert.Contains(t, prompt, "Video Title: Talk")
		assert.Contains(t, prompt, "hello world")
		return "## Executive Summary\nshort", nil
	})

	out, err := SummarizeTranscript(context.Background(), "Talk", "hello world")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, out.Chunks)
	assert.False(t, out.Truncated)
	assert.Equal(t, 11, out.TranscriptChars)
	assert.Contains(t, out.Summary, "Executive Summary")
}

func TestSummarizeTranscript_ChunkAndMerge(t *testing.T) {
	var mu sync.Mutex
	var partCalls, mergeCalls int
	stubComplete(t, func(system, prompt string) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if strings.Contains(prompt, "partial summaries") {
			mergeCalls++
			assert.Contains(t, prompt, "### Part 1 Summary:")
			assert.Contains(t, prompt, "### Part 2 Summary:")
			return "merged", nil
		}
		partCalls++
		return "part", nil
	})

	transcript := strings.Repeat("a", SummaryChunkSize+10)
	out, err := SummarizeTranscript(context.Background(), "Long", transcript)
	require.NoError(t, err)
	assert.Equal(t, 2, partCalls)
	assert.Equal(t, 1, mergeCalls)
	assert.Equal(t, 2, out.Chunks)
	assert.Equal(t, "merged", out.Summary)
}

func TestSummarizeTranscript_Truncates(t *testing.T) {
	stubComplete(t, func(string, string) (string, error) { return "ok", nil })

	out, err := SummarizeTranscript(context.Background(), "Huge", strings.Repeat("b", MaxSummaryChars+1))
	require.NoError(t, err)
	assert.True(t, out.Truncated)
	assert.Equal(t, MaxSummaryChars/SummaryChunkSize, out.Chunks)
}

func TestSummarizeTranscript_PartFailure(t *testing.T) {
	boom := errors.New("rate limited")
	stubComplete(t, func(string, string) (string, error) { return "", boom })

	_, err := SummarizeTranscript(context.Background(), "Long", strings.Repeat("c", SummaryChunkSize*2))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSummarizeTranscript_NoClient(t *testing.T) {
	orig := cfg.LLMClient
	cfg.LLMClient = nil
	t.Cleanup(func() { cfg.LLMClient = orig })

	_, err := SummarizeTranscript(context.Background(), "t", "text")
	assert.ErrorIs(t, err, ErrLLMNotConfigured)
}
