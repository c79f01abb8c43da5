package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/sync/errgroup"
)

// Summary limits. Transcripts longer than MaxSummaryChars are cut before chunking.
const (
	MaxSummaryChars  = 100_000
	SummaryChunkSize = 25_000
	summaryParallel  = 3
)

// ErrLLMNotConfigured is returned when summaries are requested without an LLM client.
var ErrLLMNotConfigured = errors.New("llm: client not configured")

// TranscriptSummary is the result of SummarizeTranscript.
type TranscriptSummary struct {
	Summary         string `json:"summary"`
	TranscriptChars int    `json:"transcript_chars"`
	Truncated       bool   `json:"truncated,omitempty"`
	Chunks          int    `json:"chunks"`
}

// completeFn is the LLM call used by summaries. Tests replace it.
var completeFn = func(ctx context.Context, system, prompt string, temperature float64, maxTokens int) (string, error) {
	if cfg.LLMClient == nil {
		return "", ErrLLMNotConfigured
	}
	return cfg.LLMClient.Complete(ctx, system, prompt,
		llm.WithChatTemperature(temperature),
		llm.WithChatMaxTokens(maxTokens),
	)
}

// callLLM counts the call and strips code fences from the reply.
func callLLM(ctx context.Context, system, prompt string, temperature float64, maxTokens int) (string, error) {
	metrics.LLMCalls.Add(1)
	resp, err := completeFn(ctx, system, prompt, temperature, maxTokens)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", err
	}
	return stripFences(resp), nil
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ChunkRunes splits s into pieces of at most size runes.
func ChunkRunes(s string, size int) []string {
	r := []rune(s)
	if size <= 0 || len(r) <= size {
		return []string{s}
	}
	chunks := make([]string, 0, (len(r)+size-1)/size)
	for i := 0; i < len(r); i += size {
		end := min(i+size, len(r))
		chunks = append(chunks, string(r[i:end]))
	}
	return chunks
}

// SummarizeTranscript builds a structured markdown summary of a transcript.
// Short transcripts are summarized in one call; longer ones are split into
// parts, summarized concurrently, and merged.
func SummarizeTranscript(ctx context.Context, title, transcript string) (*TranscriptSummary, error) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return nil, Errorf(KindInvalidInput, "summarize", "empty transcript")
	}

	total := len([]rune(transcript))
	limited := TruncateRunes(transcript, MaxSummaryChars, "")
	chunks := ChunkRunes(limited, SummaryChunkSize)
	out := &TranscriptSummary{
		TranscriptChars: total,
		Truncated:       total > MaxSummaryChars,
		Chunks:          len(chunks),
	}
	slog.Debug("summary: start",
		slog.String("title", title),
		slog.Int("chars", total),
		slog.Int("chunks", len(chunks)),
		slog.Bool("truncated", out.Truncated))

	if len(chunks) == 1 {
		prompt := fmt.Sprintf(singlePassPrompt, title, limited, summarySections)
		s, err := callLLM(ctx, summarySystem, prompt, 0.5, cfg.LLMMaxTokens)
		if err != nil {
			return nil, fmt.Errorf("summarize: %w", err)
		}
		out.Summary = s
		return out, nil
	}

	parts := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryParallel)
	for i, chunk := range chunks {
		g.Go(func() error {
			prompt := fmt.Sprintf(chunkPrompt, i+1, len(chunks), title, i+1, len(chunks), chunk)
			s, err := callLLM(gctx, summarySystem, prompt, 0.5, cfg.LLMMaxTokens)
			if err != nil {
				return fmt.Errorf("summarize part %d/%d: %w", i+1, len(chunks), err)
			}
			parts[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined strings.Builder
	for i, p := range parts {
		if i > 0 {
			combined.WriteString("\n\n---\n\n")
		}
		fmt.Fprintf(&combined, "### Part %d Summary:\n%s", i+1, p)
	}
	prompt := fmt.Sprintf(mergePrompt, len(parts), title, combined.String(), summarySections)
	s, err := callLLM(ctx, mergeSystem, prompt, 0.4, cfg.LLMMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("merge summaries: %w", err)
	}
	out.Summary = s
	return out, nil
}
