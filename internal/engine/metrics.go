package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ResolveRequests   atomic.Int64
	ResolveFailures   atomic.Int64
	StrategyAttempts  atomic.Int64
	StrategyFailures  atomic.Int64
	YouTubeAPIHits    atomic.Int64
	TimedTextHits     atomic.Int64
	TranscriptAPIHits atomic.Int64
	FallbackListHits  atomic.Int64
	WhisperHits       atomic.Int64
	AudioExtractions  atomic.Int64
	WhisperUploads    atomic.Int64
	LLMCalls          atomic.Int64
	LLMErrors         atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"resolve_requests":         metrics.ResolveRequests.Load(),
		"resolve_failures":         metrics.ResolveFailures.Load(),
		"strategy_attempts":        metrics.StrategyAttempts.Load(),
		"strategy_failures":        metrics.StrategyFailures.Load(),
		"method_youtube_api":       metrics.YouTubeAPIHits.Load(),
		"method_youtube_timedtext": metrics.TimedTextHits.Load(),
		"method_transcript_api":    metrics.TranscriptAPIHits.Load(),
		"method_transcript_list":   metrics.FallbackListHits.Load(),
		"method_whisper":           metrics.WhisperHits.Load(),
		"audio_extractions":        metrics.AudioExtractions.Load(),
		"whisper_uploads":          metrics.WhisperUploads.Load(),
		"llm_calls":                metrics.LLMCalls.Load(),
		"llm_errors":               metrics.LLMErrors.Load(),
		"cache_hits":               hits,
		"cache_misses":             misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"resolve_requests", "resolve_failures",
		"strategy_attempts", "strategy_failures",
		"method_youtube_api", "method_youtube_timedtext",
		"method_transcript_api", "method_transcript_list", "method_whisper",
		"audio_extractions", "whisper_uploads",
		"llm_calls", "llm_errors",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for the transcript sub-package.
func IncrResolveRequests()  { metrics.ResolveRequests.Add(1) }
func IncrResolveFailures()  { metrics.ResolveFailures.Add(1) }
func IncrStrategyAttempts() { metrics.StrategyAttempts.Add(1) }
func IncrStrategyFailures() { metrics.StrategyFailures.Add(1) }

// IncrMethod counts a successful resolution by method tag.
func IncrMethod(method string) {
	switch method {
	case "youtube_api":
		metrics.YouTubeAPIHits.Add(1)
	case "youtube_api_timedtext":
		metrics.TimedTextHits.Add(1)
	case "transcript_api_primary":
		metrics.TranscriptAPIHits.Add(1)
	case "transcript_api_fallback":
		metrics.FallbackListHits.Add(1)
	case "whisper":
		metrics.WhisperHits.Add(1)
	}
}

// Incrementors for the audio sub-package.
func IncrAudioExtractions() { metrics.AudioExtractions.Add(1) }
func IncrWhisperUploads()   { metrics.WhisperUploads.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
