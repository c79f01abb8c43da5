package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Resolver runs strategies strictly in order and returns the first success.
type Resolver struct {
	strategies []Strategy
}

// NewResolver builds a resolver over strategies, tried in the given order.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Deps wires the default cascade.
type Deps struct {
	Captions    CaptionsAPI
	TimedText   TimedTextFetcher
	Transcripts TranscriptAPI
	Languages   []string
	Keys        KeySource
	Extractor   AudioExtractor
	Transcriber SpeechTranscriber
}

// DefaultStrategies returns the fixed cascade: authenticated captions, public
// transcript API in preferred languages, public transcript API in any
// language, then audio extraction with speech recognition.
func DefaultStrategies(d Deps) []Strategy {
	return []Strategy{
		&AuthenticatedCaptions{API: d.Captions, TimedText: d.TimedText},
		&PublicTranscriptAPI{API: d.Transcripts, Languages: d.Languages},
		&TranscriptAPIFallback{API: d.Transcripts},
		&WhisperFallback{Keys: d.Keys, Extractor: d.Extractor, Transcriber: d.Transcriber},
	}
}

// Strategies returns the configured strategy names in order.
func (r *Resolver) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}

// Resolve returns the transcript from the first strategy that succeeds.
// When all fail it returns a *ResolutionFailure. A cancelled ctx stops the
// cascade and its error is returned as-is.
func (r *Resolver) Resolve(ctx context.Context, videoID, credential string) (*Result, error) {
	if videoID == "" {
		return nil, engine.Errorf(engine.KindInvalidInput, "resolve", "empty video id")
	}
	engine.IncrResolveRequests()

	failure := &ResolutionFailure{VideoID: videoID}
	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", videoID, err)
		}

		start := time.Now()
		res, err := s.Attempt(ctx, videoID, credential)
		if errors.Is(err, ErrSkipped) {
			slog.Debug("transcript: strategy skipped", slog.String("strategy", s.Name()), slog.String("video_id", videoID))
			continue
		}
		engine.IncrStrategyAttempts()
		if err == nil {
			engine.IncrMethod(string(res.Method))
			slog.Info("transcript: resolved",
				slog.String("video_id", videoID),
				slog.String("strategy", s.Name()),
				slog.String("method", string(res.Method)),
				slog.Int("chars", len(res.Text)),
				slog.Duration("elapsed", time.Since(start)))
			return &res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("resolve %s: %w", videoID, ctxErr)
		}

		engine.IncrStrategyFailures()
		kind := engine.KindOf(err)
		failure.Attempts = append(failure.Attempts, Attempt{
			Strategy: s.Name(),
			Kind:     kind,
			Message:  err.Error(),
			err:      err,
		})
		slog.Warn("transcript: strategy failed",
			slog.String("strategy", s.Name()),
			slog.String("video_id", videoID),
			slog.String("kind", string(kind)),
			slog.Any("error", err))
	}

	engine.IncrResolveFailures()
	return nil, failure
}
