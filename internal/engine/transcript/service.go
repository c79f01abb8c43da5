package transcript

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
	"github.com/anatolykoptev/go_transcript/internal/history"
)

// Response is the caller-facing outcome of a transcript request.
type Response struct {
	Success    bool             `json:"success"`
	VideoID    string           `json:"video_id"`
	Transcript string           `json:"transcript,omitempty"`
	Method     Method           `json:"method,omitempty"`
	Language   string           `json:"language,omitempty"`
	Generated  bool             `json:"is_generated,omitempty"`
	Error      string           `json:"error,omitempty"`
	ErrorKind  engine.ErrorKind `json:"error_kind,omitempty"`
	Attempts   []Attempt        `json:"attempts,omitempty"`
	Cached     bool             `json:"cached,omitempty"`
}

// Recorder persists resolution outcomes.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) (int64, error)
}

// Service wraps a Resolver with caching and history.
type Service struct {
	Resolver *Resolver
	History  Recorder // optional
}

// Options tune a single Get call.
type Options struct {
	Credential string // OAuth access token for the Data API, optional
	Fresh      bool   // bypass the cache
}

// NewService returns a Service; rec may be nil.
func NewService(r *Resolver, rec Recorder) *Service {
	return &Service{Resolver: r, History: rec}
}

func cacheKey(videoID string) string {
	return engine.CacheKey("transcript", videoID)
}

// Get resolves the transcript for a video id or URL. Resolution failures are
// reported in the Response; the returned error is non-nil only for invalid
// input or a cancelled ctx.
func (s *Service) Get(ctx context.Context, video string, opts Options) (*Response, error) {
	videoID := sources.ExtractVideoID(video)
	if videoID == "" {
		return nil, engine.Errorf(engine.KindInvalidInput, "transcript", "video id or URL is required")
	}

	if !opts.Fresh {
		if res, ok := engine.CacheLoadJSON[Result](ctx, cacheKey(videoID)); ok && res.Text != "" {
			slog.Debug("transcript: cache hit", slog.String("video_id", videoID))
			resp := successResponse(videoID, res)
			resp.Cached = true
			s.record(ctx, resp, 0)
			return resp, nil
		}
	}

	start := time.Now()
	res, err := s.Resolver.Resolve(ctx, videoID, opts.Credential)
	elapsed := time.Since(start)
	if err != nil {
		var failure *ResolutionFailure
		if !errors.As(err, &failure) {
			return nil, err
		}
		resp := &Response{
			VideoID:   videoID,
			Error:     failure.Error(),
			ErrorKind: failure.Last().Kind,
			Attempts:  failure.Attempts,
		}
		s.record(ctx, resp, elapsed)
		return resp, nil
	}

	engine.CacheStoreJSON(ctx, cacheKey(videoID), *res)
	resp := successResponse(videoID, *res)
	s.record(ctx, resp, elapsed)
	return resp, nil
}

func successResponse(videoID string, r Result) *Response {
	return &Response{
		Success:    true,
		VideoID:    videoID,
		Transcript: r.Text,
		Method:     r.Method,
		Language:   r.Language,
		Generated:  r.Generated,
	}
}

func (s *Service) record(ctx context.Context, resp *Response, elapsed time.Duration) {
	if s.History == nil {
		return
	}
	attempts, err := json.Marshal(resp.Attempts)
	if err != nil || resp.Attempts == nil {
		attempts = []byte("[]")
	}
	e := history.Entry{
		VideoID:    resp.VideoID,
		Success:    resp.Success,
		Method:     string(resp.Method),
		Language:   resp.Language,
		Error:      resp.Error,
		Attempts:   attempts,
		Cached:     resp.Cached,
		DurationMs: elapsed.Milliseconds(),
	}
	if _, err := s.History.Record(context.WithoutCancel(ctx), e); err != nil {
		slog.Warn("transcript: history record failed", slog.String("video_id", resp.VideoID), slog.Any("error", err))
	}
}
