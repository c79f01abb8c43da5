package transcript

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/audio"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
)

// Strategy is one self-contained way to acquire a transcript.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, videoID, credential string) (Result, error)
}

// Collaborators, satisfied by the sources and audio packages.

type CaptionsAPI interface {
	ListCaptions(ctx context.Context, videoID, token string) ([]captions.Track, error)
	DownloadCaption(ctx context.Context, captionID, token string) (string, error)
}

type TimedTextFetcher interface {
	FetchJSON3(ctx context.Context, videoID, lang string) (string, error)
}

type TranscriptAPI interface {
	FetchTranscript(ctx context.Context, videoID string, langs []string) ([]sources.Segment, sources.TranscriptInfo, error)
	ListTranscripts(ctx context.Context, videoID string) ([]sources.TranscriptInfo, error)
	FetchTrack(ctx context.Context, info sources.TranscriptInfo) ([]sources.Segment, error)
}

type AudioExtractor interface {
	Extract(ctx context.Context, videoID string) (*audio.Artifact, error)
}

type SpeechTranscriber interface {
	Transcribe(ctx context.Context, a *audio.Artifact, apiKey string) (string, error)
}

// KeySource supplies the speech-recognition API key, typically from settings.
type KeySource interface {
	WhisperAPIKey(ctx context.Context) (string, error)
}

// --- 1. Authenticated captions ---

// AuthenticatedCaptions lists tracks with the caller's OAuth token, picks the
// best one and downloads it as SRT. A failed download falls back to the
// timed-text endpoint in the selected track's language.
type AuthenticatedCaptions struct {
	API       CaptionsAPI
	TimedText TimedTextFetcher
}

func (s *AuthenticatedCaptions) Name() string { return "authenticated_captions" }

func (s *AuthenticatedCaptions) Attempt(ctx context.Context, videoID, credential string) (Result, error) {
	const op = "authenticated_captions"
	if credential == "" {
		return Result{}, ErrSkipped
	}
	tracks, err := s.API.ListCaptions(ctx, videoID, credential)
	if err != nil {
		if engine.KindOf(err) == engine.KindTransport {
			return Result{}, engine.WrapError(engine.KindListingFailed, op, err)
		}
		return Result{}, err
	}
	if len(tracks) == 0 {
		return Result{}, engine.Errorf(engine.KindNoCaptionsAvailable, op, "video %s has no caption tracks", videoID)
	}
	track, err := captions.SelectBestTrack(tracks)
	if err != nil {
		return Result{}, err
	}

	body, dlErr := s.API.DownloadCaption(ctx, track.ID, credential)
	if dlErr == nil {
		if text := captions.ParseSRTToText(body); text != "" {
			return Result{
				Text:      text,
				Method:    MethodYoutubeAPI,
				Language:  track.LanguageCode,
				Generated: track.Kind == captions.KindAutoGenerated,
			}, nil
		}
		dlErr = errors.New("downloaded caption is empty")
	}
	slog.Debug("transcript: caption download failed, trying timedtext",
		slog.String("video_id", videoID),
		slog.String("lang", track.LanguageCode),
		slog.Any("err", dlErr))

	if s.TimedText == nil {
		return Result{}, engine.WrapError(engine.KindTransport, op, dlErr)
	}
	text, ttErr := s.TimedText.FetchJSON3(ctx, videoID, track.LanguageCode)
	if ttErr != nil {
		return Result{}, engine.WrapError(engine.KindOf(ttErr), op, errors.Join(dlErr, ttErr))
	}
	return Result{
		Text:      text,
		Method:    MethodYoutubeAPITimedText,
		Language:  track.LanguageCode,
		Generated: track.Kind == captions.KindAutoGenerated,
	}, nil
}

// --- 2. Public transcript API, preferred languages ---

type PublicTranscriptAPI struct {
	API       TranscriptAPI
	Languages []string
}

func (s *PublicTranscriptAPI) Name() string { return "transcript_api_primary" }

func (s *PublicTranscriptAPI) Attempt(ctx context.Context, videoID, _ string) (Result, error) {
	langs := s.Languages
	if len(langs) == 0 {
		langs = engine.DefaultTranscriptLanguages
	}
	segs, info, err := s.API.FetchTranscript(ctx, videoID, langs)
	if err != nil {
		return Result{}, err
	}
	text := sources.JoinSegments(segs)
	if strings.TrimSpace(text) == "" {
		return Result{}, engine.Errorf(engine.KindNoMatchingLanguage, "transcript_api_primary", "%s transcript is empty", info.LanguageCode)
	}
	return Result{Text: text, Method: MethodTranscriptAPIPrimary, Language: info.LanguageCode, Generated: info.Generated}, nil
}

// --- 3. Public transcript API, any language ---

type TranscriptAPIFallback struct {
	API TranscriptAPI
}

func (s *TranscriptAPIFallback) Name() string { return "transcript_api_fallback" }

func (s *TranscriptAPIFallback) Attempt(ctx context.Context, videoID, _ string) (Result, error) {
	const op = "transcript_api_fallback"
	list, err := s.API.ListTranscripts(ctx, videoID)
	if err != nil {
		return Result{}, err
	}
	if len(list) == 0 {
		return Result{}, engine.Errorf(engine.KindNoTranscriptsAvailable, op, "video %s has no transcripts", videoID)
	}
	info := list[0]
	segs, err := s.API.FetchTrack(ctx, info)
	if err != nil {
		return Result{}, err
	}
	text := sources.JoinSegments(segs)
	if strings.TrimSpace(text) == "" {
		return Result{}, engine.Errorf(engine.KindNoTranscriptsAvailable, op, "%s transcript is empty", info.LanguageCode)
	}
	return Result{Text: text, Method: MethodTranscriptAPIFallback, Language: info.LanguageCode, Generated: info.Generated}, nil
}

// --- 4. Audio extraction + speech recognition ---

type WhisperFallback struct {
	Keys        KeySource
	Extractor   AudioExtractor
	Transcriber SpeechTranscriber
}

func (s *WhisperFallback) Name() string { return "whisper" }

func (s *WhisperFallback) Attempt(ctx context.Context, videoID, _ string) (Result, error) {
	const op = "whisper"
	var key string
	if s.Keys != nil {
		k, err := s.Keys.WhisperAPIKey(ctx)
		if err != nil {
			return Result{}, engine.WrapError(engine.KindMissingCredential, op, err)
		}
		key = k
	}
	if key == "" {
		return Result{}, engine.Errorf(engine.KindMissingCredential, op, "speech recognition API key not configured")
	}

	artifact, err := s.Extractor.Extract(ctx, videoID)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if rerr := artifact.Release(); rerr != nil {
			slog.Warn("whisper: audio cleanup failed",
				slog.String("video_id", videoID),
				slog.String("path", artifact.Path),
				slog.Any("error", rerr))
		}
	}()

	var text string
	err = engine.TrackOperation(ctx, "whisper.transcribe", func(ctx context.Context) error {
		var terr error
		text, terr = s.Transcriber.Transcribe(ctx, artifact, key)
		return terr
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Text: text, Method: MethodWhisper}, nil
}
