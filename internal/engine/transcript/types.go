// Package transcript resolves a video's transcript through an ordered cascade
// of acquisition strategies, from authenticated captions down to speech
// recognition of the extracted audio.
package transcript

import (
	"errors"
	"fmt"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Method tags which strategy produced a transcript.
type Method string

const (
	MethodYoutubeAPI            Method = "youtube_api"
	MethodYoutubeAPITimedText   Method = "youtube_api_timedtext"
	MethodTranscriptAPIPrimary  Method = "transcript_api_primary"
	MethodTranscriptAPIFallback Method = "transcript_api_fallback"
	MethodWhisper               Method = "whisper"
)

// Result is a successfully acquired transcript.
type Result struct {
	Text      string `json:"text"`
	Method    Method `json:"method"`
	Language  string `json:"language,omitempty"`
	Generated bool   `json:"is_generated,omitempty"`
}

// Attempt records one failed strategy.
type Attempt struct {
	Strategy string           `json:"strategy"`
	Kind     engine.ErrorKind `json:"kind"`
	Message  string           `json:"message"`

	err error
}

// ErrSkipped is returned by a strategy whose preconditions are not met
// (e.g. no credential). Skips are neither recorded nor counted.
var ErrSkipped = errors.New("strategy skipped")

// ResolutionFailure is returned when every strategy failed. Attempts keeps
// the order in which strategies ran.
type ResolutionFailure struct {
	VideoID  string    `json:"video_id"`
	Attempts []Attempt `json:"attempts"`
}

func (f *ResolutionFailure) Error() string {
	if len(f.Attempts) == 0 {
		return fmt.Sprintf("no transcript for %s: no strategy attempted", f.VideoID)
	}
	last := f.Last()
	return fmt.Sprintf("no transcript for %s after %d attempts; last: %s: %s",
		f.VideoID, len(f.Attempts), last.Strategy, last.Message)
}

// Last returns the final (most diagnostic) attempt.
func (f *ResolutionFailure) Last() Attempt {
	if len(f.Attempts) == 0 {
		return Attempt{}
	}
	return f.Attempts[len(f.Attempts)-1]
}

// Unwrap exposes the last attempt's error, so engine.KindOf reports its kind.
func (f *ResolutionFailure) Unwrap() error {
	return f.Last().err
}
