package captions

import (
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// TrackKind distinguishes human-authored captions from speech recognition.
type TrackKind int

const (
	KindManual TrackKind = iota
	KindAutoGenerated
)

func (k TrackKind) String() string {
	if k == KindAutoGenerated {
		return "auto"
	}
	return "manual"
}

// Track describes one caption stream of a video.
type Track struct {
	ID           string    `json:"id"`
	LanguageCode string    `json:"language_code"`
	Kind         TrackKind `json:"kind"`
}

// KindFromTrackKind maps the Data API trackKind field ("standard", "asr", "forced").
func KindFromTrackKind(trackKind string) TrackKind {
	if strings.EqualFold(trackKind, "asr") {
		return KindAutoGenerated
	}
	return KindManual
}

func isEnglish(t Track) bool {
	return strings.HasPrefix(strings.ToLower(t.LanguageCode), "en")
}

// SelectBestTrack scans tracks once, left to right. The first English manual
// track wins immediately; otherwise the earliest English auto-generated track;
// with no English track at all, tracks[0].
func SelectBestTrack(tracks []Track) (Track, error) {
	if len(tracks) == 0 {
		return Track{}, engine.Errorf(engine.KindInvalidInput, "captions.select", "no tracks to choose from")
	}
	best := -1
	for i, t := range tracks {
		if !isEnglish(t) {
			continue
		}
		if t.Kind == KindManual {
			return t, nil
		}
		if best < 0 {
			best = i
		}
	}
	if best >= 0 {
		return tracks[best], nil
	}
	return tracks[0], nil
}
