package sources

// YouTube implementation is split across files by responsibility:
//   youtube_innertube.go:  Innertube API types, constants, and low-level HTTP primitives
//   youtube_transcript.go: public transcript listing and timedtext XML fetching
//   youtube_dataapi.go:    authenticated Data API v3 captions (list + SRT download)
//   youtube_timedtext.go:  json3 timedtext endpoint

import (
	"regexp"
	"strings"
)

var videoIDRE = regexp.MustCompile(`(?:youtube\.com/(?:watch\?(?:.*&)?v=|shorts/|embed/|live/|v/)|youtu\.be/)([a-zA-Z0-9_-]{11})`)

// ExtractVideoID pulls the 11-char video ID from any YouTube URL format.
// Anything that is not a recognised URL is returned trimmed, as a raw id.
func ExtractVideoID(s string) string {
	s = strings.TrimSpace(s)
	if m := videoIDRE.FindStringSubmatch(s); len(m) >= 2 {
		return m[1]
	}
	return s
}
