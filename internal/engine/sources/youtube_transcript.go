package sources

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"bitbucket.org/creachadair/stringset"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Public (unauthenticated) transcript access.
// Track discovery: watch page ytInitialPlayerResponse, falling back to ANDROID /player.
// Track content: timedtext XML at the track's baseUrl.

const timedTextXMLLimit = 2 * 1024 * 1024

// TranscriptInfo describes one transcript available for a video.
type TranscriptInfo struct {
	LanguageCode string `json:"language_code"`
	Language     string `json:"language"`
	Generated    bool   `json:"generated"`

	baseURL string
}

// Segment is one timed line of a transcript.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// JoinSegments concatenates segment texts with single spaces, skipping empties.
func JoinSegments(segs []Segment) string {
	parts := make([]string, 0, len(segs))
	for _, s := range segs {
		if s.Text != "" {
			parts = append(parts, s.Text)
		}
	}
	return strings.Join(parts, " ")
}

// PublicClient lists and fetches transcripts without credentials.
type PublicClient struct {
	WatchURL      string
	InnertubeBase string
	HTTPClient    *http.Client
}

// NewPublicClient builds a PublicClient from the engine configuration.
func NewPublicClient() *PublicClient {
	c := engine.Cfg
	return &PublicClient{WatchURL: c.WatchURL, InnertubeBase: c.InnertubeBase, HTTPClient: c.HTTPClient}
}

// ListTranscripts returns every fetchable transcript, manual ones first, each
// group in the order YouTube lists them. A video without captions yields an
// empty list and no error.
func (c *PublicClient) ListTranscripts(ctx context.Context, videoID string) ([]TranscriptInfo, error) {
	player, err := fetchWatchPlayer(ctx, c.HTTPClient, c.WatchURL, videoID)
	if err != nil || len(player.tracks()) == 0 {
		if err != nil {
			slog.Debug("youtube: page scrape failed, trying player",
				slog.String("id", videoID), slog.Any("err", err))
		}
		android, aerr := fetchAndroidPlayer(ctx, c.HTTPClient, c.InnertubeBase, videoID)
		switch {
		case aerr == nil:
			player = android
		case err != nil:
			return nil, fmt.Errorf("list transcripts: %w", errors.Join(err, aerr))
		}
	}

	tracks := player.tracks()
	if len(tracks) == 0 {
		if r := player.reason(); r != "" && r != "OK" {
			slog.Debug("youtube: no captions", slog.String("id", videoID), slog.String("reason", r))
		}
		return nil, nil
	}

	var manual, generated []TranscriptInfo
	for _, t := range tracks {
		if needsPoToken(t.BaseURL) {
			continue
		}
		info := TranscriptInfo{
			LanguageCode: t.LanguageCode,
			Language:     t.Name.String(),
			Generated:    t.Kind == "asr",
			baseURL:      t.BaseURL,
		}
		if info.Generated {
			generated = append(generated, info)
		} else {
			manual = append(manual, info)
		}
	}
	return append(manual, generated...), nil
}

// FindTranscript picks the first language in langs that has a transcript,
// preferring a manual track over a generated one for the same language.
func FindTranscript(list []TranscriptInfo, langs []string) (TranscriptInfo, bool) {
	for _, lang := range langs {
		for _, generated := range []bool{false, true} {
			for _, t := range list {
				if t.LanguageCode == lang && t.Generated == generated {
					return t, true
				}
			}
		}
	}
	return TranscriptInfo{}, false
}

// FetchTranscript fetches the best transcript for the language preference list.
// Fails with NoMatchingLanguage when none of langs is available.
func (c *PublicClient) FetchTranscript(ctx context.Context, videoID string, langs []string) ([]Segment, TranscriptInfo, error) {
	const op = "transcript_api.fetch"
	list, err := c.ListTranscripts(ctx, videoID)
	if err != nil {
		return nil, TranscriptInfo{}, err
	}
	info, ok := FindTranscript(list, langs)
	if !ok {
		codes := make([]string, 0, len(list))
		for _, t := range list {
			codes = append(codes, t.LanguageCode)
		}
		return nil, TranscriptInfo{}, engine.Errorf(engine.KindNoMatchingLanguage, op,
			"no transcript in %v (available: %v)", langs, stringset.New(codes...).Elements())
	}
	segs, err := c.FetchTrack(ctx, info)
	if err != nil {
		return nil, info, err
	}
	return segs, info, nil
}

// FetchTrack downloads and parses a transcript's timedtext XML.
func (c *PublicClient) FetchTrack(ctx context.Context, info TranscriptInfo) ([]Segment, error) {
	if info.baseURL == "" {
		return nil, errors.New("fetch track: transcript has no url")
	}
	// srv3 is a different XML schema; the default format is <transcript><text>.
	u := strings.Replace(info.baseURL, "&fmt=srv3", "", 1)

	resp, err := engine.DoRequest(ctx, c.HTTPClient, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.UserAgentChrome)
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: %s", engine.StatusSnippet(resp))
	}

	body, err := engine.ReadLimited(resp.Body, timedTextXMLLimit)
	if err != nil {
		return nil, err
	}
	return parseTimedTextXML(body)
}

func parseTimedTextXML(body []byte) ([]Segment, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}
	segs := make([]Segment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := engine.CleanHTML(line.Text)
		if text == "" {
			continue
		}
		start, _ := strconv.ParseFloat(line.Start, 64)
		dur, _ := strconv.ParseFloat(line.Dur, 64)
		segs = append(segs, Segment{Text: text, Start: start, Duration: dur})
	}
	return segs, nil
}
