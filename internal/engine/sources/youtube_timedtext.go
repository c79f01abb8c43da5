package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

// The timedtext endpoint is unofficial and sometimes hangs, so every call is
// bounded by Timeout regardless of the caller's deadline.

const json3Limit = 4 * 1024 * 1024

// TimedTextClient fetches json3 captions from /api/timedtext.
type TimedTextClient struct {
	URL        string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewTimedTextClient builds a TimedTextClient from the engine configuration.
func NewTimedTextClient() *TimedTextClient {
	c := engine.Cfg
	return &TimedTextClient{URL: c.TimedTextURL, Timeout: c.TimedTextTimeout, HTTPClient: c.HTTPClient}
}

// FetchJSON3 returns the plain text of the lang captions of videoID.
func (c *TimedTextClient) FetchJSON3(ctx context.Context, videoID, lang string) (string, error) {
	const op = "timedtext.fetch"
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	params := url.Values{}
	params.Set("v", videoID)
	params.Set("lang", lang)
	params.Set("fmt", "json3")
	u := c.URL + "?" + params.Encode()

	resp, err := engine.DoRequest(ctx, c.HTTPClient, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", engine.RandomUserAgent())
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: %s", op, engine.StatusSnippet(resp))
	}

	body, err := engine.ReadLimited(resp.Body, json3Limit)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	// YouTube answers 200 with an empty body when the track does not exist.
	if len(body) == 0 {
		return "", engine.Errorf(engine.KindNoCaptionsAvailable, op, "no %s captions for %s", lang, videoID)
	}
	text, err := captions.ParseJSON3ToText(body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if text == "" {
		return "", engine.Errorf(engine.KindNoCaptionsAvailable, op, "empty %s captions for %s", lang, videoID)
	}
	return text, nil
}
