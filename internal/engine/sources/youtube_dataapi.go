package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
)

// YouTube Data API v3 captions resource. Both calls need an OAuth bearer token.

const captionBodyLimit = 4 * 1024 * 1024

// ErrQuotaExceeded is returned when the Data API rejects a call for quota.
var ErrQuotaExceeded = errors.New("youtube data API: quota exceeded")

type ytCaptionListResp struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			VideoID   string `json:"videoId"`
			Language  string `json:"language"`
			TrackKind string `json:"trackKind"`
			Name      string `json:"name"`
		} `json:"snippet"`
	} `json:"items"`
}

type ytAPIError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// DataAPIClient talks to the authenticated captions endpoints.
type DataAPIClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewDataAPIClient builds a DataAPIClient from the engine configuration.
func NewDataAPIClient() *DataAPIClient {
	return &DataAPIClient{BaseURL: engine.Cfg.YouTubeDataAPIBase, HTTPClient: engine.Cfg.HTTPClient}
}

// ListCaptions lists the caption tracks of a video. Any non-success outcome
// is a ListingFailed error; an empty list is returned as-is.
func (c *DataAPIClient) ListCaptions(ctx context.Context, videoID, token string) ([]captions.Track, error) {
	const op = "captions.list"
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("videoId", videoID)

	body, err := c.get(ctx, c.BaseURL+"/captions?"+params.Encode(), token, 1024*1024)
	if err != nil {
		return nil, engine.WrapError(engine.KindListingFailed, op, err)
	}

	var result ytCaptionListResp
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, engine.Errorf(engine.KindListingFailed, op, "decode: %v", err)
	}
	tracks := make([]captions.Track, 0, len(result.Items))
	for _, item := range result.Items {
		tracks = append(tracks, captions.Track{
			ID:           item.ID,
			LanguageCode: item.Snippet.Language,
			Kind:         captions.KindFromTrackKind(item.Snippet.TrackKind),
		})
	}
	return tracks, nil
}

// DownloadCaption downloads one caption track as SRT.
func (c *DataAPIClient) DownloadCaption(ctx context.Context, captionID, token string) (string, error) {
	params := url.Values{}
	params.Set("tfmt", "srt")
	body, err := c.get(ctx, c.BaseURL+"/captions/"+url.PathEscape(captionID)+"?"+params.Encode(), token, captionBodyLimit)
	if err != nil {
		return "", fmt.Errorf("captions.download: %w", err)
	}
	return string(body), nil
}

func (c *DataAPIClient) get(ctx context.Context, u, token string, limit int64) ([]byte, error) {
	resp, err := engine.DoRequest(ctx, c.HTTPClient, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", engine.UserAgentBot)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := engine.ReadLimited(resp.Body, limit)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr ytAPIError
		if json.Unmarshal(body, &apiErr) == nil {
			for _, e := range apiErr.Error.Errors {
				if e.Reason == "quotaExceeded" {
					return nil, ErrQuotaExceeded
				}
			}
			if apiErr.Error.Message != "" {
				return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, apiErr.Error.Message)
			}
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, engine.Truncate(string(body), 256))
	}
	return body, nil
}
