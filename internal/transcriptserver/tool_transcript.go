package transcriptserver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
)

func (t *tools) transcript(ctx context.Context, _ *mcp.CallToolRequest, input engine.TranscriptInput) (*mcp.CallToolResult, *transcript.Response, error) {
	if strings.TrimSpace(input.Video) == "" {
		return nil, nil, fmt.Errorf("video is required")
	}
	resp, err := t.Service.Get(ctx, input.Video, transcript.Options{
		Credential: strings.TrimSpace(input.OAuthToken),
		Fresh:      input.Fresh,
	})
	if err != nil {
		return nil, nil, err
	}
	if !resp.Success {
		slog.Info("video_transcript: unresolved",
			slog.String("video_id", resp.VideoID),
			slog.String("kind", string(resp.ErrorKind)),
			slog.Int("attempts", len(resp.Attempts)))
	}
	return nil, resp, nil
}

func (t *tools) summary(ctx context.Context, _ *mcp.CallToolRequest, input engine.SummaryInput) (*mcp.CallToolResult, *engine.SummaryOutput, error) {
	if strings.TrimSpace(input.Video) == "" {
		return nil, nil, fmt.Errorf("video is required")
	}
	resp, err := t.Service.Get(ctx, input.Video, transcript.Options{Credential: strings.TrimSpace(input.OAuthToken)})
	if err != nil {
		return nil, nil, err
	}
	if !resp.Success {
		return nil, nil, fmt.Errorf("no transcript for %s: %s", resp.VideoID, resp.Error)
	}

	cacheKey := engine.CacheKey("summary", resp.VideoID, input.Title)
	if out, ok := engine.CacheLoadJSON[engine.SummaryOutput](ctx, cacheKey); ok {
		return nil, &out, nil
	}

	sum, err := engine.SummarizeTranscript(ctx, input.Title, resp.Transcript)
	if err != nil {
		return nil, nil, fmt.Errorf("summary failed: %w", err)
	}
	out := engine.SummaryOutput{
		VideoID:           resp.VideoID,
		Title:             input.Title,
		Method:            string(resp.Method),
		TranscriptSummary: *sum,
	}
	engine.CacheStoreJSON(ctx, cacheKey, out)
	return nil, &out, nil
}
