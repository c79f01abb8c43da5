// Package transcriptserver exposes transcript resolution as MCP tools.
package transcriptserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/history"
)

// HistoryReader is the read side of the resolution log.
type HistoryReader interface {
	List(ctx context.Context, f history.Filter) ([]history.Entry, error)
	Stats(ctx context.Context) (*history.Stats, error)
}

// Deps are the collaborators the tools call into. History may be nil.
type Deps struct {
	Service *transcript.Service
	History HistoryReader
}

type tools struct {
	Deps
}

// RegisterTools registers video_transcript, video_summary and
// transcript_history on server. It returns the number of tools added.
func RegisterTools(server *mcp.Server, d Deps) int {
	t := &tools{Deps: d}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Get the full transcript of a YouTube video. Tries, in order: the authenticated YouTube captions API (when oauth_token is given), public captions in preferred languages (en, en-US, en-GB, ru, de, fr, es), public captions in any language, and finally audio download with Whisper speech recognition. Returns the text, the method that produced it, and on failure every attempt with its error kind.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.transcript)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_summary",
		Description: "Summarize a YouTube video from its transcript. Long transcripts (over 25k characters) are summarized in parts and merged; input beyond 100k characters is truncated. Returns markdown with overview, key points, takeaways and notable quotes.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.summary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_history",
		Description: "List recent transcript resolutions (newest first) with method, language, error and per-strategy attempts. Filter by video id or failures; optionally include counts per method.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, t.history)

	return 3
}
