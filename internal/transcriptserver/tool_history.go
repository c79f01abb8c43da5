package transcriptserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/history"
)

// HistoryOutput is the transcript_history result.
type HistoryOutput struct {
	Entries []history.Entry `json:"entries"`
	Stats   *history.Stats  `json:"stats,omitempty"`
}

func (t *tools) history(ctx context.Context, _ *mcp.CallToolRequest, input engine.HistoryInput) (*mcp.CallToolResult, *HistoryOutput, error) {
	if t.History == nil {
		return nil, nil, fmt.Errorf("history is disabled")
	}
	entries, err := t.History.List(ctx, history.Filter{
		VideoID:    input.VideoID,
		FailedOnly: input.FailedOnly,
		Limit:      input.Limit,
	})
	if err != nil {
		return nil, nil, err
	}
	out := &HistoryOutput{Entries: entries}
	if out.Entries == nil {
		out.Entries = []history.Entry{}
	}
	if input.Stats {
		if out.Stats, err = t.History.Stats(ctx); err != nil {
			return nil, nil, err
		}
	}
	return nil, out, nil
}
