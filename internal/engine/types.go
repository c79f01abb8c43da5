package engine

// --- MCP tool inputs ---

type TranscriptInput struct {
	Video      string `json:"video" jsonschema:"YouTube video id or URL (watch, youtu.be, shorts, embed, live)"`
	OAuthToken string `json:"oauth_token,omitempty" jsonschema:"Google OAuth access token with youtube.force-ssl scope. Enables the authenticated captions API, tried first"`
	Fresh      bool   `json:"fresh,omitempty" jsonschema:"Skip the transcript cache"`
}

type SummaryInput struct {
	Video      string `json:"video" jsonschema:"YouTube video id or URL"`
	Title      string `json:"title,omitempty" jsonschema:"Video title, used as context for the summary"`
	OAuthToken string `json:"oauth_token,omitempty" jsonschema:"Google OAuth access token, optional"`
}

type HistoryInput struct {
	VideoID    string `json:"video_id,omitempty" jsonschema:"Only entries for this video id"`
	FailedOnly bool   `json:"failed_only,omitempty" jsonschema:"Only failed resolutions"`
	Limit      int    `json:"limit,omitempty" jsonschema:"Max entries (default 50, max 500)"`
	Stats      bool   `json:"stats,omitempty" jsonschema:"Include aggregate counts per method"`
}

// --- MCP tool outputs ---

// SummaryOutput is a transcript summary plus where the transcript came from.
type SummaryOutput struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title,omitempty"`
	Method  string `json:"method"`
	TranscriptSummary
}
