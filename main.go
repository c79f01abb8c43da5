// go_transcript: YouTube transcript MCP server.
//
// Exposes three MCP tools: video_transcript, video_summary, transcript_history.
// Transcripts are resolved through a fixed cascade: authenticated captions,
// public captions in preferred languages, public captions in any language,
// then yt-dlp audio extraction with Whisper speech recognition.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-kit/llm"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/audio"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
	"github.com/anatolykoptev/go_transcript/internal/engine/transcript"
	"github.com/anatolykoptev/go_transcript/internal/history"
	"github.com/anatolykoptev/go_transcript/internal/settings"
	"github.com/anatolykoptev/go_transcript/internal/transcriptserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	c := initEngine()

	slog.Info("starting go_transcript",
		slog.String("port", mcpPort),
		slog.String("yt_dlp", c.YtDlpPath),
		slog.String("audio_dir", c.AudioTempDir),
	)

	var rec transcript.Recorder
	var reader transcriptserver.HistoryReader
	store, err := history.Open(c.HistoryPath)
	if err != nil {
		slog.Warn("history disabled", slog.Any("error", err))
	} else {
		defer store.Close()
		rec, reader = store, store
		slog.Info("history initialized", slog.String("path", c.HistoryPath))
	}

	keys := settings.New(c.SettingsPath, c.WhisperAPIKey)
	resolver := transcript.NewResolver(transcript.DefaultStrategies(transcript.Deps{
		Captions:    sources.NewDataAPIClient(),
		TimedText:   sources.NewTimedTextClient(),
		Transcripts: sources.NewPublicClient(),
		Languages:   c.TranscriptLanguages,
		Keys:        keys,
		Extractor:   audio.NewExtractor(),
		Transcriber: audio.NewTranscriber(),
	})...)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)

	n := transcriptserver.RegisterTools(server, transcriptserver.Deps{
		Service: transcript.NewService(resolver, rec),
		History: reader,
	})
	slog.Info("tools registered", slog.Int("count", n), slog.Any("strategies", resolver.Strategies()))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_transcript",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 900 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine() engine.Config {
	dataDir := env.Str("DATA_DIR", filepath.Join(os.Getenv("HOME"), ".go_transcript"))

	c := engine.Config{
		YouTubeDataAPIBase:   env.Str("YOUTUBE_DATA_API_BASE", "https://www.googleapis.com/youtube/v3"),
		TimedTextURL:         env.Str("YOUTUBE_TIMEDTEXT_URL", "https://www.youtube.com/api/timedtext"),
		WatchURL:             env.Str("YOUTUBE_WATCH_URL", "https://www.youtube.com/watch"),
		InnertubeBase:        env.Str("YOUTUBE_INNERTUBE_BASE", "https://www.youtube.com/youtubei/v1"),
		TranscriptLanguages:  env.List("TRANSCRIPT_LANGUAGES", "en,en-US,en-GB,ru,de,fr,es"),
		TimedTextTimeout:     env.Duration("TIMEDTEXT_TIMEOUT", 10*time.Second),
		YouTubeRPS:           env.Float("YOUTUBE_RPS", 5),
		YtDlpPath:            env.Str("YT_DLP_PATH", "yt-dlp"),
		AudioTempDir:         env.Str("AUDIO_TEMP_DIR", filepath.Join(os.TempDir(), "go_transcript")),
		AudioFormat:          env.Str("AUDIO_FORMAT", "mp3"),
		AudioQuality:         env.Str("AUDIO_QUALITY", "64K"),
		ExtractTimeout:       env.Duration("EXTRACT_TIMEOUT", 5*time.Minute),
		WhisperURL:           env.Str("WHISPER_URL", "https://api.openai.com/v1/audio/transcriptions"),
		WhisperModel:         env.Str("WHISPER_MODEL", "whisper-1"),
		WhisperAPIKey:        env.Str("WHISPER_API_KEY", ""),
		SettingsPath:         env.Str("SETTINGS_PATH", filepath.Join(dataDir, "settings.json")),
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMModel:             env.Str("LLM_MODEL", "gpt-4o-mini"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.5),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 4000),
		HistoryPath:          env.Str("HISTORY_PATH", filepath.Join(dataDir, "history.db")),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 500),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
		WhisperHTTPClient: &http.Client{Timeout: 10 * time.Minute},
	}

	if c.LLMAPIKey != "" {
		c.LLMClient = llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
			llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
			llm.WithMaxTokens(c.LLMMaxTokens),
			llm.WithTemperature(c.LLMTemperature),
			llm.WithHTTPClient(&http.Client{Timeout: 120 * time.Second}),
		)
	} else {
		slog.Info("LLM_API_KEY not set, video_summary disabled")
	}

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 24*time.Hour)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return *engine.Cfg
}
