package engine

import (
	"net/http"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	// YouTube endpoints. Overridable so tests can point them at httptest servers.
	YouTubeDataAPIBase string // https://www.googleapis.com/youtube/v3
	TimedTextURL       string // https://www.youtube.com/api/timedtext
	WatchURL           string // https://www.youtube.com/watch
	InnertubeBase      string // https://www.youtube.com/youtubei/v1

	TranscriptLanguages []string
	TimedTextTimeout    time.Duration
	YouTubeRPS          float64 // outbound request budget per second, 0 = unlimited

	// Audio fallback.
	YtDlpPath         string
	AudioTempDir      string
	AudioFormat       string
	AudioQuality      string
	ExtractTimeout    time.Duration
	WhisperURL        string
	WhisperModel      string
	WhisperAPIKey     string // env override; settings file is consulted otherwise
	SettingsPath      string
	WhisperHTTPClient *http.Client

	// Summaries.
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMClient          *llm.Client

	HistoryPath          string
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration
	HTTPClient           *http.Client
}

// DefaultTranscriptLanguages is the preference order for the public transcript API.
var DefaultTranscriptLanguages = []string{"en", "en-US", "en-GB", "ru", "de", "fr", "es"}

var cfg = defaults()

// Cfg exposes the engine configuration for sub-packages (sources, audio, transcript).
// Always points to the current cfg value.
var Cfg = &cfg

func defaults() Config {
	return Config{
		YouTubeDataAPIBase:  "https://www.googleapis.com/youtube/v3",
		TimedTextURL:        "https://www.youtube.com/api/timedtext",
		WatchURL:            "https://www.youtube.com/watch",
		InnertubeBase:       "https://www.youtube.com/youtubei/v1",
		TranscriptLanguages: DefaultTranscriptLanguages,
		TimedTextTimeout:    10 * time.Second,
		YtDlpPath:           "yt-dlp",
		AudioFormat:         "mp3",
		AudioQuality:        "64K",
		ExtractTimeout:      5 * time.Minute,
		WhisperURL:          "https://api.openai.com/v1/audio/transcriptions",
		WhisperModel:        "whisper-1",
		LLMMaxTokens:        4000,
		HTTPClient:          &http.Client{Timeout: 30 * time.Second},
		WhisperHTTPClient:   &http.Client{Timeout: 10 * time.Minute},
	}
}

// Init initializes the engine with the given configuration.
// Zero-valued fields fall back to defaults.
func Init(c Config) {
	d := defaults()
	if c.YouTubeDataAPIBase == "" {
		c.YouTubeDataAPIBase = d.YouTubeDataAPIBase
	}
	if c.TimedTextURL == "" {
		c.TimedTextURL = d.TimedTextURL
	}
	if c.WatchURL == "" {
		c.WatchURL = d.WatchURL
	}
	if c.InnertubeBase == "" {
		c.InnertubeBase = d.InnertubeBase
	}
	if len(c.TranscriptLanguages) == 0 {
		c.TranscriptLanguages = d.TranscriptLanguages
	}
	if c.TimedTextTimeout <= 0 {
		c.TimedTextTimeout = d.TimedTextTimeout
	}
	if c.YtDlpPath == "" {
		c.YtDlpPath = d.YtDlpPath
	}
	if c.AudioFormat == "" {
		c.AudioFormat = d.AudioFormat
	}
	if c.AudioQuality == "" {
		c.AudioQuality = d.AudioQuality
	}
	if c.ExtractTimeout <= 0 {
		c.ExtractTimeout = d.ExtractTimeout
	}
	if c.WhisperURL == "" {
		c.WhisperURL = d.WhisperURL
	}
	if c.WhisperModel == "" {
		c.WhisperModel = d.WhisperModel
	}
	if c.LLMMaxTokens <= 0 {
		c.LLMMaxTokens = d.LLMMaxTokens
	}
	if c.HTTPClient == nil {
		c.HTTPClient = d.HTTPClient
	}
	if c.WhisperHTTPClient == nil {
		c.WhisperHTTPClient = d.WhisperHTTPClient
	}
	cfg = c
	Cfg = &cfg
	initLimiter(c.YouTubeRPS)
}
