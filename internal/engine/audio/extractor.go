// Package audio downloads a video's audio track with yt-dlp and sends it to a
// speech-recognition service.
package audio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Extension probe order after yt-dlp exits. The primary format comes first;
// the rest cover a missing ffmpeg where the raw container is kept.
var fallbackExts = []string{"m4a", "webm", "opus"}

// Runner executes an external command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Artifact is a downloaded audio file. The caller owns it and must Release it.
type Artifact struct {
	Path string
	Ext  string

	once    sync.Once
	release func() error
	err     error
}

// Release removes the file and frees its stem. Safe to call more than once.
func (a *Artifact) Release() error {
	if a == nil {
		return nil
	}
	a.once.Do(func() {
		if a.release != nil {
			a.err = a.release()
		}
	})
	return a.err
}

// Extractor produces local audio files for video ids.
type Extractor struct {
	YtDlpPath    string
	TempDir      string
	AudioFormat  string // transcode target, also the first probed extension
	AudioQuality string
	Timeout      time.Duration
	Runner       Runner
	// NewStem names the output file. Defaults to "<videoID>-<uuid>".
	NewStem func(videoID string) string

	active sync.Map // stem → struct{}
}

// NewExtractor builds an Extractor from the engine configuration.
func NewExtractor() *Extractor {
	c := engine.Cfg
	return &Extractor{
		YtDlpPath:    c.YtDlpPath,
		TempDir:      c.AudioTempDir,
		AudioFormat:  c.AudioFormat,
		AudioQuality: c.AudioQuality,
		Timeout:      c.ExtractTimeout,
		Runner:       ExecRunner{},
	}
}

func defaultStem(videoID string) string {
	return videoID + "-" + uuid.NewString()
}

// BuildArgs returns the yt-dlp arguments that write bestaudio for url into outTemplate.
func (e *Extractor) BuildArgs(url, outTemplate string) []string {
	format := e.AudioFormat
	if format == "" {
		format = "mp3"
	}
	quality := e.AudioQuality
	if quality == "" {
		quality = "64K"
	}
	return []string{
		"--no-config",
		"--no-playlist",
		"--no-progress",
		"--no-warnings",
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", format,
		"--audio-quality", quality,
		"-o", outTemplate,
		url,
	}
}

// Extract downloads the audio for videoID into TempDir.
func (e *Extractor) Extract(ctx context.Context, videoID string) (*Artifact, error) {
	const op = "audio.extract"
	if videoID == "" || strings.ContainsAny(videoID, `/\`) {
		return nil, engine.Errorf(engine.KindInvalidInput, op, "unusable video id %q", videoID)
	}
	if e.TempDir == "" {
		return nil, engine.Errorf(engine.KindExtractionFailed, op, "temp dir not configured")
	}
	if err := os.MkdirAll(e.TempDir, 0o755); err != nil {
		return nil, engine.WrapError(engine.KindExtractionFailed, op, err)
	}

	newStem := e.NewStem
	if newStem == nil {
		newStem = defaultStem
	}
	stem := newStem(videoID)
	exts := e.probeExts()

	if _, loaded := e.active.LoadOrStore(stem, struct{}{}); loaded {
		return nil, engine.Errorf(engine.KindConcurrentExtractionConflict, op, "extraction for %s already in progress", stem)
	}
	if p, ok := findOutput(e.TempDir, stem, exts); ok {
		e.active.Delete(stem)
		return nil, engine.Errorf(engine.KindConcurrentExtractionConflict, op, "output %s already exists", p)
	}


	runCtx := ctx
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	bin := e.YtDlpPath
	if bin == "" {
		bin = "yt-dlp"
	}
	runner := e.Runner
	if runner == nil {
		runner = ExecRunner{}
	}

	engine.IncrAudioExtractions()
	start := time.Now()
	watch := engine.Cfg.WatchURL + "?" + url.Values{"v": {videoID}}.Encode()
	out, err := runner.Run(runCtx, bin, e.BuildArgs(watch, filepath.Join(e.TempDir, stem+".%(ext)s"))...)
	if err != nil {
		_ = removeStem(e.TempDir, stem, "")
		e.active.Delete(stem)
		return nil, engine.Errorf(engine.KindExtractionFailed, op, "yt-dlp: %v: %s", err, engine.Truncate(strings.TrimSpace(string(out)), 512))
	}

	p, ok := findOutput(e.TempDir, stem, exts)
	if !ok {
		_ = removeStem(e.TempDir, stem, "")
		e.active.Delete(stem)
		return nil, engine.Errorf(engine.KindExtractionFailed, op, "no audio file produced for %s", videoID)
	}
	slog.Debug("audio: extracted",
		slog.String("video_id", videoID),
		slog.String("path", p),
		slog.Duration("elapsed", time.Since(start)))

	return &Artifact{
		Path: p,
		Ext:  strings.TrimPrefix(filepath.Ext(p), "."),
		release: func() error {
			defer e.active.Delete(stem)
			return removeStem(e.TempDir, stem, p)
		},
	}, nil
}

func (e *Extractor) probeExts() []string {
	primary := e.AudioFormat
	if primary == "" {
		primary = "mp3"
	}
	exts := []string{primary}
	for _, ext := range fallbackExts {
		if ext != primary {
			exts = append(exts, ext)
		}
	}
	return exts
}

func findOutput(dir, stem string, exts []string) (string, bool) {
	for _, ext := range exts {
		p := filepath.Join(dir, stem+"."+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// removeStem deletes every file yt-dlp may have left for stem: the output,
// .part downloads and untranscoded containers. Only a failure to remove
// primary is reported.
func removeStem(dir, stem, primary string) error {
	var primaryErr error
	if primary != "" {
		if err := os.Remove(primary); err != nil && !errors.Is(err, fs.ErrNotExist) {
			primaryErr = fmt.Errorf("remove %s: %w", primary, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return primaryErr
	}
	for _, ent := range entries {
		if !strings.HasPrefix(ent.Name(), stem+".") {
			continue
		}
		p := filepath.Join(dir, ent.Name())
		if p == primary {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Debug("audio: leftover not removed", slog.String("path", p), slog.Any("error", err))
		}
	}
	return primaryErr
}
