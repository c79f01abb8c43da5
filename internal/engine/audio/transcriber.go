package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// MaxUploadBytes is the speech service's file size limit.
const MaxUploadBytes = 25 << 20

// Transcriber uploads audio to an OpenAI-compatible /audio/transcriptions endpoint.
type Transcriber struct {
	URL        string
	Model      string
	HTTPClient *http.Client
}

// NewTranscriber builds a Transcriber from the engine configuration.
func NewTranscriber() *Transcriber {
	c := engine.Cfg
	return &Transcriber{URL: c.WhisperURL, Model: c.WhisperModel, HTTPClient: c.WhisperHTTPClient}
}

// Transcribe returns the plain-text transcription of a.
func (t *Transcriber) Transcribe(ctx context.Context, a *Artifact, apiKey string) (string, error) {
	const op = "audio.transcribe"
	if apiKey == "" {
		return "", engine.Errorf(engine.KindMissingCredential, op, "speech recognition API key not configured")
	}
	if a == nil || a.Path == "" {
		return "", engine.Errorf(engine.KindInvalidInput, op, "no audio artifact")
	}

	body, contentType, err := t.encode(a.Path)
	if err != nil {
		return "", engine.WrapError(engine.KindTranscriptionServiceError, op, err)
	}

	client := t.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	engine.IncrWhisperUploads()
	resp, err := engine.RetryHTTP(ctx, engine.DefaultRetryConfig, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Bearer "+apiKey)
		return client.Do(req)
	})
	if err != nil {
		return "", engine.WrapError(engine.KindTranscriptionServiceError, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", engine.Errorf(engine.KindTranscriptionServiceError, op, "%s", engine.StatusSnippet(resp))
	}
	data, err := engine.ReadLimited(resp.Body, 8<<20)
	if err != nil {
		return "", engine.WrapError(engine.KindTranscriptionServiceError, op, err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", engine.Errorf(engine.KindTranscriptionServiceError, op, "empty transcription")
	}
	return text, nil
}

// encode builds the multipart form once so retries can resend it.
func (t *Transcriber) encode(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, "", fmt.Errorf("stat audio: %w", err)
	}
	if info.Size() > MaxUploadBytes {
		return nil, "", fmt.Errorf("audio is %d bytes, limit %d", info.Size(), MaxUploadBytes)
	}

	var buf bytes.Buffer
	buf.Grow(int(info.Size()) + 1024)
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, "", fmt.Errorf("copy audio: %w", err)
	}
	model := t.Model
	if model == "" {
		model = "whisper-1"
	}
	if err := mw.WriteField("model", model); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("response_format", "text"); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}
