package settings

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	st, err := New(filepath.Join(t.TempDir(), "settings.json"), "").Load()
	require.NoError(t, err)
	assert.Equal(t, Settings{}, st)
}

func TestLoad_JSONIgnoresOtherKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"openaiApiKey":"sk-file","customPlaylistId":"PL1","lastSync":"2025-01-02T03:04:05Z"}`), 0o600))

	st, err := New(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, Settings{OpenAIAPIKey: "sk-file"}, st)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("openaiApiKey: sk-yaml\nimageModel: dall-e-3\n"), 0o600))

	st, err := New(path, "").Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-yaml", st.OpenAIAPIKey)
}

func TestLoad_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o600))
	st, err := New(path, "").Load()
	require.NoError(t, err)
	assert.Empty(t, st.OpenAIAPIKey)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"openaiApiKey":`), 0o600))
	_, err := New(path, "").Load()
	assert.Error(t, err)
}

func TestWhisperAPIKey_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := New(path, "sk-fallback")
	ctx := context.Background()
	t.Setenv(EnvOpenAIKey, "")

	k, err := s.WhisperAPIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-fallback", k)

	require.NoError(t, os.WriteFile(path, []byte(`{"openaiApiKey":"sk-file"}`), 0o600))
	k, err = s.WhisperAPIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-file", k, "file is re-read on each call")

	t.Setenv(EnvOpenAIKey, "sk-env")
	k, err = s.WhisperAPIKey(ctx)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", k)
}

func TestWhisperAPIKey_None(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "")
	k, err := New(filepath.Join(t.TempDir(), "settings.json"), "").WhisperAPIKey(context.Background())
	require.NoError(t, err)
	assert.Empty(t, k)
}

func TestWhisperAPIKey_UnreadableFileWithoutFallback(t *testing.T) {
	t.Setenv(EnvOpenAIKey, "")
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o600))

	k, err := New(path, "").WhisperAPIKey(context.Background())
	assert.Error(t, err)
	assert.Empty(t, k)

	k, err = New(path, "sk-fb").WhisperAPIKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sk-fb", k)
}
