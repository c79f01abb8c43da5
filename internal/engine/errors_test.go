package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	base := Errorf(KindNoCaptionsAvailable, "captions.list", "video %s has no tracks", "abc")
	wrapped := fmt.Errorf("strategy: %w", base)

	assert.Equal(t, KindNoCaptionsAvailable, KindOf(base))
	assert.Equal(t, KindNoCaptionsAvailable, KindOf(wrapped))
	assert.Equal(t, KindTransport, KindOf(errors.New("dial tcp: refused")))
	assert.True(t, IsKind(wrapped, KindNoCaptionsAvailable))
	assert.False(t, IsKind(wrapped, KindListingFailed))
}

func TestErrorMessage(t *testing.T) {
	e := WrapError(KindMissingCredential, "whisper", nil)
	assert.Equal(t, "whisper: missing_credential", e.Error())

	cause := errors.New("HTTP 500")
	e = WrapError(KindTranscriptionServiceError, "whisper.upload", cause)
	assert.Equal(t, "whisper.upload: transcription_service_error: HTTP 500", e.Error())
	assert.ErrorIs(t, e, cause)
}
