package transcript

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/engine/audio"
	"github.com/anatolykoptev/go_transcript/internal/engine/captions"
	"github.com/anatolykoptev/go_transcript/internal/engine/sources"
)

// --- fakes ---

type fakeStrategy struct {
	name  string
	res   Result
	err   error
	calls int
	hook  func()
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Attempt(context.Context, string, string) (Result, error) {
	f.calls++
	if f.hook != nil {
		f.hook()
	}
	return f.res, f.err
}

type fakeCaptions struct {
	tracks    []captions.Track
	listErr   error
	body      string
	dlErr     error
	listCalls int
	dlCalls   int
	gotID     string
}

func (f *fakeCaptions) ListCaptions(context.Context, string, string) ([]captions.Track, error) {
	f.listCalls++
	return f.tracks, f.listErr
}

func (f *fakeCaptions) DownloadCaption(_ context.Context, id, _ string) (string, error) {
	f.dlCalls++
	f.gotID = id
	return f.body, f.dlErr
}

type fakeTimedText struct {
	text    string
	err     error
	gotLang string
	calls   int
}

func (f *fakeTimedText) FetchJSON3(_ context.Context, _, lang string) (string, error) {
	f.calls++
	f.gotLang = lang
	return f.text, f.err
}

type fakeTranscripts struct {
	list       []sources.TranscriptInfo
	segs       []sources.Segment
	listErr    error
	fetchCalls int
	listCalls  int
	trackCalls int
}

func (f *fakeTranscripts) FetchTranscript(_ context.Context, _ string, langs []string) ([]sources.Segment, sources.TranscriptInfo, error) {
	f.fetchCalls++
	if f.listErr != nil {
		return nil, sources.TranscriptInfo{}, f.listErr
	}
	info, ok := sources.FindTranscript(f.list, langs)
	if !ok {
		return nil, sources.TranscriptInfo{}, engine.Errorf(engine.KindNoMatchingLanguage, "fake", "no match")
	}
	return f.segs, info, nil
}

func (f *fakeTranscripts) ListTranscripts(context.Context, string) ([]sources.TranscriptInfo, error) {
	f.listCalls++
	return f.list, f.listErr
}

func (f *fakeTranscripts) FetchTrack(context.Context, sources.TranscriptInfo) ([]sources.Segment, error) {
	f.trackCalls++
	return f.segs, nil
}

type staticKey struct {
	key string
	err error
}

func (k staticKey) WhisperAPIKey(context.Context) (string, error) { return k.key, k.err }

// fakeYtDlp writes an audio file for the -o template, optionally failing after.
type fakeYtDlp struct {
	write bool
	err   error
	calls int
}

func (f *fakeYtDlp) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	f.calls++
	if f.write {
		for i, a := range args {
			if a == "-o" && i+1 < len(args) {
				p := replaceExt(args[i+1], "mp3")
				if err := writeFile(p); err != nil {
					return nil, err
				}
			}
		}
	}
	if f.err != nil {
		return []byte("ERROR: boom"), f.err
	}
	return nil, nil
}

type fakeTranscriber struct {
	text     string
	err      error
	calls    int
	sawFile  bool
	lastPath string
}

func (f *fakeTranscriber) Transcribe(_ context.Context, a *audio.Artifact, _ string) (string, error) {
	f.calls++
	f.lastPath = a.Path
	f.sawFile = fileExists(a.Path)
	return f.text, f.err
}

// --- resolver ---

func TestResolve_ShortCircuit(t *testing.T) {
	first := &fakeStrategy{name: "one", res: Result{Text: "hello", Method: MethodYoutubeAPI}}
	rest := []*fakeStrategy{
		{name: "two", res: Result{Text: "x"}},
		{name: "three", res: Result{Text: "y"}},
		{name: "four", res: Result{Text: "z"}},
	}
	r := NewResolver(first, rest[0], rest[1], rest[2])

	res, err := r.Resolve(context.Background(), "vid", "tok")
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, MethodYoutubeAPI, res.Method)
	assert.Equal(t, 1, first.calls)
	for _, s := range rest {
		assert.Zero(t, s.calls, s.name)
	}
}

func TestResolve_FirstSuccessAfterFailures(t *testing.T) {
	a := &fakeStrategy{name: "a", err: engine.Errorf(engine.KindNoCaptionsAvailable, "a", "none")}
	b := &fakeStrategy{name: "b", res: Result{Text: "ok", Method: MethodTranscriptAPIFallback}}
	c := &fakeStrategy{name: "c", res: Result{Text: "late"}}

	res, err := NewResolver(a, b, c).Resolve(context.Background(), "vid", "")
	require.NoError(t, err)
	assert.Equal(t, MethodTranscriptAPIFallback, res.Method)
	assert.Equal(t, 1, a.calls)
	assert.Zero(t, c.calls)
}

func TestResolve_AllFailKeepsOrderAndLastKind(t *testing.T) {
	r := NewResolver(
		&fakeStrategy{name: "a", err: engine.Errorf(engine.KindListingFailed, "a", "403")},
		&fakeStrategy{name: "b", err: ErrSkipped},
		&fakeStrategy{name: "c", err: errors.New("plain")},
		&fakeStrategy{name: "d", err: engine.Errorf(engine.KindExtractionFailed, "d", "yt-dlp")},
	)
	_, err := r.Resolve(context.Background(), "vid", "tok")
	require.Error(t, err)

	var failure *ResolutionFailure
	require.ErrorAs(t, err, &failure)
	require.Len(t, failure.Attempts, 3, "skipped strategy is not recorded")
	assert.Equal(t, "a", failure.Attempts[0].Strategy)
	assert.Equal(t, engine.KindListingFailed, failure.Attempts[0].Kind)
	assert.Equal(t, "c", failure.Attempts[1].Strategy)
	assert.Equal(t, engine.KindTransport, failure.Attempts[1].Kind)
	assert.Equal(t, engine.KindExtractionFailed, failure.Last().Kind)
	assert.Equal(t, engine.KindExtractionFailed, engine.KindOf(err))
	assert.Contains(t, err.Error(), "yt-dlp")
}

func TestResolve_EmptyVideoID(t *testing.T) {
	s := &fakeStrategy{name: "a", res: Result{Text: "x"}}
	_, err := NewResolver(s).Resolve(context.Background(), "", "")
	assert.True(t, engine.IsKind(err, engine.KindInvalidInput))
	assert.Zero(t, s.calls)
}

func TestResolve_CancelledStopsCascade(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a := &fakeStrategy{name: "a", err: errors.New("fail"), hook: cancel}
	b := &fakeStrategy{name: "b", res: Result{Text: "x"}}

	_, err := NewResolver(a, b).Resolve(ctx, "vid", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	var failure *ResolutionFailure
	assert.False(t, errors.As(err, &failure))
	assert.Zero(t, b.calls)
}

func TestDefaultStrategiesOrder(t *testing.T) {
	r := NewResolver(DefaultStrategies(Deps{})...)
	assert.Equal(t, []string{
		"authenticated_captions",
		"transcript_api_primary",
		"transcript_api_fallback",
		"whisper",
	}, r.Strategies())
}

// No credential, no public transcripts, no speech key: strategy 1 is skipped
// and the remaining three each fail, the last with a missing credential.
func TestResolve_ExhaustionWithoutCredentials(t *testing.T) {
	caps := &fakeCaptions{}
	pub := &fakeTranscripts{}
	runner := &fakeYtDlp{write: true}
	ex := &audio.Extractor{TempDir: t.TempDir(), Runner: runner}
	tr := &fakeTranscriber{text: "never"}

	r := NewResolver(DefaultStrategies(Deps{
		Captions:    caps,
		Transcripts: pub,
		Keys:        staticKey{},
		Extractor:   ex,
		Transcriber: tr,
	})...)

	_, err := r.Resolve(context.Background(), "dQw4w9WgXcQ", "")
	var failure *ResolutionFailure
	require.ErrorAs(t, err, &failure)

	require.Len(t, failure.Attempts, 3)
	assert.Equal(t, "transcript_api_primary", failure.Attempts[0].Strategy)
	assert.Equal(t, "transcript_api_fallback", failure.Attempts[1].Strategy)
	assert.Equal(t, "whisper", failure.Attempts[2].Strategy)
	assert.Equal(t, engine.KindNoMatchingLanguage, failure.Attempts[0].Kind)
	assert.Equal(t, engine.KindNoTranscriptsAvailable, failure.Attempts[1].Kind)
	assert.Equal(t, engine.KindMissingCredential, failure.Attempts[2].Kind)
	assert.Equal(t, engine.KindMissingCredential, engine.KindOf(err))

	assert.Zero(t, caps.listCalls)
	assert.Zero(t, runner.calls, "no extraction without a key")
	assert.Zero(t, tr.calls)
}
