package segments

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeSynth struct {
	calls    int
	lastSSML bool
	lastText string
	err      error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string, ssml bool) ([]byte, error) {
	f.calls++
	f.lastText = text
	f.lastSSML = ssml
	if f.err != nil {
		return nil, f.err
	}
	return []byte("speech:" + text), nil
}

type fakeChapters struct {
	calls   int
	lastKey string
	err     error
}

func (f *fakeChapters) ChapterAudio(ctx context.Context, apiKey, chapter string) ([]byte, error) {
	f.calls++
	f.lastKey = apiKey
	if f.err != nil {
		return nil, f.err
	}
	return []byte("chapter:" + chapter), nil
}

type fakeEncoder struct {
	calls int
	last  time.Duration
}

func (f *fakeEncoder) Silence(ctx context.Context, dst string, d time.Duration) error {
	f.calls++
	f.last = d
	return os.WriteFile(dst, []byte("silence"), 0o644)
}

func testConfig(t *testing.T) (Config, *fakeSynth, *fakeChapters, *fakeEncoder) {
	t.Helper()
	synth := &fakeSynth{}
	chapters := &fakeChapters{}
	encoder := &fakeEncoder{}
	cfg := Config{
		Dir:       t.TempDir(),
		ESVAPIKey: "test-api-key",
		Speech:    synth,
		Chapters:  chapters,
		Encoder:   encoder,
		Probe:     func(string) (float64, error) { return 2.5, nil },
	}
	return cfg, synth, chapters, encoder
}

func TestSilenceKeyAndValidation(t *testing.T) {
	cfg, _, _, _ := testConfig(t)

	s, err := NewSilence(cfg, 1000)
	if err != nil {
		t.Fatalf("NewSilence: %v", err)
	}
	if s.Key() != "silence-1000" {
		t.Fatalf("unexpected key %s", s.Key())
	}
	if s.Path() != filepath.Join(cfg.Dir, "silence", "silence-1000.mp3") {
		t.Fatalf("unexpected path %s", s.Path())
	}
	if s.Title() != "" {
		t.Fatalf("silence must not carry a title")
	}

	other, _ := NewSilence(cfg, 2500)
	if other.Path() == s.Path() {
		t.Fatalf("expected different durations to use different paths")
	}

	if _, err := NewSilence(cfg, -1); !errors.Is(err, ErrInvalidSilence) {
		t.Fatalf("expected ErrInvalidSilence, got %v", err)
	}
}

func TestSilenceBuildAndDuration(t *testing.T) {
	cfg, _, _, encoder := testConfig(t)
	s, _ := NewSilence(cfg, 500)

	if s.IsBuilt() {
		t.Fatalf("expected fresh silence to be unbuilt")
	}
	duration, err := s.Duration(context.Background())
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if duration != 0.5 {
		t.Fatalf("expected 0.5 seconds, got %v", duration)
	}
	if !s.IsBuilt() || encoder.calls != 1 || encoder.last != 500*time.Millisecond {
		t.Fatalf("expected one 500ms render, got %d calls (%s)", encoder.calls, encoder.last)
	}

	if err := s.Build(context.Background(), false); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if encoder.calls != 1 {
		t.Fatalf("expected cached silence to skip rendering")
	}
	if err := s.Build(context.Background(), true); err != nil {
		t.Fatalf("forced Build: %v", err)
	}
	if encoder.calls != 2 {
		t.Fatalf("expected forced build to render again")
	}
}

func TestSpeechKeyUsesTextHash(t *testing.T) {
	cfg, _, _, _ := testConfig(t)

	s := NewSpeech(cfg, "Hello, world!", "")
	want := "315f5bdb76d078c43b8ac0064e4a0164612b1fce77c869345bfc94c75894edd3"
	if s.Key() != want {
		t.Fatalf("expected key %s, got %s", want, s.Key())
	}
	if s.Path() != filepath.Join(cfg.Dir, "tts", want+".mp3") {
		t.Fatalf("unexpected path %s", s.Path())
	}
	if NewSpeech(cfg, "Hello", "").Path() == NewSpeech(cfg, "World", "").Path() {
		t.Fatalf("expected different text to use different paths")
	}
	if NewSpeech(cfg, "Hello", "A").Key() != NewSpeech(cfg, "Hello", "B").Key() {
		t.Fatalf("expected title not to affect the cache key")
	}
}

func TestSpeechBuildSelectsInputMode(t *testing.T) {
	cfg, synth, _, _ := testConfig(t)
	ctx := context.Background()

	if err := NewSpeech(cfg, "Plain words.", "").Build(ctx, false); err != nil {
		t.Fatalf("Build plain: %v", err)
	}
	if synth.lastSSML {
		t.Fatalf("expected plain text input")
	}

	markup := NewSpeech(cfg, "<speak>Genesis chapter 1</speak>", "Genesis 1")
	if err := markup.Build(ctx, false); err != nil {
		t.Fatalf("Build ssml: %v", err)
	}
	if !synth.lastSSML {
		t.Fatalf("expected SSML input for speak document")
	}

	data, err := os.ReadFile(markup.Path())
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(data) != "speech:<speak>Genesis chapter 1</speak>" {
		t.Fatalf("unexpected artifact %q", data)
	}

	duration, err := markup.Duration(ctx)
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if duration != 2.5 || synth.calls != 2 {
		t.Fatalf("expected probed duration without resynthesis, got %v after %d calls", duration, synth.calls)
	}
}

func TestSpeechFailureIsWrapped(t *testing.T) {
	cfg, synth, _, _ := testConfig(t)
	synth.err = errors.New("quota exceeded")

	s := NewSpeech(cfg, "Week 1, Day 1.", "")
	err := s.Build(context.Background(), false)
	var synthErr *SynthesisError
	if !errors.As(err, &synthErr) || synthErr.Text != "Week 1, Day 1." {
		t.Fatalf("expected SynthesisError naming the text, got %v", err)
	}
	if s.IsBuilt() {
		t.Fatalf("failed synthesis must not leave an artifact")
	}
}

func TestRemoteKeyReplacesSpaces(t *testing.T) {
	cfg, _, _, _ := testConfig(t)

	r := NewRemote(cfg, "1 Corinthians 13")
	if r.Key() != "1_Corinthians_13" {
		t.Fatalf("unexpected key %s", r.Key())
	}
	if r.Path() != filepath.Join(cfg.Dir, "esv_chapters", "1_Corinthians_13.mp3") {
		t.Fatalf("unexpected path %s", r.Path())
	}
	if r.IsBuilt() {
		t.Fatalf("expected fresh chapter to be unbuilt")
	}
}

func TestRemoteBuildUsesCredential(t *testing.T) {
	cfg, _, chapters, _ := testConfig(t)

	r := NewRemote(cfg, "Genesis 1")
	if err := r.Build(context.Background(), false); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if chapters.lastKey != "test-api-key" {
		t.Fatalf("expected configured api key, got %q", chapters.lastKey)
	}
	if err := r.Build(context.Background(), false); err != nil {
		t.Fatalf("second Build: %v", err)
	}
	if chapters.calls != 1 {
		t.Fatalf("expected cached chapter to skip download, got %d calls", chapters.calls)
	}
}

func TestRemoteMissingAPIKey(t *testing.T) {
	cfg, _, chapters, _ := testConfig(t)
	cfg.ESVAPIKey = ""

	err := NewRemote(cfg, "Genesis 1").Build(context.Background(), false)
	var configErr *ConfigError
	if !errors.As(err, &configErr) || configErr.Setting != "ESV_API_KEY" {
		t.Fatalf("expected ConfigError for ESV_API_KEY, got %v", err)
	}
	if !errors.Is(err, ErrMissingConfig) {
		t.Fatalf("expected error to match ErrMissingConfig")
	}
	if chapters.calls != 0 {
		t.Fatalf("expected no request without a credential")
	}
}

func TestRemoteDownloadError(t *testing.T) {
	cfg, _, chapters, _ := testConfig(t)
	network := errors.New("network error")
	chapters.err = network

	r := NewRemote(cfg, "Genesis 1")
	err := r.Build(context.Background(), false)
	var downloadErr *DownloadError
	if !errors.As(err, &downloadErr) {
		t.Fatalf("expected DownloadError, got %v", err)
	}
	if downloadErr.Chapter != "Genesis 1" || !errors.Is(err, network) {
		t.Fatalf("expected chapter and cause in %v", err)
	}
	if err.Error() != "failed to download audio for Genesis 1: network error" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if r.IsBuilt() {
		t.Fatalf("failed download must not leave an artifact")
	}
}

func TestVariantsShareSegmentInterface(t *testing.T) {
	cfg, _, _, _ := testConfig(t)
	silence, _ := NewSilence(cfg, 1000)
	list := []Segment{silence, NewSpeech(cfg, "x", "Genesis 1"), NewRemote(cfg, "Genesis 1")}

	titled := 0
	for _, s := range list {
		if s.Title() != "" {
			titled++
		}
	}
	if titled != 1 {
		t.Fatalf("expected exactly one titled segment, got %d", titled)
	}
}
