// Package segments models the units an episode is assembled from. Each
// segment is addressed by its construction parameters: the artifact on disk
// at Path is the segment's built state, and identical parameters always map
// to the same path.
package segments

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bible-reading-plan/internal/audio"
	"bible-reading-plan/internal/fileutil"
	"bible-reading-plan/internal/readings"
)

// Synthesizer turns text, or an SSML document when ssml is set, into MP3
// bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, ssml bool) ([]byte, error)
}

// ChapterSource fetches the recorded audio of one canonical chapter
// reference.
type ChapterSource interface {
	ChapterAudio(ctx context.Context, apiKey, chapter string) ([]byte, error)
}

// SilenceEncoder renders silent clips.
type SilenceEncoder interface {
	Silence(ctx context.Context, dst string, d time.Duration) error
}

// Config carries the cache location, credentials, and external
// collaborators shared by every segment.
type Config struct {
	Dir       string
	ESVAPIKey string
	Speech    Synthesizer
	Chapters  ChapterSource
	Encoder   SilenceEncoder
	// Probe measures a built artifact in seconds. Defaults to
	// audio.RoundedDuration.
	Probe func(path string) (float64, error)
}

func (c Config) probe(path string) (float64, error) {
	if c.Probe != nil {
		return c.Probe(path)
	}
	return audio.RoundedDuration(path)
}

// Segment is one of Silence, Speech, or Remote.
type Segment interface {
	Key() string
	Path() string
	// Title is non-empty only for segments that open a chapter.
	Title() string
	IsBuilt() bool
	Build(ctx context.Context, force bool) error
	// Duration builds the segment if needed and returns its length in
	// seconds.
	Duration(ctx context.Context) (float64, error)

	produce(ctx context.Context) error
}

func isBuilt(s Segment) bool {
	return fileutil.Exists(s.Path())
}

func build(ctx context.Context, s Segment, force bool) error {
	if !force && s.IsBuilt() {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		return err
	}
	return s.produce(ctx)
}

func measure(ctx context.Context, s Segment, cfg Config) (float64, error) {
	if err := s.Build(ctx, false); err != nil {
		return 0, err
	}
	seconds, err := cfg.probe(s.Path())
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", s.Path(), err)
	}
	return seconds, nil
}

// Silence is a clip of digital silence.
type Silence struct {
	cfg Config
	ms  int
}

// NewSilence returns a silence of ms milliseconds.
func NewSilence(cfg Config, ms int) (*Silence, error) {
	if ms < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSilence, ms)
	}
	return &Silence{cfg: cfg, ms: ms}, nil
}

func (s *Silence) Key() string   { return fmt.Sprintf("silence-%d", s.ms) }
func (s *Silence) Title() string { return "" }
func (s *Silence) IsBuilt() bool { return isBuilt(s) }

func (s *Silence) Path() string {
	return filepath.Join(s.cfg.Dir, "silence", s.Key()+".mp3")
}

func (s *Silence) Build(ctx context.Context, force bool) error {
	return build(ctx, s, force)
}

// Duration ensures the clip exists and reports its nominal length.
func (s *Silence) Duration(ctx context.Context) (float64, error) {
	if err := s.Build(ctx, false); err != nil {
		return 0, err
	}
	return float64(s.ms) / 1000, nil
}

func (s *Silence) produce(ctx context.Context) error {
	if s.cfg.Encoder == nil {
		return &ConfigError{Setting: "audio encoder"}
	}
	tmp, err := fileutil.TempPath(s.Path())
	if err != nil {
		return err
	}
	defer fileutil.RemoveIfExists(tmp)

	if err := s.cfg.Encoder.Silence(ctx, tmp, time.Duration(s.ms)*time.Millisecond); err != nil {
		return fmt.Errorf("render %s: %w", s.Key(), err)
	}
	return fileutil.Commit(tmp, s.Path())
}

// Speech is synthesized speech for a text or an SSML document.
type Speech struct {
	cfg   Config
	text  string
	title string
}

// NewSpeech returns speech for text. A non-empty title marks the segment as
// the start of a chapter.
func NewSpeech(cfg Config, text, title string) *Speech {
	return &Speech{cfg: cfg, text: text, title: title}
}

// Key is the hex SHA-256 of the text.
func (s *Speech) Key() string {
	sum := sha256.Sum256([]byte(s.text))
	return hex.EncodeToString(sum[:])
}

func (s *Speech) Text() string  { return s.text }
func (s *Speech) Title() string { return s.title }
func (s *Speech) IsBuilt() bool { return isBuilt(s) }

func (s *Speech) Path() string {
	return filepath.Join(s.cfg.Dir, "tts", s.Key()+".mp3")
}

func (s *Speech) Build(ctx context.Context, force bool) error {
	return build(ctx, s, force)
}

func (s *Speech) Duration(ctx context.Context) (float64, error) {
	return measure(ctx, s, s.cfg)
}

func (s *Speech) produce(ctx context.Context) error {
	if s.cfg.Speech == nil {
		return &ConfigError{Setting: "speech synthesizer"}
	}
	data, err := s.cfg.Speech.Synthesize(ctx, s.text, readings.IsSSML(s.text))
	if err != nil {
		return &SynthesisError{Text: s.text, Err: err}
	}
	if len(data) == 0 {
		return &SynthesisError{Text: s.text, Err: errors.New("empty audio")}
	}
	return fileutil.WriteAtomic(s.Path(), data, 0o644)
}

// Remote is the recorded audio for one chapter, fetched from the ESV API.
type Remote struct {
	cfg     Config
	chapter string
}

// NewRemote returns the recording of a canonical chapter reference.
func NewRemote(cfg Config, chapter string) *Remote {
	return &Remote{cfg: cfg, chapter: chapter}
}

// Key is the chapter reference with spaces replaced, e.g. "1_Corinthians_13".
func (r *Remote) Key() string {
	return strings.ReplaceAll(r.chapter, " ", "_")
}

func (r *Remote) Chapter() string { return r.chapter }
func (r *Remote) Title() string   { return "" }
func (r *Remote) IsBuilt() bool   { return isBuilt(r) }

func (r *Remote) Path() string {
	return filepath.Join(r.cfg.Dir, "esv_chapters", r.Key()+".mp3")
}

func (r *Remote) Build(ctx context.Context, force bool) error {
	return build(ctx, r, force)
}

func (r *Remote) Duration(ctx context.Context) (float64, error) {
	return measure(ctx, r, r.cfg)
}

func (r *Remote) produce(ctx context.Context) error {
	if strings.TrimSpace(r.cfg.ESVAPIKey) == "" {
		return &ConfigError{Setting: "ESV_API_KEY"}
	}
	if r.cfg.Chapters == nil {
		return &ConfigError{Setting: "chapter audio source"}
	}
	data, err := r.cfg.Chapters.ChapterAudio(ctx, r.cfg.ESVAPIKey, r.chapter)
	if err != nil {
		return &DownloadError{Chapter: r.chapter, Err: err}
	}
	if len(data) == 0 {
		return &DownloadError{Chapter: r.chapter, Err: errors.New("empty response body")}
	}
	return fileutil.WriteAtomic(r.Path(), data, 0o644)
}
