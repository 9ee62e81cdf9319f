// Package episode assembles a scheduled reading into one MP3 with a stored
// chapter index.
package episode

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"

	"bible-reading-plan/internal/audio"
	"bible-reading-plan/internal/fileutil"
	"bible-reading-plan/internal/metadata"
	"bible-reading-plan/internal/models"
	"bible-reading-plan/internal/readings"
	"bible-reading-plan/internal/segments"
)

const (
	// ChapterPauseMS separates the intro, announcements, and chapter audio.
	ChapterPauseMS = 1000
	// ClosingPauseMS ends every episode.
	ClosingPauseMS = 2000
)

// Encoder is the transcoder the assembler drives.
type Encoder interface {
	segments.SilenceEncoder
	ToWAV(ctx context.Context, src, dst string) error
	Concat(ctx context.Context, manifest, dst string, tags audio.Tags) error
}

// Result reports whether Build produced the episode audio.
type Result int

const (
	Cached Result = iota
	Generated
)

func (r Result) String() string {
	if r == Generated {
		return "generated"
	}
	return "cached"
}

// Options configures an Assembler.
type Options struct {
	Segments segments.Config
	Encoder  Encoder
	// Album and Artist are written as ID3 tags on every episode.
	Album  string
	Artist string
	Logger *log.Logger
}

// Assembler builds episodes under a single build directory. It is safe to
// build distinct episodes from several goroutines.
type Assembler struct {
	cfg     segments.Config
	encoder Encoder
	store   *metadata.Store
	album   string
	artist  string
	logger  *log.Logger
}

// New returns an assembler writing under opts.Segments.Dir.
func New(opts Options) *Assembler {
	cfg := opts.Segments
	if cfg.Encoder == nil && opts.Encoder != nil {
		cfg.Encoder = opts.Encoder
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{
		cfg:     cfg,
		encoder: opts.Encoder,
		store:   metadata.NewStore(filepath.Join(cfg.Dir, "episodes")),
		album:   opts.Album,
		artist:  opts.Artist,
		logger:  logger,
	}
}

// Store exposes the episode record store.
func (a *Assembler) Store() *metadata.Store {
	return a.store
}

// AudioDir holds the finished episode files.
func (a *Assembler) AudioDir() string {
	return filepath.Join(a.cfg.Dir, "readings")
}

// AudioPath is where the episode for sr is written, e.g. readings/W01_D01.mp3.
func (a *Assembler) AudioPath(sr readings.ScheduledReading) string {
	return filepath.Join(a.AudioDir(), sr.Key()+".mp3")
}

// Title is "Week {week}, Day {day}: {nice name}".
func Title(sr readings.ScheduledReading) (string, error) {
	name, err := sr.Reading.NiceName()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Week %d, Day %d: %s", sr.Week, sr.Day, name), nil
}

// Segments lists the audio units of an episode in playback order: the intro,
// then for each chapter a pause, its announcement, a pause, and the chapter
// recording, then a closing pause.
func (a *Assembler) Segments(sr readings.ScheduledReading) ([]segments.Segment, error) {
	name, err := sr.Reading.NiceNameSSML(false)
	if err != nil {
		return nil, err
	}
	chapters, err := sr.Reading.ToChapters()
	if err != nil {
		return nil, err
	}
	pause, err := segments.NewSilence(a.cfg, ChapterPauseMS)
	if err != nil {
		return nil, err
	}
	closing, err := segments.NewSilence(a.cfg, ClosingPauseMS)
	if err != nil {
		return nil, err
	}

	intro := readings.Speak(fmt.Sprintf("Week %d, Day %d. Today's reading is %s.", sr.Week, sr.Day, name))
	list := make([]segments.Segment, 0, 2+4*len(chapters))
	list = append(list, segments.NewSpeech(a.cfg, intro, ""))
	for _, chapter := range chapters {
		list = append(list,
			pause,
			segments.NewSpeech(a.cfg, readings.ChapterAnnouncement(chapter), chapter),
			pause,
			segments.NewRemote(a.cfg, chapter),
		)
	}
	return append(list, closing), nil
}

// ChapterStartTimes returns the offset at which each chapter announcement
// begins.
func (a *Assembler) ChapterStartTimes(ctx context.Context, sr readings.ScheduledReading) ([]models.ChapterStart, error) {
	list, err := a.Segments(sr)
	if err != nil {
		return nil, err
	}
	return startTimes(ctx, list)
}

type timed interface {
	Title() string
	Duration(ctx context.Context) (float64, error)
}

// startTimes walks segments accumulating durations. A titled segment is
// recorded at the total reached before its own duration is added.
func startTimes[S timed](ctx context.Context, list []S) ([]models.ChapterStart, error) {
	var starts []models.ChapterStart
	var total float64
	for _, s := range list {
		if title := s.Title(); title != "" {
			starts = append(starts, models.ChapterStart{Offset: roundTenth(total), Title: title})
		}
		d, err := s.Duration(ctx)
		if err != nil {
			return nil, err
		}
		total += d
	}
	return starts, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// Description prefers the stored description and otherwise derives the
// chapter index from the segments, which may build them.
func (a *Assembler) Description(ctx context.Context, sr readings.ScheduledReading) (string, error) {
	rec, err := a.store.Load(sr.Key())
	if err == nil && rec.Description != "" {
		return rec.Description, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		a.logger.Printf("metadata %s: %v", sr.Key(), err)
	}
	starts, err := a.ChapterStartTimes(ctx, sr)
	if err != nil {
		return "", err
	}
	return Describe(starts), nil
}

// Build produces the episode audio and refreshes its record. Without force
// an episode whose audio and record both exist is left alone. The record is
// rewritten whenever the audio step runs or is skipped, so changes to titles
// or descriptions reach existing episodes without re-encoding. Generated is
// returned only when the audio file did not exist beforehand.
func (a *Assembler) Build(ctx context.Context, sr readings.ScheduledReading, force bool) (Result, error) {
	key := sr.Key()
	out := a.AudioPath(sr)
	existed := fileutil.Exists(out)
	if !force && existed && a.store.Exists(key) {
		return Cached, nil
	}

	title, err := Title(sr)
	if err != nil {
		return Cached, err
	}
	list, err := a.Segments(sr)
	if err != nil {
		return Cached, err
	}

	if force || !existed {
		if err := a.render(ctx, key, title, list, out, force); err != nil {
			return Cached, fmt.Errorf("build %s: %w", key, err)
		}
		a.logger.Printf("built %s (%s)", key, title)
	}

	starts, err := startTimes(ctx, list)
	if err != nil {
		return Cached, fmt.Errorf("chapter index %s: %w", key, err)
	}
	rec := metadata.Record{Title: title, Description: Describe(starts), ChapterStartTimes: starts}
	if err := a.store.Save(key, rec); err != nil {
		return Cached, fmt.Errorf("save metadata %s: %w", key, err)
	}

	if existed {
		return Cached, nil
	}
	return Generated, nil
}

func (a *Assembler) render(ctx context.Context, key, title string, list []segments.Segment, out string, force bool) error {
	if a.encoder == nil {
		return &segments.ConfigError{Setting: "audio encoder"}
	}

	built := make(map[string]bool, len(list))
	wavs := make([]string, 0, len(list))
	for _, s := range list {
		if !built[s.Path()] {
			if err := s.Build(ctx, force); err != nil {
				return err
			}
			built[s.Path()] = true
		}
		wav, err := a.intermediate(ctx, s.Path())
		if err != nil {
			return err
		}
		wavs = append(wavs, wav)
	}

	manifest, err := fileutil.TempPath(filepath.Join(a.cfg.Dir, "tmp", key+".txt"))
	if err != nil {
		return err
	}
	defer fileutil.RemoveIfExists(manifest)
	if err := audio.WriteManifest(manifest, wavs); err != nil {
		return err
	}

	tmp, err := fileutil.TempPath(out)
	if err != nil {
		return err
	}
	defer fileutil.RemoveIfExists(tmp)

	tags := audio.Tags{Title: title, Artist: a.artist, Album: a.album}
	if err := a.encoder.Concat(ctx, manifest, tmp, tags); err != nil {
		return err
	}
	return fileutil.Commit(tmp, out)
}

// intermediate converts src to the shared WAV cache, keyed by the BLAKE3
// hash of src's bytes so repeated clips convert once across episodes.
func (a *Assembler) intermediate(ctx context.Context, src string) (string, error) {
	sum, err := hashFile(src)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(a.cfg.Dir, "wav", sum+".wav")
	if fileutil.Exists(dst) {
		return dst, nil
	}

	tmp, err := fileutil.TempPath(dst)
	if err != nil {
		return "", err
	}
	defer fileutil.RemoveIfExists(tmp)
	if err := a.encoder.ToWAV(ctx, src, tmp); err != nil {
		return "", fmt.Errorf("convert %s: %w", src, err)
	}
	if err := fileutil.Commit(tmp, dst); err != nil {
		return "", err
	}
	return dst, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
