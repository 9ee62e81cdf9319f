package main

import (
	"context"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"bible-reading-plan/internal/audio"
	"bible-reading-plan/internal/config"
	"bible-reading-plan/internal/episode"
	"bible-reading-plan/internal/esv"
	"bible-reading-plan/internal/readings"
	"bible-reading-plan/internal/segments"
	"bible-reading-plan/internal/tts"
)

type commandContext struct {
	envFile *string
	logger  *log.Logger

	envOnce sync.Once
	envErr  error
}

func newCommandContext(envFile *string) *commandContext {
	return &commandContext{
		envFile: envFile,
		logger:  log.New(os.Stdout, "bible-podcast ", log.LstdFlags|log.Lmsgprefix),
	}
}

func (c *commandContext) loadEnv() error {
	c.envOnce.Do(func() {
		var path string
		if c.envFile != nil {
			path = strings.TrimSpace(*c.envFile)
		}
		c.envErr = config.LoadDotEnv(path)
	})
	return c.envErr
}

// plan resolves the build directory, the zone, and the full schedule.
func (c *commandContext) plan() (string, *time.Location, []readings.ScheduledReading, error) {
	buildDir, err := config.ResolveBuildDir()
	if err != nil {
		return "", nil, nil, err
	}
	loc, err := config.Location()
	if err != nil {
		return "", nil, nil, err
	}
	first, err := config.FirstMonday(loc)
	if err != nil {
		return "", nil, nil, err
	}
	schedule, err := readings.LoadPlan(config.ReadingsFile(), first)
	if err != nil {
		return "", nil, nil, err
	}
	return buildDir, loc, schedule, nil
}

// assembler wires the real collaborators. The speech client is dialled on
// first use so commands that never synthesize need no cloud credentials.
func (c *commandContext) assembler(buildDir string) (*episode.Assembler, *lazySpeech, error) {
	meta, err := config.ResolveFeedMetadata()
	if err != nil {
		return nil, nil, err
	}
	creds := config.ResolveCredentials()
	speech := &lazySpeech{language: config.TTSLanguage(), voice: config.TTSVoice()}
	encoder := audio.FFmpeg{}

	asm := episode.New(episode.Options{
		Segments: segments.Config{
			Dir:       buildDir,
			ESVAPIKey: creds.ESVAPIKey,
			Speech:    speech,
			Chapters:  esv.New(),
			Encoder:   encoder,
		},
		Encoder: encoder,
		Album:   meta.Title,
		Artist:  meta.Author,
		Logger:  c.logger,
	})
	return asm, speech, nil
}

type lazySpeech struct {
	language string
	voice    string

	once   sync.Once
	client *tts.Google
	err    error
}

func (l *lazySpeech) Synthesize(ctx context.Context, text string, ssml bool) ([]byte, error) {
	l.once.Do(func() {
		l.client, l.err = tts.NewGoogle(ctx, l.language, l.voice)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.client.Synthesize(ctx, text, ssml)
}

func (l *lazySpeech) Close() error {
	if l.client == nil {
		return nil
	}
	return l.client.Close()
}
