package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

const (
	sampleRate = "44100"
	bitrate    = "64k"
)

// FFmpeg drives the ffmpeg binary. Every method writes exactly the path it
// is given; callers decide where that path lives and when it is committed.
type FFmpeg struct {
	Binary string
}

func (f FFmpeg) binary() string {
	if b := strings.TrimSpace(f.Binary); b != "" {
		return b
	}
	return "ffmpeg"
}

func (f FFmpeg) run(ctx context.Context, args ...string) error {
	full := append([]string{"-hide_banner", "-loglevel", "error", "-nostdin", "-y"}, args...)
	cmd := exec.CommandContext(ctx, f.binary(), full...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Silence writes a mono MP3 of digital silence lasting d.
func (f FFmpeg) Silence(ctx context.Context, dst string, d time.Duration) error {
	seconds := strconv.FormatFloat(d.Seconds(), 'f', 3, 64)
	return f.run(ctx,
		"-f", "lavfi", "-i", "anullsrc=r="+sampleRate+":cl=mono",
		"-t", seconds,
		"-c:a", "libmp3lame", "-b:a", bitrate,
		"-f", "mp3", dst)
}

// ToWAV decodes src into 16-bit mono PCM at a fixed sample rate so that
// heterogeneous sources concatenate without re-timing artifacts.
func (f FFmpeg) ToWAV(ctx context.Context, src, dst string) error {
	return f.run(ctx,
		"-i", src,
		"-ar", sampleRate, "-ac", "1", "-c:a", "pcm_s16le",
		"-f", "wav", dst)
}

// Concat encodes the files listed in a concat manifest into one MP3 with the
// given ID3 tags.
func (f FFmpeg) Concat(ctx context.Context, manifest, dst string, tags Tags) error {
	args := []string{
		"-f", "concat", "-safe", "0", "-i", manifest,
		"-c:a", "libmp3lame", "-b:a", bitrate,
		"-id3v2_version", "3",
	}
	if tags.Title != "" {
		args = append(args, "-metadata", "title="+tags.Title)
	}
	if tags.Artist != "" {
		args = append(args, "-metadata", "artist="+tags.Artist)
	}
	if tags.Album != "" {
		args = append(args, "-metadata", "album="+tags.Album)
	}
	args = append(args, "-f", "mp3", dst)
	return f.run(ctx, args...)
}

// WriteManifest writes an ffmpeg concat-demuxer list of files, in order.
func WriteManifest(path string, files []string) error {
	var b strings.Builder
	for _, file := range files {
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(file, "'", `'\''`))
		b.WriteString("'\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
