package audio

import (
	"errors"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dhowden/tag"
	"github.com/tcolgate/mp3"
)

// MP3Duration sums the frame durations of an MP3 file.
func MP3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := mp3.NewDecoder(f)
	var frame mp3.Frame
	var skipped int
	var total float64

	for {
		err := decoder.Decode(&frame, &skipped)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return 0, err
		}
		total += frame.Duration().Seconds()
	}

	return total, nil
}

// RoundedDuration is MP3Duration rounded to a tenth of a second, the
// precision used for chapter offsets.
func RoundedDuration(path string) (float64, error) {
	seconds, err := MP3Duration(path)
	if err != nil {
		return 0, err
	}
	return math.Round(seconds*10) / 10, nil
}

// Tags are the ID3 fields written to, and read back from, episode files.
type Tags struct {
	Title  string
	Artist string
	Album  string
}

// ReadTags returns the trimmed tag fields of an audio file. Unreadable files
// and files without tags yield empty Tags.
func ReadTags(path string) Tags {
	f, err := os.Open(path)
	if err != nil {
		return Tags{}
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		return Tags{}
	}

	return Tags{
		Title:  strings.TrimSpace(meta.Title()),
		Artist: strings.TrimSpace(meta.Artist()),
		Album:  strings.TrimSpace(meta.Album()),
	}
}
