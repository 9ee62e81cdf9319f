// Package metadata persists per-episode records and builds catalogue
// snapshots of finished episode files.
package metadata

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"bible-reading-plan/internal/audio"
	"bible-reading-plan/internal/fileutil"
	"bible-reading-plan/internal/models"
)

// Record is the stored description of one episode. It exists independently
// of the episode's audio file.
type Record struct {
	Title             string                `json:"title"`
	Description       string                `json:"description"`
	ChapterStartTimes []models.ChapterStart `json:"chapterStartTimes"`
}

// Store keeps one JSON document per episode key ("W01_D01.json").
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir is the directory holding the records.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the document path for key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Exists reports whether a record has been written for key.
func (s *Store) Exists(key string) bool {
	return fileutil.Exists(s.Path(key))
}

// Load reads the record for key. A missing record yields an error matching
// fs.ErrNotExist.
func (s *Store) Load(key string) (Record, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode %s: %w", s.Path(key), err)
	}
	return rec, nil
}

// Save replaces the record for key.
func (s *Store) Save(key string, rec Record) error {
	if rec.ChapterStartTimes == nil {
		rec.ChapterStartTimes = []models.ChapterStart{}
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return fileutil.WriteAtomic(s.Path(key), data, 0o644)
}

var keyPattern = regexp.MustCompile(`^W(\d{2,})_D(\d{2,})$`)

// ParseKey extracts the week and day from a key such as "W03_D02".
func ParseKey(key string) (week, day int, ok bool) {
	m := keyPattern.FindStringSubmatch(key)
	if m == nil {
		return 0, 0, false
	}
	week, _ = strconv.Atoi(m[1])
	day, _ = strconv.Atoi(m[2])
	return week, day, true
}

// Snapshot describes an episode audio file under root. Title, description,
// and chapters come from the stored record when store has one for the
// file's key, then from the file's ID3 tags, then from the file name.
func Snapshot(path, root string, store *Store) (models.Episode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.Episode{}, err
	}

	relative, err := filepath.Rel(root, path)
	if err != nil {
		relative = filepath.Base(path)
	}
	relative = filepath.ToSlash(relative)

	key := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	episode := models.Episode{
		ID:            key,
		Filename:      filepath.Base(path),
		RelativePath:  relative,
		FilesizeBytes: info.Size(),
		ModifiedAt:    info.ModTime().UTC().Round(time.Second),
	}
	episode.Week, episode.Day, _ = ParseKey(key)

	tags := audio.ReadTags(path)
	episode.Title = tags.Title
	episode.Artist = optionalString(tags.Artist)
	episode.Album = optionalString(tags.Album)

	if store != nil {
		if rec, err := store.Load(key); err == nil {
			if rec.Title != "" {
				episode.Title = rec.Title
			}
			episode.Description = rec.Description
			episode.Chapters = rec.ChapterStartTimes
		}
	}
	if episode.Title == "" {
		episode.Title = key
	}

	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		dur, err := audio.MP3Duration(path)
		if err == nil && dur > 0 {
			duration := dur
			episode.DurationSeconds = &duration

			bitrate := int(math.Round((float64(info.Size()) * 8) / duration / 1000))
			if bitrate > 0 {
				episode.BitrateKbps = &bitrate
			}
		}
	}

	return episode, nil
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
