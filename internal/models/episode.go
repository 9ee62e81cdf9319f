package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ChapterStart marks where a chapter begins within an episode, in seconds
// from the start of the audio.
type ChapterStart struct {
	Offset float64
	Title  string
}

// MarshalJSON encodes the pair as [offset, title].
func (c ChapterStart) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{c.Offset, c.Title})
}

// UnmarshalJSON accepts the [offset, title] form written by MarshalJSON.
func (c *ChapterStart) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("chapter start: expected [offset, title], got %d elements", len(pair))
	}
	if err := json.Unmarshal(pair[0], &c.Offset); err != nil {
		return fmt.Errorf("chapter start offset: %w", err)
	}
	if err := json.Unmarshal(pair[1], &c.Title); err != nil {
		return fmt.Errorf("chapter start title: %w", err)
	}
	return nil
}

// Episode represents a built reading as exposed to feed and preview clients.
type Episode struct {
	ID              string         `json:"id"`
	Week            int            `json:"week,omitempty"`
	Day             int            `json:"day,omitempty"`
	Filename        string         `json:"filename"`
	RelativePath    string         `json:"relative_path"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Artist          *string        `json:"artist,omitempty"`
	Album           *string        `json:"album,omitempty"`
	DurationSeconds *float64       `json:"duration_seconds,omitempty"`
	BitrateKbps     *int           `json:"bitrate_kbps,omitempty"`
	FilesizeBytes   int64          `json:"filesize_bytes"`
	ModifiedAt      time.Time      `json:"modified_at"`
	Chapters        []ChapterStart `json:"chapters,omitempty"`
}
