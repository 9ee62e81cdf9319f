package feed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bible-reading-plan/internal/audio"
	"bible-reading-plan/internal/episode"
	"bible-reading-plan/internal/fileutil"
	"bible-reading-plan/internal/readings"
)

// ErrMissingBucket is returned when no storage bucket is configured.
var ErrMissingBucket = errors.New("GCS_BUCKET is not set")

const storageHost = "https://storage.googleapis.com/"

// BucketURL returns the public URL of name inside bucket. An empty name
// yields the bucket root with a trailing slash.
func BucketURL(bucket, name string) string {
	u := storageHost + url.PathEscape(bucket) + "/"
	if name == "" {
		return u
	}
	parts := strings.Split(name, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return u + strings.Join(parts, "/")
}

// Published returns the leading entries of schedule whose due date is not
// after now. The schedule is in date order, so the scan stops at the first
// future entry.
func Published(schedule []readings.ScheduledReading, now time.Time) []readings.ScheduledReading {
	for i, sr := range schedule {
		if sr.DueDate.After(now) {
			return schedule[:i]
		}
	}
	return schedule
}

// Publisher writes the public feed for episodes uploaded to a storage
// bucket.
type Publisher struct {
	Bucket    string
	Channel   Channel
	Assembler *episode.Assembler
	// Location is the zone "now" and publication dates are expressed in.
	Location *time.Location
	// LogoFile is copied next to the feed as logo.png when set.
	LogoFile string
	Logger   *log.Logger
}

func (p *Publisher) logger() *log.Logger {
	if p.Logger == nil {
		return log.Default()
	}
	return p.Logger
}

func (p *Publisher) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// Items returns one item per published entry.
func (p *Publisher) Items(ctx context.Context, schedule []readings.ScheduledReading, now time.Time) ([]Item, error) {
	if strings.TrimSpace(p.Bucket) == "" {
		return nil, ErrMissingBucket
	}
	loc := p.location()
	published := Published(schedule, now.In(loc))

	items := make([]Item, 0, len(published))
	for _, sr := range published {
		title, err := episode.Title(sr)
		if err != nil {
			return nil, err
		}
		description, err := p.Assembler.Description(ctx, sr)
		if err != nil {
			return nil, fmt.Errorf("describe %s: %w", sr.Key(), err)
		}

		local := p.Assembler.AudioPath(sr)
		link := BucketURL(p.Bucket, "readings/"+filepath.Base(local))
		item := Item{
			Title:       title,
			Description: description,
			URL:         link,
			GUID:        link,
			Length:      fileutil.Size(local),
			Type:        "audio/mpeg",
			PubDate:     sr.DueDate.In(loc),
		}
		if fileutil.Exists(local) {
			if seconds, err := audio.MP3Duration(local); err == nil {
				item.Duration = seconds
			} else {
				p.logger().Printf("duration %s: %v", local, err)
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// Write renders the feed to dst and returns the number of items.
func (p *Publisher) Write(ctx context.Context, schedule []readings.ScheduledReading, now time.Time, dst string) (int, error) {
	items, err := p.Items(ctx, schedule, now)
	if err != nil {
		return 0, err
	}

	ch := p.Channel
	if ch.Title == "" {
		ch.Title = DefaultTitle
	}
	if ch.Description == "" {
		ch.Description = DefaultDescription
	}
	if ch.Link == "" {
		ch.Link = BucketURL(p.Bucket, "")
	}
	if ch.SelfURL == "" {
		ch.SelfURL = BucketURL(p.Bucket, filepath.Base(dst))
	}
	if ch.LastBuild.IsZero() {
		ch.LastBuild = now.In(p.location())
	}

	if p.LogoFile != "" {
		if err := fileutil.CopyFile(p.LogoFile, filepath.Join(filepath.Dir(dst), "logo.png")); err != nil {
			return 0, fmt.Errorf("copy logo: %w", err)
		}
		if ch.ImageURL == "" {
			ch.ImageURL = BucketURL(p.Bucket, "logo.png")
		}
	}

	data, err := Render(ch, items)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}
	if err := fileutil.WriteAtomic(dst, data, 0o644); err != nil {
		return 0, err
	}
	return len(items), nil
}
