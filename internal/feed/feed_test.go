package feed

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bible-reading-plan/internal/episode"
	"bible-reading-plan/internal/metadata"
	"bible-reading-plan/internal/readings"
	"bible-reading-plan/internal/segments"
)

func TestRenderChannelAndItems(t *testing.T) {
	pub := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	data, err := Render(Channel{
		Title:    "Plan",
		Link:     "https://example.com/",
		SelfURL:  "https://example.com/podcast.xml",
		ImageURL: "https://example.com/logo.png",
		Author:   "Reader",
	}, []Item{{
		Title:       "Week 1, Day 1: Genesis 1-2",
		Description: "0:03 – Genesis 1",
		URL:         "https://example.com/readings/W01_D01.mp3",
		Length:      1234,
		PubDate:     pub,
		Duration:    3661,
	}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	text := string(data)
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<description>Plan</description>`,
		`<atom:link href="https://example.com/podcast.xml" rel="self" type="application/rss+xml"></atom:link>`,
		`<itunes:image href="https://example.com/logo.png"></itunes:image>`,
		`<enclosure url="https://example.com/readings/W01_D01.mp3" length="1234" type="audio/mpeg"></enclosure>`,
		`<guid isPermaLink="false">https://example.com/readings/W01_D01.mp3</guid>`,
		`<pubDate>Mon, 30 Dec 2024 00:00:00 +0000</pubDate>`,
		`<itunes:duration>01:01:01</itunes:duration>`,
		`<itunes:author>Reader</itunes:author>`,
		`<lastBuildDate>Mon, 30 Dec 2024 00:00:00 +0000</lastBuildDate>`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %s in feed:\n%s", want, text)
		}
	}

	var parsed struct {
		Channel struct {
			Items []struct {
				Title string `xml:"title"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	if err := xml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("feed is not well-formed: %v", err)
	}
	if len(parsed.Channel.Items) != 1 {
		t.Fatalf("expected one item, got %d", len(parsed.Channel.Items))
	}
}

func TestRenderOmitsOptionalElements(t *testing.T) {
	data, err := Render(Channel{}, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, "<title>"+DefaultTitle+"</title>") {
		t.Fatalf("expected default title")
	}
	for _, absent := range []string{"atom:link href", "itunes:image href", "<image>", "<item>"} {
		if strings.Contains(text, absent) {
			t.Fatalf("did not expect %s in empty feed", absent)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if FormatDuration(0) != "" {
		t.Fatalf("expected empty duration for zero")
	}
	if got := FormatDuration(190.4); got != "00:03:10" {
		t.Fatalf("unexpected duration %s", got)
	}
}

func TestMIMEType(t *testing.T) {
	if MIMEType("W01_D01.mp3") != "audio/mpeg" {
		t.Fatalf("expected audio/mpeg for mp3")
	}
	if MIMEType("noext") != "application/octet-stream" {
		t.Fatalf("expected fallback type")
	}
}

func TestBucketURL(t *testing.T) {
	if got := BucketURL("my-bucket", ""); got != "https://storage.googleapis.com/my-bucket/" {
		t.Fatalf("unexpected root %s", got)
	}
	if got := BucketURL("my-bucket", "readings/W01_D01.mp3"); got != "https://storage.googleapis.com/my-bucket/readings/W01_D01.mp3" {
		t.Fatalf("unexpected object url %s", got)
	}
}

func plan(t *testing.T, first time.Time) []readings.ScheduledReading {
	t.Helper()
	raw := make([]string, readings.WeeksInPlan*readings.ReadingsPerWeek)
	for i := range raw {
		raw[i] = "Gen 1"
	}
	schedule, err := readings.Schedule(raw, first, readings.ReadingsPerWeek, readings.WeeksInPlan)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	return schedule
}

func TestPublishedStopsAtFirstFutureEntry(t *testing.T) {
	first := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	schedule := plan(t, first)

	if got := Published(schedule, first.Add(-time.Second)); len(got) != 0 {
		t.Fatalf("expected nothing before the first date, got %d", len(got))
	}
	if got := Published(schedule, first); len(got) != 1 {
		t.Fatalf("expected the first entry on its due date, got %d", len(got))
	}
	// Second Monday: five weekdays of week one plus Monday of week two.
	if got := Published(schedule, first.AddDate(0, 0, 7).Add(12*time.Hour)); len(got) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(got))
	}
	if got := Published(schedule, first.AddDate(2, 0, 0)); len(got) != len(schedule) {
		t.Fatalf("expected the whole plan once every date has passed")
	}
}

func testPublisher(t *testing.T) (*Publisher, string) {
	t.Helper()
	dir := t.TempDir()
	asm := episode.New(episode.Options{
		Segments: segments.Config{Dir: dir},
		Logger:   log.New(io.Discard, "", 0),
	})
	return &Publisher{
		Bucket:    "plan-bucket",
		Assembler: asm,
		Logger:    log.New(io.Discard, "", 0),
	}, dir
}

func TestPublisherRequiresBucket(t *testing.T) {
	p, _ := testPublisher(t)
	p.Bucket = ""
	if _, err := p.Items(context.Background(), nil, time.Now()); !errors.Is(err, ErrMissingBucket) {
		t.Fatalf("expected ErrMissingBucket, got %v", err)
	}
}

func TestPublisherWritesFeed(t *testing.T) {
	p, dir := testPublisher(t)
	first := time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC)
	schedule := plan(t, first)[:3]

	for _, sr := range schedule {
		rec := metadata.Record{Description: "0:03 – Genesis 1"}
		if err := p.Assembler.Store().Save(sr.Key(), rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	audioPath := p.Assembler.AudioPath(schedule[0])
	if err := os.MkdirAll(filepath.Dir(audioPath), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(audioPath, []byte("12345"), 0o644); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	logo := filepath.Join(t.TempDir(), "podcast-logo.png")
	if err := os.WriteFile(logo, []byte("png"), 0o644); err != nil {
		t.Fatalf("write logo: %v", err)
	}
	p.LogoFile = logo

	dst := filepath.Join(dir, "podcast.xml")
	count, err := p.Write(context.Background(), schedule, first.AddDate(0, 0, 1), dst)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected two published items, got %d", count)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		"<title>Week 1, Day 1: Genesis 1</title>",
		"<title>Week 1, Day 2: Genesis 1</title>",
		`<enclosure url="https://storage.googleapis.com/plan-bucket/readings/W01_D01.mp3" length="5" type="audio/mpeg">`,
		`<enclosure url="https://storage.googleapis.com/plan-bucket/readings/W01_D02.mp3" length="0" type="audio/mpeg">`,
		"<description>" + DefaultDescription + "</description>",
		"<link>https://storage.googleapis.com/plan-bucket/</link>",
		`<itunes:image href="https://storage.googleapis.com/plan-bucket/logo.png">`,
		"<pubDate>Tue, 31 Dec 2024 00:00:00 +0000</pubDate>",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %s in feed:\n%s", want, text)
		}
	}
	if strings.Contains(text, "W01_D03") {
		t.Fatalf("future entry must not be published")
	}
	if _, err := os.Stat(filepath.Join(dir, "logo.png")); err != nil {
		t.Fatalf("expected logo copy: %v", err)
	}
}

func TestPublisherUsesLocationForNow(t *testing.T) {
	p, _ := testPublisher(t)
	tokyo := time.FixedZone("JST", 9*3600)
	p.Location = tokyo

	first := time.Date(2024, 12, 30, 0, 0, 0, 0, tokyo)
	schedule := plan(t, first)[:1]
	if err := p.Assembler.Store().Save(schedule[0].Key(), metadata.Record{Description: "d"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// 16:00 UTC on the 29th is 01:00 on the 30th in Tokyo.
	now := time.Date(2024, 12, 29, 16, 0, 0, 0, time.UTC)
	items, err := p.Items(context.Background(), schedule, now)
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected the entry to be due in the configured zone")
	}
	if items[0].PubDate.Location() != tokyo {
		t.Fatalf("expected publication date in the configured zone")
	}
}
