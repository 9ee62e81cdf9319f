// Package feed renders podcast RSS documents with iTunes extensions.
package feed

import (
	"encoding/xml"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultTitle names the podcast when no title is configured.
	DefaultTitle = "Five Day Bible Reading Plan"
	// DefaultDescription describes the podcast when nothing else is configured.
	DefaultDescription = "A weekday Bible reading plan podcast."

	generator = "bible-podcast"
)

// Channel holds the feed-level fields.
type Channel struct {
	Title       string
	Description string
	Language    string
	Author      string
	Link        string
	// SelfURL is the address the feed itself is published at.
	SelfURL  string
	ImageURL string
	// LastBuild defaults to the newest item's publication date.
	LastBuild time.Time
}

// Item is one episode entry.
type Item struct {
	Title       string
	Description string
	URL         string
	// GUID defaults to URL.
	GUID    string
	Length  int64
	Type    string
	PubDate time.Time
	// Duration in seconds; zero omits itunes:duration.
	Duration float64
	Author   string
}

// Render returns the complete RSS 2.0 document for ch and items, in the
// order given.
func Render(ch Channel, items []Item) ([]byte, error) {
	if ch.Title == "" {
		ch.Title = DefaultTitle
	}
	if ch.Description == "" {
		ch.Description = ch.Title
	}

	lastBuild := ch.LastBuild
	if lastBuild.IsZero() {
		for _, it := range items {
			if it.PubDate.After(lastBuild) {
				lastBuild = it.PubDate
			}
		}
	}
	if lastBuild.IsZero() {
		lastBuild = time.Now()
	}

	rss := rssFeed{
		Version:  "2.0",
		AtomNS:   "http://www.w3.org/2005/Atom",
		ITunesNS: "http://www.itunes.com/dtds/podcast-1.0.dtd",
		Channel: rssChannel{
			Title:         ch.Title,
			Link:          ch.Link,
			Description:   ch.Description,
			Language:      ch.Language,
			LastBuildDate: lastBuild.Format(time.RFC1123Z),
			Generator:     generator,
			ITunesAuthor:  ch.Author,
		},
	}
	if ch.SelfURL != "" {
		rss.Channel.AtomLink = &rssAtomLink{Href: ch.SelfURL, Rel: "self", Type: "application/rss+xml"}
	}
	if ch.ImageURL != "" {
		rss.Channel.Image = &rssImage{URL: ch.ImageURL, Title: ch.Title, Link: ch.Link}
		rss.Channel.ITunesImage = &rssITunesImage{Href: ch.ImageURL}
	}

	for _, it := range items {
		guid := it.GUID
		if guid == "" {
			guid = it.URL
		}
		kind := it.Type
		if kind == "" {
			kind = MIMEType(it.URL)
		}
		author := it.Author
		if author == "" {
			author = ch.Author
		}

		item := rssItem{
			Title:        it.Title,
			Link:         it.URL,
			GUID:         rssGUID{IsPermaLink: "false", Value: guid},
			Description:  it.Description,
			Enclosure:    rssEnclosure{URL: it.URL, Length: it.Length, Type: kind},
			ITunesAuthor: author,
		}
		if !it.PubDate.IsZero() {
			item.PubDate = it.PubDate.Format(time.RFC1123Z)
		}
		if it.Duration > 0 {
			item.ITunesDuration = FormatDuration(it.Duration)
		}
		rss.Channel.Items = append(rss.Channel.Items, item)
	}

	output, err := xml.MarshalIndent(rss, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), output...), nil
}

// FormatDuration renders seconds as HH:MM:SS for itunes:duration.
func FormatDuration(seconds float64) string {
	if seconds <= 0 {
		return ""
	}
	total := int64(seconds + 0.5)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// MIMEType guesses an enclosure type from a file name or URL.
func MIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".mp3" {
		return "audio/mpeg"
	}
	if ext != "" {
		if value := mime.TypeByExtension(ext); value != "" {
			return value
		}
		if fallback, ok := fallbackMIMETypes[ext]; ok {
			return fallback
		}
	}
	return "application/octet-stream"
}

var fallbackMIMETypes = map[string]string{
	".m4a": "audio/mp4",
	".wav": "audio/wav",
}

type rssFeed struct {
	XMLName  xml.Name   `xml:"rss"`
	Version  string     `xml:"version,attr"`
	AtomNS   string     `xml:"xmlns:atom,attr"`
	ITunesNS string     `xml:"xmlns:itunes,attr"`
	Channel  rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string          `xml:"title"`
	Link          string          `xml:"link"`
	Description   string          `xml:"description"`
	Language      string          `xml:"language,omitempty"`
	LastBuildDate string          `xml:"lastBuildDate"`
	Generator     string          `xml:"generator"`
	AtomLink      *rssAtomLink    `xml:"atom:link,omitempty"`
	Image         *rssImage       `xml:"image,omitempty"`
	ITunesImage   *rssITunesImage `xml:"itunes:image,omitempty"`
	ITunesAuthor  string          `xml:"itunes:author,omitempty"`
	Items         []rssItem       `xml:"item"`
}

type rssAtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssImage struct {
	URL   string `xml:"url"`
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

type rssITunesImage struct {
	Href string `xml:"href,attr"`
}

type rssItem struct {
	Title          string       `xml:"title"`
	Link           string       `xml:"link"`
	GUID           rssGUID      `xml:"guid"`
	PubDate        string       `xml:"pubDate,omitempty"`
	Description    string       `xml:"description"`
	Enclosure      rssEnclosure `xml:"enclosure"`
	ITunesDuration string       `xml:"itunes:duration,omitempty"`
	ITunesAuthor   string       `xml:"itunes:author,omitempty"`
}

type rssGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type rssEnclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}
