// Package server exposes a local preview of the built episodes and their
// feed over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"os"
	pathpkg "path"
	"path/filepath"
	"strings"
	"time"

	"bible-reading-plan/internal/feed"
	"bible-reading-plan/internal/models"
)

// EpisodeProvider abstracts the episode source for the HTTP handlers.
type EpisodeProvider interface {
	ListEpisodes() []models.Episode
}

// FeedMetadata describes the channel and how plan positions map to dates.
type FeedMetadata struct {
	Title       string
	Description string
	Language    string
	Author      string
	// FirstMonday dates episode W01_D01. When zero, items are dated by file
	// modification time.
	FirstMonday time.Time
}

type serverHandler struct {
	lib       EpisodeProvider
	audioRoot string
	feed      FeedMetadata
	logger    *log.Logger
}

// New creates the HTTP handler serving the episode list, the RSS feed, and
// the episode audio under audioRoot.
func New(lib EpisodeProvider, audioRoot string, meta FeedMetadata, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}

	cleanRoot := filepath.Clean(audioRoot)
	absRoot, err := filepath.Abs(cleanRoot)
	if err != nil {
		logger.Printf("warning: unable to resolve absolute audio root %q: %v", audioRoot, err)
		absRoot = cleanRoot
	}

	if meta.Title == "" {
		meta.Title = feed.DefaultTitle
	}
	if meta.Description == "" {
		meta.Description = feed.DefaultDescription
	}

	h := &serverHandler{
		lib:       lib,
		audioRoot: absRoot,
		feed:      meta,
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/episodes", h.handleEpisodes)
	mux.HandleFunc("/feed", h.handleFeed)
	mux.HandleFunc("/feed.xml", h.handleFeed)
	mux.HandleFunc("/audio/", h.handleAudio)

	return logRequests(mux, logger)
}

func (h *serverHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *serverHandler) handleEpisodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	episodes := h.lib.ListEpisodes()
	if episodes == nil {
		episodes = []models.Episode{}
	}
	if err := json.NewEncoder(w).Encode(episodes); err != nil {
		h.logger.Printf("failed to encode episodes: %v", err)
	}
}

func (h *serverHandler) handleFeed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	base := h.requestBaseURL(r)
	if base == nil {
		h.logger.Printf("unable to determine request base URL")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	data, err := h.buildRSSFeed(base, r.URL.Path, h.lib.ListEpisodes())
	if err != nil {
		h.logger.Printf("failed to build RSS feed: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if _, err := w.Write(data); err != nil {
		h.logger.Printf("failed to write RSS feed: %v", err)
	}
}

func (h *serverHandler) handleAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rel := strings.TrimPrefix(r.URL.Path, "/audio/")
	rel = pathpkg.Clean(rel)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	target := filepath.Join(h.audioRoot, filepath.FromSlash(rel))
	resolved, err := filepath.Abs(target)
	if err != nil {
		h.logger.Printf("failed to resolve audio path %s: %v", target, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if !pathWithinRoot(h.audioRoot, resolved) {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h.logger.Printf("failed to stat audio file %s: %v", resolved, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if info.IsDir() {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, resolved)
}

func (h *serverHandler) requestBaseURL(r *http.Request) *url.URL {
	scheme := "http"
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if candidate := strings.TrimSpace(parts[0]); candidate != "" {
			scheme = candidate
		}
	} else if r.TLS != nil {
		scheme = "https"
	}

	host := strings.TrimSpace(r.Host)
	if host == "" {
		return nil
	}

	return &url.URL{Scheme: scheme, Host: host}
}

// pubDate dates an episode by its plan position when the plan start is
// known.
func (h *serverHandler) pubDate(ep models.Episode) time.Time {
	if !h.feed.FirstMonday.IsZero() && ep.Week > 0 && ep.Day > 0 {
		return h.feed.FirstMonday.AddDate(0, 0, (ep.Week-1)*7+(ep.Day-1))
	}
	return ep.ModifiedAt
}

func (h *serverHandler) buildRSSFeed(base *url.URL, requestPath string, episodes []models.Episode) ([]byte, error) {
	feedURL := *base
	feedURL.Path = requestPath

	channelLink := *base
	channelLink.Path = "/"

	// Newest plan position first.
	items := make([]feed.Item, 0, len(episodes))
	for i := len(episodes) - 1; i >= 0; i-- {
		ep := episodes[i]

		enclosureURL := *base
		enclosureURL.Path = "/" + strings.TrimLeft(pathpkg.Join("audio", ep.RelativePath), "/")

		item := feed.Item{
			Title:       ep.Title,
			Description: ep.Description,
			URL:         enclosureURL.String(),
			GUID:        ep.ID,
			Length:      ep.FilesizeBytes,
			Type:        feed.MIMEType(ep.Filename),
			PubDate:     h.pubDate(ep),
		}
		if ep.DurationSeconds != nil {
			item.Duration = *ep.DurationSeconds
		}
		if ep.Artist != nil {
			item.Author = *ep.Artist
		}
		items = append(items, item)
	}

	return feed.Render(feed.Channel{
		Title:       h.feed.Title,
		Description: h.feed.Description,
		Language:    h.feed.Language,
		Author:      h.feed.Author,
		Link:        channelLink.String(),
		SelfURL:     feedURL.String(),
	}, items)
}

type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.size += n
	return n, err
}

func logRequests(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		logger.Printf("%s %s -> %d (%dB) in %s", r.Method, r.URL.Path, sw.status, sw.size, time.Since(start))
	})
}

func pathWithinRoot(root, target string) bool {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	return rel != ".." && !strings.HasPrefix(rel, "../")
}
