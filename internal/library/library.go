// Package library keeps an in-memory catalogue of finished episodes,
// refreshed as the build directory changes.
package library

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"bible-reading-plan/internal/metadata"
	"bible-reading-plan/internal/models"
)

// Library monitors the episode audio directory and the record store.
type Library struct {
	root    string
	store   *metadata.Store
	watcher *fsnotify.Watcher
	logger  *log.Logger

	mu       sync.RWMutex
	episodes []models.Episode

	refreshMu    sync.Mutex
	refreshTimer *time.Timer
	refreshDelay time.Duration

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// NewLibrary scans root for episode MP3s, pairing each with its record in
// store when present, and keeps watching both locations. Missing
// directories are created so they can be watched.
func NewLibrary(root string, store *metadata.Store, debounce time.Duration, logger *log.Logger) (*Library, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	if store != nil {
		if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
			return nil, err
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = log.Default()
	}

	lib := &Library{
		root:         root,
		store:        store,
		watcher:      watcher,
		logger:       logger,
		refreshDelay: debounce,
		done:         make(chan struct{}),
	}

	lib.addWatchRecursive(root)
	if store != nil {
		if err := watcher.Add(store.Dir()); err != nil {
			logger.Printf("watcher add failure for %s: %v", store.Dir(), err)
		}
	}

	if err := lib.refresh(); err != nil {
		watcher.Close()
		return nil, err
	}

	lib.wg.Add(1)
	go lib.run()

	return lib, nil
}

// Close stops the watcher and cleans up resources.
func (l *Library) Close() error {
	l.closeOnce.Do(func() {
		close(l.done)

		l.refreshMu.Lock()
		if l.refreshTimer != nil {
			l.refreshTimer.Stop()
			l.refreshTimer = nil
		}
		l.refreshMu.Unlock()

		l.closeErr = l.watcher.Close()
		l.wg.Wait()
	})
	return l.closeErr
}

// Root is the directory episode paths are relative to.
func (l *Library) Root() string {
	return l.root
}

// ListEpisodes returns a snapshot of the catalogue in plan order.
func (l *Library) ListEpisodes() []models.Episode {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]models.Episode, len(l.episodes))
	copy(result, l.episodes)
	return result
}

func (l *Library) run() {
	defer l.wg.Done()

	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			l.handleEvent(event)
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Printf("watcher error: %v", err)
		case <-l.done:
			return
		}
	}
}

func (l *Library) handleEvent(event fsnotify.Event) {
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			l.addWatchRecursive(event.Name)
		}
	}

	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
		if l.isEpisode(event.Name) || l.isRecord(event.Name) || event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
			l.scheduleRefresh()
		}
	}
}

func (l *Library) refresh() error {
	var episodes []models.Episode

	err := filepath.WalkDir(l.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			l.logger.Printf("walk error for %s: %v", path, err)
			return nil
		}

		if d.IsDir() || !l.isEpisode(path) {
			return nil
		}

		episode, err := metadata.Snapshot(path, l.root, l.store)
		if err != nil {
			l.logger.Printf("metadata error for %s: %v", path, err)
			return nil
		}

		episodes = append(episodes, episode)
		return nil
	})
	if err != nil {
		return err
	}

	sort.SliceStable(episodes, func(i, j int) bool {
		a, b := episodes[i], episodes[j]
		if a.Week != b.Week {
			return a.Week < b.Week
		}
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		return a.RelativePath < b.RelativePath
	})

	l.mu.Lock()
	l.episodes = episodes
	l.mu.Unlock()

	l.logger.Printf("library refreshed with %d episodes", len(episodes))
	return nil
}

func (l *Library) scheduleRefresh() {
	select {
	case <-l.done:
		return
	default:
	}

	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	if l.refreshTimer != nil {
		l.refreshTimer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(l.refreshDelay, func() {
		if err := l.refresh(); err != nil {
			l.logger.Printf("refresh error: %v", err)
		}

		l.refreshMu.Lock()
		if l.refreshTimer == timer {
			l.refreshTimer = nil
		}
		l.refreshMu.Unlock()
	})

	l.refreshTimer = timer
}

func (l *Library) addWatchRecursive(path string) {
	filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			l.logger.Printf("walk error for %s: %v", p, err)
			return nil
		}

		if d.IsDir() {
			if err := l.watcher.Add(p); err != nil {
				l.logger.Printf("watcher add failure for %s: %v", p, err)
			}
		}
		return nil
	})
}

// isEpisode accepts finished MP3s, skipping in-progress temporaries.
func (l *Library) isEpisode(path string) bool {
	base := filepath.Base(path)
	return strings.EqualFold(filepath.Ext(base), ".mp3") && !strings.HasPrefix(base, ".")
}

func (l *Library) isRecord(path string) bool {
	if l.store == nil {
		return false
	}
	return filepath.Dir(path) == filepath.Clean(l.store.Dir()) && strings.EqualFold(filepath.Ext(path), ".json")
}
