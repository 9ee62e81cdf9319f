// Package config resolves settings from the environment, an optional .env
// file, and an optional YAML feed description.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultReadingsFile      = "readings.txt"
	defaultBuildDir          = "build"
	defaultFirstMonday       = "2024-12-30"
	defaultTimezone          = "UTC"
	defaultWorkers           = 1
	defaultTTSLanguage       = "en-US"
	defaultListenAddr        = "127.0.0.1:8080"
	defaultRefreshDebounceMS = 500
	defaultLogoFile          = "static/podcast-logo.png"
	defaultFeedTitle         = "Five Day Bible Reading Plan"
	defaultFeedDescription   = "A weekday Bible reading plan podcast."
	defaultFeedLanguage      = "en"

	dateLayout = "2006-01-02"
)

// LoadDotEnv loads variables from path (".env" when empty) without
// overriding ones already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if strings.TrimSpace(path) == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func env(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

// ReadingsFile returns the plan source, one reading per line.
func ReadingsFile() string {
	path := env("BRP_READINGS_FILE")
	if path == "" {
		path = defaultReadingsFile
	}
	return expandHome(path)
}

// ResolveBuildDir returns the absolute build directory, creating it when it
// does not yet exist.
func ResolveBuildDir() (string, error) {
	dir := env("BRP_BUILD_DIR")
	if dir == "" {
		dir = defaultBuildDir
	}

	abs, err := filepath.Abs(expandHome(dir))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", err
	}
	return abs, nil
}

// Location returns the zone used for due dates and for "now" when deciding
// which episodes are published.
func Location() (*time.Location, error) {
	name := env("BRP_TIMEZONE")
	if name == "" {
		name = defaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("BRP_TIMEZONE: %w", err)
	}
	return loc, nil
}

// FirstMonday returns the plan's first due date at midnight in loc.
func FirstMonday(loc *time.Location) (time.Time, error) {
	value := env("BRP_FIRST_MONDAY")
	if value == "" {
		value = defaultFirstMonday
	}
	return ParseDate(value, loc)
}

// ParseDate parses a YYYY-MM-DD civil date at midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// Workers returns how many episodes may be built at once.
func Workers() int {
	value := env("BRP_WORKERS")
	if value == "" {
		return defaultWorkers
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return defaultWorkers
	}
	return n
}

// TTSLanguage returns the speech language code.
func TTSLanguage() string {
	if value := env("BRP_TTS_LANGUAGE"); value != "" {
		return value
	}
	return defaultTTSLanguage
}

// TTSVoice returns the configured voice name, empty for automatic
// selection.
func TTSVoice() string {
	return env("BRP_TTS_VOICE")
}

// ListenAddr returns the TCP address the preview server should bind to.
func ListenAddr() string {
	addr := env("BRP_LISTEN_ADDR")
	if addr == "" {
		return defaultListenAddr
	}
	return addr
}

// RefreshDebounce returns the duration to wait before refreshing the
// library after file-system change events.
func RefreshDebounce() time.Duration {
	value := env("BRP_REFRESH_DEBOUNCE_MS")
	if value == "" {
		return time.Duration(defaultRefreshDebounceMS) * time.Millisecond
	}

	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		return time.Duration(defaultRefreshDebounceMS) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}

// ValidateListenAddr ensures the configured listen address is restricted to localhost.
func ValidateListenAddr(addr string) error {
	addr = strings.TrimSpace(strings.ToLower(addr))
	if strings.HasPrefix(addr, "127.0.0.1:") || strings.HasPrefix(addr, "localhost:") || strings.HasPrefix(addr, "[::1]:") {
		return nil
	}
	return errors.New("listen address must bind to localhost for security")
}

// Credentials are read where they are needed; absence is reported by the
// operation that requires them.
type Credentials struct {
	ESVAPIKey        string
	GCSBucket        string
	TodoistAPIToken  string
	TodoistProjectID string
}

// ResolveCredentials reads the service credentials from the environment.
func ResolveCredentials() Credentials {
	return Credentials{
		ESVAPIKey:        env("ESV_API_KEY"),
		GCSBucket:        env("GCS_BUCKET"),
		TodoistAPIToken:  env("TODOIST_API_TOKEN"),
		TodoistProjectID: env("TODOIST_PROJECT_ID"),
	}
}

// FeedMetadata represents the static metadata used to render the podcast RSS feed.
type FeedMetadata struct {
	Title       string
	Description string
	Language    string
	Author      string
	// Logo is the artwork copied next to the published feed.
	Logo string
}

type feedMetadataYAML struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
	Author      string `yaml:"author"`
	Logo        string `yaml:"logo"`
}

// ResolveFeedMetadata returns the podcast feed metadata after applying defaults,
// YAML configuration (when enabled), and environment variable overrides.
func ResolveFeedMetadata() (FeedMetadata, error) {
	meta := FeedMetadata{
		Title:       defaultFeedTitle,
		Description: defaultFeedDescription,
		Language:    defaultFeedLanguage,
		Logo:        defaultLogoFile,
	}

	if configPath := env("BRP_FEED_CONFIG"); configPath != "" {
		resolved, err := filepath.Abs(expandHome(configPath))
		if err != nil {
			return FeedMetadata{}, err
		}
		data, err := os.ReadFile(resolved)
		if err != nil {
			return FeedMetadata{}, err
		}
		var yamlConfig feedMetadataYAML
		if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
			return FeedMetadata{}, fmt.Errorf("parse %s: %w", resolved, err)
		}
		if value := strings.TrimSpace(yamlConfig.Title); value != "" {
			meta.Title = value
		}
		if value := strings.TrimSpace(yamlConfig.Description); value != "" {
			meta.Description = value
		}
		if value := strings.TrimSpace(yamlConfig.Language); value != "" {
			meta.Language = value
		}
		if value := strings.TrimSpace(yamlConfig.Author); value != "" {
			meta.Author = value
		}
		if value := strings.TrimSpace(yamlConfig.Logo); value != "" {
			meta.Logo = expandHome(value)
		}
	}

	if value := env("BRP_FEED_TITLE"); value != "" {
		meta.Title = value
	}
	if value := env("BRP_FEED_DESCRIPTION"); value != "" {
		meta.Description = value
	}
	if value := env("BRP_FEED_LANGUAGE"); value != "" {
		meta.Language = value
	}
	if value := env("BRP_FEED_AUTHOR"); value != "" {
		meta.Author = value
	}
	if value := env("BRP_LOGO_FILE"); value != "" {
		meta.Logo = expandHome(value)
	}

	return meta, nil
}
