package segments

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingConfig is wrapped by ConfigError.
	ErrMissingConfig = errors.New("missing configuration")
	// ErrInvalidSilence rejects negative silence lengths.
	ErrInvalidSilence = errors.New("silence duration must be a non-negative whole number of milliseconds")
)

// ConfigError reports a credential or collaborator that a segment needs but
// was not given.
type ConfigError struct {
	Setting string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s is not set", e.Setting)
}

func (e *ConfigError) Unwrap() error {
	return ErrMissingConfig
}

// DownloadError wraps any failure to fetch chapter audio.
type DownloadError struct {
	Chapter string
	Err     error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download audio for %s: %v", e.Chapter, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

// SynthesisError wraps a speech service failure for one text.
type SynthesisError struct {
	Text string
	Err  error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("failed to synthesize %q: %v", e.Text, e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
