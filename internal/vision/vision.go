// Package vision provides image labeling clients. A labeler returns the
// concepts it sees in an image as plain strings, in the provider's order.
package vision

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/time/rate"
)

// Source names a labeling provider as it appears in reports.
type Source string

const (
	SourceGoogle Source = "Google Vision"
	SourceOpenAI Source = "OpenAI Vision"
	SourceStatic Source = "Supplied Labels"
)

// Provider identifiers accepted in configuration.
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
	ProviderStatic = "static"
	ProviderNone   = "none"
)

// DefaultMaxLabels is the number of labels requested when none is configured.
const DefaultMaxLabels = 20

// ErrUnavailable is returned when a provider cannot be used at all, for
// example because no API key is configured.
var ErrUnavailable = errors.New("vision provider unavailable")

var errEmptyImage = errors.New("image has no data")

// Image is an uploaded photo.
type Image struct {
	Filename string
	Data     []byte
	MimeType string // optional, derived from Filename when empty
}

func (img Image) mimeType() string {
	if img.MimeType != "" {
		return img.MimeType
	}
	return DetectMimeType(img.Filename)
}

// Labeler detects labels in an image.
type Labeler interface {
	DetectLabels(ctx context.Context, img Image) ([]string, error)
	Source() Source
}

// Config selects and configures a labeler.
type Config struct {
	Provider     string
	GoogleAPIKey string
	OpenAIAPIKey string
	Model        string // OpenAI only
	MaxLabels    int
	RateLimit    int // requests per minute, 0 disables throttling
	StaticLabels []string
}

// placeholderKeys are sample values shipped in .env templates.
var placeholderKeys = []string{
	"your-openai-api-key-here",
	"your-google-api-key-here",
	"your-api-key-here",
}

func usableKey(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	for _, p := range placeholderKeys {
		if key == p {
			return false
		}
	}
	return true
}

// New creates the labeler named by cfg.Provider. Missing or placeholder keys
// and the "none" provider yield an error wrapping ErrUnavailable.
func New(cfg Config) (Labeler, error) {
	maxLabels := cfg.MaxLabels
	if maxLabels <= 0 {
		maxLabels = DefaultMaxLabels
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGoogle, "":
		if !usableKey(cfg.GoogleAPIKey) {
			return nil, fmt.Errorf("GOOGLE_VISION_API_KEY not configured: %w", ErrUnavailable)
		}
		c := NewGoogleClient(cfg.GoogleAPIKey, maxLabels)
		c.limiter = newLimiter(cfg.RateLimit)
		return c, nil
	case ProviderOpenAI:
		if !usableKey(cfg.OpenAIAPIKey) {
			return nil, fmt.Errorf("OPENAI_API_KEY not configured: %w", ErrUnavailable)
		}
		c := NewOpenAIClient(cfg.OpenAIAPIKey, cfg.Model, maxLabels)
		c.limiter = newLimiter(cfg.RateLimit)
		return c, nil
	case ProviderStatic:
		return NewStaticLabeler(cfg.StaticLabels...), nil
	case ProviderNone:
		return nil, fmt.Errorf("labeling disabled: %w", ErrUnavailable)
	default:
		return nil, fmt.Errorf("unknown vision provider: %s", cfg.Provider)
	}
}

// DetectMimeType maps an image filename to its media type, defaulting to JPEG.
func DetectMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// newLimiter converts a per-minute budget into a token bucket.
func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return nil
}

// stripURL drops the request URL from transport errors so provider
// endpoints and credentials stay out of logs and progress events.
func stripURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
