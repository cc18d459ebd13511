// Package logging configures the process-wide logrus logger and carries
// request IDs through contexts.
package logging

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// RequestIDKey is the log field and response header carrying the request ID.
const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

type contextKey struct{}

// Setup configures the standard logger. format is "text" or "json".
func Setup(level, format string, out io.Writer) error {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logrus.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006/01/02 15:04:05",
		})
	default:
		return fmt.Errorf("unknown log format: %s", format)
	}

	if out != nil {
		logrus.SetOutput(out)
	}
	logrus.AddHook(&RequestIDHook{})
	return nil
}

// WithRequestID returns a context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}

// RequestIDHook copies the request ID from an entry's context into its fields.
type RequestIDHook struct{}

// Levels returns all levels.
func (h *RequestIDHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire adds the request_id field when the entry has a context.
func (h *RequestIDHook) Fire(entry *logrus.Entry) error {
	if id := RequestID(entry.Context); id != "" {
		entry.Data[RequestIDKey] = id
	}
	return nil
}

// Middleware assigns every request an ID, reusing a valid incoming
// X-Request-ID, and echoes it in the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

// FromContext returns a logger entry bound to ctx.
func FromContext(ctx context.Context) *logrus.Entry {
	return logrus.WithContext(ctx)
}
