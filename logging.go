package hue

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

// Verbosity selects how much diagnostic output the client produces.
type Verbosity int

const (
	// VerbositySilent discards all diagnostic output.
	VerbositySilent Verbosity = iota
	// VerbosityMessages prints operator guidance such as "press the link button".
	VerbosityMessages
	// VerbosityDebug also prints URLs, payloads and raw discovery replies.
	VerbosityDebug
)

// String returns the configuration name of the verbosity level.
func (v Verbosity) String() string {
	switch v {
	case VerbositySilent:
		return "silent"
	case VerbosityMessages:
		return "messages"
	case VerbosityDebug:
		return "debug"
	default:
		return fmt.Sprintf("verbosity(%d)", int(v))
	}
}

// ParseVerbosity parses "silent", "messages" or "debug" (also 0, 1, 2).
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "0":
		return VerbositySilent, nil
	case "messages", "info", "1":
		return VerbosityMessages, nil
	case "debug", "2":
		return VerbosityDebug, nil
	default:
		return VerbosityMessages, fmt.Errorf("%w: unknown verbosity %q", ErrInvalidConfig, s)
	}
}

// NewDiagnosticLogger returns a text logger writing to w (stderr when nil)
// filtered for the given verbosity.
func NewDiagnosticLogger(w io.Writer, v Verbosity) *slog.Logger {
	if v <= VerbositySilent {
		return slog.New(slog.DiscardHandler)
	}
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelInfo
	if v >= VerbosityDebug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithLogger configures a structured logger for the client. It takes
// precedence over WithVerbosity.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	client := hue.NewClient(hue.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithVerbosity sets the diagnostic output level of the default logger.
func WithVerbosity(v Verbosity) Option {
	return func(c *Client) {
		c.verbosity = v
	}
}

// credentialSegment matches the credential in /api/<credential>/... paths.
var credentialSegment = regexp.MustCompile(`/api/[^/]+/`)

// redactURL hides the credential in authenticated URLs.
func redactURL(url string) string {
	return credentialSegment.ReplaceAllString(url, "/api/<redacted>/")
}

// LoggingTransport wraps an http.RoundTripper and logs requests/responses.
type LoggingTransport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

// RoundTrip implements http.RoundTripper with logging.
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	if t.Logger == nil {
		return base.RoundTrip(req)
	}

	start := time.Now()
	url := redactURL(req.URL.String())
	t.Logger.LogAttrs(req.Context(), slog.LevelDebug, "http_request",
		slog.String("method", req.Method),
		slog.String("url", url),
	)

	resp, err := base.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.Logger.LogAttrs(req.Context(), slog.LevelError, "http_error",
			slog.String("method", req.Method),
			slog.String("url", url),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return resp, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	t.Logger.LogAttrs(req.Context(), level, "http_response",
		slog.String("method", req.Method),
		slog.String("url", url),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)
	return resp, nil
}

// LogRequest logs an API request at debug level.
func (c *Client) LogRequest(ctx context.Context, method, url string) {
	c.logger.LogAttrs(ctx, slog.LevelDebug, "api_request",
		slog.String("method", method),
		slog.String("url", redactURL(url)),
	)
}

// LogResponse logs an API response. Failures are logged at warn level so they
// show up with VerbosityMessages.
func (c *Client) LogResponse(ctx context.Context, method, url string, statusCode int, duration time.Duration, err error) {
	level := slog.LevelDebug
	if statusCode >= 400 || err != nil {
		level = slog.LevelWarn
	}

	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("url", redactURL(url)),
		slog.Int("status", statusCode),
		slog.Duration("duration", duration),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	c.logger.LogAttrs(ctx, level, "api_response", attrs...)
}
