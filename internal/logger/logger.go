package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

type requestIDKey struct{}

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stdout).With().Timestamp().Logger()
)

// InitLogging sends logs to stdout and, when filePath is set, appends them to
// that file as well. A file that cannot be opened is reported and skipped.
func InitLogging(filePath string) {
	var out io.Writer = os.Stdout
	var fileErr error
	if filePath != "" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fileErr = err
		} else {
			out = zerolog.MultiLevelWriter(os.Stdout, f)
		}
	}
	SetOutput(out)

	if fileErr != nil {
		current().Warn().Err(fileErr).Str("path", filePath).Msg("log file unavailable, logging to stdout only")
	}
}

// SetOutput replaces the log destination.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel sets the global level; unknown names fall back to info.
func SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// WithRequestID stores the request id that log helpers attach to entries.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func event(ctx context.Context, e *zerolog.Event) *zerolog.Event {
	if id := RequestID(ctx); id != "" {
		e = e.Str("request_id", id)
	}
	return e
}

func DebugLog(ctx context.Context, msg string) {
	event(ctx, current().Debug()).Msg(msg)
}

func InfoLog(ctx context.Context, msg string) {
	event(ctx, current().Info()).Msg(msg)
}

func WarnLog(ctx context.Context, msg string) {
	event(ctx, current().Warn()).Msg(msg)
}

func ErrorLog(ctx context.Context, msg string) {
	event(ctx, current().Error()).Msg(msg)
}
