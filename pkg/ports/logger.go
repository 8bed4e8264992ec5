// Package ports defines the interfaces between the codec pipeline and its
// collaborators: storage, video tools, rendering and logging.
package ports

import "strings"

// LogLevel orders log messages by severity.
type LogLevel int

const (
	// LevelDebug covers per-frame and per-file details inside adapters.
	LevelDebug LogLevel = iota
	// LevelInfo covers run progress: pack, persist, unpack, verify.
	LevelInfo
	// LevelWarn covers problems that do not fail the run, such as a debug
	// sink that could not write.
	LevelWarn
	// LevelError covers failures that end the run.
	LevelError
	// LevelQuiet suppresses everything.
	LevelQuiet
)

var levelNames = [...]string{"debug", "info", "warn", "error", "quiet"}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLogLevel parses a level name case-insensitively. "warning" is
// accepted for warn. Unknown names fall back to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		return LevelWarn
	}
	for i, name := range levelNames {
		if s == name {
			return LogLevel(i)
		}
	}
	return LevelInfo
}

// Logger writes leveled messages. msg is a format string that doubles as
// the translation key, so call sites pass constant formats and put the
// variable parts in args.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that tags messages with component,
	// e.g. "framestore" or "relay".
	WithComponent(component string) Logger
}
