package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Log levels
const (
	None    = 0
	Error   = 1
	Warning = 2
	Info    = 3
	Debug   = 4
)

var currentLevel atomic.Int32

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.SetOutput(os.Stderr)
	currentLevel.Store(Info)
}

// SetLevel sets the global logging level.
func SetLevel(level int) {
	currentLevel.Store(int32(level))
	Logf(Debug, "Log level set to %s", LevelName(level))
}

// GetLevel returns the current logging level.
func GetLevel() int {
	return int(currentLevel.Load())
}

// Enabled reports whether messages at level would be written.
func Enabled(level int) bool {
	return level != None && int32(level) <= currentLevel.Load()
}

// SetOutput redirects log output, e.g. to a log file or a test buffer.
// It returns the previous writer so callers can restore it.
func SetOutput(w io.Writer) io.Writer {
	prev := log.Writer()
	log.SetOutput(w)
	return prev
}

// ParseLevel converts a string level to an integer level.
func ParseLevel(levelStr string) (int, error) {
	switch strings.ToLower(levelStr) {
	case "none":
		return None, nil
	case "error":
		return Error, nil
	case "warn", "warning":
		return Warning, nil
	case "info":
		return Info, nil
	case "debug":
		return Debug, nil
	default:
		return Info, fmt.Errorf("invalid log level string: '%s'", levelStr)
	}
}

// LevelName is the inverse of ParseLevel.
func LevelName(level int) string {
	switch level {
	case None:
		return "none"
	case Error:
		return "error"
	case Warning:
		return "warn"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return fmt.Sprintf("level(%d)", level)
	}
}

// SetupLogging initializes logging based on a level string.
// Returns the integer log level corresponding to the string.
func SetupLogging(levelStr string) int {
	level, err := ParseLevel(levelStr)
	if err != nil {
		Logf(Warning, "Invalid log level '%s' provided, defaulting to 'info'. %v", levelStr, err)
		level = Info
	}
	SetLevel(level)
	return level
}

// Logf logs a formatted message if the given level is high enough.
func Logf(level int, format string, v ...interface{}) {
	if !Enabled(level) {
		return
	}
	prefix := ""
	switch level {
	case Error:
		prefix = "[ERROR] "
	case Warning:
		prefix = "[WARN]  "
	case Info:
		prefix = "[INFO]  "
	case Debug:
		prefix = "[DEBUG] "
	}
	// Call depth 2 attributes the line to Logf's caller.
	log.Output(2, fmt.Sprintf(prefix+format, v...))
}
