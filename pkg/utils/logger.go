package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger for debug messages. The TUI owns stdout, so output goes to a file.
var (
	mu        sync.Mutex
	isVerbose = false
	logFile   *os.File
	logger    = zerolog.Nop()
)

// Log writes a formatted debug message if verbose mode is enabled
func Log(text string, args ...interface{}) {
	l := Logger()
	l.Debug().Msgf(text, args...)
}

// Logger returns the shared logger. It discards everything until
// InitLogger enables verbose mode.
func Logger() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// DefaultLogPath is the dated log file used when no path is configured.
func DefaultLogPath(now time.Time) string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("simpletasks_%s.log", now.Format("2006-01-02")))
}

// InitLogger initializes the logging system. With verbose off every message
// is dropped; otherwise messages at debug level and above are appended to
// path (or the dated default).
func InitLogger(verbose bool, path string) error {
	mu.Lock()
	defer mu.Unlock()

	isVerbose = verbose
	if !verbose {
		logger = zerolog.Nop()
		return nil
	}

	if path == "" {
		path = DefaultLogPath(time.Now())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("error creating log file: %w", err)
	}
	logFile = f
	logger = newLogger(f)
	logger.Debug().Str("file", path).Msg("verbose logging enabled")
	return nil
}

func newLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

// Verbose reports whether verbose logging is on.
func Verbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return isVerbose
}

// CloseLogger closes the log file if it's open
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = zerolog.Nop()
	isVerbose = false
}
