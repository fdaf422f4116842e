// Package logging holds the process-wide structured logger.
//
// Output is discarded until Init enables it. When enabled, records are written
// as JSON to a daily file under the configured directory so they never
// interleave with TUI or command output.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// L is the global logger. It discards everything until Init is called.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	logPrefix     = "topics-"
	logSuffix     = ".log"
	retentionDays = 14
)

var (
	mu   sync.Mutex
	file *os.File
)

// Options configures Init.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	LogDir  string     // Directory for log files (required when enabled)
	Level   slog.Level // Minimum level; zero means info
	Now     func() time.Time
}

// Init (re)configures L. Any previously opened log file is closed.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}

	logDir := strings.TrimSpace(opts.LogDir)
	if logDir == "" {
		return fmt.Errorf("logging: missing log dir")
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("logging: create dir: %w", err)
	}

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	cleanOldLogs(logDir, now())

	name := FileName(logDir, now())
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open %s: %w", name, err)
	}
	file = f

	L = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: opts.Level}))
	return nil
}

// Close flushes and detaches the log file; L goes back to discarding.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	err := closeLocked()
	L = slog.New(slog.NewTextHandler(io.Discard, nil))
	return err
}

func closeLocked() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

// FileName returns the log file path used for the day of t.
func FileName(logDir string, t time.Time) string {
	return filepath.Join(logDir, logPrefix+t.Format("2006-01-02")+logSuffix)
}

// ParseLevel maps a config string to a level. The empty string and "off"
// report enabled=false.
func ParseLevel(s string) (level slog.Level, enabled bool, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none":
		return slog.LevelInfo, false, nil
	case "debug":
		return slog.LevelDebug, true, nil
	case "info":
		return slog.LevelInfo, true, nil
	case "warn", "warning":
		return slog.LevelWarn, true, nil
	case "error":
		return slog.LevelError, true, nil
	default:
		return slog.LevelInfo, false, fmt.Errorf("invalid log level: %q (expected debug|info|warn|error|off)", s)
	}
}

// cleanOldLogs removes log files older than retentionDays. Best-effort.
func cleanOldLogs(logDir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		dateStr := strings.TrimSuffix(strings.TrimPrefix(name, logPrefix), logSuffix)
		logDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		if logDate.Before(cutoff) {
			_ = os.Remove(filepath.Join(logDir, name))
		}
	}
}
