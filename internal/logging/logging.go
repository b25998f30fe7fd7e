// Package logging routes slog output to a file. The TUI owns the terminal,
// so nothing may write to stderr while the program runs.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// DefaultPath returns the log location under the user cache directory.
func DefaultPath() string {
	cache, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(cache, "repowatch", "repowatch.log")
}

// Setup installs the default slog logger writing to path. When the file
// cannot be opened, logging is silently discarded; a dashboard with no log
// file is degraded, not broken. The returned closer flushes the file.
func Setup(path string) io.Closer {
	if path == "" {
		path = DefaultPath()
	}

	var w io.Writer = io.Discard
	var closer io.Closer = io.NopCloser(nil)

	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err == nil {
			if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
				w = f
				closer = f
			}
		}
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})))
	return closer
}
