// Package output persists raw command output so a human can inspect what
// the parsers saw. Saving the same command twice overwrites the earlier
// text rather than corrupting it.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ehsaniara/netaudit/pkg/logger"
)

// Sink receives raw command output during collection
type Sink interface {
	Save(hostname, layer, command, raw string) error
}

// FileSink writes <dir>/<hostname>/<layer>/<command>.txt
type FileSink struct {
	dir    string
	logger *logger.Logger
}

// NewFileSink creates a sink rooted at dir
func NewFileSink(dir string) *FileSink {
	return &FileSink{
		dir:    dir,
		logger: logger.WithField("component", "file-sink"),
	}
}

func (s *FileSink) Save(hostname, layer, command, raw string) error {
	dir := filepath.Join(s.dir, sanitize(hostname), sanitize(layer))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, sanitize(command)+".txt")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	s.logger.Debug("saved raw output", "path", path, "bytes", len(raw))
	return nil
}

// sanitize turns a command or hostname into a safe path component
func sanitize(name string) string {
	replacer := strings.NewReplacer(
		" ", "_",
		"/", "-",
		"\\", "-",
		":", "-",
		"|", "-",
		"*", "-",
		"?", "-",
		"\"", "-",
		"<", "-",
		">", "-",
	)
	out := replacer.Replace(strings.TrimSpace(name))
	if out == "" {
		out = "unnamed"
	}
	return out
}

// NopSink discards everything. Used in tests and dry runs.
type NopSink struct{}

func (NopSink) Save(hostname, layer, command, raw string) error {
	return nil
}
