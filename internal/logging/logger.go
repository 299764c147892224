// internal/logging/logger.go
//
// Run journal. Each CLI invocation appends its resolution events to
// .predicator/logs/predicator.log under a run-scoped tag, so successive
// runs against the same project can be told apart after the fact.

package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"predicator/internal/config"
)

// Logger appends timestamped, run-tagged lines to the project journal.
type Logger struct {
	file *os.File
	run  string
}

// New creates (or reuses) the journal for the given project directory and
// starts a new run scope in it.
func New(projectDir string) (*Logger, error) {
	logDir := filepath.Join(projectDir, config.PredicatorDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, "predicator.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{
		file: f,
		run:  fmt.Sprintf("run-%d", os.Getpid()),
	}, nil
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes one timestamped line tagged with the current run scope.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil || l.file == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	line = strings.TrimRight(line, "\n")
	timestamp := time.Now().Format(time.RFC3339)
	fmt.Fprintf(l.file, "[%s] %s %s\n", timestamp, l.run, line)
}

// RulebooksLoaded records how much the rulebook discovery registered.
func (l *Logger) RulebooksLoaded(rules, recipes int) {
	l.Printf("loaded %d rules and %d recipes", rules, recipes)
}

// ResolutionComplete records the outcome of a missing-input resolution.
func (l *Logger) ResolutionComplete(missing int) {
	if missing == 0 {
		l.Printf("resolution complete: nothing missing")
		return
	}
	l.Printf("resolution complete: %d missing", missing)
}

// ResolutionFailed records an aborted resolution, cycle errors included.
func (l *Logger) ResolutionFailed(err error) {
	l.Printf("resolution failed: %v", err)
}

// CheckComplete records how many rules were evaluated and how many failed.
func (l *Logger) CheckComplete(rules, failed int) {
	l.Printf("check complete: %d rules, %d failed", rules, failed)
}
