package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"predicator/internal/config"
)

func journalContents(t *testing.T, projectDir string) string {
	t.Helper()
	path := filepath.Join(projectDir, config.PredicatorDir, "logs", "predicator.log")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	return string(data)
}

func TestLoggerTagsLinesWithRunScope(t *testing.T) {
	projectDir := t.TempDir()
	logger, err := New(projectDir)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.RulebooksLoaded(2, 1)
	logger.ResolutionComplete(3)
	if err := logger.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	contents := journalContents(t, projectDir)
	lines := strings.Split(strings.TrimSpace(contents), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 journal lines, got %d: %q", len(lines), contents)
	}
	for _, line := range lines {
		if !strings.Contains(line, logger.run) {
			t.Fatalf("line missing run tag %q: %q", logger.run, line)
		}
	}
	if !strings.Contains(lines[0], "loaded 2 rules and 1 recipes") {
		t.Fatalf("unexpected load line: %q", lines[0])
	}
	if !strings.Contains(lines[1], "resolution complete: 3 missing") {
		t.Fatalf("unexpected resolution line: %q", lines[1])
	}
}

func TestLoggerAppendsAcrossRuns(t *testing.T) {
	projectDir := t.TempDir()
	for i := 0; i < 2; i++ {
		logger, err := New(projectDir)
		if err != nil {
			t.Fatalf("new logger: %v", err)
		}
		logger.ResolutionComplete(0)
		if err := logger.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	}
	contents := journalContents(t, projectDir)
	if got := strings.Count(contents, "resolution complete: nothing missing"); got != 2 {
		t.Fatalf("expected 2 appended entries, got %d: %q", got, contents)
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.ResolutionFailed(os.ErrNotExist)
	logger.CheckComplete(0, 0)
	if err := logger.Close(); err != nil {
		t.Fatalf("close nil logger: %v", err)
	}
}
