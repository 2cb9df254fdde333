package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"ocwsync/internal/config"
	"ocwsync/internal/logging"
	"ocwsync/internal/services"
)

func TestNewFromConfigWritesRunLog(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, path, err := logging.NewFromConfig(&cfg, "0123456789abcdef")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(path), logging.RunLogPrefix) || !strings.HasSuffix(path, "-01234567.log") {
		t.Fatalf("unexpected run log path %q", path)
	}
	logger.Info("hello run log")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(content), "hello run log") {
		t.Fatalf("expected message in run log, got %q", content)
	}
}

func TestConsoleLoggerOmitsSourceForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller", logging.String(logging.FieldComponent, "archive"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(content), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
	if !strings.Contains(string(content), "archive: message without caller") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if strings.Contains(string(content), "\x1b[") {
		t.Fatalf("expected no color codes in file output, got %q", content)
	}
}

func TestConsoleLoggerIncludesSourceForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerUsesContextFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithCourse(context.Background(), "18-06")
	ctx = services.WithStage(ctx, "classify")
	ctx = services.WithRunID(ctx, "run-1")
	logging.WithContext(ctx, logger).Info("classified")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	for _, fragment := range []string{`"course":"18-06"`, `"stage":"classify"`, `"run_id":"run-1"`, `"level":"info"`} {
		if !strings.Contains(string(content), fragment) {
			t.Fatalf("expected %s in %s", fragment, content)
		}
	}
}

func TestUnsupportedFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	logging.WarnWithContext(logger, "archive url missing", "archive_url_missing")
	out := buf.String()
	for _, fragment := range []string{"event_type=archive_url_missing", "error_hint=", "impact="} {
		if !strings.Contains(out, fragment) {
			t.Fatalf("expected %q in %q", fragment, out)
		}
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, logging.RunLogPrefix+"old.log")
	current := filepath.Join(dir, logging.RunLogPrefix+"current.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, current, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().AddDate(0, 0, -40)
	for _, path := range []string{old, current, other} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	removed := logging.CleanupOldLogs(logging.NewNop(), dir, 30, current)
	if removed != 1 {
		t.Fatalf("expected one removal, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, stat err=%v", err)
	}
	for _, path := range []string{current, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}
