package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/giygas/pharmacology-api/config"
)

// resetForTest installs a global logger writing into dir and restores the
// previous one when the test ends.
func resetForTest(t *testing.T, dir string, retentionWeeks int, maxSize int64) {
	t.Helper()
	previous := DefaultLoggingService
	DefaultLoggingService = nil

	InitLogger(Options{
		Dir:            dir,
		RetentionWeeks: retentionWeeks,
		MaxFileSize:    maxSize,
		Env:            config.EnvTest,
	})

	t.Cleanup(func() {
		Shutdown()
		DefaultLoggingService = previous
		if previous != nil {
			slog.SetDefault(previous.Logger)
		}
	})
}

func countLogFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read log directory: %v", err)
	}
	count := 0
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), logFilePrefix) && strings.HasSuffix(entry.Name(), ".log") {
			count++
		}
	}
	return count
}

func TestRotatingLogger(t *testing.T) {
	tempDir := t.TempDir()
	rl := NewRotatingLogger(tempDir, 1)

	if _, err := rl.Write([]byte("Test log message")); err != nil {
		t.Fatalf("Failed to write to log: %v", err)
	}

	expected := filepath.Join(tempDir, logFilePrefix+getWeekKey(time.Now())+".log")
	content, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(content), "Test log message") {
		t.Errorf("Log file does not contain test message: %s", string(content))
	}

	if err := rl.Close(); err != nil {
		t.Fatalf("Failed to close logger: %v", err)
	}
}

func TestGetWeekKey(t *testing.T) {
	tests := []struct {
		date     time.Time
		expected string
	}{
		{time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC), "2026-W42"},
		{time.Date(2027, 1, 1, 12, 0, 0, 0, time.UTC), "2026-W53"},
	}

	for _, tt := range tests {
		if got := getWeekKey(tt.date); got != tt.expected {
			t.Errorf("getWeekKey(%v) = %s, want %s", tt.date, got, tt.expected)
		}
	}
}

func TestRotatingLoggerWithSizeLimit(t *testing.T) {
	tempDir := t.TempDir()
	rl := NewRotatingLoggerWithSizeLimit(tempDir, 1, 100)
	defer func() { _ = rl.Close() }()

	if _, err := rl.Write([]byte("Small message")); err != nil {
		t.Fatalf("Failed to write small message: %v", err)
	}

	large := strings.Repeat("A long log line that pushes the file over its limit. ", 3)
	if _, err := rl.Write([]byte(large)); err != nil {
		t.Fatalf("Failed to write large message: %v", err)
	}

	if got := countLogFiles(t, tempDir); got < 2 {
		t.Errorf("Expected at least 2 log files due to size rotation, got %d", got)
	}

	numbered := filepath.Join(tempDir, logFilePrefix+getWeekKey(time.Now())+"_01.log")
	if _, err := os.Stat(numbered); err != nil {
		t.Errorf("Expected numbered file %s: %v", numbered, err)
	}
}

func TestRotatingLoggerReusesFileBelowLimit(t *testing.T) {
	tempDir := t.TempDir()
	base := filepath.Join(tempDir, logFilePrefix+getWeekKey(time.Now())+".log")
	if err := os.WriteFile(base, []byte("existing\n"), 0o644); err != nil {
		t.Fatalf("Failed to seed log file: %v", err)
	}

	rl := NewRotatingLoggerWithSizeLimit(tempDir, 1, 1024)
	if _, err := rl.Write([]byte("appended\n")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	_ = rl.Close()

	content, _ := os.ReadFile(base)
	if string(content) != "existing\nappended\n" {
		t.Errorf("Expected append to existing file, got %q", string(content))
	}
	if got := countLogFiles(t, tempDir); got != 1 {
		t.Errorf("Expected 1 log file, got %d", got)
	}
}

func TestRotatingLoggerInvalidDirectory(t *testing.T) {
	rl := NewRotatingLogger("/invalid/directory/that/does/not/exist", 1)
	if _, err := rl.Write([]byte("lost")); err == nil {
		t.Error("Expected error writing to invalid directory")
	}
}

func TestCleanupOldLogs(t *testing.T) {
	tempDir := t.TempDir()
	rl := NewRotatingLogger(tempDir, 1)
	defer func() { _ = rl.Close() }()

	old := filepath.Join(tempDir, logFilePrefix+"2020-W01.log")
	unrelated := filepath.Join(tempDir, "other.log")
	for _, path := range []string{old, unrelated} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("Failed to create %s: %v", path, err)
		}
		past := time.Now().Add(-30 * 24 * time.Hour)
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("Failed to age %s: %v", path, err)
		}
	}

	if _, err := rl.Write([]byte("current")); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := rl.cleanupOldLogs(); err != nil {
		t.Fatalf("cleanupOldLogs failed: %v", err)
	}

	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("Expected old log file to be removed")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Error("Expected unrelated file to be kept")
	}
	if got := countLogFiles(t, tempDir); got != 1 {
		t.Errorf("Expected only the current log file, got %d", got)
	}
}

func TestRotatingLoggerConcurrentWrites(t *testing.T) {
	tempDir := t.TempDir()
	rl := NewRotatingLoggerWithSizeLimit(tempDir, 1, 2000)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, _ = rl.Write([]byte("concurrent log line\n"))
			}
		}()
	}
	wg.Wait()
	_ = rl.Close()

	var total int64
	entries, _ := os.ReadDir(tempDir)
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			t.Fatalf("Failed to stat %s: %v", entry.Name(), err)
		}
		if info.Size() > 2000 {
			t.Errorf("File %s exceeds size limit: %d", entry.Name(), info.Size())
		}
		total += info.Size()
	}

	if want := int64(200 * len("concurrent log line\n")); total != want {
		t.Errorf("Expected %d bytes across files, got %d", want, total)
	}
}

func TestGlobalLoggingService(t *testing.T) {
	tempDir := t.TempDir()
	resetForTest(t, tempDir, 2, 100*1024*1024)

	if DefaultLoggingService == nil {
		t.Fatal("DefaultLoggingService was not initialized")
	}

	Debug("debug reaches the file")
	Info("Test message from global logger")

	expected := filepath.Join(tempDir, logFilePrefix+getWeekKey(time.Now())+".log")
	content, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("Expected log file %s: %v", expected, err)
	}
	if !strings.Contains(string(content), "debug reaches the file") {
		t.Errorf("File handler should keep debug records, got: %s", string(content))
	}
}

func TestLoggerWithoutDirectory(t *testing.T) {
	logger, rotating := SetupLogger(Options{Env: config.EnvTest})
	if logger == nil {
		t.Fatal("Expected console logger")
	}
	if rotating != nil {
		t.Error("Expected no rotating file without a directory")
	}
}

func TestPackageFunctionsWithoutInit(t *testing.T) {
	previous := DefaultLoggingService
	DefaultLoggingService = nil
	defer func() { DefaultLoggingService = previous }()

	Info("fallback info")
	Warn("fallback warn")
	Error("fallback error")
	Debug("fallback debug")
}

func TestMultiHandler(t *testing.T) {
	var first, second strings.Builder
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&first, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewTextHandler(&second, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}}

	logger := slog.New(h).With("component", "test").WithGroup("grp")
	logger.Info("only second", "k", "v")
	logger.Warn("both")

	if strings.Contains(first.String(), "only second") {
		t.Errorf("First handler should skip info records, got: %s", first.String())
	}
	if !strings.Contains(first.String(), "both") || !strings.Contains(second.String(), "both") {
		t.Error("Warn record should reach both handlers")
	}
	if !strings.Contains(second.String(), "component=test") || !strings.Contains(second.String(), "grp.k=v") {
		t.Errorf("Attrs and groups should propagate, got: %s", second.String())
	}
}
