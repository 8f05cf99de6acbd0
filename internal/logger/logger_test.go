package logger

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	err := Init(Config{
		Debug:     false,
		ConfigDir: configDir,
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	logDir := filepath.Join(configDir, "logs")
	if Path() != filepath.Join(logDir, "coffeematch.log") {
		t.Errorf("Path() = %q", Path())
	}
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("Log directory was not created: %s", logDir)
	}

	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")

	if _, err := os.Stat(filepath.Join(logDir, "coffeematch.log")); os.IsNotExist(err) {
		t.Error("log file was not created after a warning was written")
	}
}

func TestInitConsoleMode(t *testing.T) {
	err := Init(Config{
		Console:   true,
		ConfigDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger in console mode: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}
	if got := Logger.GetLevel().String(); got != "info" {
		t.Errorf("console level = %q, want info", got)
	}
}

func TestInitDebugMode(t *testing.T) {
	err := Init(Config{
		Debug:     true,
		ConfigDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	if got := Logger.GetLevel().String(); got != "debug" {
		t.Errorf("debug level = %q, want debug", got)
	}

	Debug("Test debug message in debug mode")
}

func TestInitFileOnlyKeepsDebugLevel(t *testing.T) {
	err := Init(Config{
		Debug:     true,
		FileOnly:  true,
		ConfigDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	if got := Logger.GetLevel().String(); got != "debug" {
		t.Errorf("file-only level = %q, want debug", got)
	}
}

func TestLogFunctionsWithoutInit(t *testing.T) {
	Logger = nil

	// These should not panic when Logger is nil
	Debug("Test debug message")
	Info("Test info message")
	Warn("Test warning message")
	Error("Test error message")
}
