package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	Init("debug")
	if Log == nil {
		t.Fatal("expected logger to be initialized")
	}
	Debug("debug message")
	Info("info message")
}

func TestInitWithConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "router.log")
	InitWithConfig(Config{
		Level:    "info",
		Format:   "json",
		Output:   "file",
		FilePath: path,
	})
	defer Init("info")

	Info("written to file", "key", "value")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not created: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log line missing from file: %q", data)
	}
	if !strings.Contains(string(data), `"key":"value"`) {
		t.Errorf("structured attribute missing: %q", data)
	}
}

func TestWithHelpers(t *testing.T) {
	Init("info")
	if WithRequestID("abc") == nil {
		t.Error("expected derived logger")
	}
	if WithTest(7) == nil {
		t.Error("expected derived logger")
	}
}
