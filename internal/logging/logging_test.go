package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"trace", logrus.TraceLevel},
		{"debug", logrus.DebugLevel},
		{"info", logrus.InfoLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"bogus", logrus.InfoLevel},
	}
	for _, tt := range tests {
		tt := tt
		t.Run("level_"+tt.level, func(t *testing.T) {
			t.Parallel()
			log, err := New(Options{Level: tt.level})
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if log.GetLevel() != tt.want {
				t.Errorf("GetLevel = %v, want %v", log.GetLevel(), tt.want)
			}
		})
	}
}

func TestNewLogFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "rtc.log")
	log, err := New(Options{Level: "info", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.WithField("kernel", "r2c_copy_dim1_sp_CI").Info("compiled")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "compiled") || !strings.Contains(out, "r2c_copy_dim1_sp_CI") {
		t.Errorf("log file missing entry, got %q", out)
	}
}

func TestNewLogFileAppends(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rtc.log")
	for _, msg := range []string{"first", "second"} {
		log, err := New(Options{Level: "info", File: path})
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		log.Info(msg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Errorf("log file should hold both runs, got %q", out)
	}
}

func TestNewBadFilePath(t *testing.T) {
	t.Parallel()

	// A directory standing where the log file should go makes OpenFile
	// fail.
	dir := t.TempDir()
	if _, err := New(Options{Level: "info", File: dir}); err == nil {
		t.Fatal("New succeeded with a directory as the log file")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	log := Discard()
	if log == nil {
		t.Fatal("Discard returned nil")
	}
	// Must not panic or write anywhere visible.
	log.WithField("kernel", "transpose_tile64x16_dim2_sp").Error("dropped")
}
