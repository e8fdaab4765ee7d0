package app

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/heartmarshall/khmer-content/internal/config"
	"github.com/heartmarshall/khmer-content/pkg/ctxutil"
)

func TestNewLogger_SetsDefault(t *testing.T) {
	logger := NewLogger(config.LogConfig{Level: "info", Format: "json"})

	if slog.Default().Handler() != logger.Handler() {
		t.Error("NewLogger should set the returned logger as slog default")
	}
}

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level    string
		wantSlog slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run("level_"+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerTo(&buf, config.LogConfig{Level: tt.level, Format: "text"})

			logger.Log(context.TODO(), tt.wantSlog, "should appear")
			if buf.Len() == 0 {
				t.Errorf("expected log output at level %v", tt.wantSlog)
			}

			buf.Reset()
			belowLevel := tt.wantSlog - 1
			logger.Log(context.TODO(), belowLevel, "should be suppressed")
			if buf.Len() != 0 {
				t.Errorf("level %v should suppress level %v, but got output: %s",
					tt.wantSlog, belowLevel, buf.String())
			}
		})
	}
}

func TestNewLogger_SourceOnlyForTextDebug(t *testing.T) {
	var debugBuf, infoBuf, jsonBuf bytes.Buffer

	NewLoggerTo(&debugBuf, config.LogConfig{Level: "debug", Format: "text"}).Info("hello")
	NewLoggerTo(&infoBuf, config.LogConfig{Level: "info", Format: "text"}).Info("hello")
	NewLoggerTo(&jsonBuf, config.LogConfig{Level: "debug", Format: "json"}).Info("hello")

	if !strings.Contains(debugBuf.String(), "source=") {
		t.Error("text debug format should include source")
	}
	if strings.Contains(infoBuf.String(), "source=") {
		t.Error("text info format should not include source")
	}

	var m map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := m["source"]; ok {
		t.Error("json format should not include source")
	}
}

func TestNewLogger_ContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, config.LogConfig{Level: "info", Format: "json"}).
		With("component", "seeder")

	ctx := ctxutil.WithCommand(ctxutil.WithRunID(context.Background(), "run-1"), "seed")
	logger.InfoContext(ctx, "lesson seeded")

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if m["run_id"] != "run-1" {
		t.Errorf("run_id = %v, want run-1", m["run_id"])
	}
	if m["command"] != "seed" {
		t.Errorf("command = %v, want seed", m["command"])
	}
	if m["component"] != "seeder" {
		t.Errorf("component = %v, want seeder (WithAttrs must keep the context handler)", m["component"])
	}
}

func TestNewLogger_NoContextAttrsWithoutRunID(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, config.LogConfig{Level: "info", Format: "text"}).Info("plain")

	if strings.Contains(buf.String(), "run_id=") {
		t.Errorf("unexpected run_id in %q", buf.String())
	}
}
