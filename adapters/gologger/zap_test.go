package gologger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerWritesStructuredFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewZapLogger(zap.New(core))

	logger.WithFields(map[string]any{"category": "authentication"}).
		Error("Unable to send notification", "status_code", 401)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.ErrorLevel {
		t.Fatalf("expected error level, got %s", entry.Level)
	}
	fields := entry.ContextMap()
	if fields["category"] != "authentication" {
		t.Fatalf("expected category field, got %v", fields)
	}
	if fields["status_code"] != int64(401) {
		t.Fatalf("expected status_code field, got %v (%T)", fields["status_code"], fields["status_code"])
	}
}

func TestZapLoggerFatalDoesNotExit(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewZapLogger(zap.New(core)).WithContext(context.Background()).Fatal("boom")
	if logs.Len() != 1 || logs.All()[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected fatal to be logged at error level")
	}
}

func TestZapProviderNamesLoggers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	Named(NewZapProvider(zap.New(core)), "worker").Info("started")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].LoggerName != "notifiarr.worker" {
		t.Fatalf("expected notifiarr.worker logger, got %q", entries[0].LoggerName)
	}
}

func TestNewZapLoggerNilFallsBackToNop(t *testing.T) {
	NewZapLogger(nil).Info("ignored")
	NewZapProvider(nil).GetLogger("x").Info("ignored")
}
