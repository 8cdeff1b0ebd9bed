package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsComponentAndAttrs(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger = logger.With(String(FieldComponent, "worker.invoices"))
	logger.Info("dispatch outcome",
		String(FieldFile, "a.pdf"),
		Bool("success", true),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO worker.invoices: dispatch outcome") {
		t.Fatalf("unexpected line: %q", line)
	}
	if !strings.Contains(line, "file=a.pdf") || !strings.Contains(line, "success=true") {
		t.Fatalf("missing attrs: %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be rendered as prefix, not attr: %q", line)
	}
}

func TestConsoleHandlerQuotesAwkwardValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Warn("relocate degraded", String("reason", "copy ok, delete failed"))

	if !strings.Contains(buf.String(), `reason="copy ok, delete failed"`) {
		t.Fatalf("expected quoted value: %q", buf.String())
	}
}

func TestConsoleHandlerHonorsLevel(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be suppressed at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn should be emitted: %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("bogus"); got != slog.LevelInfo {
		t.Fatalf("unexpected level: %v", got)
	}
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Fatalf("unexpected level: %v", got)
	}
}
