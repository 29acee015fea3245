package logger

import (
	"bytes"
	"strings"
	"testing"

	"log/slog"
)

func TestContextHandlerInjectsMetadata(t *testing.T) {
	buf := &bytes.Buffer{}
	inner := slog.NewTextHandler(buf, nil)
	log := slog.New(&contextHandler{inner: inner})

	ctx := WithRID(Background(), "42:7:9")
	ctx = WithUpdateMeta(ctx, 42, 9, 7)
	ctx = WithHandler(ctx, "menu")

	LogEvent(ctx, log.With("component", "tg"), slog.LevelInfo, "handler.handled",
		slog.String("status", "ok"),
	)

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log line")
	}
	for _, want := range []string{
		"component=tg",
		"event=handler.handled",
		"status=ok",
		"rid=42:7:9",
		"update_id=42",
		"chat_id=7",
		"user_id=9",
		"handler=menu",
	} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %s", want, line)
		}
	}
}

func TestContextHandlerDoesNotDuplicateAttrs(t *testing.T) {
	buf := &bytes.Buffer{}
	inner := slog.NewTextHandler(buf, nil)
	log := slog.New(&contextHandler{inner: inner})

	ctx := WithRID(Background(), "1:2:3")
	LogEvent(ctx, log, slog.LevelInfo, "rid.test",
		slog.String("rid", "explicit"),
	)

	line := buf.String()
	if strings.Count(line, "rid=") != 1 {
		t.Fatalf("expected a single rid attribute, got %s", line)
	}
	if !strings.Contains(line, "rid=explicit") {
		t.Fatalf("explicit rid should win, got %s", line)
	}
}

func TestBuildRID(t *testing.T) {
	if got := BuildRID(10, 20, 30); got != "10:20:30" {
		t.Fatalf("BuildRID = %s", got)
	}
}

func TestCompactRID(t *testing.T) {
	if got := CompactRID("123:456:789"); got != "123" {
		t.Fatalf("CompactRID = %s", got)
	}
	if got := CompactRID("opaque"); got != "opaque" {
		t.Fatalf("CompactRID passthrough = %s", got)
	}
}

func TestSanitizeLimit(t *testing.T) {
	if got := SanitizeLimit("a\nb\tc", 0); got != "a b c" {
		t.Fatalf("SanitizeLimit control chars = %q", got)
	}
	if got := SanitizeLimit("abcdef", 3); got != "abc" {
		t.Fatalf("SanitizeLimit truncation = %q", got)
	}
}
