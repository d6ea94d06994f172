package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Info, Format: FormatJSON, App: "vet-appointments", Out: &buf})

	log.With(map[string]any{"user_id": "u-1"}).Warn("agenda fetch failed", map[string]any{
		"error": errors.New("boom"),
		"":      "dropped",
	})

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one json line, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "warn" || entry["message"] != "agenda fetch failed" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["app"] != "vet-appointments" || entry["user_id"] != "u-1" || entry["error"] != "boom" {
		t.Fatalf("missing fields: %v", entry)
	}
	if _, ok := entry[""]; ok {
		t.Fatalf("empty keys should be dropped")
	}
}

func TestNew_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: Warn, Format: FormatJSON, Out: &buf})

	log.Debug("debug", nil)
	log.Info("info", nil)
	if buf.Len() != 0 {
		t.Fatalf("below-level messages should be dropped, got %q", buf.String())
	}
	log.Error("error", nil)
	if !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected error entry, got %q", buf.String())
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	New(Options{Level: Debug, Out: &buf}).Info("http request", map[string]any{"status": 200})

	out := buf.String()
	if !strings.Contains(out, "http request") || !strings.Contains(out, "status=200") {
		t.Fatalf("unexpected text output: %q", out)
	}
}

func TestParseLevelAndFormat(t *testing.T) {
	cases := map[string]Level{"debug": Debug, "": Info, "WARNING": Warn, "error": Error, "verbose": Info}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
	if ParseFormat("JSON") != FormatJSON || ParseFormat("pretty") != FormatText {
		t.Fatalf("unexpected format parsing")
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	log.With(map[string]any{"k": "v"}).Error("ignored", map[string]any{"error": errors.New("x")})
}
