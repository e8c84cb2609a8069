package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"WARN":    zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestInitJSON(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var buf bytes.Buffer
	Init("debug", "json", &buf)

	// loggers fetched from a bare context fall back to the global one
	zerolog.Ctx(context.Background()).Debug().Str("query_id", "q1").Msg("routed")
	logger := New("server")
	logger.Trace().Msg("dropped")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expect a single json line, got %q: %v", buf.String(), err)
	}
	if line["query_id"] != "q1" || line["message"] != "routed" || line["level"] != "debug" {
		t.Errorf("unexpected entry %v", line)
	}
}
