package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_StampsServiceAndFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Output: &buf, Service: "storefront-session", Version: "test"})

	log.Info().Msg("dropped")
	log.Warn().Str("device", "dev-1").Msg("kept")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON entry, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "kept" || entry["service"] != "storefront-session" || entry["version"] != "test" || entry["device"] != "dev-1" {
		t.Fatalf("unexpected entry: %+v", entry)
	}
}

func TestInit_OnlyFirstCallApplies(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	Init(Options{Output: &second})

	cartLog := Component("cart")
	cartLog.Info().Msg("hello")
	if second.Len() != 0 {
		t.Fatalf("second Init must not replace the logger")
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(first.Bytes()), &entry); err != nil {
		t.Fatalf("invalid entry %q: %v", first.String(), err)
	}
	if entry["component"] != "cart" {
		t.Fatalf("expected component field, got %+v", entry)
	}
}

func TestGet_PanicsBeforeInit(t *testing.T) {
	Reset()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	Get()
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
