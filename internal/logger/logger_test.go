package logger

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNewWithWriterProduction(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Debug().Msg("hidden")
	log.Info().Str("plate", "AA-00-AA").Msg("vehicle created")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["message"] != "vehicle created" || entry["plate"] != "AA-00-AA" {
		t.Errorf("entry = %v", entry)
	}
	if entry["service"] != "fleet-service" {
		t.Errorf("service field = %v", entry["service"])
	}
	if _, ok := entry["time"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestNewWithWriterDevelopment(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("development", &buf)

	log.Debug().Msg("visible")
	if !bytes.Contains(buf.Bytes(), []byte("visible")) {
		t.Errorf("debug output missing: %q", buf.String())
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Error("development output should be console formatted")
	}
}
