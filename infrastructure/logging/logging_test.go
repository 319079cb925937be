package logging

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// testLogger creates a logger that writes to a buffer for testing.
func testLogger() (*bolt.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	handler := bolt.NewJSONHandler(buf)
	logger := bolt.New(handler).SetLevel(bolt.TRACE)
	return logger, buf
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()

	if config.Level != "info" {
		t.Errorf("Level = %s, want info", config.Level)
	}
	if config.Format != "console" {
		t.Errorf("Format = %s, want console", config.Format)
	}
	if config.Output != os.Stdout {
		t.Errorf("Output = %v, want os.Stdout", config.Output)
	}
}

func TestProductionConfig(t *testing.T) {
	t.Parallel()

	config := ProductionConfig()

	if config.Format != "json" {
		t.Errorf("Format = %s, want json", config.Format)
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bolt.Level
	}{
		{"trace", bolt.TRACE},
		{"debug", bolt.DEBUG},
		{"info", bolt.INFO},
		{"warn", bolt.WARN},
		{"error", bolt.ERROR},
		{"unknown", bolt.INFO}, // Default
		{"", bolt.INFO},        // Empty defaults to info
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()

	event := logger.Info()
	event = EpisodeID("ep-1")(event)
	event = Step(3)(event)
	event = Strategy("reflex")(event)
	event = Percept("cloudy")(event)
	event = Outcome("no_applicable_rule")(event)
	event = Duration(250 * time.Millisecond)(event)
	event = ErrorField(errors.New("no applicable rule"))(event)
	event.Msg("advance")

	out := buf.String()
	for _, want := range []string{"ep-1", "reflex", "cloudy", "no_applicable_rule", "duration_ms", "advance"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestErrorField_NilError(t *testing.T) {
	t.Parallel()

	logger, buf := testLogger()

	event := logger.Info()
	event = ErrorField(nil)(event)
	event.Msg("no error")

	if strings.Contains(buf.String(), "error") {
		t.Errorf("nil error should not add an error field: %s", buf.String())
	}
}

func TestGet_InitializesDefault(t *testing.T) {
	if logger := Get(); logger == nil {
		t.Fatal("Get() returned nil")
	}
}
