package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestInitReturnsUsableLogger(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	log := Init(Options{Level: "debug", Output: &buf})
	log.Error().Str("stage", "boot").Msg("startup failed")

	out := buf.String()
	if !strings.Contains(out, "startup failed") || !strings.Contains(out, `"stage":"boot"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
}

func TestInitOnlyFirstCallWins(t *testing.T) {
	Reset()
	defer Reset()

	var first, second bytes.Buffer
	Init(Options{Output: &first})
	log := Init(Options{Output: &second})
	log.Info().Msg("routed")

	if second.Len() != 0 {
		t.Fatal("second Init must not rebuild the logger")
	}
	if !strings.Contains(first.String(), "routed") {
		t.Fatalf("log line missing from first writer: %s", first.String())
	}
}

func TestForTagsComponent(t *testing.T) {
	Reset()
	defer Reset()

	var buf bytes.Buffer
	Init(Options{Output: &buf})
	log := For("dispatcher")
	log.Info().Msg("worker started")

	if !strings.Contains(buf.String(), `"component":"dispatcher"`) {
		t.Fatalf("component tag missing: %s", buf.String())
	}
}

func TestGetPanicsBeforeInit(t *testing.T) {
	Reset()
	defer Reset()

	defer func() {
		if recover() == nil {
			t.Fatal("Get before Init must panic")
		}
	}()
	Get()
}
