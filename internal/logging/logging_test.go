package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRespectsVerbosity(t *testing.T) {
	var buf bytes.Buffer
	quiet := New(&buf, false)
	quiet.Debug("hidden")
	quiet.Warn("shown", "key", "value")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug output leaked at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Fatalf("missing warn output: %q", out)
	}

	buf.Reset()
	New(&buf, true).Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("expected debug output when verbose: %q", buf.String())
	}
}

func TestNewDisablesColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Error("boom")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no ANSI escapes: %q", buf.String())
	}
}
