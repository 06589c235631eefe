package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestStructuredOutput(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "DEBUG", "text")

	Info("tree connected", "share", `\\srv\data`, "tree_id", 5)

	out := buf.String()
	if !strings.Contains(out, "tree connected") {
		t.Errorf("message missing from output: %q", out)
	}
	if !strings.Contains(out, "tree_id=5") {
		t.Errorf("attribute missing from output: %q", out)
	}
	if !strings.Contains(out, "[INFO]") {
		t.Errorf("level tag missing from output: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "WARN", "text")

	Debug("hidden")
	Info("also hidden")
	Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("filtered levels leaked: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Errorf("warn message missing: %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "json")

	Info("negotiated", "dialect", "0x0302")

	out := buf.String()
	if !strings.Contains(out, `"msg":"negotiated"`) {
		t.Errorf("json output malformed: %q", out)
	}
	if !strings.Contains(out, `"dialect":"0x0302"`) {
		t.Errorf("json attribute missing: %q", out)
	}
}

func TestInvalidLevelIgnored(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "INFO", "text")

	SetLevel("BOGUS") // must not change anything
	Info("still works")

	if !strings.Contains(buf.String(), "still works") {
		t.Error("logger broken after invalid level")
	}
}
