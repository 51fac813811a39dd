package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestForAddsComponentAttr(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, true)
	defer Configure(nil, false)

	For("capture").Info("started", "pid", 123)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if rec["component"] != "capture" {
		t.Fatalf("component = %v, want capture", rec["component"])
	}
	if rec["msg"] != "started" {
		t.Fatalf("msg = %v", rec["msg"])
	}
}

func TestConfigureTextMode(t *testing.T) {
	var buf bytes.Buffer
	Configure(&buf, false)
	defer Configure(nil, false)

	For("gate").Warn("dropped segment")
	if !strings.Contains(buf.String(), "dropped segment") {
		t.Fatalf("expected text output to contain message, got %q", buf.String())
	}
}
