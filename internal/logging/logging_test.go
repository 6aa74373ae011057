package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/me/dagsim/pkg/model"
)

func TestTextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("info", "text", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}

	logger.With("component", "runner").Info("execution finished", "time", 12.5, "steps", 3)

	out := buf.String()
	for _, want := range []string{"execution finished", "component=runner", "time=12.5", "steps=3"} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q: %s", want, out)
		}
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("info", "json", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}

	logger.Info("task assigned", "task", "stage_in", "host", "worker1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if record["msg"] != "task assigned" {
		t.Errorf("msg = %v", record["msg"])
	}
	if record["host"] != "worker1" {
		t.Errorf("host = %v", record["host"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter("warn", "text", &buf)
	if err != nil {
		t.Fatalf("NewWithWriter: %v", err)
	}

	logger.Debug("scheduling step")
	logger.Info("execution finished")
	logger.Warn("graph not drained")

	out := buf.String()
	if strings.Contains(out, "execution finished") {
		t.Errorf("info record passed a warn filter: %s", out)
	}
	if !strings.Contains(out, "graph not drained") {
		t.Errorf("warn record missing: %s", out)
	}
}

func TestUnknownLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	for _, tt := range []struct{ level, format string }{
		{"verbose", "text"},
		{"", "text"},
		{"info", "xml"},
		{"info", ""},
	} {
		_, err := NewWithWriter(tt.level, tt.format, &buf)
		var ce *model.ConfigError
		if !errors.As(err, &ce) {
			t.Errorf("NewWithWriter(%q, %q): want ConfigError, got %v", tt.level, tt.format, err)
		}
	}
}
