package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := WithRun(New(&buf, true))
	logger.Debug("stage started", "stage", "validating")

	out := buf.String()
	if !strings.Contains(out, "stage=validating") {
		t.Errorf("missing attribute in %q", out)
	}
	if !strings.Contains(out, "run=") {
		t.Errorf("missing run id in %q", out)
	}
}

func TestNewQuiet(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Error("should not appear")
	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}
}

func TestNewRunID(t *testing.T) {
	a, err := NewRunID()
	if err != nil {
		t.Fatalf("NewRunID() error: %v", err)
	}
	b, _ := NewRunID()
	if len(a) != 10 {
		t.Errorf("len(run id) = %d, want 10", len(a))
	}
	if a == b {
		t.Errorf("two run ids collided: %q", a)
	}
	if strings.Trim(a, runIDAlphabet) != "" {
		t.Errorf("run id %q uses characters outside the alphabet", a)
	}
}
