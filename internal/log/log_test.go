package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warn":    LevelInfo,
		" error ": LevelError,
		"none":    LevelNone,
		"bogus":   LevelDebug,
	}
	for in, want := range cases {
		if got := LevelFromString(in); got != want {
			t.Fatalf("LevelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)
	l.Debugf("[SIM] hidden %d", 1)
	l.Infof("[SIM] shown %d", 2)
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
	if !strings.Contains(out, "[SIM] shown 2") {
		t.Fatalf("info line missing: %q", out)
	}
	if strings.Contains(out, "time=") {
		t.Fatalf("expected time attribute to be dropped: %q", out)
	}
}

func TestSetLevelAppliesToChildren(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelError)
	child := l.With("component", "voice")
	child.Infof("before")
	l.SetLevel(LevelDebug)
	child.Debugf("after")
	out := buf.String()
	if strings.Contains(out, "before") {
		t.Fatalf("info line emitted at error level: %q", out)
	}
	if !strings.Contains(out, "after") || !strings.Contains(out, "component=voice") {
		t.Fatalf("child did not follow parent level: %q", out)
	}
}

func TestNoneSilencesErrors(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelNone)
	l.Errorf("boom")
	l.Warnf("careful")
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}
