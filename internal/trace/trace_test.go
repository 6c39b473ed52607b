package trace

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestLevelFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)

	Begin(tr, ScopePass, "resolve", 0).End("")
	Begin(tr, ScopeUnit, "Foo.java", 0).End("")
	Begin(tr, ScopeClass, "java/lang/Object", 0).End("")

	out := buf.String()
	if !strings.Contains(out, "pass resolve") || !strings.Contains(out, "unit Foo.java") {
		t.Fatalf("expected pass and unit events, got:\n%s", out)
	}
	if strings.Contains(out, "java/lang/Object") {
		t.Fatalf("class scope must be filtered at detail level:\n%s", out)
	}
}

func TestFatalBypassesLevel(t *testing.T) {
	ring := NewRingTracer(4, LevelError)
	Begin(ring, ScopeRun, "run", 0).End("")
	Fatal(ring, "Cycle.java", "cyclic inheritance involving Foo")
	events := ring.Snapshot()
	if len(events) != 1 || events[0].Kind != KindFatal {
		t.Fatalf("expected only the fatal event, got %+v", events)
	}
}

func TestRingWrapsOldestFirst(t *testing.T) {
	ring := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(ring, ScopeClass, name, "", 0)
	}
	got := ring.Snapshot()
	if len(got) != 3 || got[0].Name != "c" || got[2].Name != "e" {
		t.Fatalf("unexpected ring contents: %+v", got)
	}
}

func TestNDJSONAndMulti(t *testing.T) {
	var buf bytes.Buffer
	multi := NewMultiTracer(LevelDebug, NewStreamTracer(&buf, LevelDebug, FormatNDJSON), NewRingTracer(8, LevelDebug))
	Begin(multi, ScopeClass, "a/Foo", 0).WithExtra("members", "3").End("completed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected begin+end lines, got %d", len(lines))
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if ev["kind"] != "end" || ev["detail"] != "completed" {
		t.Fatalf("unexpected end event %v", ev)
	}
	if n := len(multi.Ring().Snapshot()); n != 2 {
		t.Fatalf("ring should mirror the stream, got %d events", n)
	}
}

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Level
		ok   bool
	}{
		{"off", LevelOff, true},
		{"PHASE", LevelPhase, true},
		{"debug", LevelDebug, true},
		{"verbose", LevelOff, false},
	} {
		got, err := ParseLevel(tc.in)
		if (err == nil) != tc.ok || got != tc.want {
			t.Fatalf("ParseLevel(%q) = %v, %v", tc.in, got, err)
		}
	}
}
