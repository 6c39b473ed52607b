package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	i := tm.Begin("parse")
	tm.End(i, "3 files")
	j := tm.Begin("resolve")
	tm.End(j, "")
	tm.End(99, "ignored")

	rep := tm.Report()
	if len(rep.Phases) != 2 || rep.Phases[0].Note != "3 files" {
		t.Fatalf("unexpected report %+v", rep)
	}
	if s := tm.Summary(); !strings.Contains(s, "parse") || !strings.Contains(s, "total") {
		t.Fatalf("summary missing phases:\n%s", s)
	}
}
