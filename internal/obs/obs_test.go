package obs

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestStdLogger_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	l := StdLogger{L: log.New(&buf, "", 0), Min: Warn, Pref: "test "}
	l.Logf(Info, "dropped %d", 1)
	l.Logf(Error, "kept %d", 2)
	got := buf.String()
	if strings.Contains(got, "dropped") {
		t.Fatalf("info line not filtered: %q", got)
	}
	if got != "test [ERROR] kept 2\n" {
		t.Fatalf("got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{"debug": Debug, "INFO": Info, "": Info, "warning": Warn, " error ": Error}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestMemMeter_LabelOrder(t *testing.T) {
	m := NewMemMeter()
	m.Counter("hits", 1, Label{"b", "2"}, Label{"a", "1"})
	m.Counter("hits", 2, Label{"a", "1"}, Label{"b", "2"})
	if got := m.CounterValue("hits", Label{"a", "1"}, Label{"b", "2"}); got != 3 {
		t.Fatalf("counter=%v, want 3", got)
	}
	m.Histogram("lat", 0.5)
	m.Histogram("lat", 1.5)
	if got := m.HistogramCount("lat"); got != 2 {
		t.Fatalf("histogram count=%d", got)
	}
	if _, ok := m.Snapshot()["hits{a=1,b=2}"]; !ok {
		t.Fatalf("snapshot missing series: %v", m.Snapshot())
	}
}
