package htmlmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestConvertWithStats(t *testing.T) {
	html := `<p>one <b>two</b></p><p>three <a href="x">four</a></p>`
	result := New(nil).ConvertWithStats(html)
	if result.Error != nil {
		t.Fatalf("unexpected error: %v", result.Error)
	}

	s := result.Stats
	if s.InputBytes != len(html) {
		t.Errorf("InputBytes = %d, want %d", s.InputBytes, len(html))
	}
	if s.OutputBytes != len(result.Content) {
		t.Errorf("OutputBytes = %d, want %d", s.OutputBytes, len(result.Content))
	}
	if s.ElementsSeen["p"] != 2 || s.ElementsSeen["b"] != 1 {
		t.Errorf("unexpected element counts: %v", s.ElementsSeen)
	}
	if s.TotalElements() != 3 {
		t.Errorf("TotalElements() = %d, want 3", s.TotalElements())
	}
	if s.LinksFlattened != 1 {
		t.Errorf("LinksFlattened = %d, want 1", s.LinksFlattened)
	}
	if result.HasWarnings() {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}
}

func TestStatsString(t *testing.T) {
	s := NewStats()
	s.InputBytes = 100
	s.OutputBytes = 40
	s.RecordElement("P")
	s.RecordElement("em")
	s.LinksFlattened = 2

	out := s.String()
	for _, want := range []string{"Size: 100 B -> 40 B", "em=1, p=1", "Links flattened: 2", "Timing:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Bold runs collapsed") {
		t.Error("zero counters should be omitted")
	}
}

func TestStatsString_HumanSizes(t *testing.T) {
	s := NewStats()
	s.InputBytes = 2_500_000
	s.OutputBytes = 1_200
	if out := s.String(); !strings.Contains(out, "Size: 2.5 MB -> 1.2 kB") {
		t.Errorf("unexpected size line in:\n%s", out)
	}
}

func TestStatsMarshal_Milliseconds(t *testing.T) {
	s := NewStats()
	s.InputBytes = 10
	s.ParseDuration = 1500 * time.Microsecond
	s.TotalDuration = 3 * time.Millisecond

	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if rec["parse_duration_ms"] != 1.5 || rec["total_duration_ms"] != float64(3) {
		t.Errorf("durations not in milliseconds: %s", data)
	}
	if rec["input_bytes"] != float64(10) {
		t.Errorf("input_bytes = %v", rec["input_bytes"])
	}

	out, err := yaml.Marshal(s)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	var yrec map[string]any
	if err := yaml.Unmarshal(out, &yrec); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if yrec["parse_duration_ms"] != 1.5 || yrec["total_duration_ms"] != 3 {
		t.Errorf("durations not in milliseconds:\n%s", out)
	}
}

func TestWarningString(t *testing.T) {
	w := Warning{Phase: "normalize", Message: "collapsed", Context: "2 occurrences"}
	if got := w.String(); got != "[normalize] collapsed (context: 2 occurrences)" {
		t.Errorf("unexpected warning string %q", got)
	}
	w.Context = ""
	if got := w.String(); got != "[normalize] collapsed" {
		t.Errorf("unexpected warning string %q", got)
	}
}
