package htmlmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Stats captures metrics about a conversion.
type Stats struct {
	// Size metrics
	InputBytes  int `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes int `json:"output_bytes" yaml:"output_bytes"`

	// ElementsSeen counts emitted elements by tag name.
	ElementsSeen map[string]int `json:"elements_seen" yaml:"elements_seen"`

	LinksFlattened    int `json:"links_flattened" yaml:"links_flattened"`
	BoldRunsCollapsed int `json:"bold_runs_collapsed" yaml:"bold_runs_collapsed"`

	// Timing, serialized in milliseconds
	ParseDuration     time.Duration `json:"-" yaml:"-"`
	FlattenDuration   time.Duration `json:"-" yaml:"-"`
	EmitDuration      time.Duration `json:"-" yaml:"-"`
	NormalizeDuration time.Duration `json:"-" yaml:"-"`
	TotalDuration     time.Duration `json:"-" yaml:"-"`
}

// statsRecord is the serialized form of Stats.
type statsRecord struct {
	InputBytes        int            `json:"input_bytes" yaml:"input_bytes"`
	OutputBytes       int            `json:"output_bytes" yaml:"output_bytes"`
	ElementsSeen      map[string]int `json:"elements_seen" yaml:"elements_seen"`
	LinksFlattened    int            `json:"links_flattened" yaml:"links_flattened"`
	BoldRunsCollapsed int            `json:"bold_runs_collapsed" yaml:"bold_runs_collapsed"`
	ParseMs           float64        `json:"parse_duration_ms" yaml:"parse_duration_ms"`
	FlattenMs         float64        `json:"flatten_duration_ms" yaml:"flatten_duration_ms"`
	EmitMs            float64        `json:"emit_duration_ms" yaml:"emit_duration_ms"`
	NormalizeMs       float64        `json:"normalize_duration_ms" yaml:"normalize_duration_ms"`
	TotalMs           float64        `json:"total_duration_ms" yaml:"total_duration_ms"`
}

func (s Stats) record() statsRecord {
	return statsRecord{
		InputBytes:        s.InputBytes,
		OutputBytes:       s.OutputBytes,
		ElementsSeen:      s.ElementsSeen,
		LinksFlattened:    s.LinksFlattened,
		BoldRunsCollapsed: s.BoldRunsCollapsed,
		ParseMs:           milliseconds(s.ParseDuration),
		FlattenMs:         milliseconds(s.FlattenDuration),
		EmitMs:            milliseconds(s.EmitDuration),
		NormalizeMs:       milliseconds(s.NormalizeDuration),
		TotalMs:           milliseconds(s.TotalDuration),
	}
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// MarshalJSON writes durations as fractional milliseconds.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.record())
}

// MarshalYAML writes durations as fractional milliseconds.
func (s Stats) MarshalYAML() (any, error) {
	return s.record(), nil
}

// NewStats creates a new Stats instance with initialized maps.
func NewStats() *Stats {
	return &Stats{
		ElementsSeen: make(map[string]int),
	}
}

// RecordElement counts one element.
func (s *Stats) RecordElement(tag string) {
	s.ElementsSeen[strings.ToLower(tag)]++
}

// TotalElements returns the number of elements seen.
func (s *Stats) TotalElements() int {
	total := 0
	for _, count := range s.ElementsSeen {
		total += count
	}
	return total
}

// String returns a human-readable summary of the stats.
func (s *Stats) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Size: %s -> %s\n",
		humanize.Bytes(uint64(s.InputBytes)), humanize.Bytes(uint64(s.OutputBytes))))
	sb.WriteString(fmt.Sprintf("Elements: %d\n", s.TotalElements()))

	if len(s.ElementsSeen) > 0 {
		tags := make([]string, 0, len(s.ElementsSeen))
		for tag := range s.ElementsSeen {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		parts := make([]string, 0, len(tags))
		for _, tag := range tags {
			parts = append(parts, fmt.Sprintf("%s=%d", tag, s.ElementsSeen[tag]))
		}
		sb.WriteString("By tag: ")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}

	if s.LinksFlattened > 0 {
		sb.WriteString(fmt.Sprintf("Links flattened: %d\n", s.LinksFlattened))
	}
	if s.BoldRunsCollapsed > 0 {
		sb.WriteString(fmt.Sprintf("Bold runs collapsed: %d\n", s.BoldRunsCollapsed))
	}

	sb.WriteString(fmt.Sprintf("Timing: parse=%v, flatten=%v, emit=%v, normalize=%v, total=%v\n",
		s.ParseDuration.Round(time.Microsecond),
		s.FlattenDuration.Round(time.Microsecond),
		s.EmitDuration.Round(time.Microsecond),
		s.NormalizeDuration.Round(time.Microsecond),
		s.TotalDuration.Round(time.Microsecond)))

	return sb.String()
}

// Warning represents a non-fatal issue encountered during conversion.
type Warning struct {
	Phase   string `json:"phase" yaml:"phase"`     // "parse", "flatten", "emit", "normalize"
	Message string `json:"message" yaml:"message"` // Human-readable description
	Context string `json:"context" yaml:"context"`
}

// String returns a formatted warning message.
func (w Warning) String() string {
	if w.Context != "" {
		return fmt.Sprintf("[%s] %s (context: %s)", w.Phase, w.Message, w.Context)
	}
	return fmt.Sprintf("[%s] %s", w.Phase, w.Message)
}

// Result contains the output of a conversion.
type Result struct {
	// Content is the Markdown output. It is empty when Error is set.
	Content string `json:"content" yaml:"content"`

	// Stats contains metrics about what was done.
	Stats *Stats `json:"stats" yaml:"stats"`

	// Warnings contains non-fatal issues encountered.
	Warnings []Warning `json:"warnings,omitempty" yaml:"warnings,omitempty"`

	// Error is set when the input could not be read.
	Error error `json:"-" yaml:"-"`
}

// AddWarning adds a warning to the result.
func (r *Result) AddWarning(phase, message, context string) {
	r.Warnings = append(r.Warnings, Warning{
		Phase:   phase,
		Message: message,
		Context: context,
	})
}

// HasWarnings returns true if any warnings were recorded.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// StatsConverter is implemented by converters that can report stats.
type StatsConverter interface {
	Converter
	ConvertWithStats(html string) *Result
}
