package htmlmd

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		want      string
		collapsed int
	}{
		{"four stars", "x****y", "x**y", 1},
		{"eight stars", "a********b", "a**b", 3},
		{"no stars", "plain", "plain", 0},
		{"blank lines", "\n\n\na\n\n\n\nb\n\n", "a\n\nb", 0},
		{"whitespace-only lines", "a\n   \n\t\nb", "a\n\nb", 0},
		{"hard break kept", "a  \nb", "a  \nb", 0},
		{"code fence blank lines kept", "```\nx\n\n\ny\n```", "```\nx\n\n\ny\n```", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, collapsed := normalize(tt.in)
			if got != tt.want {
				t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if collapsed != tt.collapsed {
				t.Errorf("collapsed = %d, want %d", collapsed, tt.collapsed)
			}
		})
	}
}

func TestNormalizeResult(t *testing.T) {
	result := &Result{Stats: NewStats()}
	normalizeResult(result, "a****b\n\n\n\nc")
	if result.Content != "a**b\n\nc" {
		t.Errorf("Content = %q", result.Content)
	}
	if result.Stats.BoldRunsCollapsed != 1 || result.Stats.OutputBytes != len(result.Content) {
		t.Errorf("unexpected stats: %+v", result.Stats)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Context != "1 occurrences" {
		t.Errorf("Warnings = %v", result.Warnings)
	}

	clean := &Result{Stats: NewStats()}
	normalizeResult(clean, "plain")
	if clean.HasWarnings() {
		t.Errorf("unexpected warnings: %v", clean.Warnings)
	}
}
