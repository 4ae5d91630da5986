package htmlmd

import (
	"fmt"
	"strings"
	"time"
)

// normalizeResult normalizes s into result's content, recording the time
// taken and a warning when strong runs were collapsed.
func normalizeResult(result *Result, s string) {
	start := time.Now()
	out, collapsed := normalize(s)
	result.Stats.BoldRunsCollapsed = collapsed
	result.Stats.NormalizeDuration = time.Since(start)
	if collapsed > 0 {
		result.AddWarning("normalize", "collapsed empty strong runs", fmt.Sprintf("%d occurrences", collapsed))
	}
	result.Content = out
	result.Stats.OutputBytes = len(out)
}

// normalize collapses "****" runs left by adjacent or empty strong wraps and
// tidies blank lines. It returns the cleaned text and the number of runs
// collapsed.
func normalize(s string) (string, int) {
	collapsed := 0
	for strings.Contains(s, "****") {
		collapsed += strings.Count(s, "****")
		s = strings.ReplaceAll(s, "****", "**")
	}
	return cleanMarkdownOutput(s), collapsed
}

// cleanMarkdownOutput allows at most one blank line in a row outside code
// fences and trims the ends. Trailing spaces are kept: two of them mark a
// hard break.
func cleanMarkdownOutput(s string) string {
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	blank := false
	fence := ""
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " ")
		switch {
		case fence == "" && (strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")):
			fence = trimmed[:3]
		case fence != "" && strings.HasPrefix(trimmed, fence):
			fence = ""
		case fence != "":
			blank = false
			result = append(result, line)
			continue
		}
		if strings.TrimSpace(line) == "" {
			if !blank {
				result = append(result, "")
			}
			blank = true
			continue
		}
		blank = false
		result = append(result, line)
	}
	return strings.TrimSpace(strings.Join(result, "\n"))
}
