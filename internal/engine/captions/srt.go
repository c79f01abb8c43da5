// Package captions converts subtitle payloads (SRT, JSON3 timed-text) into
// plain text and picks the best caption track among candidates.
package captions

import (
	"strings"
)

// ParseSRTToText drops sequence counters, timestamp ranges and blank lines
// from an SRT body and joins the remaining lines with single spaces.
// Malformed input degrades to whatever text lines remain.
func ParseSRTToText(content string) string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	kept := make([]string, 0, len(lines)/2)
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || isCounter(line) || strings.Contains(line, "-->") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, " ")
}

func isCounter(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
