// Package utils holds small text helpers shared by the cleaning stages.
package utils

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// CollapseSpace trims s and replaces every run of whitespace, including line
// breaks, with a single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Ellipsis shortens s to at most width display cells, marking the cut with "...".
func Ellipsis(s string, width int) string {
	if width <= 0 {
		return ""
	}

	return runewidth.Truncate(s, width, "...")
}

// JoinNonEmpty joins the trimmed, non-empty parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, sep)
}
