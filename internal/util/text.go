package util

import (
	"regexp"
	"strings"
)

var (
	reSpaces   = regexp.MustCompile(`[ \t]+`)
	reBlankRun = regexp.MustCompile(`\n{3,}`)
)

// Sanitize normalizes raw extracted text: CR/BOM/nbsp removal, Hebrew
// gershayim/geresh folded to ASCII quotes, whitespace collapsed.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\uFEFF", "")
	text = strings.ReplaceAll(text, " ", " ")
	text = strings.ReplaceAll(text, "״", `"`)
	text = strings.ReplaceAll(text, "׳", "'")
	text = reSpaces.ReplaceAllString(text, " ")
	text = reBlankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// SplitLines returns trimmed non-empty lines.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(regexp.MustCompile(`\s+`).ReplaceAllString(input, " "))
}

// ContainsHebrew reports whether any rune is in the Hebrew Unicode block.
func ContainsHebrew(s string) bool {
	for _, r := range s {
		if r >= 0x0590 && r <= 0x05FF {
			return true
		}
	}
	return false
}

func FloatPtr(v float64) *float64 { return &v }

func DerefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
