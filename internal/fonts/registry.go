package fonts

import (
	"os"
	"path/filepath"

	"timecard/internal/util"
)

// Registry resolves logical font names to TrueType files on disk. It is a
// plain value constructed at startup and passed into the renderer; there is
// no process-wide registry.
type Registry struct {
	searchPaths []string
	mappings    map[string][]string
}

func NewRegistry(searchPaths []string) *Registry {
	return &Registry{
		searchPaths: searchPaths,
		mappings: map[string][]string{
			"Arial":       {"Arial.ttf", "arial.ttf", "LiberationSans-Regular.ttf", "DejaVuSans.ttf", "NotoSansHebrew-Regular.ttf"},
			"Arial-Bold":  {"Arial-Bold.ttf", "arialbd.ttf", "LiberationSans-Bold.ttf", "DejaVuSans-Bold.ttf", "NotoSansHebrew-Bold.ttf"},
			"Times-Roman": {"Times-Roman.ttf", "times.ttf", "LiberationSerif-Regular.ttf", "DejaVuSerif.ttf"},
			"Courier":     {"Courier.ttf", "cour.ttf", "LiberationMono-Regular.ttf", "DejaVuSansMono.ttf"},
		},
	}
}

// Resolve returns the first existing candidate file for a logical font name,
// or "" when none is installed.
func (r *Registry) Resolve(name string) string {
	candidates, ok := r.mappings[name]
	if !ok {
		candidates = []string{name + ".ttf"}
	}
	for _, dir := range r.searchPaths {
		for _, file := range candidates {
			path := filepath.Join(dir, file)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// ShapeRTL flips Hebrew text runs into visual order for writers that lay
// glyphs out strictly left to right. Digit and Latin runs keep their logical
// order. Strings without Hebrew pass through untouched.
func ShapeRTL(s string) string {
	if !util.ContainsHebrew(s) {
		return s
	}

	runes := []rune(s)
	reversed := make([]rune, 0, len(runes))
	for i := len(runes) - 1; i >= 0; i-- {
		reversed = append(reversed, runes[i])
	}

	// Restore embedded LTR runs (numbers, times, Latin) that the global
	// reversal flipped.
	for start := 0; start < len(reversed); {
		if !isLTRRune(reversed[start]) {
			start++
			continue
		}
		end := start
		for end < len(reversed) && isLTRRune(reversed[end]) {
			end++
		}
		for i, j := start, end-1; i < j; i, j = i+1, j-1 {
			reversed[i], reversed[j] = reversed[j], reversed[i]
		}
		start = end
	}

	return string(reversed)
}

func isLTRRune(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		return true
	case r == ':' || r == '.' || r == '/' || r == '%':
		return true
	}
	return false
}
