package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strings"

	pdf "github.com/ledongthuc/pdf"

	"timecard/internal"
)

// ReadGlyphPage extracts positioned text spans and page dimensions for one
// page (zero-based index). Coordinates are converted from PDF bottom-up to
// the top-down bboxes the analyzer works in.
func ReadGlyphPage(path string, pageIndex int) ([]internal.GlyphSpan, float64, float64, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	if pageIndex < 0 || pageIndex >= r.NumPage() {
		return nil, 0, 0, fmt.Errorf("page %d out of range (document has %d)", pageIndex, r.NumPage())
	}

	page := r.Page(pageIndex + 1)
	if page.V.IsNull() {
		return nil, 0, 0, fmt.Errorf("page %d has no content", pageIndex)
	}

	width, height := pageSize(page)
	spans := assembleSpans(page.Content().Text, height)
	return spans, width, height, nil
}

// pageSize reads the MediaBox, walking up the page tree for inherited
// values. A4 is the fallback.
func pageSize(page pdf.Page) (float64, float64) {
	node := page.V
	for i := 0; i < 16 && !node.IsNull(); i++ {
		box := node.Key("MediaBox")
		if !box.IsNull() && box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			if w > 0 && h > 0 {
				return w, h
			}
		}
		node = node.Key("Parent")
	}
	return 595, 842
}

// assembleSpans merges per-character text runs sharing a baseline and font
// into word-level spans. A gap wider than the font size starts a new span;
// smaller gaps beyond a quarter of the font size become a space inside it.
func assembleSpans(texts []pdf.Text, pageHeight float64) []internal.GlyphSpan {
	sorted := append([]pdf.Text(nil), texts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	spans := []internal.GlyphSpan{}
	var cur *spanBuilder
	flush := func() {
		if cur != nil {
			spans = append(spans, cur.build(pageHeight))
			cur = nil
		}
	}

	for _, t := range sorted {
		if strings.TrimSpace(t.S) == "" && cur == nil {
			continue
		}
		if cur == nil || !cur.accepts(t) {
			flush()
			cur = newSpanBuilder(t)
			continue
		}
		cur.append(t)
	}
	flush()

	out := spans[:0]
	for _, s := range spans {
		if strings.TrimSpace(s.Text) != "" {
			out = append(out, s)
		}
	}
	return out
}

type spanBuilder struct {
	text     strings.Builder
	font     string
	fontSize float64
	y        float64
	left     float64
	right    float64
}

func newSpanBuilder(t pdf.Text) *spanBuilder {
	b := &spanBuilder{font: t.Font, fontSize: t.FontSize, y: t.Y, left: t.X, right: t.X + t.W}
	b.text.WriteString(t.S)
	return b
}

func (b *spanBuilder) accepts(t pdf.Text) bool {
	if t.Font != b.font || t.FontSize != b.fontSize {
		return false
	}
	if math.Abs(t.Y-b.y) > 0.5 {
		return false
	}
	return t.X-b.right <= b.fontSize
}

func (b *spanBuilder) append(t pdf.Text) {
	if t.X-b.right > b.fontSize/4 {
		b.text.WriteString(" ")
	}
	b.text.WriteString(t.S)
	if r := t.X + t.W; r > b.right {
		b.right = r
	}
}

func (b *spanBuilder) build(pageHeight float64) internal.GlyphSpan {
	lower := strings.ToLower(b.font)
	return internal.GlyphSpan{
		Text:     strings.TrimSpace(b.text.String()),
		Left:     b.left,
		Top:      math.Max(0, pageHeight-b.y-b.fontSize),
		Right:    b.right,
		Bottom:   math.Max(0, pageHeight-b.y),
		FontName: b.font,
		FontSize: b.fontSize,
		Bold:     strings.Contains(lower, "bold"),
		Italic:   strings.Contains(lower, "italic") || strings.Contains(lower, "oblique"),
	}
}
