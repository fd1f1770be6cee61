package pipeline

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"timecard/internal"
)

const (
	defaultMargin     = 36.0
	defaultRowSpacing = 14.0
	clusterTolerance  = 8.0
	columnGutter      = 4.0
	minColumnWidth    = 20.0
	headerBandRatio   = 0.05
)

// AnalyzePage reconstructs the visual grammar of a table page from its glyph
// spans. It never fails: with no spans it returns default margins and empty
// columns, which downstream treats as "use the fallback layout".
func AnalyzePage(spans []internal.GlyphSpan, pageNumber int, width, height float64) internal.PageStructure {
	structure := internal.PageStructure{
		PageNumber:  pageNumber,
		Width:       width,
		Height:      height,
		Orientation: "portrait",
		Margins:     internal.Margins{Top: defaultMargin, Bottom: defaultMargin, Left: defaultMargin, Right: defaultMargin},
		RowSpacing:  defaultRowSpacing,
	}
	if width > height {
		structure.Orientation = "landscape"
	}
	if len(spans) == 0 {
		return structure
	}

	structure.Margins = inferMargins(spans, width, height)
	headerSpans := headerBand(spans, structure.Margins.Top, height)
	structure.Columns = detectColumns(headerSpans, spans, structure.Margins, width)
	structure.Fonts = fontUsage(spans)
	structure.RowSpacing = rowSpacing(spans)
	structure.TableBBox = tableBBox(structure.Columns, spans)
	structure.Signal = templateSignal(spans, len(structure.Columns))

	return structure
}

func inferMargins(spans []internal.GlyphSpan, width, height float64) internal.Margins {
	top, left := math.MaxFloat64, math.MaxFloat64
	right, bottom := 0.0, 0.0
	for _, s := range spans {
		top = math.Min(top, s.Top)
		left = math.Min(left, s.Left)
		right = math.Max(right, s.Right)
		bottom = math.Max(bottom, s.Bottom)
	}
	return internal.Margins{
		Top:    math.Max(0, top),
		Bottom: math.Max(0, height-bottom),
		Left:   math.Max(0, left),
		Right:  math.Max(0, width-right),
	}
}

// headerBand returns the spans assumed to contain column header labels: the
// top 5% of the usable page height, or the 15 topmost spans when that band
// is empty.
func headerBand(spans []internal.GlyphSpan, topMargin, height float64) []internal.GlyphSpan {
	bandY := topMargin + headerBandRatio*height
	out := make([]internal.GlyphSpan, 0, len(spans))
	for _, s := range spans {
		if s.Top <= bandY {
			out = append(out, s)
		}
	}
	if len(out) > 0 {
		return out
	}

	sorted := append([]internal.GlyphSpan(nil), spans...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Top < sorted[j].Top })
	if len(sorted) > 15 {
		sorted = sorted[:15]
	}
	return sorted
}

func detectColumns(headerSpans, allSpans []internal.GlyphSpan, margins internal.Margins, pageWidth float64) []internal.Column {
	if len(headerSpans) == 0 {
		return nil
	}

	xs := clusterXPositions(headerSpans)
	columns := make([]internal.Column, 0, len(xs))
	for i, x := range xs {
		var width float64
		if i+1 < len(xs) {
			width = xs[i+1] - x - columnGutter
		} else {
			width = (pageWidth - margins.Right) - x
		}
		if width < minColumnWidth {
			width = minColumnWidth
		}

		columns = append(columns, internal.Column{
			Name:      columnName(headerSpans, x, width, i),
			X:         x,
			Width:     width,
			Alignment: inferAlignment(x, width, bodySpans(allSpans, headerSpans)),
		})
	}
	return columns
}

// clusterXPositions groups distinct rounded x-left positions with a greedy
// 1-D tolerance sweep; each cluster becomes one column anchored at its mean.
// Sorting first makes the result independent of input order.
func clusterXPositions(spans []internal.GlyphSpan) []float64 {
	seen := map[float64]struct{}{}
	xs := make([]float64, 0, len(spans))
	for _, s := range spans {
		x := math.Round(s.Left*10) / 10
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		xs = append(xs, x)
	}
	sort.Float64s(xs)

	out := []float64{}
	cluster := []float64{}
	flush := func() {
		if len(cluster) == 0 {
			return
		}
		sum := 0.0
		for _, v := range cluster {
			sum += v
		}
		out = append(out, sum/float64(len(cluster)))
		cluster = cluster[:0]
	}

	for _, x := range xs {
		if len(cluster) > 0 && x-cluster[len(cluster)-1] > clusterTolerance {
			flush()
		}
		cluster = append(cluster, x)
	}
	flush()
	return out
}

func columnName(headerSpans []internal.GlyphSpan, x, width float64, index int) string {
	best := ""
	bestDist := width / 2
	for _, s := range headerSpans {
		dist := math.Abs(s.Left - x)
		text := strings.TrimSpace(s.Text)
		if text == "" || dist >= bestDist {
			continue
		}
		best = text
		bestDist = dist
	}
	if best == "" {
		return fmt.Sprintf("col_%d", index+1)
	}
	return best
}

func bodySpans(all, header []internal.GlyphSpan) []internal.GlyphSpan {
	inHeader := map[internal.GlyphSpan]struct{}{}
	for _, s := range header {
		inHeader[s] = struct{}{}
	}
	out := make([]internal.GlyphSpan, 0, len(all))
	for _, s := range all {
		if _, ok := inHeader[s]; !ok {
			out = append(out, s)
		}
	}
	return out
}

// inferAlignment samples body spans within half the column width of the
// column anchor. Left wins when 70% of samples start at the anchor; otherwise
// a centered mean midpoint means center, and right is the default.
func inferAlignment(colX, colWidth float64, spans []internal.GlyphSpan) string {
	sampled := make([]internal.GlyphSpan, 0, len(spans))
	for _, s := range spans {
		if math.Abs(s.Left-colX) < colWidth/2 {
			sampled = append(sampled, s)
		}
	}
	if len(sampled) == 0 {
		return "left"
	}

	nearLeft := 0
	midSum := 0.0
	for _, s := range sampled {
		if math.Abs(s.Left-colX) < 3 {
			nearLeft++
		}
		midSum += (s.Left + s.Right) / 2
	}
	if float64(nearLeft) >= 0.7*float64(len(sampled)) {
		return "left"
	}

	colCenter := colX + colWidth/2
	if math.Abs(midSum/float64(len(sampled))-colCenter) <= 3 {
		return "center"
	}
	return "right"
}

// rowSpacing is the modal gap between distinct rounded span y-positions.
// Ties pick the smallest gap so reruns stay deterministic.
func rowSpacing(spans []internal.GlyphSpan) float64 {
	seen := map[float64]struct{}{}
	ys := []float64{}
	for _, s := range spans {
		y := math.Round(s.Top*10) / 10
		if _, ok := seen[y]; ok {
			continue
		}
		seen[y] = struct{}{}
		ys = append(ys, y)
	}
	if len(ys) < 2 {
		return defaultRowSpacing
	}
	sort.Float64s(ys)

	counts := map[float64]int{}
	for i := 1; i < len(ys); i++ {
		gap := math.Round((ys[i]-ys[i-1])*10) / 10
		counts[gap]++
	}

	best, bestCount := defaultRowSpacing, 0
	gaps := make([]float64, 0, len(counts))
	for g := range counts {
		gaps = append(gaps, g)
	}
	sort.Float64s(gaps)
	for _, g := range gaps {
		if counts[g] > bestCount {
			best, bestCount = g, counts[g]
		}
	}
	return best
}

func fontUsage(spans []internal.GlyphSpan) []internal.FontUsage {
	type key struct {
		name   string
		size   float64
		bold   bool
		italic bool
	}
	counts := map[key]int{}
	for _, s := range spans {
		counts[key{s.FontName, math.Round(s.FontSize*10) / 10, s.Bold, s.Italic}]++
	}

	out := make([]internal.FontUsage, 0, len(counts))
	for k, c := range counts {
		out = append(out, internal.FontUsage{Name: k.name, Size: k.size, Bold: k.bold, Italic: k.italic, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Size < out[j].Size
	})
	return out
}

func tableBBox(columns []internal.Column, spans []internal.GlyphSpan) internal.BBox {
	if len(columns) == 0 || len(spans) == 0 {
		return internal.BBox{}
	}
	left := columns[0].X
	right := columns[len(columns)-1].X + columns[len(columns)-1].Width
	top, bottom := math.MaxFloat64, 0.0
	for _, s := range spans {
		top = math.Min(top, s.Top)
		bottom = math.Max(bottom, s.Bottom)
	}
	return internal.BBox{X: left, Y: top, Width: right - left, Height: bottom - top}
}

func templateSignal(spans []internal.GlyphSpan, columnCount int) internal.TemplateSignal {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
		sb.WriteString(" ")
	}
	text := sb.String()

	signal := internal.TemplateSignal{ColumnCount: columnCount}
	for _, re := range detailedKeywords {
		if re.MatchString(text) {
			signal.DetailTokens++
		}
	}
	for _, re := range simpleKeywords {
		if re.MatchString(text) {
			signal.SimpleTokens++
		}
	}
	return signal
}
