package pipeline

import (
	"fmt"

	"timecard/internal"
	"timecard/internal/util"
)

const cm = 28.35 // points

// Hebrew header labels in left-to-right column order, matching the layouts
// the parser recognizes.
var (
	simpleHeaders   = []string{"הערות", `סה"כ`, "שעות עבודה", "שעת סיום", "שעת התחלה", "יום בשבוע", "תאריך"}
	detailedHeaders = []string{"שבת", "150%", "125%", "100%", `סה"כ`, "הפסקה", "יציאה", "כניסה", "מקום", "יום", "תאריך"}

	simpleWidths   = []float64{2.5 * cm, 2 * cm, 2 * cm, 2 * cm, 2 * cm, 2.5 * cm, 2.5 * cm}
	detailedWidths = []float64{1.2 * cm, 1.2 * cm, 1.2 * cm, 1.2 * cm, 1.2 * cm, 1.5 * cm, 1.5 * cm, 1.5 * cm, 1.5 * cm, 2 * cm, 2.5 * cm}
)

const simpleMinRows = 20

// DrawOp is one instruction for the drawing sink: either a page break or a
// positioned cell.
type DrawOp struct {
	NewPage  bool
	Text     string
	X, Y     float64
	W, H     float64
	FontSize float64
	Bold     bool
	Align    string // L|C|R
	Border   bool
	Fill     bool
	RTL      bool
}

// Plan holds the full ordered draw sequence plus the page geometry the sink
// must honor.
type Plan struct {
	Width   float64
	Height  float64
	Margins internal.Margins
	Ops     []DrawOp
}

// BuildPlan maps the recovered structure and a (varied) report onto draw
// instructions. Detected columns are reused verbatim only when their count
// matches the template's field count; otherwise the fixed default layout for
// that template is substituted.
func BuildPlan(report internal.ParsedReport, structure internal.PageStructure) Plan {
	width, height := structure.Width, structure.Height
	if width <= 0 || height <= 0 {
		width, height = 595, 842
	}
	margins := structure.Margins
	if margins.Top <= 0 {
		margins = internal.Margins{Top: 36, Bottom: 36, Left: 36, Right: 36}
	}

	detailed := report.TemplateType == internal.TemplateDetailed
	headers := simpleHeaders
	widths := simpleWidths
	if detailed {
		headers = detailedHeaders
		widths = detailedWidths
	}

	columns := tableColumns(structure.Columns, headers, widths, margins.Left)
	rowH := structure.RowSpacing
	if rowH < 10 {
		rowH = defaultRowSpacing
	}

	p := &planBuilder{
		plan: Plan{Width: width, Height: height, Margins: margins},
		rowH: rowH,
	}
	p.newPage()

	p.title(report.Metadata, width)
	p.topTable(report.Metadata, margins.Left, width-margins.Left-margins.Right)
	p.y += rowH / 2

	p.headerRow(columns, headers)

	rows := make([][]string, 0, len(report.Records))
	for _, r := range report.Records {
		rows = append(rows, recordCells(r, detailed))
	}
	if !detailed {
		for len(rows) < simpleMinRows {
			rows = append(rows, make([]string, len(headers)))
		}
	}
	for _, cells := range rows {
		p.dataRow(columns, cells)
	}

	if detailed {
		p.y += rowH / 2
		p.summaryBlock(report, margins.Left)
	}

	return p.plan
}

// tableColumns prefers the analyzer's detected geometry when it matches the
// template, falling back to the fixed layout anchored at the left margin.
func tableColumns(detected []internal.Column, headers []string, widths []float64, left float64) []internal.Column {
	if len(detected) == len(headers) {
		return detected
	}
	out := make([]internal.Column, 0, len(headers))
	x := left
	for i, w := range widths {
		out = append(out, internal.Column{Name: headers[i], X: x, Width: w, Alignment: "center"})
		x += w
	}
	return out
}

func recordCells(r internal.AttendanceRecord, detailed bool) []string {
	if !detailed {
		return []string{
			r.Notes,
			formatFloat(r.Total),
			formatFloat(r.Hours),
			r.EndTime,
			r.StartTime,
			r.DayOfWeek,
			r.Date,
		}
	}

	d := r.Detail
	if d == nil {
		d = &internal.DetailFields{}
	}
	breakTime := d.BreakTime
	if breakTime == "" {
		breakTime = "00:30"
	}
	return []string{
		formatFloat(d.Saturday),
		formatFloat(d.Hours150),
		formatFloat(d.Hours125),
		formatFloat(d.Hours100),
		formatFloat(r.Total),
		breakTime,
		r.EndTime,
		r.StartTime,
		d.Location,
		r.DayOfWeek,
		r.Date,
	}
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *v)
}

type planBuilder struct {
	plan Plan
	rowH float64
	y    float64
}

func (p *planBuilder) newPage() {
	p.plan.Ops = append(p.plan.Ops, DrawOp{NewPage: true})
	p.y = p.plan.Margins.Top
}

// ensureRoom emits a page break when the next row would cross the bottom margin.
func (p *planBuilder) ensureRoom(h float64) {
	if p.y+h > p.plan.Height-p.plan.Margins.Bottom {
		p.newPage()
	}
}

func (p *planBuilder) cell(op DrawOp) {
	op.RTL = util.ContainsHebrew(op.Text)
	p.plan.Ops = append(p.plan.Ops, op)
}

func (p *planBuilder) title(meta internal.ReportMetadata, pageWidth float64) {
	text := meta.CompanyName
	if text == "" {
		text = "דוח נוכחות חודשי"
	}
	p.cell(DrawOp{
		Text: text, X: p.plan.Margins.Left, Y: p.y,
		W: pageWidth - p.plan.Margins.Left - p.plan.Margins.Right, H: p.rowH * 1.5,
		FontSize: 14, Bold: true, Align: "C",
	})
	p.y += p.rowH * 2
}

// topTable renders the label/value summary block above the main table, built
// from explicit metadata fields with the captured original rows as fallback.
func (p *planBuilder) topTable(meta internal.ReportMetadata, x, width float64) {
	rows := [][2]string{}
	add := func(label string, v *float64, currency bool) {
		if v == nil {
			return
		}
		value := fmt.Sprintf("%.2f", *v)
		if currency {
			value = "₪ " + value
		}
		rows = append(rows, [2]string{label, value})
	}
	add(`סה"כ לתשלום`, meta.TotalSalary, true)
	add("מחיר לשעה", meta.HourlyRate, true)
	add(`סה"כ שעות החודשית`, meta.TotalHours, false)
	add(`סה"כ שעות עבודה למשרה`, meta.RequiredHours, false)

	if len(rows) == 0 {
		for _, line := range meta.TopTableRows {
			rows = append(rows, [2]string{line, ""})
		}
	}

	labelW := width * 0.6
	for _, row := range rows {
		p.ensureRoom(p.rowH)
		p.cell(DrawOp{Text: row[0], X: x, Y: p.y, W: labelW, H: p.rowH, FontSize: 9, Align: "R", Border: true, Fill: true})
		p.cell(DrawOp{Text: row[1], X: x + labelW, Y: p.y, W: width - labelW, H: p.rowH, FontSize: 9, Align: "C", Border: true})
		p.y += p.rowH
	}
}

func (p *planBuilder) headerRow(columns []internal.Column, headers []string) {
	p.ensureRoom(p.rowH)
	for i, col := range columns {
		p.cell(DrawOp{
			Text: headers[i], X: col.X, Y: p.y, W: col.Width, H: p.rowH,
			FontSize: 8, Bold: true, Align: "C", Border: true, Fill: true,
		})
	}
	p.y += p.rowH
}

func (p *planBuilder) dataRow(columns []internal.Column, cells []string) {
	p.ensureRoom(p.rowH)
	for i, col := range columns {
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		p.cell(DrawOp{
			Text: text, X: col.X, Y: p.y, W: col.Width, H: p.rowH,
			FontSize: 8, Align: alignCode(col.Alignment), Border: true,
		})
	}
	p.y += p.rowH
}

func (p *planBuilder) summaryBlock(report internal.ParsedReport, x float64) {
	totalHours := util.DerefFloat(report.Metadata.TotalHours)
	var h100, h125, h150, sat float64
	for _, r := range report.Records {
		if r.Detail == nil {
			continue
		}
		h100 += util.DerefFloat(r.Detail.Hours100)
		h125 += util.DerefFloat(r.Detail.Hours125)
		h150 += util.DerefFloat(r.Detail.Hours150)
		sat += util.DerefFloat(r.Detail.Saturday)
	}

	rows := [][2]string{
		{"ימים", fmt.Sprintf("%d", len(report.Records))},
		{`סה"כ שעות`, fmt.Sprintf("%.1f", totalHours)},
		{"שעות 100%", fmt.Sprintf("%.1f", h100)},
		{"שעות 125%", fmt.Sprintf("%.1f", h125)},
		{"שעות 150%", fmt.Sprintf("%.1f", h150)},
		{"שעות שבת", fmt.Sprintf("%.1f", sat)},
	}
	for _, row := range rows {
		p.ensureRoom(p.rowH)
		p.cell(DrawOp{Text: row[0], X: x, Y: p.y, W: 3 * cm, H: p.rowH, FontSize: 8, Align: "R", Border: true, Fill: true})
		p.cell(DrawOp{Text: row[1], X: x + 3*cm, Y: p.y, W: 3 * cm, H: p.rowH, FontSize: 8, Align: "R", Border: true})
		p.y += p.rowH
	}
}

func alignCode(alignment string) string {
	switch alignment {
	case "left":
		return "L"
	case "right":
		return "R"
	default:
		return "C"
	}
}
