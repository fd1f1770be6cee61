package internal

type InputType string

const (
	InputPDF  InputType = "pdf"
	InputEML  InputType = "eml"
	InputHTML InputType = "html"
	InputText InputType = "text"
)

type TemplateType string

const (
	TemplateSimple   TemplateType = "simple"
	TemplateDetailed TemplateType = "detailed"
	TemplateUnknown  TemplateType = "unknown"
)

// GlyphSpan is one positioned run of text as reported by the page reader.
// The bbox is top-down: Top is the distance from the top edge of the page.
type GlyphSpan struct {
	Text     string
	Left     float64
	Top      float64
	Right    float64
	Bottom   float64
	FontName string
	FontSize float64
	Bold     bool
	Italic   bool
}

type Margins struct {
	Top    float64
	Bottom float64
	Left   float64
	Right  float64
}

type Column struct {
	Name      string
	X         float64
	Width     float64
	Alignment string // left|center|right
}

type FontUsage struct {
	Name   string
	Size   float64
	Bold   bool
	Italic bool
	Count  int
}

type BBox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// TemplateSignal is the analyzer's advisory classification evidence.
// The parser owns the final TemplateType decision.
type TemplateSignal struct {
	DetailTokens int
	SimpleTokens int
	ColumnCount  int
}

type PageStructure struct {
	PageNumber  int
	Width       float64
	Height      float64
	Orientation string // portrait|landscape
	Margins     Margins
	Columns     []Column
	Fonts       []FontUsage
	RowSpacing  float64
	TableBBox   BBox
	Signal      TemplateSignal
}

// DetailFields is the DETAILED-only extension of a record. A nil pointer on
// AttendanceRecord marks a SIMPLE record; the discriminant is never probed
// field by field.
type DetailFields struct {
	Location  string
	BreakTime string // HH:MM
	Hours100  *float64
	Hours125  *float64
	Hours150  *float64
	Saturday  *float64
}

type AttendanceRecord struct {
	Date      string
	DayOfWeek string
	StartTime string // HH:MM or empty
	EndTime   string // HH:MM or empty
	Hours     *float64
	Total     *float64
	Notes     string
	Detail    *DetailFields
}

func (r AttendanceRecord) Clone() AttendanceRecord {
	out := r
	out.Hours = cloneFloat(r.Hours)
	out.Total = cloneFloat(r.Total)
	if r.Detail != nil {
		d := *r.Detail
		d.Hours100 = cloneFloat(r.Detail.Hours100)
		d.Hours125 = cloneFloat(r.Detail.Hours125)
		d.Hours150 = cloneFloat(r.Detail.Hours150)
		d.Saturday = cloneFloat(r.Detail.Saturday)
		out.Detail = &d
	}
	return out
}

type ReportMetadata struct {
	EmployeeName  string
	EmployeeID    string
	CompanyName   string
	Month         string
	Year          string
	TotalHours    *float64
	TotalSalary   *float64
	HourlyRate    *float64
	RequiredHours *float64
	TemplateType  TemplateType
	TopTableRows  []string
}

func (m ReportMetadata) Clone() ReportMetadata {
	out := m
	out.TotalHours = cloneFloat(m.TotalHours)
	out.TotalSalary = cloneFloat(m.TotalSalary)
	out.HourlyRate = cloneFloat(m.HourlyRate)
	out.RequiredHours = cloneFloat(m.RequiredHours)
	out.TopTableRows = append([]string(nil), m.TopTableRows...)
	return out
}

type ParsedReport struct {
	Metadata     ReportMetadata
	Records      []AttendanceRecord
	TemplateType TemplateType
	RawText      string
}

func (p ParsedReport) Clone() ParsedReport {
	out := p
	out.Metadata = p.Metadata.Clone()
	out.Records = make([]AttendanceRecord, 0, len(p.Records))
	for _, r := range p.Records {
		out.Records = append(out.Records, r.Clone())
	}
	return out
}

type DocumentRow struct {
	ID        int
	Path      string
	InputType string
	Hash      string
	Status    string
}

// CompareRow pairs a parsed record with its varied counterpart for export.
type CompareRow struct {
	LineNo      int
	Date        string
	DayOfWeek   string
	OrigStart   string
	OrigEnd     string
	OrigTotal   *float64
	VariedStart string
	VariedEnd   string
	VariedBreak string
	VariedTotal *float64
	VariedH100  *float64
	VariedH125  *float64
	VariedH150  *float64
	VariedNotes string
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
