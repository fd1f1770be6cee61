package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"timecard/internal"
	"timecard/internal/util"
)

// Parser turns sanitized timesheet text into typed records and metadata.
// State advances one way: classify, extract, reconcile. The UNKNOWN branch
// tries the simple grammar first and the detailed grammar second.
type Parser struct {
	text     string
	lines    []string
	metadata internal.ReportMetadata
	records  []internal.AttendanceRecord
}

func NewParser(text string) *Parser {
	clean := util.Sanitize(text)
	return &Parser{
		text:  clean,
		lines: util.SplitLines(clean),
	}
}

func ParseReport(text string) internal.ParsedReport {
	return NewParser(text).Parse()
}

func (p *Parser) Parse() internal.ParsedReport {
	templateType := p.classifyTemplate()
	p.metadata.TemplateType = templateType

	p.extractMetadata()

	switch templateType {
	case internal.TemplateDetailed:
		p.records = p.parseDetailed()
	case internal.TemplateSimple:
		p.records = p.parseSimple()
	default:
		p.records = p.parseSimple()
		if len(p.records) == 0 {
			p.records = p.parseDetailed()
		}
	}

	p.reconcileTotals()

	return internal.ParsedReport{
		Metadata:     p.metadata,
		Records:      p.records,
		TemplateType: templateType,
		RawText:      p.text,
	}
}

// classifyTemplate combines three signals in priority order: keyword scores,
// an estimated column count, then a raw time/decimal scan of the first lines.
func (p *Parser) classifyTemplate() internal.TemplateType {
	detailCount := 0
	for _, re := range detailedKeywords {
		if re.MatchString(p.text) {
			detailCount++
		}
	}
	simpleCount := 0
	for _, re := range simpleKeywords {
		if re.MatchString(p.text) {
			simpleCount++
		}
	}

	columnCount := p.estimateColumnCount()

	if detailCount >= 3 || columnCount >= 10 {
		return internal.TemplateDetailed
	}
	if simpleCount >= 2 || (columnCount >= 5 && columnCount <= 7) {
		return internal.TemplateSimple
	}

	limit := len(p.lines)
	if limit > 30 {
		limit = 30
	}
	for _, line := range p.lines[:limit] {
		times := timePattern.FindAllString(line, -1)
		decimals := decimalPattern.FindAllString(line, -1)
		if len(times) >= 2 && len(decimals) >= 4 {
			return internal.TemplateDetailed
		}
		if len(times) >= 2 && len(decimals) >= 1 {
			return internal.TemplateSimple
		}
	}

	return internal.TemplateUnknown
}

// estimateColumnCount approximates the widest data row by counting date,
// time, and decimal tokens plus up to three word tokens per line.
func (p *Parser) estimateColumnCount() int {
	limit := len(p.lines)
	if limit > 20 {
		limit = 20
	}

	max := 0
	for _, line := range p.lines[:limit] {
		dates := len(datePattern.FindAllString(line, -1))
		times := len(timePattern.FindAllString(line, -1))
		decimals := len(decimalPattern.FindAllString(line, -1))
		words := 0
		for _, w := range strings.Fields(line) {
			if len([]rune(w)) > 1 {
				words++
			}
		}
		if words > 3 {
			words = 3
		}
		if n := dates + times + decimals + words; n > max {
			max = n
		}
	}
	return max
}

func (p *Parser) extractMetadata() {
	limit := len(p.lines)
	if limit > 25 {
		limit = 25
	}

	for _, line := range p.lines[:limit] {
		p.captureFloat(&p.metadata.TotalHours, totalHoursPatterns, line, false)
		p.captureFloat(&p.metadata.TotalSalary, totalSalaryPatterns, line, true)
		p.captureFloat(&p.metadata.HourlyRate, hourlyRatePatterns, line, false)
		p.captureFloat(&p.metadata.RequiredHours, requiredHoursPatterns, line, false)

		if p.metadata.CompanyName == "" {
			for _, re := range companyNamePatterns {
				if m := re.FindStringSubmatch(line); m != nil {
					p.metadata.CompanyName = strings.TrimSpace(m[1])
					break
				}
			}
		}
	}

	p.metadata.TopTableRows = p.topTableRows(limit)
	p.extractMonthYear()
}

func (p *Parser) captureFloat(dst **float64, patterns []*regexp.Regexp, line string, stripCommas bool) {
	if *dst != nil {
		return
	}
	for _, re := range patterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := m[1]
		if stripCommas {
			value = strings.ReplaceAll(value, ",", "")
		}
		*dst = util.FloatPtr(util.SafeFloat(value))
		return
	}
}

// topTableRows keeps the label/value block above the first data row so the
// renderer can reproduce the original summary table.
func (p *Parser) topTableRows(limit int) []string {
	out := []string{}
	for _, line := range p.lines[:limit] {
		if dateAtStart.MatchString(line) {
			break
		}
		if decimalPattern.MatchString(line) || strings.ContainsAny(line, "₪$:") {
			out = append(out, line)
		}
	}
	return out
}

// extractMonthYear derives month/year from the first date token anywhere in
// the text. Two-digit years above 50 map to 19xx, the rest to 20xx; this is
// the observed pivot of the source system, kept as-is.
func (p *Parser) extractMonthYear() {
	m := datePattern.FindString(p.text)
	if m == "" {
		return
	}
	normalized := strings.NewReplacer(".", "/", "-", "/").Replace(m)
	parts := strings.Split(normalized, "/")
	if len(parts) != 3 {
		return
	}

	month := parts[1]
	if len(month) == 1 {
		month = "0" + month
	}
	p.metadata.Month = month

	year := parts[2]
	if len(year) == 2 {
		if n, err := strconv.Atoi(year); err == nil {
			if n > 50 {
				year = "19" + year
			} else {
				year = "20" + year
			}
		}
	}
	p.metadata.Year = year
}

func (p *Parser) parseSimple() []internal.AttendanceRecord {
	out := []internal.AttendanceRecord{}
	for _, line := range p.mergeBrokenLines() {
		date := datePattern.FindString(line)
		if date == "" {
			continue
		}
		times := timePattern.FindAllString(line, -1)
		if len(times) < 2 {
			continue
		}

		record := internal.AttendanceRecord{
			Date:      date,
			DayOfWeek: extractDay(line),
			StartTime: times[0],
			EndTime:   times[1],
		}
		if decimals := decimalPattern.FindAllString(line, -1); len(decimals) > 0 {
			total := util.FloatPtr(util.SafeFloat(decimals[len(decimals)-1]))
			record.Total = total
			record.Hours = util.FloatPtr(*total)
		}
		out = append(out, record)
	}
	return out
}

func (p *Parser) parseDetailed() []internal.AttendanceRecord {
	out := []internal.AttendanceRecord{}
	for _, line := range p.mergeBrokenLines() {
		date := datePattern.FindString(line)
		if date == "" {
			continue
		}
		times := timePattern.FindAllString(line, -1)
		if len(times) < 2 {
			continue
		}

		day := extractDay(line)
		detail := &internal.DetailFields{Location: extractLocation(line, day)}
		if len(times) >= 3 {
			detail.BreakTime = times[2]
		}

		record := internal.AttendanceRecord{
			Date:      date,
			DayOfWeek: day,
			StartTime: times[0],
			EndTime:   times[1],
			Detail:    detail,
		}

		// Decimal tokens map positionally: total, 100%, 125%, 150%, Saturday.
		decimals := decimalPattern.FindAllString(line, -1)
		assign := func(dst **float64, idx int) {
			if idx < len(decimals) {
				*dst = util.FloatPtr(util.SafeFloat(decimals[idx]))
			}
		}
		assign(&record.Total, 0)
		assign(&detail.Hours100, 1)
		assign(&detail.Hours125, 2)
		assign(&detail.Hours150, 3)
		assign(&detail.Saturday, 4)
		if record.Total != nil {
			record.Hours = util.FloatPtr(*record.Total)
		}

		out = append(out, record)
	}
	return out
}

// mergeBrokenLines rejoins logical rows split by PDF line wrapping: a line
// starting with a date token opens a new row, everything else is appended to
// the current one.
func (p *Parser) mergeBrokenLines() []string {
	merged := []string{}
	buffer := ""
	for _, line := range p.lines {
		if dateAtStart.MatchString(line) {
			if buffer != "" {
				merged = append(merged, strings.TrimSpace(buffer))
			}
			buffer = line
			continue
		}
		buffer += " " + line
	}
	if buffer != "" {
		merged = append(merged, strings.TrimSpace(buffer))
	}
	return merged
}

func extractDay(line string) string {
	if m := hebrewDayPattern.FindString(line); m != "" {
		return m
	}
	return englishDayPattern.FindString(line)
}

// extractLocation picks the first short non-time word right after the weekday.
func extractLocation(line, day string) string {
	if day == "" {
		return ""
	}
	pos := strings.Index(line, day)
	if pos < 0 {
		return ""
	}
	rest := strings.Fields(strings.TrimSpace(line[pos+len(day):]))
	if len(rest) == 0 {
		return ""
	}
	word := rest[0]
	if len([]rune(word)) <= 6 && !timePattern.MatchString(word) {
		return word
	}
	return ""
}

func (p *Parser) reconcileTotals() {
	if p.metadata.TotalHours == nil && len(p.records) > 0 {
		sum := 0.0
		for _, r := range p.records {
			if r.Hours != nil {
				sum += *r.Hours
			}
		}
		p.metadata.TotalHours = util.FloatPtr(util.Round2(sum))
	}

	if p.metadata.TotalSalary == nil && p.metadata.HourlyRate != nil && p.metadata.TotalHours != nil {
		p.metadata.TotalSalary = util.FloatPtr(util.Round2(*p.metadata.HourlyRate * *p.metadata.TotalHours))
	}
}
