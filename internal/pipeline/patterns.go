package pipeline

import "regexp"

// Token patterns shared by the parser and the analyzer's template signal.
var (
	datePattern    = regexp.MustCompile(`(\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4})`)
	dateAtStart    = regexp.MustCompile(`^\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}`)
	timePattern    = regexp.MustCompile(`(\d{1,2}:\d{2})`)
	decimalPattern = regexp.MustCompile(`(\d+\.\d{1,2})`)

	hebrewDayPattern  = regexp.MustCompile(`([א-ת]{2,6}י?'?)`)
	englishDayPattern = regexp.MustCompile(`(?i)(Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday|Mon|Tue|Wed|Thu|Fri|Sat|Sun)`)
)

// Keyword sets driving template classification. Detail keywords mark the
// extended layout (tiered overtime, Saturday, break, location); simple
// keywords mark the plain entry/exit layout.
var (
	detailedKeywords = []*regexp.Regexp{
		regexp.MustCompile(`125%`),
		regexp.MustCompile(`150%`),
		regexp.MustCompile(`שבת`),
		regexp.MustCompile(`הפסקה`),
		regexp.MustCompile(`(?i)break`),
		regexp.MustCompile(`מקום`),
		regexp.MustCompile(`(?i)location`),
		regexp.MustCompile(`נ\.ב`),
		regexp.MustCompile(`בע["']מ`),
	}

	simpleKeywords = []*regexp.Regexp{
		regexp.MustCompile(`כניסה`),
		regexp.MustCompile(`יציאה`),
		regexp.MustCompile(`התחלה`),
		regexp.MustCompile(`סיום`),
		regexp.MustCompile(`(?i)start`),
		regexp.MustCompile(`(?i)\bend\b`),
		regexp.MustCompile(`(?i)entry`),
		regexp.MustCompile(`(?i)exit`),
	}
)

// Labeled metadata patterns, first match wins per field.
var (
	totalHoursPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:סה["']כ\s*שעות|Total\s*Hours|סך\s*הכל\s*שעות)[:\s]*([\d.]+)`),
	}
	totalSalaryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:סה["']כ\s*לתשלום|Total|סך\s*לתשלום)[:\s]*[₪$]?\s*([\d,]+\.?\d*)`),
		regexp.MustCompile(`[₪$]\s*([\d,]+\.?\d*)`),
	}
	hourlyRatePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:מחיר\s*לשעה|Hourly\s*Rate|תעריף)[:\s]*[₪$]?\s*([\d.]+)`),
	}
	requiredHoursPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:שעות\s*עבודה\s*למשרה|Required\s*Hours|שעות\s*נדרשות)[:\s]*([\d.]+)`),
	}
	companyNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(.*?בע["']מ.*?)(?:\n|\s{3,}|$)`),
		regexp.MustCompile(`(.*?Ltd\..*?)(?:\n|\s{3,}|$)`),
	}
)
