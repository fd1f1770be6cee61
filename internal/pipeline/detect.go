package pipeline

import "strings"

// DetectResult scores how likely a blob of extracted text is an attendance
// timesheet at all, before the parser commits to a template.
type DetectResult struct {
	IsTimesheet bool
	Score       float64
	Reason      string
}

var detectTokens = []string{"נוכחות", "שעות", "משמרת", "עובד", "attendance", "timesheet", "shift", "hours"}

// DetectTimesheet combines keyword hits with date and clock token density.
// The 0.45 threshold keeps free-form mail bodies out without rejecting
// sparse single-week reports.
func DetectTimesheet(text string) DetectResult {
	lowered := strings.ToLower(text)

	score := 0.0
	for _, kw := range detectTokens {
		if strings.Contains(lowered, kw) {
			score += 0.15
		}
	}

	dates := len(datePattern.FindAllString(text, -1))
	times := len(timePattern.FindAllString(text, -1))
	switch {
	case dates >= 5 && times >= 10:
		score += 0.5
	case dates >= 2 && times >= 4:
		score += 0.3
	case dates >= 1 && times >= 2:
		score += 0.15
	}

	if score > 1 {
		score = 1
	}

	isTimesheet := score >= 0.45
	reason := "rules_negative"
	if isTimesheet {
		reason = "rules_positive"
	}
	return DetectResult{IsTimesheet: isTimesheet, Score: score, Reason: reason}
}
