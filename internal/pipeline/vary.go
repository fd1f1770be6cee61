package pipeline

import (
	"math/rand"

	"timecard/internal"
	"timecard/internal/config"
	"timecard/internal/util"
)

// Generator produces internally consistent synthetic variations of a parsed
// report. Randomness comes from the injected source only, so tests can pin a
// seed and concurrent runs on independent documents do not interfere.
type Generator struct {
	cfg    config.Config
	preset config.VariationPreset
	rng    *rand.Rand
}

func NewGenerator(cfg config.Config, level string, rng *rand.Rand) *Generator {
	return &Generator{cfg: cfg, preset: cfg.Preset(level), rng: rng}
}

// Variation returns a new report; the input is deep-copied and never mutated.
func (g *Generator) Variation(report internal.ParsedReport) internal.ParsedReport {
	out := report.Clone()
	for i := range out.Records {
		out.Records[i] = g.varyRecord(out.Records[i])
	}
	g.recalculateTotals(&out)
	return out
}

// Variations produces count independent variations of the same report.
func (g *Generator) Variations(report internal.ParsedReport, count int) []internal.ParsedReport {
	out := make([]internal.ParsedReport, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, g.Variation(report))
	}
	return out
}

func (g *Generator) varyRecord(record internal.AttendanceRecord) internal.AttendanceRecord {
	startMin, startOK := util.ParseClock(record.StartTime)
	endMin, endOK := util.ParseClock(record.EndTime)
	if !startOK || !endOK {
		// Unparseable times pass through untouched, never discarded.
		return record
	}

	earliestStart, _ := util.ParseClock(g.cfg.EarliestStart)
	latestStart, _ := util.ParseClock(g.cfg.LatestStart)
	earliestEnd, _ := util.ParseClock(g.cfg.EarliestEnd)
	latestEnd, _ := util.ParseClock(g.cfg.LatestEnd)

	startMin = g.jitterClamp(startMin, g.preset.StartMinutes, earliestStart, latestStart)

	// The jittered start floors the end window; a degenerate shift falls back
	// to start+8h.
	endFloor := earliestEnd
	if startMin > endFloor {
		endFloor = startMin
	}
	endMin = g.jitterClamp(endMin, g.preset.EndMinutes, endFloor, latestEnd)
	if endMin <= startMin {
		endMin = startMin + 8*60
	}

	record.StartTime = util.ClockString(startMin)
	record.EndTime = util.ClockString(endMin)

	durationNoBreak := util.DurationHours(startMin, endMin, 0)
	breakMin := g.cfg.BreakMinutesFor(durationNoBreak)

	// Detailed records display a jittered break; the total must reconcile
	// with the break the reader sees, not the tier it was seeded from.
	if record.Detail != nil {
		record.Detail.BreakTime = g.varyBreakClock(record.Detail.BreakTime, breakMin)
		if displayed, ok := util.ParseClock(record.Detail.BreakTime); ok {
			breakMin = displayed
		}
	}

	total := util.DurationHours(startMin, endMin, breakMin)
	record.Total = util.FloatPtr(total)
	record.Hours = util.FloatPtr(total)

	if record.Detail != nil {
		g.retier(record.Detail, total)
	}

	return record
}

func (g *Generator) jitterClamp(value, magnitude, earliest, latest int) int {
	jitter := g.rng.Intn(2*magnitude+1) - magnitude
	return util.ClampMinutes(value+jitter, earliest, latest)
}

// varyBreakClock jitters the displayed break HH:MM of a detailed record,
// clamped to [0, 2h]. The deterministic tier length seeds it when the source
// record had no break.
func (g *Generator) varyBreakClock(current string, tierMinutes int) string {
	base, ok := util.ParseClock(current)
	if !ok {
		base = tierMinutes
	}
	jitter := g.rng.Intn(2*g.preset.BreakMinutes+1) - g.preset.BreakMinutes
	return util.ClockString(util.ClampMinutes(base+jitter, 0, 2*60))
}

// retier recomputes the overtime buckets from the total on the 8h/10h table:
// up to 8h regular, the next 2h at 125%, the remainder at 150%.
func (g *Generator) retier(detail *internal.DetailFields, total float64) {
	var h100, h125, h150 float64
	switch {
	case total <= 8:
		h100 = total
	case total <= 10:
		h100 = 8
		h125 = total - 8
	default:
		h100 = 8
		h125 = 2
		h150 = total - 10
	}
	detail.Hours100 = util.FloatPtr(util.Round2(h100))
	detail.Hours125 = util.FloatPtr(util.Round2(h125))
	detail.Hours150 = util.FloatPtr(util.Round2(h150))
}

func (g *Generator) recalculateTotals(report *internal.ParsedReport) {
	if len(report.Records) == 0 {
		return
	}

	sum := 0.0
	for _, r := range report.Records {
		if r.Hours != nil {
			sum += *r.Hours
		}
	}
	report.Metadata.TotalHours = util.FloatPtr(util.Round2(sum))

	if report.Metadata.HourlyRate != nil {
		report.Metadata.TotalSalary = util.FloatPtr(util.Round2(*report.Metadata.HourlyRate * sum))
	}
}
