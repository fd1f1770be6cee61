package pipeline

import (
	"math"
	"math/rand"
	"testing"

	"timecard/internal"
	"timecard/internal/config"
	"timecard/internal/util"
)

func fp(v float64) *float64 { return &v }

func sampleReport() internal.ParsedReport {
	return internal.ParsedReport{
		TemplateType: internal.TemplateSimple,
		Metadata: internal.ReportMetadata{
			TemplateType: internal.TemplateSimple,
			HourlyRate:   fp(84.0),
		},
		Records: []internal.AttendanceRecord{
			{Date: "01/01/2024", DayOfWeek: "ראשון", StartTime: "08:00", EndTime: "17:00", Hours: fp(8.5), Total: fp(8.5)},
			{Date: "02/01/2024", DayOfWeek: "שני", StartTime: "09:00", EndTime: "18:30", Hours: fp(9.0), Total: fp(9.0)},
			{Date: "03/01/2024", DayOfWeek: "שלישי", StartTime: "חופש", EndTime: "", Notes: "חופשה"},
		},
	}
}

func TestVariationPreservesShape(t *testing.T) {
	cfg, _ := config.Load()
	gen := NewGenerator(cfg, "moderate", rand.New(rand.NewSource(42)))

	original := sampleReport()
	varied := gen.Variation(original)

	if len(varied.Records) != len(original.Records) {
		t.Fatalf("record count changed: %d -> %d", len(original.Records), len(varied.Records))
	}
	for i, r := range varied.Records {
		if r.Date != original.Records[i].Date || r.DayOfWeek != original.Records[i].DayOfWeek {
			t.Fatalf("record %d identity changed: %+v", i, r)
		}
	}
	// The input must not be mutated.
	if original.Records[0].StartTime != "08:00" {
		t.Fatalf("source report mutated: %q", original.Records[0].StartTime)
	}
}

func TestVariationTimeWindows(t *testing.T) {
	cfg, _ := config.Load()
	gen := NewGenerator(cfg, "significant", rand.New(rand.NewSource(7)))

	earliestStart, _ := util.ParseClock(cfg.EarliestStart)
	latestStart, _ := util.ParseClock(cfg.LatestStart)
	latestEnd, _ := util.ParseClock(cfg.LatestEnd)

	for trial := 0; trial < 50; trial++ {
		varied := gen.Variation(sampleReport())
		for _, r := range varied.Records[:2] {
			start, ok := util.ParseClock(r.StartTime)
			if !ok {
				t.Fatalf("unparseable varied start %q", r.StartTime)
			}
			end, ok := util.ParseClock(r.EndTime)
			if !ok {
				t.Fatalf("unparseable varied end %q", r.EndTime)
			}
			if start < earliestStart || start > latestStart {
				t.Fatalf("start %q outside window", r.StartTime)
			}
			if end <= start {
				t.Fatalf("end %q not after start %q", r.EndTime, r.StartTime)
			}
			if end > latestEnd && end != start+8*60 {
				t.Fatalf("end %q past window without fallback", r.EndTime)
			}
		}
	}
}

func TestVariationTotalsConsistent(t *testing.T) {
	cfg, _ := config.Load()
	gen := NewGenerator(cfg, "moderate", rand.New(rand.NewSource(11)))

	varied := gen.Variation(sampleReport())
	for _, r := range varied.Records[:2] {
		start, _ := util.ParseClock(r.StartTime)
		end, _ := util.ParseClock(r.EndTime)
		breakMin := cfg.BreakMinutesFor(util.DurationHours(start, end, 0))
		want := util.DurationHours(start, end, breakMin)
		if r.Total == nil || math.Abs(*r.Total-want) > 0.001 {
			t.Fatalf("total %v does not match displayed times (want %f)", r.Total, want)
		}
	}

	sum := *varied.Records[0].Hours + *varied.Records[1].Hours
	if varied.Metadata.TotalHours == nil || math.Abs(*varied.Metadata.TotalHours-util.Round2(sum)) > 0.001 {
		t.Fatalf("metadata total %v != record sum %f", varied.Metadata.TotalHours, sum)
	}
	wantSalary := util.Round2(84.0 * sum)
	if varied.Metadata.TotalSalary == nil || math.Abs(*varied.Metadata.TotalSalary-wantSalary) > 0.001 {
		t.Fatalf("metadata salary %v != rate * hours %f", varied.Metadata.TotalSalary, wantSalary)
	}
}

func TestVariationDetailedTotalMatchesDisplayedBreak(t *testing.T) {
	cfg, _ := config.Load()
	gen := NewGenerator(cfg, "significant", rand.New(rand.NewSource(21)))

	report := internal.ParsedReport{
		TemplateType: internal.TemplateDetailed,
		Records: []internal.AttendanceRecord{
			{
				Date: "02/01/2024", DayOfWeek: "שני", StartTime: "08:00", EndTime: "19:30",
				Hours: fp(10.75), Total: fp(10.75),
				Detail: &internal.DetailFields{BreakTime: "00:45", Hours100: fp(8), Hours125: fp(2), Hours150: fp(0.75)},
			},
		},
	}

	for trial := 0; trial < 50; trial++ {
		varied := gen.Variation(report)
		r := varied.Records[0]

		start, _ := util.ParseClock(r.StartTime)
		end, _ := util.ParseClock(r.EndTime)
		displayedBreak, ok := util.ParseClock(r.Detail.BreakTime)
		if !ok {
			t.Fatalf("displayed break unreadable: %q", r.Detail.BreakTime)
		}

		want := util.DurationHours(start, end, displayedBreak)
		if r.Total == nil || math.Abs(*r.Total-want) > 0.001 {
			t.Fatalf("total %v does not reconcile with displayed break %q (want %f)", r.Total, r.Detail.BreakTime, want)
		}

		sum := *r.Detail.Hours100 + *r.Detail.Hours125 + *r.Detail.Hours150
		if math.Abs(sum-*r.Total) > 0.001 {
			t.Fatalf("bucket sum %f != total %f", sum, *r.Total)
		}
	}
}

func TestVariationPassesThroughUnparseable(t *testing.T) {
	cfg, _ := config.Load()
	gen := NewGenerator(cfg, "minimal", rand.New(rand.NewSource(3)))

	varied := gen.Variation(sampleReport())
	r := varied.Records[2]
	if r.StartTime != "חופש" || r.EndTime != "" || r.Notes != "חופשה" {
		t.Fatalf("unparseable record altered: %+v", r)
	}
}

func TestVariationDeterministicWithSeed(t *testing.T) {
	cfg, _ := config.Load()

	a := NewGenerator(cfg, "moderate", rand.New(rand.NewSource(99))).Variation(sampleReport())
	b := NewGenerator(cfg, "moderate", rand.New(rand.NewSource(99))).Variation(sampleReport())

	for i := range a.Records {
		if a.Records[i].StartTime != b.Records[i].StartTime || a.Records[i].EndTime != b.Records[i].EndTime {
			t.Fatalf("same seed diverged at record %d", i)
		}
	}
}

func TestRetierBuckets(t *testing.T) {
	cfg, _ := config.Load()
	gen := NewGenerator(cfg, "moderate", rand.New(rand.NewSource(1)))

	tests := []struct {
		total float64
		h100  float64
		h125  float64
		h150  float64
	}{
		{7.5, 7.5, 0, 0},
		{8, 8, 0, 0},
		{9.25, 8, 1.25, 0},
		{10, 8, 2, 0},
		{11.5, 8, 2, 1.5},
	}
	for _, tc := range tests {
		detail := &internal.DetailFields{}
		gen.retier(detail, tc.total)
		if *detail.Hours100 != tc.h100 || *detail.Hours125 != tc.h125 || *detail.Hours150 != tc.h150 {
			t.Fatalf("total %.2f: got %v/%v/%v want %v/%v/%v",
				tc.total, *detail.Hours100, *detail.Hours125, *detail.Hours150, tc.h100, tc.h125, tc.h150)
		}
	}
}

func TestVariationsCount(t *testing.T) {
	cfg, _ := config.Load()
	gen := NewGenerator(cfg, "moderate", rand.New(rand.NewSource(5)))

	out := gen.Variations(sampleReport(), 3)
	if len(out) != 3 {
		t.Fatalf("got %d variations want 3", len(out))
	}
}
