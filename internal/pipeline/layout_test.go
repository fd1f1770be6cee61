package pipeline

import (
	"testing"

	"timecard/internal"
)

func simpleLayoutReport(records int) internal.ParsedReport {
	report := internal.ParsedReport{TemplateType: internal.TemplateSimple}
	for i := 0; i < records; i++ {
		report.Records = append(report.Records, internal.AttendanceRecord{
			Date: "01/01/2024", DayOfWeek: "ראשון", StartTime: "08:00", EndTime: "17:00",
			Hours: fp(8.5), Total: fp(8.5),
		})
	}
	return report
}

func TestTableColumnsReusesDetectedGeometry(t *testing.T) {
	detected := make([]internal.Column, len(simpleHeaders))
	for i := range detected {
		detected[i] = internal.Column{Name: "c", X: float64(40 + i*70), Width: 65, Alignment: "right"}
	}

	got := tableColumns(detected, simpleHeaders, simpleWidths, 36)
	if got[0].X != 40 || got[0].Alignment != "right" {
		t.Fatalf("detected geometry not reused: %+v", got[0])
	}
}

func TestTableColumnsFallsBackOnCountMismatch(t *testing.T) {
	detected := []internal.Column{{X: 40, Width: 65}, {X: 110, Width: 65}}

	got := tableColumns(detected, simpleHeaders, simpleWidths, 36)
	if len(got) != len(simpleHeaders) {
		t.Fatalf("expected %d fallback columns, got %d", len(simpleHeaders), len(got))
	}
	if got[0].X != 36 {
		t.Fatalf("fallback not anchored at left margin: %f", got[0].X)
	}
	if got[0].Name != simpleHeaders[0] {
		t.Fatalf("fallback column name: got %q", got[0].Name)
	}
}

func TestBuildPlanDefaultGeometry(t *testing.T) {
	plan := BuildPlan(simpleLayoutReport(1), internal.PageStructure{})

	if plan.Width != 595 || plan.Height != 842 {
		t.Fatalf("default page size: got %fx%f", plan.Width, plan.Height)
	}
	if plan.Margins.Left != 36 {
		t.Fatalf("default margins: got %+v", plan.Margins)
	}
	if len(plan.Ops) == 0 || !plan.Ops[0].NewPage {
		t.Fatal("plan must open with a page break")
	}
}

func TestBuildPlanPaginates(t *testing.T) {
	structure := internal.PageStructure{Width: 595, Height: 200, RowSpacing: 14}
	plan := BuildPlan(simpleLayoutReport(40), structure)

	pages := 0
	for _, op := range plan.Ops {
		if op.NewPage {
			pages++
		}
	}
	if pages < 2 {
		t.Fatalf("expected multiple pages, got %d", pages)
	}
}

func TestBuildPlanFlagsRTL(t *testing.T) {
	plan := BuildPlan(simpleLayoutReport(1), internal.PageStructure{})

	sawHebrew := false
	for _, op := range plan.Ops {
		if op.NewPage {
			continue
		}
		if op.Text == "תאריך" {
			sawHebrew = true
			if !op.RTL {
				t.Fatalf("hebrew cell not flagged RTL: %+v", op)
			}
		}
		if op.Text == "08:00" && op.RTL {
			t.Fatalf("latin cell flagged RTL: %+v", op)
		}
	}
	if !sawHebrew {
		t.Fatal("header cell not emitted")
	}
}

func TestBuildPlanDetailedSummary(t *testing.T) {
	report := internal.ParsedReport{
		TemplateType: internal.TemplateDetailed,
		Metadata:     internal.ReportMetadata{TotalHours: fp(10.75)},
		Records: []internal.AttendanceRecord{
			{
				Date: "02/01/2024", DayOfWeek: "שני", StartTime: "08:00", EndTime: "19:30",
				Hours: fp(10.75), Total: fp(10.75),
				Detail: &internal.DetailFields{BreakTime: "00:45", Hours100: fp(8), Hours125: fp(2), Hours150: fp(0.75)},
			},
		},
	}
	plan := BuildPlan(report, internal.PageStructure{})

	found := map[string]bool{}
	for _, op := range plan.Ops {
		found[op.Text] = true
	}
	if !found["שעות 125%"] {
		t.Fatal("summary block missing 125% row")
	}
	if !found["00:45"] {
		t.Fatal("break cell missing")
	}
}
