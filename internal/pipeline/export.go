package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"timecard/internal"
)

// ExportCompareToXLSX writes the original and varied records side by side
// for manual review.
func ExportCompareToXLSX(rows []internal.CompareRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"line_no", "date", "day_of_week",
		"orig_start", "orig_end", "orig_total",
		"varied_start", "varied_end", "varied_break", "varied_total",
		"hours_100", "hours_125", "hours_150", "notes",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.LineNo)
		set(2, row.Date)
		set(3, row.DayOfWeek)
		set(4, row.OrigStart)
		set(5, row.OrigEnd)
		set(6, derefFloat(row.OrigTotal))
		set(7, row.VariedStart)
		set(8, row.VariedEnd)
		set(9, row.VariedBreak)
		set(10, derefFloat(row.VariedTotal))
		set(11, derefFloat(row.VariedH100))
		set(12, derefFloat(row.VariedH125))
		set(13, derefFloat(row.VariedH150))
		set(14, row.VariedNotes)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefFloat(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
