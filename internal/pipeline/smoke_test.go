package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"timecard/internal"
	"timecard/internal/config"
	"timecard/internal/fonts"
	"timecard/internal/storage"
)

func TestSmokeTextToVariedPDF(t *testing.T) {
	tmp := t.TempDir()
	db, err := storage.Open(filepath.Join(tmp, "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	text := strings.Join([]string{
		"חברת אלפא בע\"מ",
		"מחיר לשעה: 84.00",
		"תאריך שעת התחלה שעת סיום",
		"01/01/2024 ראשון 08:00 17:00 8.50",
		"02/01/2024 שני 09:00 18:00 8.00",
	}, "\n")
	inputPath := filepath.Join(tmp, "report.txt")
	if err := os.WriteFile(inputPath, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _ := config.Load()
	registry := fonts.NewRegistry(cfg.FontSearchPaths)

	svc := NewService(db, cfg, registry, nil)
	outputPath := filepath.Join(tmp, "out", "varied.pdf")
	res, err := svc.Run(inputPath, internal.InputText, "moderate", 1, outputPath)
	if err != nil {
		t.Fatal(err)
	}
	if res.Records != 2 {
		t.Fatalf("records: got %d want 2", res.Records)
	}
	if res.TemplateType != internal.TemplateSimple {
		t.Fatalf("template: got %s", res.TemplateType)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("rendered pdf is empty")
	}

	rows, err := db.GetCompareRows(res.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("compare rows: got %d want 2", len(rows))
	}
	if rows[0].OrigStart != "08:00" {
		t.Fatalf("original start not preserved: %q", rows[0].OrigStart)
	}
	if rows[0].VariedStart == "" {
		t.Fatal("varied start missing")
	}

	xlsxPath := filepath.Join(tmp, "out", "compare.xlsx")
	if err := ExportCompareToXLSX(rows, xlsxPath); err != nil {
		t.Fatal(err)
	}
	if info, err := os.Stat(xlsxPath); err != nil || info.Size() == 0 {
		t.Fatalf("xlsx export missing: %v", err)
	}
}
