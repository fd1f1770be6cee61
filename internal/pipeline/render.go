package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"timecard/internal"
	"timecard/internal/config"
	"timecard/internal/fonts"
)

// RenderPDF draws a plan built from the varied report and the recovered page
// structure. The file is written to a temporary path and renamed into place
// so a failed render never leaves a partial document.
func RenderPDF(report internal.ParsedReport, structure internal.PageStructure, cfg config.Config, registry *fonts.Registry, outputPath string) error {
	plan := BuildPlan(report, structure)

	doc := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: plan.Width, Ht: plan.Height},
	})
	doc.SetMargins(plan.Margins.Left, plan.Margins.Top, plan.Margins.Right)
	doc.SetAutoPageBreak(false, plan.Margins.Bottom)

	family := registerFonts(doc, cfg, registry)

	for _, op := range plan.Ops {
		if op.NewPage {
			doc.AddPage()
			continue
		}
		drawCell(doc, family, op, registry)
	}
	if err := doc.Error(); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	return writeAtomic(doc, outputPath)
}

// registerFonts loads the resolved Hebrew-capable TrueType faces, falling
// back to the Helvetica core font when none is installed.
func registerFonts(doc *gofpdf.Fpdf, cfg config.Config, registry *fonts.Registry) string {
	regular := registry.Resolve(cfg.DefaultFont)
	if regular == "" {
		fmt.Printf("render: no TrueType font found for %q, hebrew text will degrade\n", cfg.DefaultFont)
		return "Helvetica"
	}

	doc.AddUTF8Font("doc", "", regular)
	if bold := registry.Resolve(cfg.DefaultFont + "-Bold"); bold != "" {
		doc.AddUTF8Font("doc", "B", bold)
	} else {
		doc.AddUTF8Font("doc", "B", regular)
	}
	return "doc"
}

func drawCell(doc *gofpdf.Fpdf, family string, op DrawOp, registry *fonts.Registry) {
	style := ""
	if op.Bold {
		style = "B"
	}
	doc.SetFont(family, style, op.FontSize)

	border := ""
	if op.Border {
		border = "1"
	}
	if op.Fill {
		doc.SetFillColor(74, 74, 74)
		doc.SetTextColor(245, 245, 245)
	} else {
		doc.SetTextColor(0, 0, 0)
	}

	text := op.Text
	if op.RTL && family != "Helvetica" {
		text = fonts.ShapeRTL(text)
	}

	doc.SetXY(op.X, op.Y)
	doc.CellFormat(op.W, op.H, text, border, 0, op.Align, op.Fill, 0, "")

	if op.Fill {
		doc.SetTextColor(0, 0, 0)
	}
}

func writeAtomic(doc *gofpdf.Fpdf, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".timecard-*.pdf")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := doc.OutputFileAndClose(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write pdf: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
