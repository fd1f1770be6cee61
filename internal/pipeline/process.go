package pipeline

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	mrand "math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"timecard/internal"
	"timecard/internal/config"
	"timecard/internal/fonts"
	"timecard/internal/storage"
)

// Service drives the whole pipeline: extract, analyze, parse, vary, render,
// persist. One Service handles one document at a time.
type Service struct {
	db       *storage.DB
	cfg      config.Config
	registry *fonts.Registry
	rng      *mrand.Rand
}

func NewService(db *storage.DB, cfg config.Config, registry *fonts.Registry, rng *mrand.Rand) *Service {
	if rng == nil {
		rng = mrand.New(mrand.NewSource(time.Now().UnixNano()))
	}
	return &Service{db: db, cfg: cfg, registry: registry, rng: rng}
}

type RunResult struct {
	DocumentID   int
	Records      int
	TemplateType internal.TemplateType
	Variations   int
	Outputs      []string
}

// Run executes the end-to-end flow and writes count varied documents. Zero
// parsed records or a render failure are fatal; an unreadable page structure
// is not, the renderer then uses its fallback layout.
func (s *Service) Run(inputPath string, inputType internal.InputType, level string, count int, outputPath string) (RunResult, error) {
	start := time.Now()

	doc, err := s.registerDocument(inputPath, inputType)
	if err != nil {
		return RunResult{}, err
	}

	text, err := ExtractText(inputType, inputPath, s.cfg)
	if err != nil {
		_ = s.db.UpdateDocumentStatus(doc.ID, "failed")
		return RunResult{}, fmt.Errorf("extract: %w", err)
	}

	if detect := DetectTimesheet(text); !detect.IsTimesheet {
		fmt.Printf("detect: low timesheet confidence score=%.2f reason=%s\n", detect.Score, detect.Reason)
	}

	report := ParseReport(text)
	if len(report.Records) == 0 {
		_ = s.db.UpdateDocumentStatus(doc.ID, "empty")
		return RunResult{}, fmt.Errorf("no attendance records parsed (template=%s)", report.TemplateType)
	}
	if _, err := s.db.InsertReport(doc.ID, "parsed", report); err != nil {
		return RunResult{}, err
	}

	structure := s.analyzeSample(inputPath, inputType)

	generator := NewGenerator(s.cfg, level, s.rng)
	outputs := []string{}
	var lastVaried internal.ParsedReport
	for i := 0; i < count; i++ {
		varied := generator.Variation(report)
		lastVaried = varied

		target := outputPath
		if count > 1 {
			target = numberedPath(outputPath, i+1)
		}
		if err := RenderPDF(varied, structure, s.cfg, s.registry, target); err != nil {
			_ = s.db.UpdateDocumentStatus(doc.ID, "failed")
			return RunResult{}, fmt.Errorf("render: %w", err)
		}
		outputs = append(outputs, target)
	}

	if _, err := s.db.InsertReport(doc.ID, "varied", lastVaried); err != nil {
		return RunResult{}, err
	}
	if err := s.db.UpdateDocumentStatus(doc.ID, "processed"); err != nil {
		return RunResult{}, err
	}

	_ = s.db.InsertRun(traceID(), doc.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"records": len(report.Records), "variations": count, "columns": len(structure.Columns)})

	return RunResult{
		DocumentID:   doc.ID,
		Records:      len(report.Records),
		TemplateType: report.TemplateType,
		Variations:   count,
		Outputs:      outputs,
	}, nil
}

// Parse extracts and parses without varying or rendering.
func (s *Service) Parse(inputPath string, inputType internal.InputType) (internal.ParsedReport, int, error) {
	doc, err := s.registerDocument(inputPath, inputType)
	if err != nil {
		return internal.ParsedReport{}, 0, err
	}

	text, err := ExtractText(inputType, inputPath, s.cfg)
	if err != nil {
		_ = s.db.UpdateDocumentStatus(doc.ID, "failed")
		return internal.ParsedReport{}, doc.ID, fmt.Errorf("extract: %w", err)
	}

	report := ParseReport(text)
	if _, err := s.db.InsertReport(doc.ID, "parsed", report); err != nil {
		return internal.ParsedReport{}, doc.ID, err
	}
	status := "parsed"
	if len(report.Records) == 0 {
		status = "empty"
	}
	_ = s.db.UpdateDocumentStatus(doc.ID, status)
	return report, doc.ID, nil
}

func (s *Service) registerDocument(inputPath string, inputType internal.InputType) (internal.DocumentRow, error) {
	blob, err := os.ReadFile(inputPath)
	if err != nil {
		return internal.DocumentRow{}, err
	}
	sum := sha256.Sum256(blob)
	return s.db.UpsertDocument(inputPath, string(inputType), hex.EncodeToString(sum[:8]))
}

// analyzeSample recovers the sample page's structure; only PDFs carry
// geometry, and a failure just means the fallback layout renders instead.
func (s *Service) analyzeSample(inputPath string, inputType internal.InputType) internal.PageStructure {
	if inputType != internal.InputPDF {
		return AnalyzePage(nil, s.cfg.SamplePage+1, 0, 0)
	}
	spans, width, height, err := ReadGlyphPage(inputPath, s.cfg.SamplePage)
	if err != nil {
		fmt.Printf("structure analysis skipped: %v\n", err)
		return AnalyzePage(nil, s.cfg.SamplePage+1, 0, 0)
	}
	return AnalyzePage(spans, s.cfg.SamplePage+1, width, height)
}

func numberedPath(path string, n int) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + fmt.Sprintf("_%d", n) + ext
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
