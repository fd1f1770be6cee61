package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jhillyerd/enmime"
	pdf "github.com/ledongthuc/pdf"

	"timecard/internal"
	"timecard/internal/config"
	"timecard/internal/util"
)

// ExtractText pulls the raw text of a timesheet document. Backends per input
// type run in priority order; a backend whose output is shorter than
// cfg.MinTextChars falls through to the next one. Only when every backend
// comes up empty is the error fatal.
func ExtractText(inputType internal.InputType, path string, cfg config.Config) (string, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	switch inputType {
	case internal.InputPDF:
		return extractPDFText(blob, cfg)
	case internal.InputEML:
		return extractEMLText(blob, cfg)
	case internal.InputHTML:
		return extractHTMLText(blob, cfg)
	case internal.InputText:
		return util.Sanitize(string(blob)), nil
	default:
		return "", fmt.Errorf("unsupported input type: %s", inputType)
	}
}

func extractPDFText(blob []byte, cfg config.Config) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(blob), int64(len(blob)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	if text := plainTextBackend(r, cfg.MaxPages); len(strings.TrimSpace(text)) >= cfg.MinTextChars {
		return util.Sanitize(text), nil
	}

	// Fallback: rebuild lines from positioned runs when the plain-text walk
	// yields too little (common with sparse or rotated content streams).
	if text := contentRunBackend(r, cfg.MaxPages); strings.TrimSpace(text) != "" {
		return util.Sanitize(text), nil
	}

	return "", fmt.Errorf("no extractable text in pdf")
}

func plainTextBackend(r *pdf.Reader, maxPages int) string {
	parts := []string{}
	n := r.NumPage()
	if n > maxPages {
		n = maxPages
	}
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n")
}

// contentRunBackend groups a page's text runs by baseline and emits one line
// per row, left to right.
func contentRunBackend(r *pdf.Reader, maxPages int) string {
	lines := []string{}
	n := r.NumPage()
	if n > maxPages {
		n = maxPages
	}
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		texts := p.Content().Text
		sort.SliceStable(texts, func(a, b int) bool {
			if texts[a].Y != texts[b].Y {
				return texts[a].Y > texts[b].Y
			}
			return texts[a].X < texts[b].X
		})

		var sb strings.Builder
		lastY := -1.0
		for _, t := range texts {
			if lastY >= 0 && t.Y != lastY {
				lines = append(lines, sb.String())
				sb.Reset()
			} else if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(t.S)
			lastY = t.Y
		}
		if sb.Len() > 0 {
			lines = append(lines, sb.String())
		}
	}
	return strings.Join(lines, "\n")
}

// extractEMLText handles timesheets arriving as mail attachments: PDF
// attachments first, then the HTML body table, then the plain-text body.
func extractEMLText(blob []byte, cfg config.Config) (string, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(blob))
	if err != nil {
		return "", fmt.Errorf("read envelope: %w", err)
	}

	for _, att := range env.Attachments {
		if !strings.HasSuffix(strings.ToLower(att.FileName), ".pdf") {
			continue
		}
		if text, err := extractPDFText(att.Content, cfg); err == nil {
			return text, nil
		}
	}

	if env.HTML != "" {
		if text, err := extractHTMLText([]byte(env.HTML), cfg); err == nil && len(text) >= cfg.MinTextChars {
			return text, nil
		}
	}
	if strings.TrimSpace(env.Text) != "" {
		return util.Sanitize(env.Text), nil
	}

	return "", fmt.Errorf("no usable timesheet content in message")
}

// extractHTMLText flattens HTML table rows into space-joined lines the
// parser's line grammar understands.
func extractHTMLText(blob []byte, cfg config.Config) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(blob))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	lines := []string{}
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := []string{}
		row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
			if text := util.NormalizeSpaces(cell.Text()); text != "" {
				cells = append(cells, text)
			}
		})
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " "))
		}
	})

	if len(lines) == 0 {
		// No tables; fall back to the document text.
		return util.Sanitize(doc.Text()), nil
	}
	return util.Sanitize(strings.Join(lines, "\n")), nil
}
