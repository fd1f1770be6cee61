package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"timecard/internal"
	"timecard/internal/config"
	"timecard/internal/fonts"
	"timecard/internal/pipeline"
	"timecard/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	registry := fonts.NewRegistry(cfg.FontSearchPaths)

	cmd := os.Args[1]
	switch cmd {
	case "analyze":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input PDF path")
		page := fs.Int("page", cfg.SamplePage, "zero-based page index")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		spans, width, height, err := pipeline.ReadGlyphPage(*input, *page)
		must(err)
		structure := pipeline.AnalyzePage(spans, *page+1, width, height)
		blob, err := json.MarshalIndent(structure, "", "  ")
		must(err)
		fmt.Println(string(blob))
	case "parse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "", "pdf|eml|html|text")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" {
			must(fmt.Errorf("--input is required"))
		}
		kind, err := resolveInputType(*input, *inType)
		must(err)
		svc := pipeline.NewService(db, cfg, registry, nil)
		report, docID, err := svc.Parse(*input, kind)
		must(err)
		blob, err := json.MarshalIndent(report, "", "  ")
		must(err)
		fmt.Println(string(blob))
		fmt.Printf("parsed documentId=%d records=%d template=%s\n", docID, len(report.Records), report.TemplateType)
	case "vary":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		output := fs.String("output", "", "output PDF path")
		level := fs.String("level", cfg.DefaultLevel, "minimal|moderate|significant")
		count := fs.Int("count", 1, "number of varied documents")
		inType := fs.String("type", "", "pdf|eml|html|text")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*input) == "" || strings.TrimSpace(*output) == "" {
			must(fmt.Errorf("--input and --output are required"))
		}
		if *count < 1 {
			must(fmt.Errorf("--count must be at least 1"))
		}
		kind, err := resolveInputType(*input, *inType)
		must(err)
		svc := pipeline.NewService(db, cfg, registry, nil)
		res, err := svc.Run(*input, kind, *level, *count, *output)
		must(err)
		fmt.Printf("vary done documentId=%d records=%d template=%s outputs=%d\n",
			res.DocumentID, res.Records, res.TemplateType, len(res.Outputs))
		for _, out := range res.Outputs {
			fmt.Printf("  %s\n", out)
		}
	case "export:xlsx":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		documentID := fs.Int("documentId", 0, "internal document id")
		out := fs.String("out", "", "output xlsx path")
		_ = fs.Parse(os.Args[2:])
		if *documentID == 0 || strings.TrimSpace(*out) == "" {
			must(fmt.Errorf("--documentId and --out are required"))
		}
		rows, err := db.GetCompareRows(*documentID)
		must(err)
		if len(rows) == 0 {
			must(fmt.Errorf("no compare rows for documentId=%d", *documentID))
		}
		must(pipeline.ExportCompareToXLSX(rows, *out))
		fmt.Printf("exported %d rows to %s\n", len(rows), *out)
	default:
		usage()
		os.Exit(1)
	}
}

func resolveInputType(path, explicit string) (internal.InputType, error) {
	value := strings.ToLower(strings.TrimSpace(explicit))
	if value == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			value = "pdf"
		case ".eml":
			value = "eml"
		case ".html", ".htm":
			value = "html"
		default:
			value = "text"
		}
	}
	switch value {
	case "pdf":
		return internal.InputPDF, nil
	case "eml":
		return internal.InputEML, nil
	case "html":
		return internal.InputHTML, nil
	case "text", "txt":
		return internal.InputText, nil
	default:
		return "", fmt.Errorf("unsupported input type: %s", explicit)
	}
}

func usage() {
	fmt.Println("usage: timecard <command>")
	fmt.Println("commands:")
	fmt.Println("  analyze --input=report.pdf [--page=0]")
	fmt.Println("  parse --input=report.pdf [--type=pdf|eml|html|text]")
	fmt.Println("  vary --input=report.pdf --output=out.pdf [--level=moderate] [--count=1] [--type=...]")
	fmt.Println("  export:xlsx --documentId=1 --out=./out/compare.xlsx")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
