// CLAUDE:SUMMARY Entry point for the bomex CLI — classify, extract, and profiles subcommands.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/hazyhaar/bomex/bompipe"
	"github.com/hazyhaar/bomex/export"
	"github.com/hazyhaar/bomex/ocrpdf"
	"github.com/hazyhaar/bomex/pdfgrid"
	"github.com/hazyhaar/bomex/profile"
)

func main() {
	cmd := &cli.Command{
		Name:  "bomex",
		Usage: "Extract bill-of-materials tables from engineering drawing PDFs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn, or error",
				Value: "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "classify",
				Usage:     "Report whether a PDF has a usable text layer",
				ArgsUsage: "<input.pdf>",
				Action:    runClassify,
			},
			{
				Name:      "extract",
				Usage:     "Extract and normalize BOM tables",
				ArgsUsage: "<input.pdf>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "pages",
						Aliases: []string{"p"},
						Usage:   "page selection, e.g. \"1-3,5\" or \"all\"",
						Value:   "all",
					},
					&cli.StringFlag{
						Name:    "customer",
						Aliases: []string{"c"},
						Usage:   "customer profile key (auto-detected when empty)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output directory (default: alongside input)",
					},
					&cli.StringFlag{
						Name:  "profiles",
						Usage: "YAML file with additional customer profiles",
					},
					&cli.BoolFlag{
						Name:  "force-ocr",
						Usage: "re-rasterize and OCR every page before extraction",
					},
					&cli.StringFlag{
						Name:  "roi",
						Usage: "region of interest as page:x0,y0,x1,y1 in image coordinates",
					},
				},
				Action: runExtract,
			},
			{
				Name:   "profiles",
				Usage:  "List registered customer profiles",
				Action: runProfiles,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func setupLogger(cmd *cli.Command) *slog.Logger {
	var lvl slog.Level
	switch cmd.String("log-level") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func runClassify(ctx context.Context, cmd *cli.Command) error {
	logger := setupLogger(cmd)
	input := cmd.Args().First()
	if input == "" {
		return fmt.Errorf("usage: bomex classify <input.pdf>")
	}

	classifier := bompipe.NewClassifier(bompipe.Config{Logger: logger})
	class := classifier.Classify(ctx, input)
	fmt.Println(class)
	return nil
}

func runExtract(ctx context.Context, cmd *cli.Command) error {
	logger := setupLogger(cmd)
	input := cmd.Args().First()
	if input == "" {
		return fmt.Errorf("usage: bomex extract [flags] <input.pdf>")
	}

	pages, err := bompipe.ParsePages(cmd.String("pages"))
	if err != nil {
		return err
	}

	var roi *bompipe.Region
	if spec := cmd.String("roi"); spec != "" {
		roi, err = parseROI(spec)
		if err != nil {
			return err
		}
	}

	registry := profile.NewRegistry(logger)
	if path := cmd.String("profiles"); path != "" {
		if err := registry.LoadFile(path); err != nil {
			return err
		}
	}

	ocr := ocrpdf.New(ocrpdf.Config{Logger: logger})
	engineCfg := pdfgrid.Config{Logger: logger}
	if !ocr.Available() {
		// No ocrmypdf: fall back to direct tesseract for textless pages.
		engineCfg.Recognizer = ocrpdf.NewRecognizer()
		logger.Warn("ocrmypdf not found, using direct tesseract fallback")
	}
	engine, err := pdfgrid.New(engineCfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	customer := cmd.String("customer")
	force := cmd.Bool("force-ocr")
	if customer == "" {
		if text, err := bompipe.SampleText(input, 3); err == nil {
			customer = registry.DetectCustomer(text)
			if customer != "" {
				logger.Info("customer auto-detected", "key", customer)
			}
		}
	}
	if p := registry.Lookup(customer); p.ForceOCR {
		force = true
	}

	orch := bompipe.New(bompipe.Config{
		Engine: engine,
		OCR:    ocr,
		Logger: logger,
	})

	result, err := orch.Extract(ctx, bompipe.Request{
		Path:     input,
		Pages:    pages,
		ForceOCR: force,
		ROI:      roi,
	})
	if err != nil {
		return err
	}

	merged, err := registry.Apply(result.Tables, customer)
	if err != nil {
		return err
	}

	outDir := cmd.String("output")
	if outDir == "" {
		outDir = filepath.Dir(input)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))

	mergedPath := filepath.Join(outDir, base+"_merged.csv")
	if err := export.WriteMerged(mergedPath, merged); err != nil {
		return err
	}
	tablePaths, err := export.WriteTables(outDir, base+"_extracted", result.Tables)
	if err != nil {
		return err
	}

	logger.Info("extraction complete",
		"merged", mergedPath,
		"tables", len(tablePaths),
		"rows", len(merged.Rows),
		"class", result.Doc.Class,
	)
	fmt.Println(mergedPath)
	return nil
}

func runProfiles(_ context.Context, cmd *cli.Command) error {
	logger := setupLogger(cmd)
	registry := profile.NewRegistry(logger)
	for _, key := range registry.Keys() {
		fmt.Println(key)
	}
	return nil
}

// parseROI parses "page:x0,y0,x1,y1".
func parseROI(spec string) (*bompipe.Region, error) {
	var r bompipe.Region
	if _, err := fmt.Sscanf(spec, "%d:%g,%g,%g,%g", &r.Page, &r.X0, &r.Y0, &r.X1, &r.Y1); err != nil {
		return nil, fmt.Errorf("roi %q: want page:x0,y0,x1,y1: %w", spec, err)
	}
	if err := r.Valid(); err != nil {
		return nil, err
	}
	return &r, nil
}
