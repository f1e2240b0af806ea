package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/avolkov/recordlens/internal/cache"
	"github.com/avolkov/recordlens/internal/model"
	"github.com/avolkov/recordlens/internal/ocr"
	"github.com/avolkov/recordlens/internal/pipeline"
)

var (
	claimsPath    string
	outJSON       string
	outMD         string
	timeout       time.Duration
	ocrScoreFlag  float64
	forceEnhanced bool
	noCache       bool
	cacheDir      string
	ocrModel      string
	ocrBaseURL    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <document>",
	Short: "Analyze a single document and generate an annotation report",
	Long: `Analyze extracts text from a medical-legal document (PDF, HTML, or
plain text), evaluates the supplied claims against it, and derives:
- Per-claim evidence-quality ratings and assertion types
- A chronological timeline with gap and density flags
- Contradiction and missing-test findings
- An aggregate 0-100 document quality score

Claims are supplied as a JSON array produced by an upstream extraction
step; without a claims file only the extraction stages run.

Example:
  recordlens analyze record.pdf --claims claims.json
  recordlens analyze record.pdf --claims claims.json --json report.json --md report.md
  recordlens analyze scan.pdf --claims claims.json --force-enhanced`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags
	analyzeCmd.Flags().StringVar(&claimsPath, "claims", "", "claims JSON file from the upstream extraction step")
	analyzeCmd.Flags().Float64Var(&ocrScoreFlag, "ocr-score", -1, "overall OCR confidence from the upstream step (0-1, negative means unknown)")
	analyzeCmd.Flags().BoolVar(&forceEnhanced, "force-enhanced", false, "force enhanced extraction even when embedded text looks usable")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// OCR flags
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall analysis timeout (OCR of large scans can be slow)")
	analyzeCmd.Flags().StringVar(&ocrModel, "ocr-model", "", "recognition model name (default from config)")
	analyzeCmd.Flags().StringVar(&ocrBaseURL, "ocr-base-url", "", "recognition endpoint base URL (default from config)")
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the OCR response cache")
	analyzeCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "OCR cache directory (default: ~/.recordlens/cache)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger := newLogger()
	cfg := buildConfig()

	document, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}

	var claims []model.Claim
	if claimsPath != "" {
		data, err := os.ReadFile(claimsPath)
		if err != nil {
			return fmt.Errorf("read claims: %w", err)
		}
		claims, err = model.ParseClaims(data)
		if err != nil {
			return err
		}
	}

	var breakdown *model.ScoreBreakdown
	if ocrScoreFlag >= 0 {
		score := ocrScoreFlag
		breakdown = &model.ScoreBreakdown{OCRScore: &score}
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Claims: %d\n", len(claims))
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintln(os.Stderr)
	}

	analyzer := pipeline.New(cfg, buildPort(cfg, logger), nil, logger)

	report, err := analyzer.AnalyzeDocument(ctx, path, document, claims, breakdown, forceEnhanced)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Extraction mode: %s (metrics %.2f)\n", report.Extraction.Mode, report.Extraction.Metrics.Score)
		fmt.Fprintf(os.Stderr, "✓ Timeline events: %d\n", len(report.Annotations.Timeline))
		fmt.Fprintf(os.Stderr, "✓ Quality score: %d/100\n", report.Annotations.MedicalQualityScore)
		fmt.Fprintln(os.Stderr)
	}

	return writeReport(report)
}

// buildConfig merges defaults with the loaded config file and flag
// overrides. The API key only ever comes from the environment.
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()
	if err := unmarshalConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: ignoring malformed config file: %v\n", err)
	}

	cfg.OCR.APIKey = os.Getenv("OPENAI_API_KEY")
	if ocrModel != "" {
		cfg.OCR.Model = ocrModel
	}
	if ocrBaseURL != "" {
		cfg.OCR.BaseURL = ocrBaseURL
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	if cfg.Cache.Dir == "" {
		cfg.Cache.Dir = defaultCacheDir()
	}
	return cfg
}

// buildPort constructs the OCR port, wrapped in the layered cache when
// caching is enabled. Identical input bytes always produce identical
// text, so memoization cannot break determinism.
func buildPort(cfg *model.Config, logger *slog.Logger) ocr.Port {
	port := ocr.Port(ocr.NewOpenAIPort(cfg.OCR, logger))
	if cfg.Cache.Enabled {
		store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		port = ocr.NewCachedPort(port, store)
	}
	return port
}

func writeReport(report *model.Report) error {
	data, err := pipeline.RenderJSON(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outJSON, data, 0o644); err != nil {
		return fmt.Errorf("write JSON report: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outJSON)

	if outMD != "" {
		if err := os.WriteFile(outMD, []byte(pipeline.RenderMarkdown(report)), 0o644); err != nil {
			return fmt.Errorf("write Markdown report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", outMD)
	}
	return nil
}
