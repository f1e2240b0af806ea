package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/avolkov/recordlens/internal/model"
	"github.com/avolkov/recordlens/internal/pipeline"
	"github.com/avolkov/recordlens/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// documentExtensions lists the file types the batch command picks up.
var documentExtensions = map[string]bool{
	".pdf":  true,
	".html": true,
	".htm":  true,
	".txt":  true,
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Analyze every document in a directory in parallel",
	Long: `Batch analyzes all supported documents (.pdf, .html, .txt) in a
directory. A claims file named <document>.claims.json next to a document
is picked up automatically; documents without one run extraction only.

Each document produces a JSON and a Markdown report in the output
directory.

Example:
  recordlens batch ./records
  recordlens batch ./records --concurrency 4 --output-dir ./reports
  recordlens batch ./records --timeout 30m`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./recordlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Float64Var(&ocrScoreFlag, "ocr-score", -1, "overall OCR confidence applied to every document (0-1, negative means unknown)")
	batchCmd.Flags().BoolVar(&forceEnhanced, "force-enhanced", false, "force enhanced extraction for every document")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the OCR response cache")
	batchCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "OCR cache directory (default: ~/.recordlens/cache)")
}

type batchResult struct {
	path   string
	report *model.Report
	err    error
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	logger := newLogger()
	cfg := buildConfig()

	files, err := collectDocuments(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported documents in %s", dir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Analyzing %d documents with %d workers\n\n", len(files), concurrency)

	analyzer := pipeline.New(cfg, buildPort(cfg, logger), nil, logger)

	var breakdown *model.ScoreBreakdown
	if ocrScoreFlag >= 0 {
		score := ocrScoreFlag
		breakdown = &model.ScoreBreakdown{OCRScore: &score}
	}

	// Per-document failures are part of the result, not pool errors, so
	// one bad scan never cancels the rest of the batch.
	results, err := worker.Map(ctx, len(files), concurrency, func(ctx context.Context, i int) (batchResult, error) {
		path := files[i]
		report, err := analyzeOne(ctx, analyzer, path, breakdown)
		return batchResult{path: path, report: report, err: err}, nil
	})
	if err != nil {
		return fmt.Errorf("batch processing: %w", err)
	}

	successCount, failureCount := 0, 0
	for _, r := range results {
		if r.err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.path, r.err)
			continue
		}
		if err := writeBatchReport(r.report, r.path); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.path, err)
			continue
		}
		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (score: %d/100)\n", r.path, r.report.Annotations.MedicalQualityScore)
	}

	fmt.Fprintf(os.Stderr, "\nTotal: %d, success: %d, failures: %d, output: %s\n",
		len(results), successCount, failureCount, outputDir)
	return nil
}

func analyzeOne(ctx context.Context, analyzer *pipeline.Analyzer, path string, breakdown *model.ScoreBreakdown) (*model.Report, error) {
	document, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var claims []model.Claim
	if data, err := os.ReadFile(claimsSidecar(path)); err == nil {
		claims, err = model.ParseClaims(data)
		if err != nil {
			return nil, err
		}
	}

	return analyzer.AnalyzeDocument(ctx, filepath.Base(path), document, claims, breakdown, forceEnhanced)
}

// claimsSidecar returns the path of the claims file belonging to a document
func claimsSidecar(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".claims.json"
}

func collectDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if documentExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func writeBatchReport(report *model.Report, path string) error {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	data, err := pipeline.RenderJSON(report)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, base+".json"), data, 0o644); err != nil {
		return fmt.Errorf("write JSON report: %w", err)
	}
	md := pipeline.RenderMarkdown(report)
	if err := os.WriteFile(filepath.Join(outputDir, base+".md"), []byte(md), 0o644); err != nil {
		return fmt.Errorf("write Markdown report: %w", err)
	}
	return nil
}
