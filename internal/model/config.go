package model

import (
	"runtime"
	"time"
)

// ExtractionConfig holds every tunable of the extraction pipeline. The
// thresholds carry no documented rationale beyond observed behavior, so
// they are named and overridable rather than inlined.
type ExtractionConfig struct {
	// Strategy selection
	MinCharsPerPage   float64 `yaml:"min_chars_per_page" mapstructure:"min_chars_per_page"`     // below this density, go enhanced
	MaxWeirdCharRatio float64 `yaml:"max_weird_char_ratio" mapstructure:"max_weird_char_ratio"` // above this, go enhanced
	MaxBaseFileBytes  int64   `yaml:"max_base_file_bytes" mapstructure:"max_base_file_bytes"`   // above this, go enhanced
	ShortCircuitChars int     `yaml:"short_circuit_chars" mapstructure:"short_circuit_chars"`   // base mode returns local text above this

	// Rendering and preprocessing
	RenderDPI     int     `yaml:"render_dpi" mapstructure:"render_dpi"`
	MaxOCRPages   int     `yaml:"max_ocr_pages" mapstructure:"max_ocr_pages"`
	DeskewMaxDeg  float64 `yaml:"deskew_max_deg" mapstructure:"deskew_max_deg"`
	DeskewStepDeg float64 `yaml:"deskew_step_deg" mapstructure:"deskew_step_deg"`
	PageWorkers   int     `yaml:"page_workers" mapstructure:"page_workers"`

	// Metrics scorer
	MaxNonPrintableRatio float64 `yaml:"max_non_printable_ratio" mapstructure:"max_non_printable_ratio"`
	MaxShortLineRatio    float64 `yaml:"max_short_line_ratio" mapstructure:"max_short_line_ratio"`
	MaxDigitRatio        float64 `yaml:"max_digit_ratio" mapstructure:"max_digit_ratio"`
	MinTextLength        int     `yaml:"min_text_length" mapstructure:"min_text_length"`
}

// AnalysisConfig holds every tunable of the analysis stages.
type AnalysisConfig struct {
	// Evidence evaluation
	MinOCRConfidence      float64 `yaml:"min_ocr_confidence" mapstructure:"min_ocr_confidence"`           // per-claim downgrade threshold
	LowOCRSectionScore    float64 `yaml:"low_ocr_section_score" mapstructure:"low_ocr_section_score"`     // document-level flag threshold
	WeakEvidenceRatio     float64 `yaml:"weak_evidence_ratio" mapstructure:"weak_evidence_ratio"`         // low-quality share that escalates the flag
	SnippetSearchPrefix   int     `yaml:"snippet_search_prefix" mapstructure:"snippet_search_prefix"`     // chars of the value used to locate a snippet
	SnippetWindow         int     `yaml:"snippet_window" mapstructure:"snippet_window"`                   // backfilled snippet length
	MinTraceableSnippet   int     `yaml:"min_traceable_snippet" mapstructure:"min_traceable_snippet"`     // snippet length that counts as traceability
	DefaultConfidence     float64 `yaml:"default_confidence" mapstructure:"default_confidence"`           // prior when the claim has none
	MinAdjustedConfidence float64 `yaml:"min_adjusted_confidence" mapstructure:"min_adjusted_confidence"`

	// Timeline construction
	MergeWindowDays   int     `yaml:"merge_window_days" mapstructure:"merge_window_days"`
	GapDays           int     `yaml:"gap_days" mapstructure:"gap_days"`
	DensityWindowDays int     `yaml:"density_window_days" mapstructure:"density_window_days"`
	DensityMinEvents  int     `yaml:"density_min_events" mapstructure:"density_min_events"`
	MinDescription    int     `yaml:"min_description" mapstructure:"min_description"`
	HiddenEventRatio  float64 `yaml:"hidden_event_ratio" mapstructure:"hidden_event_ratio"`

	// Quality scoring
	MinDatedRatio        float64 `yaml:"min_dated_ratio" mapstructure:"min_dated_ratio"`
	MinTraceableRatio    float64 `yaml:"min_traceable_ratio" mapstructure:"min_traceable_ratio"`
	MaxGenericRatio      float64 `yaml:"max_generic_ratio" mapstructure:"max_generic_ratio"`
	MaxLowEvidenceRatio  float64 `yaml:"max_low_evidence_ratio" mapstructure:"max_low_evidence_ratio"`
	MaxCriticalFlagRatio float64 `yaml:"max_critical_flag_ratio" mapstructure:"max_critical_flag_ratio"`
	NoClaimsScore        int     `yaml:"no_claims_score" mapstructure:"no_claims_score"`
}

// OCRConfig configures the external text-recognition port.
type OCRConfig struct {
	APIKey            string        `yaml:"-" mapstructure:"-"` // from env, never persisted
	BaseURL           string        `yaml:"base_url" mapstructure:"base_url"`
	Model             string        `yaml:"model" mapstructure:"model"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig configures host-level OCR response caching.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// Config is the full host configuration.
type Config struct {
	Extraction ExtractionConfig `yaml:"extraction" mapstructure:"extraction"`
	Analysis   AnalysisConfig   `yaml:"analysis" mapstructure:"analysis"`
	OCR        OCRConfig        `yaml:"ocr" mapstructure:"ocr"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
}

// DefaultConfig returns the built-in defaults. These values reproduce the
// observed behavior of the system and are the single source of defaults
// for flags, env, and config files.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			MinCharsPerPage:      350,
			MaxWeirdCharRatio:    0.25,
			MaxBaseFileBytes:     8 << 20,
			ShortCircuitChars:    200,
			RenderDPI:            300,
			MaxOCRPages:          10,
			DeskewMaxDeg:         2.0,
			DeskewStepDeg:        0.5,
			PageWorkers:          runtime.NumCPU(),
			MaxNonPrintableRatio: 0.2,
			MaxShortLineRatio:    0.4,
			MaxDigitRatio:        0.4,
			MinTextLength:        200,
		},
		Analysis: AnalysisConfig{
			MinOCRConfidence:      0.55,
			LowOCRSectionScore:    0.5,
			WeakEvidenceRatio:     0.4,
			SnippetSearchPrefix:   20,
			SnippetWindow:         160,
			MinTraceableSnippet:   8,
			DefaultConfidence:     0.75,
			MinAdjustedConfidence: 0.2,
			MergeWindowDays:       30,
			GapDays:               180,
			DensityWindowDays:     30,
			DensityMinEvents:      4,
			MinDescription:        6,
			HiddenEventRatio:      0.3,
			MinDatedRatio:         0.5,
			MinTraceableRatio:     0.5,
			MaxGenericRatio:       0.4,
			MaxLowEvidenceRatio:   0.4,
			MaxCriticalFlagRatio:  0.25,
			NoClaimsScore:         40,
		},
		OCR: OCRConfig{
			Model:             "gpt-4o-mini",
			Timeout:           60 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
	}
}
