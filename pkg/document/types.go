package document

import (
	"fmt"
	"image"
)

// SourceType classifies an input file.
type SourceType string

const (
	SourceImage SourceType = "image"
	SourcePDF   SourceType = "pdf"
)

// PageSourceType returns the classification recorded on a per-page record.
// Pages rendered out of a PDF are "pdf_page"; plain images stay "image".
func (s SourceType) PageSourceType() string {
	if s == SourcePDF {
		return "pdf_page"
	}
	return string(s)
}

// InputDescriptor identifies one source file discovered in the input
// directory. Immutable once discovered.
type InputDescriptor struct {
	Path           string     // absolute path to the file
	Filename       string     // base name, e.g. "scan_001.png"
	RelativeDir    string     // subfolder relative to the input dir, "." at top level
	InputDirectory string     // base name of the input dir, for provenance
	Type           SourceType // image or pdf
}

// Validate checks that the descriptor carries everything downstream
// stages rely on.
func (d *InputDescriptor) Validate() error {
	if d.Path == "" {
		return fmt.Errorf("input descriptor has no path")
	}
	if d.Filename == "" {
		return fmt.Errorf("input descriptor %q has no filename", d.Path)
	}
	if d.Type != SourceImage && d.Type != SourcePDF {
		return fmt.Errorf("input descriptor %q has unknown type %q", d.Path, d.Type)
	}
	return nil
}

// PageUnit is the atomic unit of work: one page's raster image plus the
// identity of the file it came from. Page numbers are 1-based; a plain
// image is always page 1. Stages derive new images from Image rather than
// mutating it.
type PageUnit struct {
	Descriptor InputDescriptor
	PageNumber int
	Image      image.Image
}

// RecognitionResult is the raw engine output for one page together with
// the exact engine settings that produced it.
type RecognitionResult struct {
	Text           string
	Language       string
	EngineConfig   string
	MeanConfidence float64 // 0..1 averaged over recognized words, logging only
}

// OutputRecord is the terminal artifact, one per page.
type OutputRecord struct {
	DocumentInfo   DocumentInfo   `json:"document_info"`
	ProcessingInfo ProcessingInfo `json:"processing_info"`
	Content        Content        `json:"content"`
}

// DocumentInfo identifies where the page came from.
type DocumentInfo struct {
	InputDirectory   string `json:"input_directory"`
	RelativePath     string `json:"relative_path"`
	OriginalFilename string `json:"original_filename"`
	SourceType       string `json:"source_type"`
	PageNumber       int    `json:"page_number"`
}

// ProcessingInfo records when and how the page was processed.
type ProcessingInfo struct {
	TimestampUTC        string  `json:"timestamp_utc"`
	DurationSec         float64 `json:"duration_sec"`
	OCREngineLang       string  `json:"ocr_engine_lang"`
	TesseractConfigUsed string  `json:"tesseract_config_used"`
}

// Content holds the normalized page text.
type Content struct {
	Text string `json:"text"`
}

// Validate checks if the record has required fields
func (r *OutputRecord) Validate() error {
	if r.DocumentInfo.OriginalFilename == "" {
		return fmt.Errorf("record original_filename cannot be empty")
	}
	if r.DocumentInfo.SourceType != "image" && r.DocumentInfo.SourceType != "pdf_page" {
		return fmt.Errorf("record source_type %q is not image or pdf_page", r.DocumentInfo.SourceType)
	}
	if r.DocumentInfo.PageNumber < 1 {
		return fmt.Errorf("record page_number must be positive, got %d", r.DocumentInfo.PageNumber)
	}
	if r.ProcessingInfo.TimestampUTC == "" {
		return fmt.Errorf("record timestamp_utc cannot be empty")
	}
	return nil
}
