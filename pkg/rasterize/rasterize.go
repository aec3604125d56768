// Package rasterize turns one input file into an ordered, lazy sequence
// of raw page images. Plain raster images decode to a single page; PDFs
// are rendered one page per call so peak memory stays flat no matter how
// long the document is.
package rasterize

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/paperlift/paperlift/pkg/document"
	"github.com/paperlift/paperlift/pkg/logging"
)

// Config holds PDF rasterization settings.
type Config struct {
	DPI          int    `yaml:"dpi"`           // render resolution for PDF pages
	PdftoppmPath string `yaml:"pdftoppm_path"` // poppler renderer binary
}

// DefaultConfig returns the settings the original scans were produced at.
func DefaultConfig() Config {
	return Config{
		DPI:          300,
		PdftoppmPath: "pdftoppm",
	}
}

// Validate checks the rasterization parameters.
func (c Config) Validate() error {
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be a positive integer, got %d", c.DPI)
	}
	if c.PdftoppmPath == "" {
		return fmt.Errorf("pdftoppm_path cannot be empty")
	}
	return nil
}

// DecodeError marks an input file that could not be read, parsed or
// rendered. It is reported per file; the batch continues.
type DecodeError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("decode %s: %s", e.Path, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// PageSource is a lazy, finite, non-restartable sequence of page images
// in page order. Next returns io.EOF once the sequence is exhausted.
type PageSource interface {
	Next(ctx context.Context) (*document.PageUnit, error)
	Pages() int
	Close() error
}

// Rasterizer opens input files as page sources.
type Rasterizer struct {
	cfg Config
}

// New returns a Rasterizer. A missing renderer binary is only a warning
// here: batches without PDFs still run, and each PDF fails on its own
// with a DecodeError.
func New(cfg Config) *Rasterizer {
	if _, err := exec.LookPath(cfg.PdftoppmPath); err != nil {
		logging.GetLogger("rasterize").Warn().
			Str("pdftoppm_path", cfg.PdftoppmPath).
			Msg("pdftoppm not found; PDF inputs will fail to decode")
	}
	return &Rasterizer{cfg: cfg}
}

// Open validates the file and returns its page source. The returned
// source must be closed by the caller.
func (r *Rasterizer) Open(ctx context.Context, desc document.InputDescriptor) (PageSource, error) {
	if err := desc.Validate(); err != nil {
		return nil, &DecodeError{Path: desc.Path, Reason: "invalid descriptor", Err: err}
	}
	switch desc.Type {
	case document.SourceImage:
		return newImageSource(desc)
	case document.SourcePDF:
		return newPDFSource(r.cfg, desc)
	}
	return nil, &DecodeError{Path: desc.Path, Reason: fmt.Sprintf("unsupported source type %q", desc.Type)}
}
