// Package recognize adapts the external text-recognition engine. The
// engine is a black box behind a narrow interface: a cleaned page image
// goes in, raw recognized text comes out. Engine failures surface as
// RecognitionError so the caller can skip the page without masking them
// as generic processing failures.
package recognize

import (
	"context"
	"fmt"
	"image"

	"github.com/paperlift/paperlift/pkg/document"
)

// Config holds the engine settings for a run.
type Config struct {
	Language     string `yaml:"language"`     // engine language code, e.g. "rus"
	EngineConfig string `yaml:"config"`       // opaque engine options such as "--psm 6", echoed into records verbatim
	TessdataDir  string `yaml:"tessdata_dir"` // optional language data override
}

// DefaultConfig targets printed Russian pages with engine defaults.
func DefaultConfig() Config {
	return Config{
		Language:     "rus",
		EngineConfig: "",
		TessdataDir:  "",
	}
}

// Validate checks the engine settings.
func (c Config) Validate() error {
	if c.Language == "" {
		return fmt.Errorf("language cannot be empty")
	}
	return nil
}

// RecognitionError marks an engine invocation failure on one page, for
// example missing language data or a rejected image. The page is
// skipped; the batch continues. No retries.
type RecognitionError struct {
	Stage  string // encode, configure, recognize
	Reason string
	Err    error
}

func (e *RecognitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recognition %s: %s: %v", e.Stage, e.Reason, e.Err)
	}
	return fmt.Sprintf("recognition %s: %s", e.Stage, e.Reason)
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// Engine is the adapter contract. Implementations carry their language
// and configuration; the result records the exact settings used.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, img image.Image) (*document.RecognitionResult, error)
}
