// Package sink persists output records as JSON files, one per page,
// mirroring the source subfolder under the output directory.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/paperlift/paperlift/pkg/document"
)

// unsafeRun matches character runs that have no place in a filename.
// Letters and digits of any script survive, so Cyrillic basenames do.
var unsafeRun = regexp.MustCompile(`[^\p{L}\p{N}_.\-]+`)

// SanitizeFilename collapses unsafe character runs to a single
// underscore and trims the edges. An empty result falls back to
// "unnamed_file".
func SanitizeFilename(name string) string {
	s := unsafeRun.ReplaceAllString(name, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "unnamed_file"
	}
	return s
}

// FileSink writes records under a root output directory.
type FileSink struct {
	outputDir string
}

// NewFileSink creates the output directory if needed.
func NewFileSink(outputDir string) (*FileSink, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir %s: %w", outputDir, err)
	}
	return &FileSink{outputDir: outputDir}, nil
}

// Emit writes one record as <sanitized-base>_page_<N>.json with
// two-space indentation and raw UTF-8, and returns the written path.
func (s *FileSink) Emit(record *document.OutputRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", err
	}

	dir := s.outputDir
	if rel := record.DocumentInfo.RelativePath; rel != "" && rel != "." {
		dir = filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("creating output subdir %s: %w", dir, err)
		}
	}

	base := record.DocumentInfo.OriginalFilename
	base = strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s_page_%d.json", SanitizeFilename(base), record.DocumentInfo.PageNumber)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
