// Package discover walks the input directory and produces one
// InputDescriptor per supported file, in lexical order.
package discover

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/paperlift/paperlift/pkg/document"
	"github.com/paperlift/paperlift/pkg/logging"
)

// imageExtensions are the raster formats accepted as single-page inputs.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

// Discover walks inputDir recursively. PDFs and raster images become
// descriptors; everything else is skipped with a debug log. Unreadable
// subdirectories are skipped rather than aborting the batch.
func Discover(inputDir string) ([]document.InputDescriptor, error) {
	logger := logging.GetLogger("discover")

	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving input dir %s: %w", inputDir, err)
	}
	label := filepath.Base(absInput)

	var descriptors []document.InputDescriptor
	walkErr := filepath.WalkDir(absInput, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable entry")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		var srcType document.SourceType
		switch ext := strings.ToLower(filepath.Ext(d.Name())); {
		case ext == ".pdf":
			srcType = document.SourcePDF
		case imageExtensions[ext]:
			srcType = document.SourceImage
		default:
			logger.Debug().Str("file", path).Msg("Skipping unsupported file type")
			return nil
		}

		rel, err := filepath.Rel(absInput, filepath.Dir(path))
		if err != nil {
			rel = "."
		}
		descriptors = append(descriptors, document.InputDescriptor{
			Path:           path,
			Filename:       d.Name(),
			RelativeDir:    filepath.ToSlash(rel),
			InputDirectory: label,
			Type:           srcType,
		})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walking %s: %w", inputDir, walkErr)
	}

	logger.Info().
		Int("files", len(descriptors)).
		Str("input_dir", inputDir).
		Msg("Discovery complete")
	return descriptors, nil
}
