// Package pipeline drives a batch: each discovered file is rasterized
// into page units, and every page runs preprocess → recognize →
// normalize → assemble → emit before the next one starts. Failures are
// isolated per unit: a corrupt file or a failed page is logged, counted
// and skipped, never aborting the batch.
package pipeline

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/paperlift/paperlift/internal/processing"
	"github.com/paperlift/paperlift/pkg/document"
	"github.com/paperlift/paperlift/pkg/logging"
	"github.com/paperlift/paperlift/pkg/preprocess"
	"github.com/paperlift/paperlift/pkg/rasterize"
	"github.com/paperlift/paperlift/pkg/recognize"
)

// Sink receives finished records. Emit returns where the record landed.
type Sink interface {
	Emit(record *document.OutputRecord) (string, error)
}

// Options wires the pipeline's collaborators.
type Options struct {
	Rasterizer    *rasterize.Rasterizer
	Preprocessor  *preprocess.Preprocessor
	Engine        recognize.Engine
	Normalizer    *processing.Normalizer
	NormalizeText bool // postprocessing toggle; raw text passes through when false
	Sink          Sink
}

// Pipeline processes one batch of input descriptors sequentially.
type Pipeline struct {
	opts   Options
	stats  *Collector
	logger zerolog.Logger
}

// New builds a pipeline with a fresh run ID carried on every log event.
func New(opts Options) *Pipeline {
	runID := uuid.New().String()
	return &Pipeline{
		opts:   opts,
		stats:  NewCollector(runID),
		logger: logging.GetLogger("pipeline").With().Str("run_id", runID).Logger(),
	}
}

// Run processes every descriptor and returns the batch report. The only
// error it returns is context cancellation; per-unit failures are in the
// report.
func (pl *Pipeline) Run(ctx context.Context, descriptors []document.InputDescriptor) (*Report, error) {
	pl.stats.SetDiscovered(len(descriptors))
	pl.logger.Info().
		Int("files", len(descriptors)).
		Str("engine", pl.opts.Engine.Name()).
		Msg("Batch starting")

	for _, desc := range descriptors {
		if err := ctx.Err(); err != nil {
			pl.logger.Warn().Err(err).Msg("Batch canceled")
			return pl.stats.Report(), err
		}
		pl.processFile(ctx, desc)
	}

	report := pl.stats.Report()
	pl.logger.Info().
		Int("files_discovered", report.FilesDiscovered).
		Int("files_failed", report.FilesFailed).
		Int("pages_emitted", report.PagesEmitted).
		Int("pages_failed", report.PagesFailed).
		Float64("avg_page_seconds", report.AvgPageSeconds).
		Float64("elapsed_seconds", report.ElapsedSeconds).
		Msg("Batch complete")
	return report, nil
}

// processFile walks one file's pages. A DecodeError skips the whole
// file; page-level failures are handled inside processPage.
func (pl *Pipeline) processFile(ctx context.Context, desc document.InputDescriptor) {
	logger := pl.logger.With().Str("file", desc.Path).Logger()

	step := time.Now()
	source, err := pl.opts.Rasterizer.Open(ctx, desc)
	pl.stats.RecordStageDuration(StageRasterize, time.Since(step))
	if err != nil {
		pl.reportFileError(logger, desc, err)
		return
	}
	defer source.Close()
	logger.Debug().Int("pages", source.Pages()).Msg("File opened")

	pages := 0
	for {
		step = time.Now()
		unit, err := source.Next(ctx)
		pl.stats.RecordStageDuration(StageRasterize, time.Since(step))
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			logger.Warn().Err(err).Msg("File abandoned, batch canceled")
			return
		}
		if err != nil {
			pl.reportFileError(logger, desc, err)
			return
		}
		pl.processPage(ctx, unit)
		pages++
	}
	logger.Debug().Int("pages", pages).Msg("File done")
}

// processPage runs one unit through the remaining stages. The record is
// assembled and emitted only after every stage succeeded; there are no
// partial records.
func (pl *Pipeline) processPage(ctx context.Context, unit *document.PageUnit) {
	start := time.Now()
	logger := pl.logger.With().
		Str("file", unit.Descriptor.Path).
		Int("page", unit.PageNumber).
		Logger()

	step := time.Now()
	cleaned := pl.opts.Preprocessor.Apply(unit.Image)
	pl.stats.RecordStageDuration(StagePreprocess, time.Since(step))

	step = time.Now()
	result, err := pl.opts.Engine.Recognize(ctx, cleaned)
	pl.stats.RecordStageDuration(StageRecognize, time.Since(step))
	if err != nil {
		pl.reportPageError(logger, unit, StageRecognize, time.Since(start), err)
		return
	}
	logger.Debug().
		Float64("mean_confidence", result.MeanConfidence).
		Int("raw_length", len(result.Text)).
		Msg("Page recognized")

	text := result.Text
	if pl.opts.NormalizeText {
		step = time.Now()
		var nres *processing.NormalizationResult
		text, nres = pl.opts.Normalizer.NormalizeWithResult(text)
		pl.stats.RecordStageDuration(StageNormalize, time.Since(step))
		logger.Debug().
			Strs("rules_applied", nres.RulesApplied).
			Int("normalized_length", nres.NormalizedLength).
			Msg("Page normalized")
	}

	record := assembleRecord(unit, result, text, time.Since(start))

	step = time.Now()
	path, err := pl.opts.Sink.Emit(record)
	pl.stats.RecordStageDuration(StageEmit, time.Since(step))
	if err != nil {
		pl.reportPageError(logger, unit, StageEmit, time.Since(start), err)
		return
	}

	elapsed := time.Since(start)
	pl.stats.RecordPage(PageMetric{
		File:     unit.Descriptor.Path,
		Page:     unit.PageNumber,
		Stage:    StageDone,
		Success:  true,
		Duration: elapsed,
	})
	logger.Info().
		Str("output", path).
		Dur("duration", elapsed).
		Msg("Page emitted")
}

// assembleRecord is pure field placement: identity, timing, engine
// settings and text, in the fixed three-group record shape.
func assembleRecord(unit *document.PageUnit, res *document.RecognitionResult, text string, elapsed time.Duration) *document.OutputRecord {
	desc := unit.Descriptor
	return &document.OutputRecord{
		DocumentInfo: document.DocumentInfo{
			InputDirectory:   desc.InputDirectory,
			RelativePath:     desc.RelativeDir,
			OriginalFilename: desc.Filename,
			SourceType:       desc.Type.PageSourceType(),
			PageNumber:       unit.PageNumber,
		},
		ProcessingInfo: document.ProcessingInfo{
			TimestampUTC:        time.Now().UTC().Format(time.RFC3339),
			DurationSec:         elapsed.Seconds(),
			OCREngineLang:       res.Language,
			TesseractConfigUsed: res.EngineConfig,
		},
		Content: document.Content{Text: text},
	}
}

func (pl *Pipeline) reportFileError(logger zerolog.Logger, desc document.InputDescriptor, err error) {
	pl.stats.RecordFileFailure(desc.Path, StageRasterize, err)
	logger.Error().
		Err(err).
		Str("stage", string(StageRasterize)).
		Msg("Skipping file")
}

func (pl *Pipeline) reportPageError(logger zerolog.Logger, unit *document.PageUnit, stage Stage, elapsed time.Duration, err error) {
	pl.stats.RecordPage(PageMetric{
		File:     unit.Descriptor.Path,
		Page:     unit.PageNumber,
		Stage:    stage,
		Success:  false,
		Duration: elapsed,
		Err:      err,
	})
	logger.Error().
		Err(err).
		Str("stage", string(stage)).
		Msg("Skipping page")
}
