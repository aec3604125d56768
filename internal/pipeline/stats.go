package pipeline

import (
	"sync"
	"time"

	"github.com/paperlift/paperlift/pkg/logging"
)

// PageMetric records the outcome of one page unit.
type PageMetric struct {
	File     string
	Page     int
	Stage    Stage // StageDone on success, otherwise the failed stage
	Success  bool
	Duration time.Duration
	Err      error
}

// Collector accumulates batch statistics. It is safe for concurrent use
// even though the pipeline runs units sequentially.
type Collector struct {
	mu sync.Mutex

	runID           string
	started         time.Time
	metrics         []PageMetric
	stageSeconds    map[Stage]time.Duration
	filesDiscovered int
	filesFailed     int
	pagesEmitted    int
	pagesFailed     int
}

// NewCollector starts the batch clock.
func NewCollector(runID string) *Collector {
	return &Collector{
		runID:        runID,
		started:      time.Now(),
		stageSeconds: make(map[Stage]time.Duration),
	}
}

// SetDiscovered records how many files the walker produced.
func (c *Collector) SetDiscovered(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filesDiscovered = n
}

// RecordPage records one finished or failed page unit.
func (c *Collector) RecordPage(m PageMetric) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics = append(c.metrics, m)
	if m.Success {
		c.pagesEmitted++
	} else {
		c.pagesFailed++
	}

	logger := logging.GetLogger("stats").With().
		Str("file", m.File).
		Int("page", m.Page).
		Str("stage", string(m.Stage)).
		Bool("success", m.Success).
		Dur("duration", m.Duration).
		Logger()
	if m.Err != nil {
		logger = logger.With().Err(m.Err).Logger()
	}
	logger.Debug().Msg("Page metric recorded")
}

// RecordStageDuration adds time spent in one stage to its cumulative
// total, whether or not the stage succeeded.
func (c *Collector) RecordStageDuration(stage Stage, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stageSeconds[stage] += d
}

// RecordFileFailure records a file that never produced pages, or stopped
// producing them partway.
func (c *Collector) RecordFileFailure(path string, stage Stage, err error) {
	c.mu.Lock()
	c.filesFailed++
	c.mu.Unlock()

	logging.GetLogger("stats").Debug().
		Str("file", path).
		Str("stage", string(stage)).
		Err(err).
		Msg("File failure recorded")
}

// Report is the batch summary.
type Report struct {
	RunID           string             `json:"run_id"`
	FilesDiscovered int                `json:"files_discovered"`
	FilesFailed     int                `json:"files_failed"`
	PagesEmitted    int                `json:"pages_emitted"`
	PagesFailed     int                `json:"pages_failed"`
	AvgPageSeconds  float64            `json:"avg_page_seconds"`
	StageSeconds    map[string]float64 `json:"stage_seconds"`
	ElapsedSeconds  float64            `json:"elapsed_seconds"`
}

// Succeeded reports whether the batch counts as a success: something was
// emitted, or there was nothing to do and nothing failed.
func (r *Report) Succeeded() bool {
	if r.PagesEmitted > 0 {
		return true
	}
	return r.FilesDiscovered == 0 && r.FilesFailed == 0 && r.PagesFailed == 0
}

// Report summarizes everything recorded so far.
func (c *Collector) Report() *Report {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total time.Duration
	var succeeded int
	for _, m := range c.metrics {
		if m.Success {
			total += m.Duration
			succeeded++
		}
	}
	avg := 0.0
	if succeeded > 0 {
		avg = (total / time.Duration(succeeded)).Seconds()
	}
	stages := make(map[string]float64, len(c.stageSeconds))
	for stage, d := range c.stageSeconds {
		stages[string(stage)] = d.Seconds()
	}
	return &Report{
		RunID:           c.runID,
		FilesDiscovered: c.filesDiscovered,
		FilesFailed:     c.filesFailed,
		PagesEmitted:    c.pagesEmitted,
		PagesFailed:     c.pagesFailed,
		AvgPageSeconds:  avg,
		StageSeconds:    stages,
		ElapsedSeconds:  time.Since(c.started).Seconds(),
	}
}
