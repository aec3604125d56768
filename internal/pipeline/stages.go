package pipeline

// Stage identifies where a unit is in its lifecycle and, on failure,
// which step it died in. A file moves discovered → rasterize, then each
// of its pages runs preprocess → recognize → normalize → assemble →
// emit; a unit that finishes every stage is done.
type Stage string

const (
	StageDiscovered Stage = "discovered"
	StageRasterize  Stage = "rasterize"
	StagePreprocess Stage = "preprocess"
	StageRecognize  Stage = "recognize"
	StageNormalize  Stage = "normalize"
	StageAssemble   Stage = "assemble"
	StageEmit       Stage = "emit"
	StageDone       Stage = "done"
)
