package recognize

import (
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Engine = (*Tesseract)(nil)

func TestParseEngineConfig(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		psm      int
		tessdata string
		vars     []engineVar
		unknown  []string
	}{
		{
			name:  "empty string",
			input: "",
			psm:   -1,
		},
		{
			name:  "psm long form",
			input: "--psm 6",
			psm:   6,
		},
		{
			name:  "psm short form",
			input: "-psm 4",
			psm:   4,
		},
		{
			name:    "psm without value",
			input:   "--psm",
			psm:     -1,
			unknown: []string{"--psm"},
		},
		{
			name:    "psm with garbage value",
			input:   "--psm abc",
			psm:     -1,
			unknown: []string{"--psm"},
		},
		{
			name:  "oem becomes engine mode variable",
			input: "--oem 1",
			psm:   -1,
			vars:  []engineVar{{"tessedit_ocr_engine_mode", "1"}},
		},
		{
			name:     "tessdata dir",
			input:    "--tessdata-dir /usr/share/tessdata",
			psm:      -1,
			tessdata: "/usr/share/tessdata",
		},
		{
			name:     "tessdata dir with quotes",
			input:    `--tessdata-dir "/opt/tessdata"`,
			psm:      -1,
			tessdata: "/opt/tessdata",
		},
		{
			name:  "dpi becomes variable",
			input: "--dpi 300",
			psm:   -1,
			vars:  []engineVar{{"user_defined_dpi", "300"}},
		},
		{
			name:  "explicit config pair",
			input: "-c preserve_interword_spaces=1",
			psm:   -1,
			vars:  []engineVar{{"preserve_interword_spaces", "1"}},
		},
		{
			name:  "bare config pair",
			input: "load_system_dawg=0",
			psm:   -1,
			vars:  []engineVar{{"load_system_dawg", "0"}},
		},
		{
			name:    "dangling -c",
			input:   "-c",
			psm:     -1,
			unknown: []string{"-c"},
		},
		{
			name:    "-c without key value shape",
			input:   "-c badpair",
			psm:     -1,
			unknown: []string{"-c"},
		},
		{
			name:    "unrecognized flag",
			input:   "--foobar",
			psm:     -1,
			unknown: []string{"--foobar"},
		},
		{
			name:  "everything at once",
			input: "--psm 6 --oem 1 -c preserve_interword_spaces=1 --dpi 400 --tessdata-dir /td extra=2 --weird",
			psm:   6,
			vars: []engineVar{
				{"tessedit_ocr_engine_mode", "1"},
				{"preserve_interword_spaces", "1"},
				{"user_defined_dpi", "400"},
				{"extra", "2"},
			},
			tessdata: "/td",
			unknown:  []string{"--weird"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			psm, tessdata, vars, unknown := parseEngineConfig(tt.input)
			assert.Equal(t, tt.psm, psm)
			assert.Equal(t, tt.tessdata, tessdata)
			assert.Equal(t, tt.vars, vars)
			assert.Equal(t, tt.unknown, unknown)
		})
	}
}

func TestNewTesseract_ParsesConfigString(t *testing.T) {
	engine := NewTesseract(Config{
		Language:     "rus",
		EngineConfig: "--psm 6 -c preserve_interword_spaces=1",
	})

	assert.Equal(t, "tesseract", engine.Name())
	assert.Equal(t, 6, engine.psm)
	assert.Equal(t, "", engine.tessdata)
	assert.Equal(t, []engineVar{{"preserve_interword_spaces", "1"}}, engine.vars)
	assert.NotNil(t, engine.clientFactory)
}

func TestNewTesseract_TessdataFromConfigField(t *testing.T) {
	engine := NewTesseract(Config{
		Language:    "rus",
		TessdataDir: "/data/tessdata",
	})
	assert.Equal(t, "/data/tessdata", engine.tessdata)
}

func TestNewTesseract_ConfigStringWinsTessdata(t *testing.T) {
	engine := NewTesseract(Config{
		Language:     "rus",
		EngineConfig: "--tessdata-dir /from/string",
		TessdataDir:  "/from/field",
	})
	assert.Equal(t, "/from/string", engine.tessdata)
}

func TestTesseract_RecognizeNilImage(t *testing.T) {
	engine := NewTesseract(DefaultConfig())

	_, err := engine.Recognize(context.Background(), nil)
	var recErr *RecognitionError
	require.ErrorAs(t, err, &recErr)
	assert.Equal(t, "encode", recErr.Stage)
}

func TestTesseract_RecognizeCanceledContext(t *testing.T) {
	engine := NewTesseract(DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Recognize(ctx, image.NewGray(image.Rect(0, 0, 4, 4)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	err := Config{}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "language")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "rus", cfg.Language)
	assert.Empty(t, cfg.EngineConfig)
	assert.Empty(t, cfg.TessdataDir)
}

func TestRecognitionError_Format(t *testing.T) {
	inner := errors.New("missing traineddata")
	err := &RecognitionError{Stage: "configure", Reason: "setting language rus", Err: inner}

	assert.Contains(t, err.Error(), "configure")
	assert.Contains(t, err.Error(), "setting language rus")
	assert.Contains(t, err.Error(), "missing traineddata")
	assert.ErrorIs(t, err, inner)

	bare := &RecognitionError{Stage: "encode", Reason: "no image provided"}
	assert.Equal(t, "recognition encode: no image provided", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
