package recognize

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/paperlift/paperlift/pkg/document"
	"github.com/paperlift/paperlift/pkg/logging"
)

// engineVar is one Tesseract variable extracted from the config string.
type engineVar struct {
	key   string
	value string
}

// Tesseract recognizes text through the gosseract client. A fresh client
// is created per page and closed afterwards, so no engine state leaks
// between pages.
type Tesseract struct {
	cfg           Config
	clientFactory func() *gosseract.Client

	// parsed once from the opaque config string
	psm      int // -1 when the string does not set one
	tessdata string
	vars     []engineVar
}

// NewTesseract parses the engine options out of cfg and returns the
// adapter. Unrecognized options are logged and ignored rather than
// failing the run; the raw string is still echoed into every record.
func NewTesseract(cfg Config) *Tesseract {
	t := &Tesseract{
		cfg:           cfg,
		clientFactory: gosseract.NewClient,
		psm:           -1,
	}
	logger := logging.GetLogger("recognize")

	var unknown []string
	t.psm, t.tessdata, t.vars, unknown = parseEngineConfig(cfg.EngineConfig)
	for _, tok := range unknown {
		logger.Warn().Str("option", tok).Msg("Ignoring unrecognized engine option")
	}

	if cfg.TessdataDir != "" {
		if t.tessdata == "" {
			t.tessdata = cfg.TessdataDir
		} else {
			logger.Warn().
				Str("tessdata_dir", cfg.TessdataDir).
				Str("from_config_string", t.tessdata).
				Msg("tessdata-dir set twice; the engine config string wins")
		}
	}
	return t
}

func (t *Tesseract) Name() string { return "tesseract" }

// Recognize runs one page through Tesseract and returns the raw text
// with the settings that produced it.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (*document.RecognitionResult, error) {
	if img == nil {
		return nil, &RecognitionError{Stage: "encode", Reason: "no image provided"}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &RecognitionError{Stage: "encode", Reason: "encoding page image", Err: err}
	}

	client := t.clientFactory()
	defer client.Close()

	if err := client.SetLanguage(t.cfg.Language); err != nil {
		return nil, &RecognitionError{Stage: "configure", Reason: "setting language " + t.cfg.Language, Err: err}
	}
	if t.tessdata != "" {
		if err := client.SetTessdataPrefix(t.tessdata); err != nil {
			return nil, &RecognitionError{Stage: "configure", Reason: "setting tessdata dir " + t.tessdata, Err: err}
		}
	}
	if t.psm >= 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(t.psm)); err != nil {
			return nil, &RecognitionError{Stage: "configure", Reason: "setting page segmentation mode", Err: err}
		}
	}
	for _, v := range t.vars {
		if err := client.SetVariable(gosseract.SettableVariable(v.key), v.value); err != nil {
			return nil, &RecognitionError{Stage: "configure", Reason: "setting variable " + v.key, Err: err}
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, &RecognitionError{Stage: "configure", Reason: "loading page image", Err: err}
	}

	text, err := client.Text()
	if err != nil {
		return nil, &RecognitionError{Stage: "recognize", Reason: "text extraction failed", Err: err}
	}

	return &document.RecognitionResult{
		Text:           text,
		Language:       t.cfg.Language,
		EngineConfig:   t.cfg.EngineConfig,
		MeanConfidence: meanConfidence(client),
	}, nil
}

// meanConfidence averages word confidences for the page just recognized.
// Best effort: when boxes are unavailable it reports zero.
func meanConfidence(client *gosseract.Client) float64 {
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}

// parseEngineConfig translates the CLI-style option string into client
// calls: --psm and --oem, --tessdata-dir, --dpi, and key=value pairs
// (optionally behind -c). Anything else is returned for warning logs.
func parseEngineConfig(s string) (psm int, tessdata string, vars []engineVar, unknown []string) {
	psm = -1
	tokens := strings.Fields(s)
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		next := func() (string, bool) {
			if i+1 < len(tokens) {
				i++
				return tokens[i], true
			}
			return "", false
		}
		switch {
		case tok == "--psm" || tok == "-psm":
			if v, ok := next(); ok {
				if n, err := strconv.Atoi(v); err == nil {
					psm = n
					continue
				}
			}
			unknown = append(unknown, tok)
		case tok == "--oem":
			if v, ok := next(); ok {
				if _, err := strconv.Atoi(v); err == nil {
					vars = append(vars, engineVar{"tessedit_ocr_engine_mode", v})
					continue
				}
			}
			unknown = append(unknown, tok)
		case tok == "--tessdata-dir":
			if v, ok := next(); ok {
				tessdata = strings.Trim(v, `"'`)
				continue
			}
			unknown = append(unknown, tok)
		case tok == "--dpi":
			if v, ok := next(); ok {
				if _, err := strconv.Atoi(v); err == nil {
					vars = append(vars, engineVar{"user_defined_dpi", v})
					continue
				}
			}
			unknown = append(unknown, tok)
		case tok == "-c":
			if v, ok := next(); ok {
				if k, val, found := strings.Cut(v, "="); found && k != "" {
					vars = append(vars, engineVar{k, val})
					continue
				}
			}
			unknown = append(unknown, tok)
		default:
			if k, val, found := strings.Cut(tok, "="); found && k != "" && !strings.HasPrefix(k, "-") {
				vars = append(vars, engineVar{k, val})
				continue
			}
			unknown = append(unknown, tok)
		}
	}
	return psm, tessdata, vars, unknown
}
