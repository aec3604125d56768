// Package preprocess cleans raw page images before recognition: grayscale
// conversion, deskew, binarization and noise removal, in that fixed order.
// Every transform derives a new image; inputs are never modified, so the
// same config applied to the same image always yields the same result.
package preprocess

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// Binarization policies.
const (
	BinarizationAdaptive = "adaptive"
	BinarizationOtsu     = "otsu"
	BinarizationNone     = "none"
)

// Noise removal policies.
const (
	NoiseMedian3 = "median_3"
	NoiseMedian5 = "median_5"
	NoiseNone    = "none"
)

// Config selects which transforms run. Stage order is not configurable.
type Config struct {
	Enabled                 bool   `yaml:"enabled"`
	Grayscale               bool   `yaml:"grayscale"`
	Deskew                  bool   `yaml:"deskew"`
	BinarizationMethod      string `yaml:"binarization_method"` // adaptive, otsu, or none/null
	AdaptiveThreshBlockSize int    `yaml:"adaptive_thresh_block_size"`
	AdaptiveThreshC         int    `yaml:"adaptive_thresh_c"`
	NoiseRemoval            string `yaml:"noise_removal"` // median_3, median_5, or none/null
}

// DefaultConfig returns the settings tuned for evenly lit A4 scans.
func DefaultConfig() Config {
	return Config{
		Enabled:                 true,
		Grayscale:               true,
		Deskew:                  true,
		BinarizationMethod:      BinarizationOtsu,
		AdaptiveThreshBlockSize: 11,
		AdaptiveThreshC:         2,
		NoiseRemoval:            NoiseMedian3,
	}
}

// Validate checks the policy names and parameter ranges.
func (c Config) Validate() error {
	switch c.binarization() {
	case BinarizationNone, BinarizationOtsu:
	case BinarizationAdaptive:
		if c.AdaptiveThreshBlockSize <= 1 || c.AdaptiveThreshBlockSize%2 == 0 {
			return fmt.Errorf("adaptive_thresh_block_size must be an odd integer greater than 1, got %d", c.AdaptiveThreshBlockSize)
		}
	default:
		return fmt.Errorf("binarization_method %q is not %q, %q or none", c.BinarizationMethod, BinarizationAdaptive, BinarizationOtsu)
	}
	switch c.noise() {
	case NoiseNone, NoiseMedian3, NoiseMedian5:
	default:
		return fmt.Errorf("noise_removal %q is not %q, %q or none", c.NoiseRemoval, NoiseMedian3, NoiseMedian5)
	}
	return nil
}

// binarization returns the canonical binarization policy. Empty strings,
// "none" and "null" (a quoted YAML null) all disable the stage.
func (c Config) binarization() string {
	return canonicalPolicy(c.BinarizationMethod)
}

func (c Config) noise() string {
	return canonicalPolicy(c.NoiseRemoval)
}

func (c Config) noiseKernel() int {
	switch c.noise() {
	case NoiseMedian3:
		return 3
	case NoiseMedian5:
		return 5
	}
	return 0
}

func canonicalPolicy(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "null" || s == "~" {
		return "none"
	}
	return s
}

// Preprocessor applies the configured transform chain to page images.
type Preprocessor struct {
	cfg Config
}

// New returns a Preprocessor for the given config. The config is copied;
// later changes to the caller's value have no effect.
func New(cfg Config) *Preprocessor {
	return &Preprocessor{cfg: cfg}
}

// Apply runs the enabled stages in fixed order and returns the derived
// image. With preprocessing disabled the input is returned unchanged.
func (p *Preprocessor) Apply(src image.Image) image.Image {
	if !p.cfg.Enabled {
		return src
	}
	img := src
	if p.cfg.Grayscale {
		img = toGray(img)
	}
	if p.cfg.Deskew {
		img = deskew(img)
	}
	switch p.cfg.binarization() {
	case BinarizationOtsu:
		img = otsuThreshold(toGray(img))
	case BinarizationAdaptive:
		img = adaptiveThreshold(toGray(img), p.cfg.AdaptiveThreshBlockSize, p.cfg.AdaptiveThreshC)
	}
	if k := p.cfg.noiseKernel(); k > 0 {
		img = medianFilter(toGray(img), k)
	}
	return img
}

// toGray converts any image to 8-bit grayscale. Images that are already
// *image.Gray pass through as-is.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	flat := imaging.Grayscale(img)
	b := flat.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		si := flat.PixOffset(0, y)
		di := gray.PixOffset(0, y)
		for x := 0; x < b.Dx(); x++ {
			gray.Pix[di+x] = flat.Pix[si+x*4]
		}
	}
	return gray
}
