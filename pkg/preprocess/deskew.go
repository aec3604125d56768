package preprocess

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

const (
	// Corrections at or below this angle are skipped: the page is already
	// straight and rotating would only blur it.
	deskewMinAngle = 0.5
	// Estimates beyond this angle are treated as mis-detection on noisy
	// input and skipped rather than applied destructively.
	deskewMaxAngle = 45.0
	// Angle estimation runs on a thumbnail no larger than this.
	deskewThumbSize = 600
	// Below this many foreground pixels there is nothing to estimate from.
	deskewMinPoints = 64
)

// deskew estimates the dominant text-line angle and rotates the image to
// correct it, filling the exposed border with white. Near-zero and
// implausible estimates leave the image untouched.
func deskew(img image.Image) image.Image {
	angle := estimateSkew(img)
	if math.Abs(angle) <= deskewMinAngle || math.Abs(angle) > deskewMaxAngle {
		return img
	}
	return imaging.Rotate(img, angle, color.White)
}

// estimateSkew finds the rotation angle that makes text rows sharpest,
// using a projection profile: dark (foreground) pixels of an Otsu mask
// are rotated by candidate angles and the squared row-histogram energy is
// maximized. A coarse 1-degree sweep over ±45° is refined to 0.1°.
func estimateSkew(img image.Image) float64 {
	thumb := imaging.Fit(img, deskewThumbSize, deskewThumbSize, imaging.Lanczos)
	g := toGray(thumb)
	level := otsuLevel(histogram(g))
	xs, ys := foregroundPoints(g, level)
	if len(xs) < deskewMinPoints {
		return 0
	}

	w, h := g.Bounds().Dx(), g.Bounds().Dy()
	bins := make([]int, w+h+1)

	best := math.Inf(-1)
	bestAngle := 0.0
	for a := -deskewMaxAngle; a <= deskewMaxAngle; a++ {
		if s := profileScore(xs, ys, a, w, bins); s > best {
			best, bestAngle = s, a
		}
	}
	coarse := bestAngle
	for i := -9; i <= 9; i++ {
		a := coarse + float64(i)/10
		if a < -deskewMaxAngle || a > deskewMaxAngle {
			continue
		}
		if s := profileScore(xs, ys, a, w, bins); s > best {
			best, bestAngle = s, a
		}
	}
	return bestAngle
}

// foregroundPoints collects coordinates of pixels at or below the
// threshold, i.e. the dark text on light paper.
func foregroundPoints(g *image.Gray, level uint8) ([]int32, []int32) {
	b := g.Bounds()
	var xs, ys []int32
	for y := 0; y < b.Dy(); y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < b.Dx(); x++ {
			if g.Pix[si+x] <= level {
				xs = append(xs, int32(x))
				ys = append(ys, int32(y))
			}
		}
	}
	return xs, ys
}

// profileScore rotates the foreground points by angle degrees (the same
// counter-clockwise convention imaging.Rotate uses), bins their row
// coordinates and returns the sum of squared bin counts. Sharply peaked
// profiles, i.e. well-aligned text rows, score highest.
func profileScore(xs, ys []int32, angle float64, width int, bins []int) float64 {
	for i := range bins {
		bins[i] = 0
	}
	rad := angle * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	for i := range xs {
		row := -float64(xs[i])*sin + float64(ys[i])*cos
		idx := int(math.Round(row)) + width
		if idx >= 0 && idx < len(bins) {
			bins[idx]++
		}
	}
	var score float64
	for _, n := range bins {
		score += float64(n) * float64(n)
	}
	return score
}
