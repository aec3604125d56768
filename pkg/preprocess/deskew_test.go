package preprocess

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stripePage draws horizontal ink stripes on white paper, a stand-in for
// printed text lines.
func stripePage() *image.Gray {
	return fillGray(400, 300, func(x, y int) uint8 {
		if x >= 20 && x < 380 && y%40 >= 10 && y%40 < 16 {
			return 0
		}
		return 255
	})
}

func TestEstimateSkew_StraightPageIsZero(t *testing.T) {
	angle := estimateSkew(stripePage())
	assert.InDelta(t, 0.0, angle, 0.2)
}

func TestEstimateSkew_RecoversRotation(t *testing.T) {
	rotated := imaging.Rotate(stripePage(), 8, color.White)

	angle := estimateSkew(rotated)
	assert.InDelta(t, 8.0, math.Abs(angle), 1.0, "magnitude of the skew must be detected")
}

func TestDeskew_StraightensRotatedPage(t *testing.T) {
	rotated := imaging.Rotate(stripePage(), 7, color.White)

	fixed := deskew(rotated)
	require.NotNil(t, fixed)

	residual := estimateSkew(fixed)
	assert.InDelta(t, 0.0, residual, 1.0, "correction must leave the stripes level")
}

func TestDeskew_LeavesStraightPageAlone(t *testing.T) {
	page := stripePage()
	out := deskew(page)
	assert.True(t, out == image.Image(page), "near-zero estimates must not trigger a rotation")
}

func TestDeskew_SkipsBlankPages(t *testing.T) {
	blank := fillGray(200, 200, func(x, y int) uint8 { return 255 })
	out := deskew(blank)
	assert.True(t, out == image.Image(blank), "nothing to estimate from, image passes through")
}

func TestProfileScore_PeaksWhenRowsAligned(t *testing.T) {
	var xs, ys []int32
	for x := int32(0); x < 100; x++ {
		xs = append(xs, x, x)
		ys = append(ys, 10, 20)
	}

	width := 100
	bins := make([]int, width+30+1)
	aligned := profileScore(xs, ys, 0, width, bins)
	tilted := profileScore(xs, ys, 5, width, bins)

	assert.Greater(t, aligned, tilted, "level rows concentrate into fewer bins")
}
