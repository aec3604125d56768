package preprocess

import "image"

// otsuThreshold binarizes against the single global threshold that
// maximizes between-class variance of the intensity histogram. Suited to
// evenly lit scans.
func otsuThreshold(g *image.Gray) *image.Gray {
	hist := histogram(g)
	return applyThreshold(g, otsuLevel(hist))
}

// adaptiveThreshold binarizes each pixel against the arithmetic mean of
// its block×block neighborhood minus the offset c, computed with an
// integral image. Suited to unevenly lit or photographed pages. The
// threshold is clamped to [0, 254] so already-binary images are fixed
// points of the transform.
func adaptiveThreshold(g *image.Gray, block, c int) *image.Gray {
	if block < 3 {
		block = 3
	}
	if block%2 == 0 {
		block++
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return dst
	}

	// integral[(y+1)*stride+x+1] holds the sum over the rectangle [0,x]×[0,y]
	stride := w + 1
	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			rowSum += int64(g.Pix[si+x])
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	r := block / 2
	for y := 0; y < h; y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		di := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			x0, y0 := maxInt(x-r, 0), maxInt(y-r, 0)
			x1, y1 := minInt(x+r+1, w), minInt(y+r+1, h)
			area := int64((x1 - x0) * (y1 - y0))
			sum := integral[y1*stride+x1] - integral[y0*stride+x1] -
				integral[y1*stride+x0] + integral[y0*stride+x0]
			t := float64(sum)/float64(area) - float64(c)
			if t < 0 {
				t = 0
			} else if t > 254 {
				t = 254
			}
			if float64(g.Pix[si+x]) > t {
				dst.Pix[di+x] = 255
			} else {
				dst.Pix[di+x] = 0
			}
		}
	}
	return dst
}

// histogram counts intensities over the whole image.
func histogram(g *image.Gray) [256]int {
	var hist [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := g.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			hist[g.Pix[i+x]]++
		}
	}
	return hist
}

// otsuLevel picks the threshold maximizing between-class variance.
func otsuLevel(hist [256]int) uint8 {
	total := 0
	for _, n := range hist {
		total += n
	}
	if total == 0 {
		return 0
	}
	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}
	var sumB, wB float64
	best := -1.0
	bestT := 0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			bestT = t
		}
	}
	return uint8(bestT)
}

// applyThreshold maps pixels above t to white and the rest to black.
func applyThreshold(g *image.Gray, t uint8) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		si := g.PixOffset(b.Min.X, b.Min.Y+y)
		di := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			if g.Pix[si+x] > t {
				dst.Pix[di+x] = 255
			} else {
				dst.Pix[di+x] = 0
			}
		}
	}
	return dst
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
