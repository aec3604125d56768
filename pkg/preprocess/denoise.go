package preprocess

import "image"

// medianFilter replaces each pixel with the median of its k×k
// neighborhood (k odd), clamping the window at the edges. This is the
// standard salt-and-pepper cleaner for binarized scans.
func medianFilter(g *image.Gray, k int) *image.Gray {
	if k%2 == 0 {
		k++
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	r := k / 2
	window := make([]uint8, 0, k*k)
	for y := 0; y < h; y++ {
		di := dst.PixOffset(0, y)
		for x := 0; x < w; x++ {
			window = window[:0]
			for dy := -r; dy <= r; dy++ {
				sy := clampInt(y+dy, 0, h-1)
				si := g.PixOffset(b.Min.X, b.Min.Y+sy)
				for dx := -r; dx <= r; dx++ {
					sx := clampInt(x+dx, 0, w-1)
					window = append(window, g.Pix[si+sx])
				}
			}
			dst.Pix[di+x] = medianOf(window)
		}
	}
	return dst
}

// medianOf sorts in place; the windows are tiny, insertion sort wins.
func medianOf(vals []uint8) uint8 {
	for i := 1; i < len(vals); i++ {
		v := vals[i]
		j := i - 1
		for j >= 0 && vals[j] > v {
			vals[j+1] = vals[j]
			j--
		}
		vals[j+1] = v
	}
	return vals[len(vals)/2]
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
