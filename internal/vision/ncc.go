package vision

import (
	"image"
	"image/draw"
	"math"

	_ "image/jpeg"
	_ "image/png"
)

// ToGray converts any decoded image to a zero-origin grayscale bitmap.
func ToGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}

// MatchTemplate slides tpl over screen and returns the best zero-mean
// normalized cross-correlation score and the top-left offset where it
// occurs. Scores land in [-1, 1]; windows or templates with no variance
// score 0. ok is false when the screen is smaller than the template in
// either dimension.
func MatchTemplate(screen, tpl *image.Gray) (score float64, at image.Point, ok bool) {
	sw, sh := screen.Rect.Dx(), screen.Rect.Dy()
	tw, th := tpl.Rect.Dx(), tpl.Rect.Dy()
	if tw == 0 || th == 0 || sw < tw || sh < th {
		return 0, image.Point{}, false
	}

	n := float64(tw * th)

	// Zero-mean template and its norm, computed once.
	var tSum float64
	for y := 0; y < th; y++ {
		row := tpl.Pix[y*tpl.Stride : y*tpl.Stride+tw]
		for _, p := range row {
			tSum += float64(p)
		}
	}
	tMean := tSum / n
	tDiff := make([]float64, tw*th)
	var tNormSq float64
	for y := 0; y < th; y++ {
		row := tpl.Pix[y*tpl.Stride : y*tpl.Stride+tw]
		for x, p := range row {
			d := float64(p) - tMean
			tDiff[y*tw+x] = d
			tNormSq += d * d
		}
	}
	tNorm := math.Sqrt(tNormSq)

	// Integral images over the screen for O(1) window sum and sum of
	// squares.
	iw, ih := sw+1, sh+1
	sum := make([]float64, iw*ih)
	sumSq := make([]float64, iw*ih)
	for y := 0; y < sh; y++ {
		row := screen.Pix[y*screen.Stride : y*screen.Stride+sw]
		var rowSum, rowSumSq float64
		for x, p := range row {
			v := float64(p)
			rowSum += v
			rowSumSq += v * v
			sum[(y+1)*iw+x+1] = sum[y*iw+x+1] + rowSum
			sumSq[(y+1)*iw+x+1] = sumSq[y*iw+x+1] + rowSumSq
		}
	}

	best := math.Inf(-1)
	var bestAt image.Point
	for v := 0; v+th <= sh; v++ {
		for u := 0; u+tw <= sw; u++ {
			winSum := sum[(v+th)*iw+u+tw] - sum[v*iw+u+tw] - sum[(v+th)*iw+u] + sum[v*iw+u]
			winSumSq := sumSq[(v+th)*iw+u+tw] - sumSq[v*iw+u+tw] - sumSq[(v+th)*iw+u] + sumSq[v*iw+u]
			winVar := winSumSq - winSum*winSum/n

			var s float64
			if tNorm > 1e-12 && winVar > 1e-12 {
				var cross float64
				for y := 0; y < th; y++ {
					srow := screen.Pix[(v+y)*screen.Stride+u : (v+y)*screen.Stride+u+tw]
					trow := tDiff[y*tw : y*tw+tw]
					for x, p := range srow {
						cross += trow[x] * float64(p)
					}
				}
				s = cross / (tNorm * math.Sqrt(winVar))
			}

			if s > best {
				best = s
				bestAt = image.Point{X: u, Y: v}
			}
		}
	}

	return best, bestAt, true
}
