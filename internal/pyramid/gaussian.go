package pyramid

import (
	"math"

	"github.com/cwbudde/siftgo/internal/compute"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

// pow2 returns 2^x for float32 x.
func pow2(x float32) float32 {
	return float32(math.Pow(2, float64(x)))
}

// incrementalSigma returns the additional blur needed to go from an image
// already blurred by `have` to one blurred by `want` (spec §4.3:
// sqrt(sigma^2 - sigma_prev^2)). Returns 0 if want <= have (within float
// tolerance), since a negative radicand means no further blur is needed.
func incrementalSigma(have, want float32) float32 {
	d := want*want - have*have
	if d <= 0 {
		return 0
	}
	return float32(math.Sqrt(float64(d)))
}

// gaussianBlur separably convolves src with a Gaussian kernel of standard
// deviation sigma, using replicated-edge boundary handling. sigma == 0
// returns a copy of src unchanged (no-op incremental blur at the seed of an
// octave's Gaussian levels).
func gaussianBlur(src *siftimage.Image[float32], sigma float32) *siftimage.Image[float32] {
	w, h := src.Width(), src.Height()
	if sigma <= 0 {
		out := siftimage.New[float32](w, h)
		copy(out.Raw(), src.Raw())
		out.MarkDeviceDirty()
		return out
	}

	kernel := gaussianKernel1D(sigma)
	radius := (len(kernel) - 1) / 2

	tmp := siftimage.New[float32](w, h)
	compute.Parallel(h, func(y int) {
		for x := 0; x < w; x++ {
			var sum float32
			for k := -radius; k <= radius; k++ {
				sx := clamp(x+k, 0, w-1)
				sum += src.At(sx, y) * kernel[k+radius]
			}
			tmp.Set(x, y, sum)
		}
	})

	out := siftimage.New[float32](w, h)
	compute.Parallel(h, func(y int) {
		for x := 0; x < w; x++ {
			var sum float32
			for k := -radius; k <= radius; k++ {
				sy := clamp(y+k, 0, h-1)
				sum += tmp.At(x, sy) * kernel[k+radius]
			}
			out.Set(x, y, sum)
		}
	})

	out.MarkDeviceDirty()
	return out
}

// gaussianKernel1D builds a normalized 1D Gaussian kernel spanning
// +/- ceil(4*sigma), the conventional radius for a negligible truncation
// error.
func gaussianKernel1D(sigma float32) []float32 {
	radius := int(math.Ceil(4 * float64(sigma)))
	if radius < 1 {
		radius = 1
	}
	kernel := make([]float32, 2*radius+1)
	var sum float32
	s2 := 2 * sigma * sigma
	for i := -radius; i <= radius; i++ {
		v := float32(math.Exp(-float64(i*i) / float64(s2)))
		kernel[i+radius] = v
		sum += v
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
