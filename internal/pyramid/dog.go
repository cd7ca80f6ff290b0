package pyramid

import (
	"github.com/cwbudde/siftgo/internal/compute"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

// difference computes b - a pixelwise (spec §4.4: D[s] = G[s+1] - G[s]).
// No normalization; the result is a signed DoG image.
func difference(b, a *siftimage.Image[float32]) *siftimage.Image[float32] {
	w, h := a.Width(), a.Height()
	out := siftimage.New[float32](w, h)
	compute.Parallel(h, func(y int) {
		for x := 0; x < w; x++ {
			out.Set(x, y, b.At(x, y)-a.At(x, y))
		}
	})
	out.MarkDeviceDirty()
	return out
}
