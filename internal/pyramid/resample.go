package pyramid

import "github.com/cwbudde/siftgo/internal/siftimage"

// upsample2x performs the octave-0 seed's nearest-neighbor 2x upsample
// (spec §4.3).
func upsample2x(src *siftimage.Image[float32]) *siftimage.Image[float32] {
	w, h := src.Width()*2, src.Height()*2
	out := siftimage.New[float32](w, h)
	for y := 0; y < h; y++ {
		sy := y / 2
		for x := 0; x < w; x++ {
			sx := x / 2
			out.Set(x, y, src.At(sx, sy))
		}
	}
	return out
}

// downsampleHalf performs the nearest-neighbor x1/2 subsample used to seed
// octave o>0 from octave o-1's ns-th Gaussian level (spec §4.3).
func downsampleHalf(src *siftimage.Image[float32]) *siftimage.Image[float32] {
	w, h := src.Width()/2, src.Height()/2
	out := siftimage.New[float32](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.Set(x, y, src.At(x*2, y*2))
		}
	}
	return out
}
