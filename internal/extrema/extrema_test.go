package extrema

import (
	"testing"

	"github.com/cwbudde/siftgo/internal/compute"
	"github.com/cwbudde/siftgo/internal/pyramid"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

// syntheticOctave builds a minimal octave with a single manufactured DoG
// extremum at the center of the interior scale, to exercise Detect without
// depending on the pyramid package's blur kernel.
func syntheticOctave(w, h, ns int, peakValue float32) *pyramid.Octave {
	dog := make([]*siftimage.Image[float32], ns+2)
	for s := range dog {
		img := siftimage.New[float32](w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.Set(x, y, 0)
			}
		}
		dog[s] = img
	}
	cx, cy := w/2, h/2
	dog[1].Set(cx, cy, peakValue)

	return &pyramid.Octave{
		Index:     0,
		Delta:     0.5,
		Width:     w,
		Height:    h,
		NumScales: ns,
		DoG:       dog,
	}
}

func newBatch(t *testing.T) *compute.Batch {
	t.Helper()
	d, cleanup, err := compute.New("cpu")
	if err != nil {
		t.Fatalf("compute.New: %v", err)
	}
	t.Cleanup(cleanup)
	return d.Batch()
}

func TestDetectFindsManufacturedPeak(t *testing.T) {
	oct := syntheticOctave(16, 16, 3, 1.0)
	candidates := Detect(newBatch(t), oct, 0.0133)

	if len(candidates) != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.X != 8 || c.Y != 8 || c.Scale != 1 {
		t.Errorf("unexpected candidate location: %+v", c)
	}
}

func TestDetectRejectsBelowSoftThreshold(t *testing.T) {
	oct := syntheticOctave(16, 16, 3, 0.001) // well below 0.8*0.0133
	candidates := Detect(newBatch(t), oct, 0.0133)

	if len(candidates) != 0 {
		t.Fatalf("expected candidates to be soft-thresholded away, got %d", len(candidates))
	}
}

func TestDetectOnConstantDoGFindsNothing(t *testing.T) {
	oct := syntheticOctave(16, 16, 3, 0) // all zero, no extremum
	candidates := Detect(newBatch(t), oct, 0.0133)

	if len(candidates) != 0 {
		t.Fatalf("expected no candidates on flat DoG, got %d", len(candidates))
	}
}
