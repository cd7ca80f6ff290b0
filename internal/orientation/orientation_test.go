package orientation

import (
	"math"
	"testing"

	"github.com/cwbudde/siftgo/internal/keypoint"
	"github.com/cwbudde/siftgo/internal/pyramid"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

func uniformAngleOctave(w, h int, angle float32) (*pyramid.Octave, []*siftimage.Image[siftimage.Gradient]) {
	field := siftimage.New[siftimage.Gradient](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			field.Set(x, y, siftimage.Gradient{Mag: 1.0, Angle: angle})
		}
	}
	oct := &pyramid.Octave{
		Index:  0,
		Delta:  1.0,
		Width:  w,
		Height: h,
		Sigmas: []float32{1.6},
	}
	return oct, []*siftimage.Image[siftimage.Gradient]{field}
}

func baseConfig() Config {
	return Config{
		Lambda:              1.5,
		Bins:                36,
		Threshold:           0.8,
		SmoothingIterations: 6,
	}
}

func TestAssignFindsDominantOrientation(t *testing.T) {
	oct, fields := uniformAngleOctave(64, 64, 0.7)
	kp := keypoint.Keypoint{AbsX: 32, AbsY: 32, Sigma: 1.6}

	thetas := Assign(oct, fields, kp, baseConfig())
	if len(thetas) == 0 {
		t.Fatal("expected at least one dominant orientation")
	}
	for _, theta := range thetas {
		if theta < 0 || theta >= 2*math.Pi {
			t.Errorf("theta %v out of [0, 2pi)", theta)
		}
	}
}

func TestAssignDropsWhenPatchDoesNotFit(t *testing.T) {
	oct, fields := uniformAngleOctave(16, 16, 0.7)
	kp := keypoint.Keypoint{AbsX: 1, AbsY: 1, Sigma: 3.0} // huge radius vs tiny image

	thetas := Assign(oct, fields, kp, baseConfig())
	if thetas != nil {
		t.Fatalf("expected nil for out-of-bounds patch, got %v", thetas)
	}
}

func TestBinIndexWrapsNearPi(t *testing.T) {
	// theta just under pi and just above -pi should land in adjacent/wrapped bins, not panic.
	idx1 := binIndex(float32(math.Pi-0.001), 36)
	idx2 := binIndex(float32(-math.Pi+0.001), 36)
	if idx1 < 0 || idx1 >= 36 || idx2 < 0 || idx2 >= 36 {
		t.Fatalf("bin indices out of range: %d, %d", idx1, idx2)
	}
}

func TestSmoothPreservesCircularSum(t *testing.T) {
	hist := []float32{1, 0, 0, 0, 5, 0, 0, 0}
	var before float32
	for _, v := range hist {
		before += v
	}
	smooth(hist, 3)
	var after float32
	for _, v := range hist {
		after += v
	}
	if math.Abs(float64(before-after)) > 1e-4 {
		t.Errorf("boxcar smoothing should conserve mass: before=%v after=%v", before, after)
	}
}
