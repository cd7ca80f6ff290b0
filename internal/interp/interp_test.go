package interp

import (
	"math"
	"testing"

	"github.com/cwbudde/siftgo/internal/extrema"
	"github.com/cwbudde/siftgo/internal/pyramid"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

func quadraticOctave(w, h, ns, s0 int, amp, ax, ay float32) *pyramid.Octave {
	dog := make([]*siftimage.Image[float32], ns+2)
	x0, y0 := float32(w/2), float32(h/2)
	for s := range dog {
		img := siftimage.New[float32](w, h)
		ds := float32(s - s0)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dxv := float32(x) - x0
				dyv := float32(y) - y0
				v := amp - ax*dxv*dxv - ay*dyv*dyv - 0.02*ds*ds
				img.Set(x, y, v)
			}
		}
		dog[s] = img
	}
	return &pyramid.Octave{
		Index:     0,
		Delta:     0.5,
		Width:     w,
		Height:    h,
		NumScales: ns,
		DoG:       dog,
	}
}

func baseConfig() Config {
	return Config{
		MaxIterations:      5,
		ImageBorder:        5,
		DoGThreshold:       0.0133,
		EdgeThreshold:      10.0,
		NumScalesPerOctave: 3,
		SigmaMin:           0.8,
	}
}

func TestRefineConvergesOnIsotropicPeak(t *testing.T) {
	oct := quadraticOctave(32, 32, 3, 2, 1.0, 0.05, 0.05)
	cand := extrema.Candidate{Octave: 0, Scale: 2, X: 16, Y: 16, Value: 1.0}

	kp, ok := Refine(oct, cand, baseConfig())
	if !ok {
		t.Fatal("expected refinement to converge and pass contrast/edge tests")
	}
	if math.Abs(float64(kp.ScaledX-16)) > 1e-5 || math.Abs(float64(kp.ScaledY-16)) > 1e-5 {
		t.Errorf("unexpected scaled coord: (%v, %v)", kp.ScaledX, kp.ScaledY)
	}
	if kp.SubD <= -0.6 || kp.SubD >= 0.6 {
		t.Errorf("sub-scale %v out of (-0.6, 0.6)", kp.SubD)
	}
	if math.Abs(float64(kp.Value)) < float64(baseConfig().DoGThreshold) {
		t.Errorf("expected |value| >= threshold, got %v", kp.Value)
	}
}

func TestRefineRejectsLowContrast(t *testing.T) {
	oct := quadraticOctave(32, 32, 3, 2, 0.001, 0.05, 0.05)
	cand := extrema.Candidate{Octave: 0, Scale: 2, X: 16, Y: 16, Value: 0.001}

	_, ok := Refine(oct, cand, baseConfig())
	if ok {
		t.Fatal("expected low-contrast candidate to be rejected")
	}
}

func TestRefineRejectsEdge(t *testing.T) {
	// Much flatter in y than in x (dxx=-0.1, dyy=-0.002): the 3D Hessian is
	// still solvable, but tr2^2*10 = 0.104 >= 11^2*det2 = 0.0242, so the
	// edge test must reject it.
	oct := quadraticOctave(32, 32, 3, 2, 1.0, 0.05, 0.001)
	cand := extrema.Candidate{Octave: 0, Scale: 2, X: 16, Y: 16, Value: 1.0}

	_, ok := Refine(oct, cand, baseConfig())
	if ok {
		t.Fatal("expected edge-like candidate to be rejected")
	}
}

func TestRefineRejectsSingularHessian(t *testing.T) {
	oct := quadraticOctave(32, 32, 3, 2, 0, 0, 0) // all-zero DoG: singular Hessian
	cand := extrema.Candidate{Octave: 0, Scale: 2, X: 16, Y: 16, Value: 0}

	_, ok := Refine(oct, cand, baseConfig())
	if ok {
		t.Fatal("expected singular-Hessian candidate to be rejected")
	}
}
