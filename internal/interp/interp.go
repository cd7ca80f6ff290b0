// Package interp implements the sub-pixel/sub-scale interpolator (C6): a
// fixed-iteration-budget Newton refinement of each candidate extremum,
// followed by contrast and edge rejection (spec §4.6). The iterate-or-step
// loop follows the teacher's internal/fit/convergence.go ConvergenceTracker
// idiom — a small piece of state advanced once per iteration against a
// threshold, reporting converged/not-yet/gave-up — adapted from "cost
// stopped improving" to "offset shrank below 0.6".
package interp

import (
	"math"

	"github.com/cwbudde/siftgo/internal/extrema"
	"github.com/cwbudde/siftgo/internal/keypoint"
	"github.com/cwbudde/siftgo/internal/pyramid"
)

// Config mirrors the subset of sift.Config the interpolator needs, kept
// decoupled to avoid an import cycle with the orchestrator package.
type Config struct {
	MaxIterations      int
	ImageBorder        int
	DoGThreshold       float32
	EdgeThreshold      float32
	NumScalesPerOctave int
	SigmaMin           float32
}

// Refine attempts to converge a candidate extremum to sub-pixel/sub-scale
// accuracy and applies the contrast and edge tests. ok is false for any
// rejection: non-convergence, out-of-bounds stepping, contrast failure, edge
// failure, or a singular Hessian — all silent drops per spec §7.
func Refine(oct *pyramid.Octave, cand extrema.Candidate, cfg Config) (kp keypoint.Keypoint, ok bool) {
	ns := cfg.NumScalesPerOctave
	border := cfg.ImageBorder

	x, y, s := cand.X, cand.Y, cand.Scale
	var alpha [3]float32

	converged := false
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		grad, hess := gradientAndHessian(oct, x, y, s)

		neg := [3]float32{-grad[0], -grad[1], -grad[2]}
		a, solved := solve3x3(hess, neg)
		if !solved {
			return kp, false
		}
		alpha = a

		if maxAbs3(alpha) < 0.6 {
			converged = true
			break
		}

		x += roundf(alpha[0])
		y += roundf(alpha[1])
		s += roundf(alpha[2])

		if x < border || x > oct.Width-border-1 || y < border || y > oct.Height-border-1 || s < 1 || s > ns {
			return kp, false
		}
	}
	if !converged {
		return kp, false
	}

	if x < border || x > oct.Width-border-1 || y < border || y > oct.Height-border-1 {
		return kp, false
	}

	grad, hess := gradientAndHessian(oct, x, y, s)
	dotGradAlpha := grad[0]*alpha[0] + grad[1]*alpha[1] + grad[2]*alpha[2]
	v := oct.DoG[s].At(x, y) + 0.5*dotGradAlpha
	if abs32(v) < cfg.DoGThreshold {
		return kp, false
	}

	// Edge test on the 2x2 spatial Hessian.
	dxx, dyy, dxy := hess[0][0], hess[1][1], hess[0][1]
	det2 := dxx*dyy - dxy*dxy
	if det2 <= 0 {
		return kp, false
	}
	tr2 := dxx + dyy
	et := cfg.EdgeThreshold
	if tr2*tr2*et >= (et+1)*(et+1)*det2 {
		return kp, false
	}

	delta := oct.Delta
	subD := alpha[2]
	sigma := delta * cfg.SigmaMin * pow2((float32(s)+subD)/float32(ns))

	kp = keypoint.Keypoint{
		Octave:  oct.Index,
		Scale:   s,
		SubD:    subD,
		ScaledX: float32(x),
		ScaledY: float32(y),
		AbsX:    float32(x) * delta,
		AbsY:    float32(y) * delta,
		Sigma:   sigma,
		Value:   v,
	}
	return kp, true
}

// gradientAndHessian computes the 3D gradient [Dx, Dy, Ds] and the
// symmetric 3x3 Hessian of the DoG stack at (x, y, s) via centered finite
// differences; inter-slice mixed partials use the 4-point stencil divided
// by 4 (spec §4.6 step 1).
func gradientAndHessian(oct *pyramid.Octave, x, y, s int) (grad [3]float32, hess [3][3]float32) {
	below, mid, above := oct.DoG[s-1], oct.DoG[s], oct.DoG[s+1]

	dx := (mid.At(x+1, y) - mid.At(x-1, y)) / 2
	dy := (mid.At(x, y+1) - mid.At(x, y-1)) / 2
	ds := (above.At(x, y) - below.At(x, y)) / 2
	grad = [3]float32{dx, dy, ds}

	center := mid.At(x, y)
	dxx := mid.At(x+1, y) - 2*center + mid.At(x-1, y)
	dyy := mid.At(x, y+1) - 2*center + mid.At(x, y-1)
	dss := above.At(x, y) - 2*center + below.At(x, y)

	dxy := (mid.At(x+1, y+1) - mid.At(x+1, y-1) - mid.At(x-1, y+1) + mid.At(x-1, y-1)) / 4
	dxs := (above.At(x+1, y) - above.At(x-1, y) - below.At(x+1, y) + below.At(x-1, y)) / 4
	dys := (above.At(x, y+1) - above.At(x, y-1) - below.At(x, y+1) + below.At(x, y-1)) / 4

	hess = [3][3]float32{
		{dxx, dxy, dxs},
		{dxy, dyy, dys},
		{dxs, dys, dss},
	}
	return grad, hess
}

func pow2(v float32) float32 {
	return float32(math.Pow(2, float64(v)))
}
