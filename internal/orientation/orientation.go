// Package orientation implements the dominant-orientation assigner (C8): a
// smoothed 36-bin circular histogram of gradient orientation, weighted by a
// Gaussian window and gradient magnitude, yielding zero or more dominant
// orientations per keypoint (spec §4.8). The smoothing-pass-count idiom
// follows the teacher's internal/fit/convergence.go ConvergenceTracker,
// which likewise advances a fixed-shape piece of state a configured number
// of times rather than until some dynamic condition holds.
package orientation

import (
	"math"

	"github.com/cwbudde/siftgo/internal/gradient"
	"github.com/cwbudde/siftgo/internal/keypoint"
	"github.com/cwbudde/siftgo/internal/pyramid"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

// Config mirrors the subset of sift.Config the orientation assigner needs.
type Config struct {
	Lambda               float32
	Bins                 int
	Threshold            float32
	SmoothingIterations  int
}

// Assign returns the dominant orientations (radians, [0, 2*pi)) for kp, or
// an empty slice if the keypoint's patch does not fit the octave's interior
// or no histogram bin clears the dominance threshold (spec §4.8: "A keypoint
// may produce 0..N orientations; if 0, the keypoint is dropped").
func Assign(oct *pyramid.Octave, fields []*siftimage.Image[siftimage.Gradient], kp keypoint.Keypoint, cfg Config) []float32 {
	delta := oct.Delta
	xg := int(roundf(kp.AbsX / delta))
	yg := int(roundf(kp.AbsY / delta))
	sigmaPrime := kp.Sigma / delta

	radius := int(math.Ceil(float64(3 * cfg.Lambda * sigmaPrime)))
	if xg-radius < 1 || xg+radius > oct.Width-2 || yg-radius < 1 || yg+radius > oct.Height-2 {
		return nil
	}

	scaleIdx := gradient.NearestScale(oct.Sigmas, kp.Sigma)
	field := fields[scaleIdx]

	hist := make([]float32, cfg.Bins)
	r2 := float32(radius * radius)
	sigmaWeight := cfg.Lambda * sigmaPrime
	denom := 2 * sigmaWeight * sigmaWeight

	for j := yg - radius; j <= yg+radius; j++ {
		for i := xg - radius; i <= xg+radius; i++ {
			di := float32(i - xg)
			dj := float32(j - yg)
			if di*di+dj*dj > r2 {
				continue
			}
			g := field.At(i, j)
			weight := g.Mag * float32(math.Exp(-float64((di*di+dj*dj)/denom)))
			bin := binIndex(g.Angle, cfg.Bins)
			hist[bin] += weight
		}
	}

	smooth(hist, cfg.SmoothingIterations)

	var max float32
	for _, v := range hist {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return nil
	}

	n := cfg.Bins
	var thetas []float32
	for k := 0; k < n; k++ {
		prev := hist[(k-1+n)%n]
		cur := hist[k]
		next := hist[(k+1)%n]
		if cur <= prev || cur <= next {
			continue
		}
		if cur < cfg.Threshold*max {
			continue
		}
		curvature := prev - 2*cur + next
		offset := float32(0)
		if curvature != 0 {
			offset = 0.5 * (prev - next) / curvature
		}
		theta := (float32(k) + offset) * 2 * math.Pi / float32(n)
		thetas = append(thetas, wrap2Pi(theta))
	}

	return thetas
}

// binIndex maps an angle in [-pi, pi) to a circular bin index in [0, bins).
func binIndex(angle float32, bins int) int {
	norm := angle
	if norm < 0 {
		norm += 2 * math.Pi
	}
	idx := int(norm * float32(bins) / (2 * math.Pi))
	return ((idx % bins) + bins) % bins
}

// smooth applies `iterations` passes of a circular 3-tap boxcar filter.
func smooth(hist []float32, iterations int) {
	n := len(hist)
	tmp := make([]float32, n)
	for it := 0; it < iterations; it++ {
		for k := 0; k < n; k++ {
			tmp[k] = (hist[(k-1+n)%n] + hist[k] + hist[(k+1)%n]) / 3
		}
		copy(hist, tmp)
	}
}

func wrap2Pi(v float32) float32 {
	twoPi := float32(2 * math.Pi)
	for v < 0 {
		v += twoPi
	}
	for v >= twoPi {
		v -= twoPi
	}
	return v
}

func roundf(v float32) float32 {
	return float32(math.Round(float64(v)))
}
