// Package descriptor builds the 128-dimensional oriented local-histogram
// descriptor (C9): a 4x4 grid of 8-bin orientation histograms, trilinearly
// accumulated over a rotated, scale-normalized patch (spec §4.9). As with
// internal/extrema, the per-pixel accumulation kernel follows the teacher's
// internal/fit/ssd.go runtime-CPU-feature-dispatch idiom
// (golang.org/x/sys/cpu selecting a 4-wide unrolled scalar loop when AVX2 or
// ARM64 ASIMD is available, a plain one-pixel loop otherwise) adapted from a cost kernel to
// this trilinear histogram kernel; see DESIGN.md for why no actual SIMD
// assembly is introduced.
package descriptor

import (
	"log/slog"
	"math"

	"golang.org/x/sys/cpu"

	"github.com/cwbudde/siftgo/internal/gradient"
	"github.com/cwbudde/siftgo/internal/keypoint"
	"github.com/cwbudde/siftgo/internal/pyramid"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

// AccumBackend reports which inner-loop stride the accumulation kernel
// selected.
type AccumBackend int

const (
	AccumBackendScalar AccumBackend = iota
	AccumBackendWide
)

func (b AccumBackend) String() string {
	if b == AccumBackendWide {
		return "wide"
	}
	return "scalar"
}

// ActiveAccumBackend reports which backend was selected at package init.
var ActiveAccumBackend AccumBackend

func init() {
	if cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD {
		ActiveAccumBackend = AccumBackendWide
		slog.Debug("descriptor accumulation kernel initialized", "backend", "wide")
	} else {
		ActiveAccumBackend = AccumBackendScalar
		slog.Debug("descriptor accumulation kernel initialized", "backend", "scalar")
	}
}

// Config mirrors the subset of sift.Config the descriptor builder needs.
type Config struct {
	HistogramsPerAxis int // nh, spec default 4
	OrientationBins   int // spec default 8
	Lambda            float32
	FixedPointScale   float32
}

// DefaultFixedPointScale is the multiplier applied to accumulated
// floating-point weight before rounding to the descriptor's int32 bins.
const DefaultFixedPointScale = 512

// patchGeometry collects the per-keypoint quantities every accumulated
// pixel needs, computed once in Build and threaded through the kernels.
type patchGeometry struct {
	xg, yg      int
	cosT, sinT  float32
	lambdaSigma float32 // lambda_desc * sigma', the per-axis normalization divisor
	cutoff      float32 // max(|xhat|,|yhat|) at or beyond this is dropped
	gaussDenom  float32
	nh, nbins   int
}

// Build constructs the descriptor for (kp, theta). ok is false if the
// oriented patch does not fit inside the octave's interior (spec §4.9; the
// original source's equivalent check was commented out, the spec requires it back —
// see DESIGN.md).
func Build(oct *pyramid.Octave, fields []*siftimage.Image[siftimage.Gradient], kp keypoint.Keypoint, theta float32, cfg Config) (keypoint.Descriptor, bool) {
	nh := cfg.HistogramsPerAxis
	nbins := cfg.OrientationBins
	delta := oct.Delta

	xg := int(roundf(kp.AbsX / delta))
	yg := int(roundf(kp.AbsY / delta))
	sigmaPrime := kp.Sigma / delta
	lambdaSigma := cfg.Lambda * sigmaPrime

	halfWidth := lambdaSigma * float32(nh+1) / float32(nh)
	boxRadius := int(math.Ceil(float64(halfWidth) * math.Sqrt2))

	if xg-boxRadius < 1 || xg+boxRadius > oct.Width-2 || yg-boxRadius < 1 || yg+boxRadius > oct.Height-2 {
		return keypoint.Descriptor{}, false
	}

	scaleIdx := gradient.NearestScale(oct.Sigmas, kp.Sigma)
	field := fields[scaleIdx]

	geom := patchGeometry{
		xg:          xg,
		yg:          yg,
		cosT:        float32(math.Cos(float64(theta))),
		sinT:        float32(math.Sin(float64(theta))),
		lambdaSigma: lambdaSigma,
		cutoff:      1 + 1/float32(nh),
		gaussDenom:  2 * float32(nh/2) * float32(nh/2),
		nh:          nh,
		nbins:       nbins,
	}

	acc := make([]float64, nh*nh*nbins)
	if ActiveAccumBackend == AccumBackendWide {
		accumulateWide(field, boxRadius, theta, geom, acc)
	} else {
		accumulateScalar(field, boxRadius, theta, geom, acc)
	}

	var desc keypoint.Descriptor
	desc.Keypoint = kp
	desc.Theta = theta
	scale := cfg.FixedPointScale
	if scale == 0 {
		scale = DefaultFixedPointScale
	}
	for i, v := range acc {
		f := int32(math.Round(v * float64(scale)))
		if f < 0 {
			f = 0
		}
		desc.Features[i] = f
	}
	return desc, true
}

// accumulateScalar visits every pixel in the bounding box one at a time.
func accumulateScalar(field *siftimage.Image[siftimage.Gradient], boxRadius int, theta float32, geom patchGeometry, acc []float64) {
	for j := geom.yg - boxRadius; j <= geom.yg+boxRadius; j++ {
		for i := geom.xg - boxRadius; i <= geom.xg+boxRadius; i++ {
			accumulatePixel(field, i, j, theta, geom, acc)
		}
	}
}

// accumulateWide processes rows in 4-pixel-wide unrolled groups, mirroring
// the teacher's ssd_scalar.go 4-way unrolling (no actual SIMD instructions:
// see package doc and DESIGN.md).
func accumulateWide(field *siftimage.Image[siftimage.Gradient], boxRadius int, theta float32, geom patchGeometry, acc []float64) {
	for j := geom.yg - boxRadius; j <= geom.yg+boxRadius; j++ {
		i := geom.xg - boxRadius
		end := geom.xg + boxRadius
		for ; i+3 <= end; i += 4 {
			accumulatePixel(field, i, j, theta, geom, acc)
			accumulatePixel(field, i+1, j, theta, geom, acc)
			accumulatePixel(field, i+2, j, theta, geom, acc)
			accumulatePixel(field, i+3, j, theta, geom, acc)
		}
		for ; i <= end; i++ {
			accumulatePixel(field, i, j, theta, geom, acc)
		}
	}
}

func accumulatePixel(field *siftimage.Image[siftimage.Gradient], i, j int, theta float32, geom patchGeometry, acc []float64) {
	dx := float32(i - geom.xg)
	dy := float32(j - geom.yg)
	rdx := geom.cosT*dx + geom.sinT*dy
	rdy := -geom.sinT*dx + geom.cosT*dy

	xhat := rdx / geom.lambdaSigma
	yhat := rdy / geom.lambdaSigma
	if abs32(xhat) >= geom.cutoff || abs32(yhat) >= geom.cutoff {
		return
	}

	g := field.At(i, j)
	thetaHat := wrap2Pi(g.Angle - theta)
	w := g.Mag * float32(math.Exp(-float64((xhat*xhat+yhat*yhat)/geom.gaussDenom)))

	nh := geom.nh
	binX := (xhat+1)*float32(nh)/2 - 0.5
	binY := (yhat+1)*float32(nh)/2 - 0.5
	binO := thetaHat * float32(geom.nbins) / (2 * math.Pi)

	distributeTrilinear(acc, nh, geom.nbins, binX, binY, binO, float64(w))
}

// distributeTrilinear spreads weight w across the up-to-2x2x2 adjacent
// spatial/orientation bins surrounding the continuous (binX, binY, binO)
// coordinate, clamping spatial contributions outside [0, nh) (spec §4.9).
func distributeTrilinear(acc []float64, nh, nbins int, binX, binY, binO float32, w float64) {
	bx0 := int(math.Floor(float64(binX)))
	by0 := int(math.Floor(float64(binY)))
	bo0 := int(math.Floor(float64(binO)))

	fx := binX - float32(bx0)
	fy := binY - float32(by0)
	fo := binO - float32(bo0)

	for dx := 0; dx <= 1; dx++ {
		bx := bx0 + dx
		if bx < 0 || bx >= nh {
			continue
		}
		wx := float64(fx)
		if dx == 0 {
			wx = float64(1 - fx)
		}
		for dy := 0; dy <= 1; dy++ {
			by := by0 + dy
			if by < 0 || by >= nh {
				continue
			}
			wy := float64(fy)
			if dy == 0 {
				wy = float64(1 - fy)
			}
			for do := 0; do <= 1; do++ {
				bo := ((bo0+do)%nbins + nbins) % nbins
				wo := float64(fo)
				if do == 0 {
					wo = float64(1 - fo)
				}
				idx := (bx*nh+by)*nbins + bo
				acc[idx] += w * wx * wy * wo
			}
		}
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
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
