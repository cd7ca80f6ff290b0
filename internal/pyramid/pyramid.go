// Package pyramid builds the Gaussian scale-space pyramid (C3) and its
// per-octave difference-of-Gaussians stack (C4), per spec §3/§4.3/§4.4. The
// octave-count selection loop follows the "shrink until below minimum
// working size" idiom seen in the pack's multi-scale pyramid code
// (other_examples' gocv-based pyrDown loop); the per-pixel convolution and
// differencing loops follow the teacher's image-composition scan shape
// (internal/fit/renderer_cpu.go's Render/compositePixel loop nest), run
// row-parallel via internal/compute.Parallel.
package pyramid

import (
	"log/slog"

	"github.com/cwbudde/siftgo/internal/compute"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

// minWorkingSize is the minimum octave dimension below which no further
// octave is built (spec §4.3: O = max{o : min(w_o, h_o) >= 12}).
const minWorkingSize = 12

// Octave holds one level of the pyramid: its grid spacing, its ns+3
// Gaussian-blurred images and their sigmas, and its ns+2 DoG images.
type Octave struct {
	Index     int
	Delta     float32
	Width     int
	Height    int
	NumScales int // ns
	Sigmas    []float32                    // len ns+3
	Gaussian  []*siftimage.Image[float32]   // len ns+3
	DoG       []*siftimage.Image[float32]   // len ns+2
}

// Pyramid is the full set of octaves, immutable once Build returns.
type Pyramid struct {
	Octaves []*Octave
}

// Params configures pyramid construction; these map directly to the
// corresponding sift.Config fields (kept decoupled from the sift package to
// avoid an import cycle between the orchestrator and its building blocks).
type Params struct {
	SigmaMin           float32
	NumScalesPerOctave int
}

// octaveCount returns O, the number of octaves a pyramid seeded at
// (w, h) = (2*inputW, 2*inputH) can host before falling below the minimum
// working size.
func octaveCount(baseW, baseH int) int {
	o := 0
	w, h := baseW, baseH
	for min(w, h) >= minWorkingSize {
		o++
		w /= 2
		h /= 2
	}
	return o
}

// Build constructs the full pyramid from a linear-gray input image. The
// batch parameter lets every octave's convolutions participate in one
// ordered command batch per §5; Build itself calls Wait before returning so
// callers always see host-ready images.
func Build(batch *compute.Batch, input *siftimage.Image[float32], p Params) *Pyramid {
	ns := p.NumScalesPerOctave
	baseW, baseH := input.Width()*2, input.Height()*2
	numOctaves := octaveCount(baseW, baseH)

	slog.Debug("pyramid octave count", "octaves", numOctaves, "base_width", baseW, "base_height", baseH)

	octaves := make([]*Octave, 0, numOctaves)

	// Octave 0 seed: nearest-neighbor 2x upsample of the input, assumed to
	// carry zero effective blur (spec is silent on an assumed input sigma;
	// see DESIGN.md Open Question resolution).
	seed := upsample2x(input)
	delta := float32(0.5)

	var prevTopGaussian *siftimage.Image[float32]

	for o := 0; o < numOctaves; o++ {
		var base *siftimage.Image[float32]
		if o == 0 {
			base = seed
		} else {
			base = downsampleHalf(prevTopGaussian)
			delta *= 2
		}

		// baseSigma is the absolute blur already present in `base`: zero for
		// the upsampled seed, or sigma_{o,0} for a downsampled top-of-octave
		// image (subsampling a G_{o-1,ns} image whose absolute blur already
		// equals sigma_{o,0}, since delta_o = 2*delta_{o-1}).
		var baseSigma float32
		if o > 0 {
			baseSigma = sigmaAt(delta, p.SigmaMin, 0, ns)
		}

		oct := buildOctave(batch, o, delta, base, ns, p.SigmaMin, baseSigma)
		octaves = append(octaves, oct)
		prevTopGaussian = oct.Gaussian[ns]
	}

	batch.Wait()
	for _, oct := range octaves {
		for _, g := range oct.Gaussian {
			g.SyncFromDevice()
		}
		for _, d := range oct.DoG {
			d.SyncFromDevice()
		}
	}

	return &Pyramid{Octaves: octaves}
}

// buildOctave computes the ns+3 Gaussian levels and ns+2 DoG levels for one
// octave, given its base image and the absolute blur (baseSigma) it already
// carries.
func buildOctave(batch *compute.Batch, index int, delta float32, base *siftimage.Image[float32], ns int, sigmaMin, baseSigma float32) *Octave {
	w, h := base.Width(), base.Height()

	sigmas := make([]float32, ns+3)
	for s := 0; s <= ns+2; s++ {
		sigmas[s] = sigmaAt(delta, sigmaMin, s, ns)
	}

	gaussian := make([]*siftimage.Image[float32], ns+3)

	prevSigma := baseSigma
	prevImg := base
	for s := 0; s <= ns+2; s++ {
		target := sigmas[s]
		incremental := incrementalSigma(prevSigma, target)
		var g *siftimage.Image[float32]
		batch.Dispatch("gaussian_blur", func() {
			g = gaussianBlur(prevImg, incremental)
		})
		gaussian[s] = g
		prevImg = g
		prevSigma = target
	}

	dog := make([]*siftimage.Image[float32], ns+2)
	for s := 0; s <= ns+1; s++ {
		a, b := gaussian[s], gaussian[s+1]
		var d *siftimage.Image[float32]
		batch.Dispatch("dog_diff", func() {
			d = difference(b, a)
		})
		dog[s] = d
	}

	return &Octave{
		Index:     index,
		Delta:     delta,
		Width:     w,
		Height:    h,
		NumScales: ns,
		Sigmas:    sigmas,
		Gaussian:  gaussian,
		DoG:       dog,
	}
}

// sigmaAt computes sigma_{o,s} = delta_o * sigmaMin * 2^(s/ns) (spec §3).
func sigmaAt(delta, sigmaMin float32, s, ns int) float32 {
	return delta * sigmaMin * pow2(float32(s)/float32(ns))
}
