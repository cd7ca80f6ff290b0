// Package gradient precomputes the per-scale (magnitude, orientation) field
// (C7) used by both the orientation assigner and the descriptor builder, so
// it runs exactly once per Gaussian level regardless of how many keypoints
// fall in that octave. The per-pixel scan-and-accumulate loop shape follows
// the teacher's internal/fit/cost.go MSECost loop nest.
package gradient

import (
	"math"

	"github.com/cwbudde/siftgo/internal/compute"
	"github.com/cwbudde/siftgo/internal/pyramid"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

// BuildOctave computes the gradient field for every Gaussian level of oct,
// in the same ns+3-length layout as oct.Gaussian. Border pixels are left at
// their zero value (spec §4.7: "Border pixels are zero" — satisfied by
// siftimage.New's zero-initialized allocation, never written to, per the
// original's own implicit-zero border convention; see SPEC_FULL.md).
func BuildOctave(batch *compute.Batch, oct *pyramid.Octave) []*siftimage.Image[siftimage.Gradient] {
	fields := make([]*siftimage.Image[siftimage.Gradient], len(oct.Gaussian))
	for s, g := range oct.Gaussian {
		s, g := s, g
		batch.Dispatch("gradient_field", func() {
			fields[s] = buildOne(g)
		})
	}
	return fields
}

func buildOne(g *siftimage.Image[float32]) *siftimage.Image[siftimage.Gradient] {
	w, h := g.Width(), g.Height()
	out := siftimage.New[siftimage.Gradient](w, h)

	if w < 3 || h < 3 {
		out.MarkDeviceDirty()
		return out
	}

	compute.Parallel(h-2, func(row int) {
		y := row + 1
		for x := 1; x < w-1; x++ {
			dx := g.At(x+1, y) - g.At(x-1, y)
			dy := g.At(x, y+1) - g.At(x, y-1)
			mag := float32(math.Sqrt(float64(dx*dx+dy*dy))) / 2
			angle := float32(math.Atan2(float64(dy), float64(dx)))
			out.Set(x, y, siftimage.Gradient{Mag: mag, Angle: angle})
		}
	})

	out.MarkDeviceDirty()
	return out
}

// NearestScale returns the index into fields whose Gaussian sigma is
// closest to the target sigma — used by orientation/descriptor to pick the
// gradient plane matching a keypoint's scale (spec §4.8).
func NearestScale(sigmas []float32, target float32) int {
	best := 0
	bestDiff := float32(math.Inf(1))
	for i, s := range sigmas {
		diff := s - target
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			bestDiff = diff
			best = i
		}
	}
	return best
}
