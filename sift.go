// Package sift implements scale-invariant keypoint detection and
// descriptor construction following the IPOL reference pipeline (Otero &
// Delbracio, 2014): a Gaussian scale-space pyramid, its difference-of-
// Gaussians stack, 3D extrema detection, sub-pixel/sub-scale interpolation
// with contrast and edge rejection, dominant orientation assignment, and
// 128-dimensional descriptor construction (C10, spec §3-§9).
//
// Unlike the teacher's fully internal/ application layout, this package is
// the module's exported entry point: the whole point of this repository is
// to be imported as a library, not just run as a CLI (see DESIGN.md).
package sift

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/siftgo/internal/compute"
	"github.com/cwbudde/siftgo/internal/descriptor"
	"github.com/cwbudde/siftgo/internal/extrema"
	"github.com/cwbudde/siftgo/internal/gradient"
	"github.com/cwbudde/siftgo/internal/interp"
	"github.com/cwbudde/siftgo/internal/orientation"
	"github.com/cwbudde/siftgo/internal/pyramid"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

// Sift is a configured pipeline instance. It owns a compute.Dispatcher and
// is safe to reuse across many Detect/Describe calls, but a single
// Detection value returned by Detect must not be shared across goroutines
// concurrently calling Describe on it (the gradient-field cache it holds is
// lazily populated, unsynchronized, per teacher style: state owned by one
// caller at a time).
type Sift struct {
	cfg     Config
	backend compute.Dispatcher
	cleanup func()
}

// New validates cfg and constructs the compute backend it names (spec §5,
// §6: backend selection happens once, up front, never mid-pipeline).
func New(cfg Config) (*Sift, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	backend, cleanup, err := compute.New(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackend, err)
	}
	return &Sift{cfg: cfg, backend: backend, cleanup: cleanup}, nil
}

// Close releases any resources the selected backend holds open.
func (s *Sift) Close() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

// Detection holds one Detect call's pyramid and per-octave keypoints, and
// lazily caches the gradient fields Describe needs so that octaves with no
// surviving keypoints never pay for gradient precomputation.
type Detection struct {
	pyr       *pyramid.Pyramid
	Keypoints [][]Keypoint // one slice per octave, index-aligned with pyr.Octaves

	gradientFields [][]*siftimage.Image[siftimage.Gradient] // lazily populated, len(pyr.Octaves)
}

// Detect runs the pyramid, DoG, extrema-detection and interpolation stages
// (C3-C6) over a linear-grayscale input image, returning the surviving
// keypoints grouped by octave (spec §4.3-§4.6).
func (s *Sift) Detect(input *siftimage.Image[float32]) (*Detection, error) {
	if input.Width() != s.cfg.Width || input.Height() != s.cfg.Height {
		return nil, fmt.Errorf("%w: input is %dx%d, configured for %dx%d", ErrConfig, input.Width(), input.Height(), s.cfg.Width, s.cfg.Height)
	}

	start := time.Now()
	batch := s.backend.Batch()
	pyr := pyramid.Build(batch, input, pyramid.Params{
		SigmaMin:           s.cfg.SigmaMin,
		NumScalesPerOctave: s.cfg.NumScalesPerOctave,
	})

	interpCfg := interp.Config{
		MaxIterations:      s.cfg.MaxInterpIterations,
		ImageBorder:        s.cfg.ImageBorder,
		DoGThreshold:       s.cfg.DoGThreshold,
		EdgeThreshold:      s.cfg.EdgeThreshold,
		NumScalesPerOctave: s.cfg.NumScalesPerOctave,
		SigmaMin:           s.cfg.SigmaMin,
	}

	keypointsPerOctave := make([][]Keypoint, len(pyr.Octaves))
	total := 0
	for i, oct := range pyr.Octaves {
		scanBatch := s.backend.Batch()
		candidates := extrema.Detect(scanBatch, oct, s.cfg.DoGThreshold)

		kpBuf := siftimage.NewBufferWithCapacity[Keypoint](expectedKeypoints(oct))
		for _, cand := range candidates {
			kp, ok := interp.Refine(oct, cand, interpCfg)
			if !ok {
				continue
			}
			kpBuf.Append(kp)
		}
		kps := kpBuf.Raw()
		keypointsPerOctave[i] = kps
		total += len(kps)
	}

	slog.Info("sift detect complete",
		"octaves", len(pyr.Octaves),
		"keypoints", total,
		"elapsed", time.Since(start),
	)

	return &Detection{
		pyr:            pyr,
		Keypoints:      keypointsPerOctave,
		gradientFields: make([][]*siftimage.Image[siftimage.Gradient], len(pyr.Octaves)),
	}, nil
}

// expectedKeypoints estimates the number of keypoints oct will contribute,
// from its interior pixel area, to pre-size the keypoint collection buffer
// and avoid reallocation churn in the refinement hot loop (SPEC_FULL.md
// "Per-octave keypoint capacity hinting"). A density heuristic only: it
// never bounds or truncates the actual result.
func expectedKeypoints(oct *pyramid.Octave) int {
	interior := (oct.Width - 2) * (oct.Height - 2)
	if interior <= 0 {
		return 0
	}
	const perPixel = 1.0 / 2000.0 // empirical: sparser than raw DoG extrema after interpolation rejection
	return int(float64(interior) * perPixel)
}

// Describe runs orientation assignment and descriptor construction (C7-C9)
// over every keypoint in det, returning descriptors grouped by octave in
// the same order as det.Keypoints. A keypoint with zero dominant
// orientations, or whose patch does not fit the octave's interior at any
// orientation, contributes zero descriptors (spec §4.8, §4.9).
func (s *Sift) Describe(det *Detection) ([][]Descriptor, error) {
	if det == nil || det.pyr == nil {
		return nil, fmt.Errorf("%w: nil detection", ErrConfig)
	}

	orientCfg := orientation.Config{
		Lambda:              s.cfg.LambdaOrientation,
		Bins:                s.cfg.OrientationBins,
		Threshold:           s.cfg.OrientationThreshold,
		SmoothingIterations: s.cfg.OrientationSmoothingIterations,
	}
	descCfg := descriptor.Config{
		HistogramsPerAxis: s.cfg.DescriptorHistogramsPerAxis,
		OrientationBins:   s.cfg.DescriptorOrientationBins,
		Lambda:            s.cfg.LambdaDescriptor,
		FixedPointScale:   s.cfg.DescriptorFixedPointScale,
	}

	descriptorsPerOctave := make([][]Descriptor, len(det.pyr.Octaves))
	total := 0
	for i, oct := range det.pyr.Octaves {
		kps := det.Keypoints[i]
		if len(kps) == 0 {
			continue
		}

		fields := det.gradientFields[i]
		if fields == nil {
			batch := s.backend.Batch()
			fields = gradient.BuildOctave(batch, oct)
			batch.Wait()
			for _, f := range fields {
				f.SyncFromDevice()
			}
			det.gradientFields[i] = fields
		}

		var descs []Descriptor
		for _, kp := range kps {
			thetas := orientation.Assign(oct, fields, kp, orientCfg)
			for _, theta := range thetas {
				d, ok := descriptor.Build(oct, fields, kp, theta, descCfg)
				if !ok {
					continue
				}
				descs = append(descs, d)
			}
		}
		descriptorsPerOctave[i] = descs
		total += len(descs)
	}

	slog.Info("sift describe complete", "descriptors", total)

	return descriptorsPerOctave, nil
}
