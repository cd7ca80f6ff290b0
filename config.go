package sift

import (
	"fmt"

	"github.com/cwbudde/siftgo/internal/compute"
)

// Default parameter values, taken from the IPOL reference pipeline this
// module implements (spec §3, §9 Defaults).
const (
	DefaultDoGThreshold                   = 0.0133
	DefaultEdgeThreshold                  = 10.0
	DefaultMaxInterpIterations            = 5
	DefaultImageBorder                    = 5
	DefaultNumScalesPerOctave             = 3
	DefaultSigmaMin                       = 0.8
	DefaultLambdaOrientation              = 1.5
	DefaultOrientationBins                = 36
	DefaultOrientationThreshold           = 0.8
	DefaultOrientationSmoothingIterations = 6
	DefaultDescriptorHistogramsPerAxis    = 4
	DefaultDescriptorOrientationBins      = 8
	DefaultLambdaDescriptor               = 6.0
	DefaultDescriptorFixedPointScale      = 512
)

// Config parameterizes every stage of the pipeline (spec §3 Parameters).
// DefaultConfig returns one with every field set to the reference values;
// callers typically start there and override only what they need.
type Config struct {
	Width, Height int

	// Pyramid / DoG (C3, C4).
	SigmaMin           float32
	NumScalesPerOctave int

	// Extrema detection + interpolation (C5, C6).
	DoGThreshold        float32
	EdgeThreshold       float32
	MaxInterpIterations int
	ImageBorder         int

	// Orientation assignment (C8).
	LambdaOrientation              float32
	OrientationBins                int
	OrientationThreshold           float32
	OrientationSmoothingIterations int

	// Descriptor construction (C9).
	DescriptorHistogramsPerAxis int
	DescriptorOrientationBins   int
	LambdaDescriptor            float32
	DescriptorFixedPointScale   float32

	// Backend selects the compute.Dispatcher implementation ("cpu" or
	// "gpu"); empty defaults to "cpu" (spec §5, §6).
	Backend string
}

// DefaultConfig returns a Config with every reference default populated,
// sized for a (width, height) input image (spec §9 Defaults).
func DefaultConfig(width, height int) Config {
	return Config{
		Width:  width,
		Height: height,

		SigmaMin:           DefaultSigmaMin,
		NumScalesPerOctave: DefaultNumScalesPerOctave,

		DoGThreshold:        DefaultDoGThreshold,
		EdgeThreshold:       DefaultEdgeThreshold,
		MaxInterpIterations: DefaultMaxInterpIterations,
		ImageBorder:         DefaultImageBorder,

		LambdaOrientation:              DefaultLambdaOrientation,
		OrientationBins:                DefaultOrientationBins,
		OrientationThreshold:           DefaultOrientationThreshold,
		OrientationSmoothingIterations: DefaultOrientationSmoothingIterations,

		DescriptorHistogramsPerAxis: DefaultDescriptorHistogramsPerAxis,
		DescriptorOrientationBins:   DefaultDescriptorOrientationBins,
		LambdaDescriptor:            DefaultLambdaDescriptor,
		DescriptorFixedPointScale:   DefaultDescriptorFixedPointScale,

		Backend: "cpu",
	}
}

// Validate rejects configurations the pipeline cannot run with (spec §4.3:
// the pyramid needs at least one octave, which requires the doubled input
// to clear the minimum working size; the rest are straightforward
// positivity checks on parameters every later stage divides by).
func (c Config) Validate() error {
	if c.Width < 16 || c.Height < 16 {
		return fmt.Errorf("%w: width and height must be >= 16, got %dx%d", ErrConfig, c.Width, c.Height)
	}
	if c.SigmaMin <= 0 {
		return fmt.Errorf("%w: SigmaMin must be positive, got %v", ErrConfig, c.SigmaMin)
	}
	if c.NumScalesPerOctave < 1 {
		return fmt.Errorf("%w: NumScalesPerOctave must be >= 1, got %d", ErrConfig, c.NumScalesPerOctave)
	}
	if c.DoGThreshold <= 0 {
		return fmt.Errorf("%w: DoGThreshold must be positive, got %v", ErrConfig, c.DoGThreshold)
	}
	if c.EdgeThreshold <= 0 {
		return fmt.Errorf("%w: EdgeThreshold must be positive, got %v", ErrConfig, c.EdgeThreshold)
	}
	if c.MaxInterpIterations < 1 {
		return fmt.Errorf("%w: MaxInterpIterations must be >= 1, got %d", ErrConfig, c.MaxInterpIterations)
	}
	if c.ImageBorder < 1 {
		return fmt.Errorf("%w: ImageBorder must be >= 1, got %d", ErrConfig, c.ImageBorder)
	}
	if c.LambdaOrientation <= 0 {
		return fmt.Errorf("%w: LambdaOrientation must be positive, got %v", ErrConfig, c.LambdaOrientation)
	}
	if c.OrientationBins < 1 {
		return fmt.Errorf("%w: OrientationBins must be >= 1, got %d", ErrConfig, c.OrientationBins)
	}
	if c.OrientationThreshold <= 0 || c.OrientationThreshold > 1 {
		return fmt.Errorf("%w: OrientationThreshold must be in (0, 1], got %v", ErrConfig, c.OrientationThreshold)
	}
	if c.OrientationSmoothingIterations < 0 {
		return fmt.Errorf("%w: OrientationSmoothingIterations must be >= 0, got %d", ErrConfig, c.OrientationSmoothingIterations)
	}
	if c.DescriptorHistogramsPerAxis < 1 {
		return fmt.Errorf("%w: DescriptorHistogramsPerAxis must be >= 1, got %d", ErrConfig, c.DescriptorHistogramsPerAxis)
	}
	if c.DescriptorOrientationBins < 1 {
		return fmt.Errorf("%w: DescriptorOrientationBins must be >= 1, got %d", ErrConfig, c.DescriptorOrientationBins)
	}
	if c.LambdaDescriptor <= 0 {
		return fmt.Errorf("%w: LambdaDescriptor must be positive, got %v", ErrConfig, c.LambdaDescriptor)
	}
	if backend := compute.NormalizeBackend(c.Backend); !backendSupported(backend) {
		return fmt.Errorf("%w: unsupported backend %q, want one of %v", ErrConfig, c.Backend, compute.SupportedBackends())
	}
	return nil
}

// backendSupported reports whether backend is one compute.New recognizes,
// so Validate can reject an unknown --backend value before the pipeline
// tries to build it. A recognized backend can still fail in compute.New
// (gpu does), which New then reports as ErrBackend.
func backendSupported(backend compute.Backend) bool {
	for _, b := range compute.SupportedBackends() {
		if backend == b {
			return true
		}
	}
	return false
}
