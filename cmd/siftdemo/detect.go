package main

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/cwbudde/siftgo"
	"github.com/cwbudde/siftgo/internal/compute"
	"github.com/cwbudde/siftgo/internal/siftimage"
)

var (
	inputPath  string
	backend    string
	cpuProfile string
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect keypoints and build descriptors for an image",
	RunE:  runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&inputPath, "input", "", "Input image path (required)")
	detectCmd.Flags().StringVar(&backend, "backend", "cpu", fmt.Sprintf("Compute backend (%v)", compute.SupportedBackends()))
	detectCmd.Flags().StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	detectCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create CPU profile: %w", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
		slog.Info("CPU profiling enabled", "output", cpuProfile)
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return fmt.Errorf("failed to decode input: %w", err)
	}

	input := toLinearGray(src)
	slog.Info("loaded input", "width", input.Width(), "height", input.Height())

	cfg := sift.DefaultConfig(input.Width(), input.Height())
	cfg.Backend = backend

	pipeline, err := sift.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to construct pipeline: %w", err)
	}
	defer pipeline.Close()

	start := time.Now()
	det, err := pipeline.Detect(input)
	if err != nil {
		return fmt.Errorf("detect failed: %w", err)
	}
	descs, err := pipeline.Describe(det)
	if err != nil {
		return fmt.Errorf("describe failed: %w", err)
	}
	elapsed := time.Since(start)

	totalKeypoints, totalDescriptors := 0, 0
	for i := range det.Keypoints {
		nk, nd := len(det.Keypoints[i]), len(descs[i])
		totalKeypoints += nk
		totalDescriptors += nd
		fmt.Printf("octave %d: %d keypoints, %d descriptors\n", i, nk, nd)
	}
	fmt.Printf("total: %d keypoints, %d descriptors (%v)\n", totalKeypoints, totalDescriptors, elapsed)

	return nil
}

// toLinearGray converts src to a siftimage.Image[float32] with pixel values
// in [0, 1]. draw.Draw's grayscale conversion is a demo-side input
// preprocessing convenience; the pyramid's own resampling (nearest-neighbor
// upsample/downsample) never calls into golang.org/x/image/draw (see
// SPEC_FULL.md Domain Stack).
func toLinearGray(src image.Image) *siftimage.Image[float32] {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	gray := image.NewGray16(image.Rect(0, 0, w, h))
	draw.Draw(gray, gray.Bounds(), src, bounds.Min, draw.Src)

	out := siftimage.New[float32](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := gray.Gray16At(x, y).Y
			out.Set(x, y, float32(v)/float32(65535))
		}
	}
	return out
}
