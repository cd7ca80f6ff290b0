package sift

import (
	"math"
	"testing"

	"github.com/cwbudde/siftgo/internal/siftimage"
)

// blobImage builds a synthetic grayscale image with a handful of Gaussian
// blobs, enough contrast for the pipeline to find real keypoints on without
// depending on any on-disk fixture.
func blobImage(w, h int) *siftimage.Image[float32] {
	img := siftimage.New[float32](w, h)
	type blob struct{ cx, cy, sigma, amp float32 }
	blobs := []blob{
		{float32(w) * 0.3, float32(h) * 0.3, 3, 1.0},
		{float32(w) * 0.7, float32(h) * 0.3, 4, 0.8},
		{float32(w) * 0.5, float32(h) * 0.7, 5, 1.0},
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v float32
			for _, b := range blobs {
				dx := float32(x) - b.cx
				dy := float32(y) - b.cy
				v += b.amp * float32(math.Exp(-float64(dx*dx+dy*dy)/float64(2*b.sigma*b.sigma)))
			}
			img.Set(x, y, v)
		}
	}
	return img
}

func TestConfigValidateRejectsSmallImages(t *testing.T) {
	cfg := DefaultConfig(8, 8)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected rejection of a sub-minimum image size")
	}
}

func TestConfigValidateAcceptsDefaults(t *testing.T) {
	cfg := DefaultConfig(64, 64)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := DefaultConfig(64, 64)
	cfg.Backend = "quantum"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected unknown backend to be rejected")
	}
}

func TestDetectRejectsMismatchedInputSize(t *testing.T) {
	cfg := DefaultConfig(64, 64)
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Detect(blobImage(32, 32)); err == nil {
		t.Fatal("expected size mismatch to be rejected")
	}
}

func TestDetectAndDescribeEndToEnd(t *testing.T) {
	const w, h = 96, 96
	cfg := DefaultConfig(w, h)
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	det, err := s.Detect(blobImage(w, h))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(det.Keypoints) == 0 {
		t.Fatal("expected at least one octave of keypoint slots")
	}

	descs, err := s.Describe(det)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if len(descs) != len(det.Keypoints) {
		t.Fatalf("expected one descriptor slice per octave, got %d slices for %d octaves", len(descs), len(det.Keypoints))
	}

	for octIdx, octDescs := range descs {
		for _, d := range octDescs {
			if len(d.Features) != DescriptorDim {
				t.Fatalf("octave %d: expected %d-dim descriptor, got %d", octIdx, DescriptorDim, len(d.Features))
			}
			for _, f := range d.Features {
				if f < 0 {
					t.Fatalf("octave %d: negative descriptor feature %d", octIdx, f)
				}
			}
		}
	}
}

func TestDescribeRejectsNilDetection(t *testing.T) {
	cfg := DefaultConfig(64, 64)
	s, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Describe(nil); err == nil {
		t.Fatal("expected nil detection to be rejected")
	}
}
