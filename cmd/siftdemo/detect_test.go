package main

import (
	"image"
	"image/color"
	"testing"
)

func TestToLinearGrayNormalizesRange(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.Gray{Y: 0})
	img.Set(1, 0, color.Gray{Y: 255})

	out := toLinearGray(img)
	if out.Width() != 4 || out.Height() != 4 {
		t.Fatalf("expected 4x4, got %dx%d", out.Width(), out.Height())
	}
	if v := out.At(0, 0); v != 0 {
		t.Errorf("expected black pixel to map to 0, got %v", v)
	}
	if v := out.At(1, 0); v < 0.99 || v > 1.0 {
		t.Errorf("expected white pixel to map to ~1, got %v", v)
	}
}
