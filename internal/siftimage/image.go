// Package siftimage provides the host/device mirror abstraction shared by the
// pyramid, gradient, and descriptor kernels: a typed 2D array with explicit
// device-to-host synchronization, modeled after the teacher's image.NRGBA
// pixel-buffer handling generalized to the pixel kinds SIFT needs.
package siftimage

import "fmt"

// Pixel is the set of scalar record kinds an Image can hold: Gaussian/DoG
// scale-space planes (float32), gradient fields (Gradient), and extrema
// marker planes (bool, spec §3: "value 1 means candidate... else 0").
type Pixel interface {
	float32 | bool | Gradient
}

// Gradient is the (magnitude, orientation) pair stored per pixel of a
// gradient field (C7).
type Gradient struct {
	Mag   float32
	Angle float32
}

// Image is a 2D array of width x height records of type T. It mirrors the
// source's Image<T> host/device abstraction: host-visible storage that a
// compute backend dispatch may write into directly, with SyncFromDevice as
// the explicit point at which host reads become valid again.
type Image[T Pixel] struct {
	w, h    int
	pix     []T
	onHost  bool
}

// New allocates a zero-valued w x h image. It panics only on invalid
// dimensions; the abstraction never silently resizes.
func New[T Pixel](w, h int) *Image[T] {
	if w <= 0 || h <= 0 {
		panic(fmt.Sprintf("siftimage: invalid dimensions %dx%d", w, h))
	}
	return &Image[T]{
		w:      w,
		h:      h,
		pix:    make([]T, w*h),
		onHost: true,
	}
}

// Width returns the image width in pixels.
func (im *Image[T]) Width() int { return im.w }

// Height returns the image height in pixels.
func (im *Image[T]) Height() int { return im.h }

// At returns the value at (x, y). Callers in the hot path that have already
// bounds-checked should prefer indexing im.Raw() directly.
func (im *Image[T]) At(x, y int) T {
	return im.pix[y*im.w+x]
}

// Set writes the value at (x, y).
func (im *Image[T]) Set(x, y int, v T) {
	im.pix[y*im.w+x] = v
}

// Raw exposes the backing row-major slice for code that wants direct
// access to the whole plane (gaussianBlur's sigma-0 copy, for example).
func (im *Image[T]) Raw() []T { return im.pix }

// Index converts (x, y) to a Raw() offset.
func (im *Image[T]) Index(x, y int) int { return y*im.w + x }

// InBounds reports whether (x, y) addresses a valid pixel.
func (im *Image[T]) InBounds(x, y int) bool {
	return x >= 0 && x < im.w && y >= 0 && y < im.h
}

// MarkDeviceDirty flags the image as having been written by a compute
// dispatch; host reads are undefined until SyncFromDevice runs. The CPU
// backend (internal/compute) never actually leaves host memory behind a
// separate device, so SyncFromDevice is a no-op there, but the flag keeps the
// contract honest for a future real-GPU backend build tag.
func (im *Image[T]) MarkDeviceDirty() {
	im.onHost = false
}

// SyncFromDevice refreshes host-visible contents after a compute dispatch.
// Required before any At/Raw read following a dispatch that wrote this image.
func (im *Image[T]) SyncFromDevice() {
	im.onHost = true
}

// HostReady reports whether the image's host view reflects its last write.
func (im *Image[T]) HostReady() bool { return im.onHost }
