// Package compute is the compute-backend abstraction (C2): it dispatches
// named kernels over images/buffers within an ordered command batch, the
// same contract the teacher's internal/fit/renderer.Renderer gives the
// optimization pipeline for CPU/OpenCL-interchangeable rendering, adapted
// here to data-parallel per-pixel/per-keypoint kernel dispatch instead of
// circle compositing.
package compute

import (
	"errors"
	"fmt"
	"strings"
)

// Backend identifies a compute-backend implementation.
type Backend string

const (
	BackendCPU Backend = "cpu"
	BackendGPU Backend = "gpu"
)

var (
	// ErrUnknownBackend wraps a --backend value that normalizes to neither
	// BackendCPU nor BackendGPU (a typo, not a missing GPU build).
	ErrUnknownBackend = errors.New("compute: unknown backend")
	// ErrBackendUnavailable wraps a known backend whose build tag wasn't
	// compiled in (newGPUDispatcher under !gpu: see gpu_stub.go).
	ErrBackendUnavailable = errors.New("compute: backend unavailable")
	// ErrBackendNotImplemented wraps a known, available backend whose kernel
	// dispatch table is still incomplete for the pipeline stage being run.
	ErrBackendNotImplemented = errors.New("compute: backend not implemented")
)

var noopCleanup = func() {}

// NormalizeBackend folds a --backend/Config.Backend string to the Backend
// value New switches on, so "", "cpu", and common GPU aliases all resolve
// the way a caller would expect instead of round-tripping through
// ErrUnknownBackend for a spelling variant.
func NormalizeBackend(name string) Backend {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cpu":
		return BackendCPU
	case "gpu", "metal", "opencl":
		return BackendGPU
	default:
		return Backend(name)
	}
}

// SupportedBackends lists the backend names New recognizes, in the order
// config.Validate reports them and the CLI's --backend flag documents them.
// Only BackendCPU currently constructs successfully: New(BackendGPU) returns
// ErrBackendUnavailable without the gpu build tag and
// ErrBackendNotImplemented with it.
func SupportedBackends() []Backend {
	return []Backend{BackendCPU, BackendGPU}
}

// New constructs the requested backend and returns an optional cleanup hook.
// Every dispatch issued through the returned Dispatcher within one Batch
// executes in submission order; the caller must call Batch.Wait before
// reading back any Image/Buffer a kernel wrote to.
func New(name string) (Dispatcher, func(), error) {
	backend := NormalizeBackend(name)

	switch backend {
	case BackendCPU:
		return newCPUDispatcher(), noopCleanup, nil
	case BackendGPU:
		return newGPUDispatcher()
	default:
		return nil, noopCleanup, fmt.Errorf("%w: %s", ErrUnknownBackend, name)
	}
}
