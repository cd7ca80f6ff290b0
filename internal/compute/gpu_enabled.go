//go:build gpu

package compute

import "fmt"

// newGPUDispatcher is the scaffolding hook for a real GPU-backed dispatcher
// (OpenCL/Metal compute kernels per §6's texture/buffer surface). Wiring an
// actual GPU runtime is out of scope for this module — the CPU backend
// already satisfies the numeric-equivalence contract §8 requires — so this
// build tag exists to let a future implementation slot a real runtime in
// without touching the Dispatcher contract or call sites.
func newGPUDispatcher() (Dispatcher, func(), error) {
	return nil, noopCleanup, fmt.Errorf("%w: GPU backend scaffolding in place; kernel dispatch pending implementation", ErrBackendNotImplemented)
}
