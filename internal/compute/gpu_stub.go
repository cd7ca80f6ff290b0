//go:build !gpu

package compute

import "fmt"

// newGPUDispatcher reports unavailability when built without the gpu tag.
func newGPUDispatcher() (Dispatcher, func(), error) {
	return nil, noopCleanup, fmt.Errorf("%w: build without -tags gpu", ErrBackendUnavailable)
}
