package sift

import "errors"

// ErrConfig is wrapped by every error Config.Validate returns.
var ErrConfig = errors.New("sift: invalid configuration")

// ErrBackend is wrapped by the error New returns when compute.New fails to
// construct the configured backend. An unknown backend name is rejected
// earlier, by Config.Validate, with ErrConfig.
var ErrBackend = errors.New("sift: backend error")
