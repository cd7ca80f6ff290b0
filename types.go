package sift

import "github.com/cwbudde/siftgo/internal/keypoint"

// Keypoint is a scale-space extremum refined to sub-pixel/sub-scale
// accuracy that passed the contrast and edge tests (spec §3).
type Keypoint = keypoint.Keypoint

// Descriptor is one oriented 128-dimensional local-histogram descriptor
// built for a single dominant orientation of a Keypoint (spec §3, §4.9).
type Descriptor = keypoint.Descriptor

// DescriptorDim is the fixed descriptor length: 4x4 spatial cells x 8
// orientation bins (spec §4.9).
const DescriptorDim = keypoint.DescriptorDim
