// Package keypoint defines the plain value records that flow between the
// detection/interpolation/orientation/description stages (spec §3, §9
// "Keypoint record flow": keypoints flow as value records through a
// pipeline, never as shared mutable references). Modeled on the teacher's
// internal/fit/types.go Circle/ParamVector value-record style.
package keypoint

// Keypoint is a scale-space extremum refined to sub-pixel/sub-scale
// accuracy that passed the contrast and edge tests (spec §3). It is created
// once by the interpolator and never mutated afterward.
type Keypoint struct {
	Octave int     // octave index
	Scale  int     // integer DoG scale at which the extremum was found
	SubD   float32 // sub-scale offset, in (-0.6, 0.6)

	ScaledX, ScaledY float32 // coords in the octave's grid
	AbsX, AbsY       float32 // coords in the input image's grid

	Sigma float32 // effective blur scale in input-pixel units
	Value float32 // interpolated DoG response
}

// DescriptorDim is the fixed descriptor length (spec §4.9: 4x4 spatial
// cells x 8 orientation bins).
const DescriptorDim = 128

// Descriptor is one oriented local-histogram descriptor for a Keypoint.
// A keypoint may own more than one Descriptor, one per dominant orientation
// found by the orientation assigner (spec §3, §4.8).
type Descriptor struct {
	Keypoint Keypoint
	Theta    float32 // dominant orientation this descriptor was built for, [0, 2*pi)
	Features [DescriptorDim]int32
}
